package kafka

import "github.com/IBM/sarama"

// Producer republishes redacted BSM JSON onto an output topic using a
// synchronous sarama producer, so a publish failure is observed by the
// caller (ConsumeClaim) before the source offset is marked consumed.
type Producer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewProducer builds a Producer targeting topic on brokers.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	cfg := sarama.NewConfig()
	cfg.Producer.Return.Successes = true
	cfg.Producer.RequiredAcks = sarama.WaitForLocal

	producer, err := sarama.NewSyncProducer(brokers, cfg)
	if err != nil {
		return nil, err
	}
	return &Producer{producer: producer, topic: topic}, nil
}

// Publish sends payload (typically Handler.JSON()) to the output topic.
func (p *Producer) Publish(payload []byte) error {
	msg := &sarama.ProducerMessage{
		Topic: p.topic,
		Value: sarama.ByteEncoder(payload),
	}
	_, _, err := p.producer.SendMessage(msg)
	return err
}

// Close releases the underlying producer connection.
func (p *Producer) Close() error {
	return p.producer.Close()
}
