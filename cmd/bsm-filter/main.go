// Command bsm-filter runs the privacy filter as a long-lived Kafka
// consumer: load the road map, build the spatial index, construct a
// bsm.Handler factory from configuration, and consume until signaled to
// stop. Startup follows the teacher's cmd/preprocess and cmd/server
// fail-fast style (sequential steps logged as they happen, a fatal exit on
// any unrecoverable error) generalized to zerolog's structured logger.
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/pflag"

	"github.com/rs/zerolog"

	"github.com/azybler/bsm-filter/internal/bsm"
	"github.com/azybler/bsm-filter/internal/config"
	"github.com/azybler/bsm-filter/internal/filter"
	"github.com/azybler/bsm-filter/internal/geo"
	"github.com/azybler/bsm-filter/internal/mapfile"
	"github.com/azybler/bsm-filter/internal/obs"
	"github.com/azybler/bsm-filter/internal/quadtree"
	"github.com/azybler/bsm-filter/internal/roadmap"
	"github.com/azybler/bsm-filter/internal/transport/kafka"
)

// allFlags enumerates every feature bit so startup can mirror the
// configured activation mask onto each constructed Handler.
var allFlags = []filter.Flag{
	filter.VelocityFilter, filter.GeofenceFilter, filter.IDRedact,
	filter.SizeRedact, filter.PartIIRedact,
}

func main() {
	flags := pflag.NewFlagSet("bsm-filter", pflag.ExitOnError)
	configFile := flags.String("config", "", "path to a config file (yaml/json/toml, viper-recognized)")
	mapFile := flags.String("map-file", "", "path to a road map: .osm.pbf or .geojson")
	kafkaBrokers := flags.String("kafka-brokers", "", "comma-separated Kafka broker addresses")
	logLevel := flags.String("log-level", "", "log level: debug, info, warn, error")
	metricsAddr := flags.String("metrics-addr", ":9090", "address to serve /metrics on")
	if err := flags.Parse(os.Args[1:]); err != nil {
		os.Exit(2)
	}

	cfg, err := config.Load(*configFile, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bsm-filter: loading config: %v\n", err)
		os.Exit(1)
	}
	if *mapFile != "" {
		cfg.MapFile = *mapFile
	}
	if *kafkaBrokers != "" {
		cfg.KafkaBrokers = strings.Split(*kafkaBrokers, ",")
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}

	log := obs.NewLogger(cfg.LogLevel, true)

	if cfg.MapFile == "" {
		log.Fatal().Msg("map.file is required (set --map-file or the map.file config key)")
	}
	log.Info().Str("path", cfg.MapFile).Msg("loading road map")
	edges, err := loadEdges(cfg.MapFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load road map")
	}
	log.Info().Int("edges", len(edges)).Msg("road map loaded")

	log.Info().Msg("building spatial index")
	quad := buildQuad(edges, cfg.BoxExtensionM)

	velocity, err := cfg.Velocity()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid velocity configuration")
	}
	handlerCfg := bsm.Config{
		Velocity:           velocity,
		AdmissibleWayTypes: cfg.AdmissibleWayTypes,
		IDRedactor:         cfg.IDRedactor(),
		PartII:             cfg.PartIIRedactor(),
	}

	registry := prometheus.NewRegistry()
	counter, err := obs.NewVerdictCounter(registry)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to register metrics")
	}
	go serveMetrics(*metricsAddr, registry, log)

	if len(cfg.KafkaBrokers) == 0 {
		log.Fatal().Msg("kafka.brokers is required (set --kafka-brokers or the kafka.brokers config key)")
	}

	producer, err := kafka.NewProducer(cfg.KafkaBrokers, cfg.KafkaTopicOut)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct kafka producer")
	}
	defer producer.Close()

	newHandler := func() *bsm.Handler {
		h := bsm.New(quad, handlerCfg)
		for _, flag := range allFlags {
			if cfg.Activation.IsActive(flag) {
				h.Activate(flag)
			}
		}
		return h
	}

	consumer, err := kafka.NewConsumer(cfg.KafkaBrokers, "bsm-filter", []string{cfg.KafkaTopicIn}, newHandler, producer, log, counter)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to construct kafka consumer")
	}

	log.Info().
		Strs("brokers", cfg.KafkaBrokers).
		Str("topic_in", cfg.KafkaTopicIn).
		Str("topic_out", cfg.KafkaTopicOut).
		Msg("consuming")
	if err := consumer.Run(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("consumer stopped with error")
	}
}

func loadEdges(path string) ([]roadmap.Edge, error) {
	if strings.HasSuffix(path, ".geojson") || strings.HasSuffix(path, ".json") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		return mapfile.LoadGeoJSON(data)
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return mapfile.LoadOSM(context.Background(), f)
}

func buildQuad(edges []roadmap.Edge, boxExtensionM float64) *quadtree.Quad {
	envelope := envelopeOf(edges, boxExtensionM)
	quad := quadtree.New(envelope, boxExtensionM)
	for _, e := range edges {
		quad.Insert(e)
	}
	return quad
}

func envelopeOf(edges []roadmap.Edge, boxExtensionM float64) geo.BBox {
	if len(edges) == 0 {
		return geo.BBox{SW: geo.Point{Lat: -90, Lon: -180}, NE: geo.Point{Lat: 90, Lon: 180}}
	}
	box := edges[0].CorridorBBox(boxExtensionM)
	for _, e := range edges[1:] {
		corridor := e.CorridorBBox(boxExtensionM)
		if corridor.SW.Lat < box.SW.Lat {
			box.SW.Lat = corridor.SW.Lat
		}
		if corridor.SW.Lon < box.SW.Lon {
			box.SW.Lon = corridor.SW.Lon
		}
		if corridor.NE.Lat > box.NE.Lat {
			box.NE.Lat = corridor.NE.Lat
		}
		if corridor.NE.Lon > box.NE.Lon {
			box.NE.Lon = corridor.NE.Lon
		}
	}
	return box
}

func serveMetrics(addr string, registry *prometheus.Registry, log zerolog.Logger) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
	log.Info().Str("addr", addr).Msg("serving metrics")
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error().Err(err).Msg("metrics server stopped")
	}
}
