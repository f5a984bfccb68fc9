package obs

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/azybler/bsm-filter/internal/bsm"
)

func TestVerdictCounterObserve(t *testing.T) {
	reg := prometheus.NewRegistry()
	counter, err := NewVerdictCounter(reg)
	if err != nil {
		t.Fatalf("NewVerdictCounter: %v", err)
	}

	counter.Observe(bsm.SUCCESS)
	counter.Observe(bsm.SUCCESS)
	counter.Observe(bsm.SPEED)

	metrics, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}

	counts := map[string]float64{}
	for _, mf := range metrics {
		if mf.GetName() != "bsmfilter_verdicts_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			var verdict string
			for _, label := range m.GetLabel() {
				if label.GetName() == "verdict" {
					verdict = label.GetValue()
				}
			}
			counts[verdict] = m.GetCounter().GetValue()
		}
	}

	if counts["success"] != 2 {
		t.Errorf("success count = %v, want 2", counts["success"])
	}
	if counts["speed"] != 1 {
		t.Errorf("speed count = %v, want 1", counts["speed"])
	}
	if _, ok := counts["geoposition"]; ok {
		t.Error("expected no geoposition entries observed")
	}
}
