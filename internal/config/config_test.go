package config

import (
	"testing"

	"github.com/azybler/bsm-filter/internal/filter"
	"github.com/azybler/bsm-filter/internal/roadmap"
)

func TestFromMapDefaults(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if cfg.IDReplacement != filter.DefaultReplacementID {
		t.Errorf("IDReplacement = %q, want default %q", cfg.IDReplacement, filter.DefaultReplacementID)
	}
	if cfg.IDRedactWildcard || len(cfg.IDRedactSet) != 0 {
		t.Error("expected no id redaction configured by default")
	}
	if cfg.Activation != 0 {
		t.Error("expected no feature flags active by default")
	}
}

func TestFromMapVelocityRange(t *testing.T) {
	m := map[string]string{
		KeyVelocityMin: "2.5",
		KeyVelocityMax: "30",
	}
	cfg, err := FromMap(m)
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if cfg.VelocityMinMPS != 2.5 || cfg.VelocityMaxMPS != 30 {
		t.Errorf("velocity range = [%f,%f], want [2.5,30]", cfg.VelocityMinMPS, cfg.VelocityMaxMPS)
	}
}

func TestFromMapRejectsInvertedVelocity(t *testing.T) {
	m := map[string]string{KeyVelocityMin: "30", KeyVelocityMax: "2.5"}
	if _, err := FromMap(m); err == nil {
		t.Error("expected error when min velocity exceeds max")
	}
}

func TestFromMapIDRedactionModes(t *testing.T) {
	wildcard, err := FromMap(map[string]string{KeyRedactionID: "ON"})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if !wildcard.IDRedactWildcard {
		t.Error("expected ON to set wildcard mode")
	}

	inclusion, err := FromMap(map[string]string{KeyRedactionID: "ABC,DEF"})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if inclusion.IDRedactWildcard || len(inclusion.IDRedactSet) != 2 {
		t.Errorf("expected inclusion set of 2, got wildcard=%v set=%v", inclusion.IDRedactWildcard, inclusion.IDRedactSet)
	}
}

func TestFromMapPartIIMembers(t *testing.T) {
	cfg, err := FromMap(map[string]string{KeyRedactionPartII: "vehicleEventFlags, brakeStatus"})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if len(cfg.PartIIMemberNames) != 2 {
		t.Fatalf("PartIIMemberNames = %v, want 2 entries", cfg.PartIIMemberNames)
	}
}

func TestFromMapWayTypesDefaultExcludesUnknown(t *testing.T) {
	cfg, err := FromMap(map[string]string{})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if cfg.AdmissibleWayTypes[roadmap.WayUnknown] {
		t.Error("default admissible set must not include WayUnknown")
	}
	if !cfg.AdmissibleWayTypes[roadmap.WayResidential] {
		t.Error("default admissible set must include residential")
	}
}

func TestFromMapActivationFlags(t *testing.T) {
	cfg, err := FromMap(map[string]string{
		KeyActivateVelocity: "true",
		KeyActivatePartII:   "true",
	})
	if err != nil {
		t.Fatalf("FromMap: %v", err)
	}
	if !cfg.Activation.IsActive(filter.VelocityFilter) {
		t.Error("expected velocity filter active")
	}
	if !cfg.Activation.IsActive(filter.PartIIRedact) {
		t.Error("expected partII redact active")
	}
	if cfg.Activation.IsActive(filter.GeofenceFilter) {
		t.Error("expected geofence filter inactive")
	}
}
