// Package config loads the flat string-map configuration spec.md's core
// consumes and turns it into a strongly-typed Config record, parsed once
// at startup. The flat map remains the on-disk wire format (spec.md §6's
// configuration table); this package is the only place that knows how to
// read it off disk.
package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/azybler/bsm-filter/internal/filter"
	"github.com/azybler/bsm-filter/internal/roadmap"
)

// Recognized configuration keys (spec.md §6).
const (
	KeyVelocityMin      = "privacy.filter.velocity.min"
	KeyVelocityMax      = "privacy.filter.velocity.max"
	KeyGeofenceExt      = "privacy.filter.geofence.extension"
	KeyGeofenceWayTypes = "privacy.filter.geofence.waytypes"
	KeyRedactionID      = "privacy.redaction.id"
	KeyRedactionIDValue = "privacy.redaction.id.value"
	KeyRedactionPartII  = "privacy.redaction.partII"

	KeyActivateVelocity = "privacy.activate.velocity"
	KeyActivateGeofence = "privacy.activate.geofence"
	KeyActivateIDRedact = "privacy.activate.id"
	KeyActivateSize     = "privacy.activate.size"
	KeyActivatePartII   = "privacy.activate.partII"

	KeyMapFile       = "map.file"
	KeyKafkaBrokers  = "kafka.brokers"
	KeyKafkaTopicIn  = "kafka.topic.in"
	KeyKafkaTopicOut = "kafka.topic.out"
	KeyLogLevel      = "log.level"
)

// idRedactAll is the sentinel value of privacy.redaction.id meaning
// "redact every id" rather than an explicit inclusion list.
const idRedactAll = "ON"
const idRedactOff = "OFF"

// Config is the strongly-typed, validated configuration consumed by the
// quadtree builder and the bsm.Handler factory.
type Config struct {
	VelocityMinMPS float64
	VelocityMaxMPS float64
	BoxExtensionM  float64

	AdmissibleWayTypes map[roadmap.WayType]bool

	IDRedactWildcard bool
	IDRedactSet      []string
	IDReplacement    string

	PartIIMemberNames []string

	Activation filter.ActivationMask

	MapFile       string
	KafkaBrokers  []string
	KafkaTopicIn  string
	KafkaTopicOut string
	LogLevel      string
}

// Load reads configuration from flags, environment variables (prefixed
// BSMFILTER_), and an optional config file, in that order of override
// priority, following the layered defaults→file→env→flags precedence
// viper implements. flags may be nil to parse no CLI flags (e.g. in
// tests); when non-nil it must already have been parsed.
func Load(configFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("BSMFILTER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("config: reading %s: %w", configFile, err)
		}
	}

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return Config{}, fmt.Errorf("config: binding flags: %w", err)
		}
	}

	return FromMap(flattenToStringMap(v))
}

func setDefaults(v *viper.Viper) {
	v.SetDefault(KeyVelocityMin, "0")
	v.SetDefault(KeyVelocityMax, "55")
	v.SetDefault(KeyGeofenceExt, "0")
	v.SetDefault(KeyRedactionID, idRedactOff)
	v.SetDefault(KeyRedactionIDValue, filter.DefaultReplacementID)
	v.SetDefault(KeyRedactionPartII, "")
	v.SetDefault(KeyKafkaTopicIn, "bsm.raw.in")
	v.SetDefault(KeyKafkaTopicOut, "bsm.redacted.out")
	v.SetDefault(KeyLogLevel, "info")
}

// flattenToStringMap collapses viper's settings tree into the flat
// string→string map spec.md mandates as the wire contract, so FromMap
// (the core's actual entry point) never depends on viper directly.
func flattenToStringMap(v *viper.Viper) map[string]string {
	// viper lowercases every key; restore the mixed-case spelling of the
	// recognized keys that FromMap looks up.
	canonical := make(map[string]string)
	for _, k := range []string{KeyRedactionPartII, KeyActivatePartII} {
		canonical[strings.ToLower(k)] = k
	}
	out := make(map[string]string)
	for _, key := range v.AllKeys() {
		name := key
		if c, ok := canonical[key]; ok {
			name = c
		}
		out[name] = fmt.Sprintf("%v", v.Get(key))
	}
	return out
}

// FromMap parses the flat string→string configuration map spec.md
// describes into a validated Config. This is the core's actual
// construction-time entry point; Load is a convenience wrapper for the
// CLI that produces the same map from flags/env/file.
func FromMap(m map[string]string) (Config, error) {
	cfg := Config{
		AdmissibleWayTypes: map[roadmap.WayType]bool{},
	}

	var err error
	if cfg.VelocityMinMPS, err = parseFloatKey(m, KeyVelocityMin, 0); err != nil {
		return Config{}, err
	}
	if cfg.VelocityMaxMPS, err = parseFloatKey(m, KeyVelocityMax, 55); err != nil {
		return Config{}, err
	}
	if cfg.VelocityMinMPS > cfg.VelocityMaxMPS {
		return Config{}, fmt.Errorf("config: %s (%f) exceeds %s (%f)",
			KeyVelocityMin, cfg.VelocityMinMPS, KeyVelocityMax, cfg.VelocityMaxMPS)
	}

	if cfg.BoxExtensionM, err = parseFloatKey(m, KeyGeofenceExt, 0); err != nil {
		return Config{}, err
	}

	if wayTypes, ok := m[KeyGeofenceWayTypes]; ok && wayTypes != "" {
		for _, name := range splitCSV(wayTypes) {
			cfg.AdmissibleWayTypes[roadmap.ParseWayType(name)] = true
		}
	} else {
		for wt := range map[roadmap.WayType]bool{
			roadmap.WayMotorway: true, roadmap.WayTrunk: true, roadmap.WayPrimary: true,
			roadmap.WaySecondary: true, roadmap.WayTertiary: true, roadmap.WayResidential: true,
			roadmap.WayService: true, roadmap.WayLivingStreet: true, roadmap.WayUnclassified: true,
		} {
			cfg.AdmissibleWayTypes[wt] = true
		}
	}

	idMode := m[KeyRedactionID]
	switch idMode {
	case idRedactAll:
		cfg.IDRedactWildcard = true
	case idRedactOff, "":
		// No redaction; IDRedactSet stays empty.
	default:
		cfg.IDRedactSet = splitCSV(idMode)
	}
	cfg.IDReplacement = m[KeyRedactionIDValue]
	if cfg.IDReplacement == "" {
		cfg.IDReplacement = filter.DefaultReplacementID
	}

	if partII := m[KeyRedactionPartII]; partII != "" {
		cfg.PartIIMemberNames = splitCSV(partII)
	}

	if boolKey(m, KeyActivateVelocity) {
		cfg.Activation = cfg.Activation.Activate(filter.VelocityFilter)
	}
	if boolKey(m, KeyActivateGeofence) {
		cfg.Activation = cfg.Activation.Activate(filter.GeofenceFilter)
	}
	if boolKey(m, KeyActivateIDRedact) {
		cfg.Activation = cfg.Activation.Activate(filter.IDRedact)
	}
	if boolKey(m, KeyActivateSize) {
		cfg.Activation = cfg.Activation.Activate(filter.SizeRedact)
	}
	if boolKey(m, KeyActivatePartII) {
		cfg.Activation = cfg.Activation.Activate(filter.PartIIRedact)
	}

	cfg.MapFile = m[KeyMapFile]
	if brokers := m[KeyKafkaBrokers]; brokers != "" {
		cfg.KafkaBrokers = splitCSV(brokers)
	}
	cfg.KafkaTopicIn = orDefault(m[KeyKafkaTopicIn], "bsm.raw.in")
	cfg.KafkaTopicOut = orDefault(m[KeyKafkaTopicOut], "bsm.redacted.out")
	cfg.LogLevel = orDefault(m[KeyLogLevel], "info")

	return cfg, nil
}

// IDRedactor builds the filter.IDRedactor this config describes.
func (c Config) IDRedactor() filter.IDRedactor {
	if c.IDRedactWildcard {
		return filter.NewIDRedactorWildcard(c.IDReplacement)
	}
	return filter.NewIDRedactorInclusion(c.IDRedactSet, c.IDReplacement)
}

// PartIIRedactor builds the filter.PartIIRedactor this config describes.
func (c Config) PartIIRedactor() filter.PartIIRedactor {
	return filter.NewPartIIRedactor(c.PartIIMemberNames)
}

// Velocity builds the filter.Velocity this config describes.
func (c Config) Velocity() (filter.Velocity, error) {
	return filter.NewVelocity(c.VelocityMinMPS, c.VelocityMaxMPS)
}

func parseFloatKey(m map[string]string, key string, def float64) (float64, error) {
	s, ok := m[key]
	if !ok || s == "" {
		return def, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("config: key %s: %w", key, err)
	}
	return v, nil
}

func boolKey(m map[string]string, key string) bool {
	v, ok := m[key]
	if !ok {
		return false
	}
	b, _ := strconv.ParseBool(v)
	return b
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
