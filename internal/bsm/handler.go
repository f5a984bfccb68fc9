// Package bsm implements the streaming per-message BSM processing
// pipeline: JSON ingestion, the suppression decision (velocity and
// geofence predicates), field redaction, and re-serialization.
//
// Parsing is event-driven over encoding/json's Decoder.Token/Decode
// cursor rather than a full unmarshal into a struct, so the handler can
// abandon work the instant a suppression cause is found (spec.md §9:
// early termination is both a performance and a correctness
// requirement — suppressed messages must never produce output). No
// streaming SAX-style JSON library appears anywhere in the retrieved
// example pack, so this cursor walk is built directly on the standard
// library's token stream; see DESIGN.md for the alternatives considered.
package bsm

import (
	"bytes"
	"encoding/json"
	"strconv"

	"github.com/azybler/bsm-filter/internal/filter"
	"github.com/azybler/bsm-filter/internal/geo"
	"github.com/azybler/bsm-filter/internal/quadtree"
	"github.com/azybler/bsm-filter/internal/roadmap"
)

// Config is the immutable, handler-shared configuration derived from
// internal/config.Config at construction time.
type Config struct {
	Velocity           filter.Velocity
	AdmissibleWayTypes map[roadmap.WayType]bool
	IDRedactor         filter.IDRedactor
	PartII             filter.PartIIRedactor
}

// Handler streams a single BSM's JSON at a time, applies the configured
// filters and redactors, and produces a verdict and (on SUCCESS) a
// redacted JSON byte string. A Handler is reusable across messages: each
// Process call resets all per-message state and begins fresh. The
// quadtree reference and Config are shared, read-only, and safe to use
// concurrently from independently-owned Handler instances; a single
// Handler instance is not safe for concurrent Process calls.
type Handler struct {
	quad *quadtree.Quad
	cfg  Config
	mask filter.ActivationMask

	bsm     BSM
	verdict Verdict
	out     bytes.Buffer
}

// New creates a Handler backed by the given quadtree (may be nil if
// GeofenceFilter will never be activated) and configuration. All
// feature flags start deactivated; call Activate to turn them on.
func New(quad *quadtree.Quad, cfg Config) *Handler {
	return &Handler{quad: quad, cfg: cfg}
}

// Activate turns on a feature flag.
func (h *Handler) Activate(flag filter.Flag) { h.mask = h.mask.Activate(flag) }

// Deactivate turns off a feature flag.
func (h *Handler) Deactivate(flag filter.Flag) { h.mask = h.mask.Deactivate(flag) }

// IsActive reports whether a feature flag is on.
func (h *Handler) IsActive(flag filter.Flag) bool { return h.mask.IsActive(flag) }

// BSM returns the diagnostic accessor for the most recently processed
// message's accumulated fields.
func (h *Handler) BSM() BSM { return h.bsm }

// JSON returns the redacted output of the most recently processed
// message. Valid only when the last Process call returned SUCCESS; the
// caller must not consume it otherwise.
func (h *Handler) JSON() []byte {
	return h.out.Bytes()
}

// Process parses bsmJSON as a single JSON object (no embedded newlines;
// newline-delimited framing is the caller's responsibility), applies the
// active filters and redactors field by field, and returns the verdict.
// On any verdict other than SUCCESS, JSON's return value is undefined.
func (h *Handler) Process(bsmJSON []byte) Verdict {
	h.bsm.reset()
	h.out.Reset()
	h.verdict = SUCCESS

	dec := json.NewDecoder(bytes.NewReader(bsmJSON))

	tok, err := dec.Token()
	if err != nil {
		return h.abort(PARSE)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		// Syntactically valid JSON (e.g. a bare array or scalar) that
		// cannot carry any of the required BSM fields.
		return h.abort(MISSING)
	}

	h.out.WriteByte('{')
	first := true

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return h.abort(PARSE)
		}
		key, ok := keyTok.(string)
		if !ok {
			return h.abort(PARSE)
		}

		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return h.abort(PARSE)
		}

		value, verdict := h.handleField(key, raw)
		if verdict != SUCCESS {
			return h.abort(verdict)
		}

		if !first {
			h.out.WriteByte(',')
		}
		first = false
		keyJSON, _ := json.Marshal(key)
		h.out.Write(keyJSON)
		h.out.WriteByte(':')
		h.out.Write(value)
	}

	// Consume the closing '}'.
	if _, err := dec.Token(); err != nil {
		return h.abort(PARSE)
	}
	h.out.WriteByte('}')

	if !h.bsm.complete() {
		return h.abort(MISSING)
	}

	h.verdict = SUCCESS
	return SUCCESS
}

// handleField processes one top-level key/value pair and returns the
// bytes to emit for it (unchanged if the field passes through) along
// with SUCCESS, or a non-SUCCESS verdict if processing must abort.
func (h *Handler) handleField(key string, raw json.RawMessage) (json.RawMessage, Verdict) {
	switch key {
	case "id":
		return h.handleID(raw)
	case "speed":
		return h.handleSpeed(raw)
	case "latitude":
		return h.handleCoordinate(raw, true)
	case "longitude":
		return h.handleCoordinate(raw, false)
	case "partII":
		return h.handlePartII(raw)
	default:
		return raw, SUCCESS
	}
}

func (h *Handler) handleID(raw json.RawMessage) (json.RawMessage, Verdict) {
	var id string
	if err := json.Unmarshal(raw, &id); err != nil {
		return nil, OTHER
	}
	h.bsm.ID = id
	h.bsm.idSeen = true

	if !h.mask.IsActive(filter.IDRedact) {
		return raw, SUCCESS
	}
	replacement := h.cfg.IDRedactor.Redact(id)
	out, _ := json.Marshal(replacement)
	return out, SUCCESS
}

func (h *Handler) handleSpeed(raw json.RawMessage) (json.RawMessage, Verdict) {
	speed, err := parseFloat(raw)
	if err != nil {
		return nil, OTHER
	}
	h.bsm.SpeedMPS = speed
	h.bsm.speedSeen = true

	if h.mask.IsActive(filter.VelocityFilter) && !h.cfg.Velocity.Accept(speed) {
		return nil, SPEED
	}
	return raw, SUCCESS
}

func (h *Handler) handleCoordinate(raw json.RawMessage, isLat bool) (json.RawMessage, Verdict) {
	v, err := parseFloat(raw)
	if err != nil {
		return nil, OTHER
	}
	if isLat {
		if v < -90 || v > 90 {
			return nil, OTHER
		}
		h.bsm.Lat = v
		h.bsm.latSeen = true
	} else {
		if v < -180 || v > 180 {
			return nil, OTHER
		}
		h.bsm.Lon = v
		h.bsm.lonSeen = true
	}

	if h.mask.IsActive(filter.GeofenceFilter) && h.bsm.latSeen && h.bsm.lonSeen {
		p := geo.Point{Lat: h.bsm.Lat, Lon: h.bsm.Lon}
		if !h.geofenceAccept(p) {
			return nil, GEOPOSITION
		}
	}
	return raw, SUCCESS
}

func (h *Handler) handlePartII(raw json.RawMessage) (json.RawMessage, Verdict) {
	if !h.mask.IsActive(filter.PartIIRedact) {
		return raw, SUCCESS
	}
	if !json.Valid(raw) {
		return nil, OTHER
	}

	out, err := h.cfg.PartII.RedactJSON(raw)
	if err != nil {
		return nil, OTHER
	}
	return out, SUCCESS
}

// geofenceAccept reports whether p falls within the corridor of some
// admissible-way-type edge returned by the quadtree query.
func (h *Handler) geofenceAccept(p geo.Point) bool {
	if h.quad == nil {
		return true
	}
	ext := h.quad.BoxExtensionM()
	for _, e := range h.quad.Query(p) {
		if len(h.cfg.AdmissibleWayTypes) > 0 && !h.cfg.AdmissibleWayTypes[e.WayType] {
			continue
		}
		if e.Contains(p, ext) {
			return true
		}
	}
	return false
}

func (h *Handler) abort(v Verdict) Verdict {
	h.verdict = v
	h.out.Reset()
	return v
}

func parseFloat(raw json.RawMessage) (float64, error) {
	return strconv.ParseFloat(string(bytes.TrimSpace(raw)), 64)
}
