package bsm

// Verdict is the terminal outcome of one Handler.Process call.
type Verdict uint8

const (
	// SUCCESS means the message was accepted; the redacted output is
	// available from Handler.JSON.
	SUCCESS Verdict = iota
	// SPEED means the message was suppressed: speed outside the
	// configured velocity interval. Not an error; no output is produced.
	SPEED
	// GEOPOSITION means the message was suppressed: the point falls
	// outside every admissible geofence corridor. Not an error; no
	// output is produced.
	GEOPOSITION
	// PARSE means the input was not well-formed JSON.
	PARSE
	// MISSING means the input was well-formed JSON lacking one of the
	// required fields (id, latitude, longitude, speed).
	MISSING
	// OTHER means a required field had an unexpected type, or another
	// structural anomaly prevented a clean verdict.
	OTHER
)

// String returns the stable verdict string consumed by observability
// tooling: "success", "speed", "geoposition", "parse", "missing", "other".
func (v Verdict) String() string {
	switch v {
	case SUCCESS:
		return "success"
	case SPEED:
		return "speed"
	case GEOPOSITION:
		return "geoposition"
	case PARSE:
		return "parse"
	case MISSING:
		return "missing"
	case OTHER:
		return "other"
	default:
		return "other"
	}
}

// Suppressed reports whether v is a normal suppression outcome (SPEED or
// GEOPOSITION) rather than a parse/data error or success.
func (v Verdict) Suppressed() bool {
	return v == SPEED || v == GEOPOSITION
}
