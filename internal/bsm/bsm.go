package bsm

// BSM holds the fields the handler accumulates while streaming a single
// Basic Safety Message. It is a diagnostic accessor only: nothing in the
// package reads it back to influence a later message.
type BSM struct {
	ID       string
	Lat      float64
	Lon      float64
	SpeedMPS float64

	idSeen, latSeen, lonSeen, speedSeen bool
}

func (b *BSM) reset() {
	*b = BSM{}
}

// complete reports whether every required field (id, latitude,
// longitude, speed) has been observed.
func (b *BSM) complete() bool {
	return b.idSeen && b.latSeen && b.lonSeen && b.speedSeen
}
