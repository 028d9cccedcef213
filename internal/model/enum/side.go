package enum

// Side is the direction of a speculative position on a binary market.
type Side uint8

const (
	_side_beg Side = iota
	SideUp
	SideDown
	_side_end
)

func (s Side) IsAvailable() bool {
	return s > _side_beg && s < _side_end
}

func (s Side) Name() string {
	switch s {
	case SideUp:
		return "UP"
	case SideDown:
		return "DOWN"
	default:
		return "UNKNOWN"
	}
}

// Flip returns the opposite side.
func (s Side) Flip() Side {
	switch s {
	case SideUp:
		return SideDown
	case SideDown:
		return SideUp
	default:
		return s
	}
}
