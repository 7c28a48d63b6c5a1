package model

// StopReason indicates why a crawl terminated.
//
// Design decision: We use a dedicated type rather than a bool
// ("limitReached") because it keeps call sites self-describing and
// leaves room for future reasons (e.g. cancellation) without an API break.
type StopReason int

const (
	// StopExhausted means the link frontier ran empty: every reachable
	// article within the wiki was downloaded.
	StopExhausted StopReason = iota

	// StopLimitReached means the configured page budget was hit before
	// the frontier was exhausted.
	StopLimitReached
)

// String returns the human-readable form of the stop reason.
func (r StopReason) String() string {
	switch r {
	case StopExhausted:
		return "exhausted"
	case StopLimitReached:
		return "limit_reached"
	default:
		return "unknown"
	}
}

// ParseStopReason converts a stored string back into a StopReason.
// Unknown strings map to StopExhausted, the zero value.
func ParseStopReason(s string) StopReason {
	if s == StopLimitReached.String() {
		return StopLimitReached
	}
	return StopExhausted
}
