package chapters

// Window is the [Start, End) time range within source media identified as the
// segment of interest. Offsets are whole seconds from the start of the media.
type Window struct {
	Start int
	End   int
	Label string
}

// Duration returns the window length in seconds.
func (w Window) Duration() int {
	return w.End - w.Start
}
