package presentation

// ScrollThreshold is the vertical offset, in pixels, past which the navbar
// counts as scrolled.
const ScrollThreshold = 10

// ScrollTracker follows the page offset. A page is rendered unscrolled; the
// browser script reports later offsets against the same threshold.
type ScrollTracker struct {
	scrolled bool
}

// Observe records the current vertical offset.
func (t *ScrollTracker) Observe(scrollY float64) {
	t.scrolled = scrollY > ScrollThreshold
}

func (t *ScrollTracker) Scrolled() bool {
	return t.scrolled
}

func (t *ScrollTracker) Threshold() int {
	return ScrollThreshold
}
