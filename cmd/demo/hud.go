package main

import (
	"fmt"
	"time"

	"bloom-engine/bloom"
	"bloom-engine/core"
)

// statsOverlay accumulates frame counts and pushes a one-line summary to the
// window title roughly once a second.
type statsOverlay struct {
	frames int
	since  time.Time
}

func newStatsOverlay() *statsOverlay {
	return &statsOverlay{since: time.Now()}
}

func (s *statsOverlay) tick(window *core.Window, params bloom.Params) {
	s.frames++
	elapsed := time.Since(s.since)
	if elapsed < time.Second {
		return
	}

	fps := float64(s.frames) / elapsed.Seconds()
	title := fmt.Sprintf("Bloom Engine Demo — %.0f fps — %s", fps, params.Mode)
	if params.Debug {
		title += " (debug view)"
	}
	window.SetTitle(title)

	s.frames = 0
	s.since = time.Now()
}
