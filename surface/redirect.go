// Package surface manages redirection of the camera's output into an
// off-screen buffer that is mirrored onto a display sink (for example a UI
// panel showing the rendered view). The redirection buffer is the only state
// that survives across frames; everything else in the pipeline is
// frame-scoped.
package surface

import (
	"fmt"

	"bloom-engine/bloom"
)

// Sink is the presentation surface that displays the redirected buffer. It
// holds a reference to the buffer's texture only between SetTexture and
// ClearTexture.
type Sink interface {
	SetTexture(buf bloom.Buffer)
	ClearTexture()
}

// Redirector tracks whether camera output should currently be captured
// off-screen, and owns the capture buffer. Update must be called once per
// tick with the current screen dimensions; it compares the requested state
// against the active one and performs the enable/disable or resize
// transition.
type Redirector struct {
	dev    bloom.Device
	sink   Sink
	format bloom.Format

	enabled bool
	active  bool
	target  bloom.Buffer
}

// NewRedirector wires a redirector to the device that allocates capture
// buffers and the sink that displays them.
func NewRedirector(dev bloom.Device, sink Sink, format bloom.Format) *Redirector {
	return &Redirector{
		dev:    dev,
		sink:   sink,
		format: format,
	}
}

// SetEnabled requests that redirection be turned on or off. The transition
// happens on the next Update call.
func (r *Redirector) SetEnabled(enabled bool) {
	r.enabled = enabled
}

// Active reports whether a capture buffer is currently live.
func (r *Redirector) Active() bool {
	return r.active
}

// Target returns the current capture buffer, or nil when redirection is off.
// The camera should render into this buffer while redirection is active.
func (r *Redirector) Target() bloom.Buffer {
	return r.target
}

// Update reconciles the requested redirection state with the active one.
// On a screen-size change the capture buffer is replaced: the new buffer is
// constructed and wired into the sink first, and only then is the old one
// released, so the sink never references a dead buffer.
func (r *Redirector) Update(width, height int) error {
	switch {
	case r.enabled && !r.active:
		buf, err := r.dev.Acquire(width, height, r.format, 1)
		if err != nil {
			return fmt.Errorf("redirect enable: %w", err)
		}
		r.target = buf
		r.sink.SetTexture(buf)
		r.active = true

	case !r.enabled && r.active:
		r.sink.ClearTexture()
		r.dev.Release(r.target)
		r.target = nil
		r.active = false

	case r.active && (r.target.Width() != width || r.target.Height() != height):
		buf, err := r.dev.Acquire(width, height, r.format, 1)
		if err != nil {
			return fmt.Errorf("redirect resize: %w", err)
		}
		old := r.target
		r.target = buf
		r.sink.SetTexture(buf)
		r.dev.Release(old)
	}
	return nil
}

// Close tears down any active redirection.
func (r *Redirector) Close() {
	if r.active {
		r.sink.ClearTexture()
		r.dev.Release(r.target)
		r.target = nil
		r.active = false
	}
}
