package surface_test

import (
	"testing"

	"bloom-engine/bloom"
	"bloom-engine/internal/software"
	"bloom-engine/surface"
)

// recordingSink records every texture transition so tests can check the
// wiring order during enable/disable/resize.
type recordingSink struct {
	current bloom.Buffer
	sets    int
	clears  int
}

func (s *recordingSink) SetTexture(buf bloom.Buffer) {
	s.current = buf
	s.sets++
}

func (s *recordingSink) ClearTexture() {
	s.current = nil
	s.clears++
}

func TestRedirectorEnableDisable(t *testing.T) {
	dev := software.New()
	sink := &recordingSink{}
	r := surface.NewRedirector(dev, sink, bloom.FormatColorDepthStencil)

	if r.Active() || r.Target() != nil {
		t.Fatalf("redirector active before enable")
	}

	// requesting has no effect until Update runs
	r.SetEnabled(true)
	if r.Active() {
		t.Fatalf("redirector active before Update")
	}

	if err := r.Update(640, 480); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !r.Active() {
		t.Errorf("redirector not active after enable")
	}
	if r.Target() == nil {
		t.Fatalf("no capture buffer after enable")
	}
	if r.Target().Width() != 640 || r.Target().Height() != 480 {
		t.Errorf("capture buffer: got %dx%d, want 640x480", r.Target().Width(), r.Target().Height())
	}
	if sink.current != r.Target() {
		t.Errorf("sink not wired to the capture buffer")
	}
	if got := dev.Live(); got != 1 {
		t.Errorf("live buffers while active: got %d, want 1", got)
	}

	r.SetEnabled(false)
	if err := r.Update(640, 480); err != nil {
		t.Fatalf("update: %v", err)
	}
	if r.Active() || r.Target() != nil {
		t.Errorf("redirector still active after disable")
	}
	if sink.current != nil {
		t.Errorf("sink still references a texture after disable")
	}
	if got := dev.Live(); got != 0 {
		t.Errorf("live buffers after disable: got %d, want 0", got)
	}
}

func TestRedirectorResizeSwapsBuffer(t *testing.T) {
	dev := software.New()
	sink := &recordingSink{}
	r := surface.NewRedirector(dev, sink, bloom.FormatColor)

	r.SetEnabled(true)
	if err := r.Update(640, 480); err != nil {
		t.Fatalf("enable: %v", err)
	}
	old := r.Target()

	if err := r.Update(800, 600); err != nil {
		t.Fatalf("resize: %v", err)
	}
	if r.Target() == old {
		t.Errorf("capture buffer not replaced on resize")
	}
	if r.Target().Width() != 800 || r.Target().Height() != 600 {
		t.Errorf("capture buffer: got %dx%d, want 800x600", r.Target().Width(), r.Target().Height())
	}
	if sink.current != r.Target() {
		t.Errorf("sink not rewired to the new buffer")
	}
	if sink.sets != 2 || sink.clears != 0 {
		t.Errorf("sink transitions: got %d sets / %d clears, want 2 / 0", sink.sets, sink.clears)
	}
	// the old buffer must be back in the pool
	if got := dev.Live(); got != 1 {
		t.Errorf("live buffers after resize: got %d, want 1", got)
	}
}

func TestRedirectorUpdateStableSize(t *testing.T) {
	dev := software.New()
	sink := &recordingSink{}
	r := surface.NewRedirector(dev, sink, bloom.FormatColor)

	r.SetEnabled(true)
	if err := r.Update(640, 480); err != nil {
		t.Fatalf("enable: %v", err)
	}
	target := r.Target()

	for i := 0; i < 5; i++ {
		if err := r.Update(640, 480); err != nil {
			t.Fatalf("update %d: %v", i, err)
		}
	}
	if r.Target() != target {
		t.Errorf("capture buffer churned without a size change")
	}
	if got := dev.Acquires(); got != 1 {
		t.Errorf("acquires: got %d, want 1", got)
	}
}

func TestRedirectorEnableFailure(t *testing.T) {
	dev := software.New()
	dev.FailAt = 1
	sink := &recordingSink{}
	r := surface.NewRedirector(dev, sink, bloom.FormatColor)

	r.SetEnabled(true)
	if err := r.Update(640, 480); err == nil {
		t.Fatalf("expected enable failure")
	}
	if r.Active() || r.Target() != nil {
		t.Errorf("redirector claims to be active after a failed enable")
	}
	if sink.sets != 0 {
		t.Errorf("sink wired despite failed enable")
	}

	// a later Update may retry once allocations succeed again
	dev.FailAt = 0
	if err := r.Update(640, 480); err != nil {
		t.Fatalf("retry: %v", err)
	}
	if !r.Active() {
		t.Errorf("redirector not active after successful retry")
	}
}

func TestRedirectorClose(t *testing.T) {
	dev := software.New()
	sink := &recordingSink{}
	r := surface.NewRedirector(dev, sink, bloom.FormatColor)

	r.SetEnabled(true)
	if err := r.Update(320, 240); err != nil {
		t.Fatalf("enable: %v", err)
	}

	r.Close()
	if r.Active() || r.Target() != nil {
		t.Errorf("redirector still active after Close")
	}
	if sink.current != nil {
		t.Errorf("sink still references a texture after Close")
	}
	if got := dev.Live(); got != 0 {
		t.Errorf("live buffers after Close: got %d, want 0", got)
	}

	// Close on an inactive redirector is a no-op
	r.Close()
	if sink.clears != 1 {
		t.Errorf("clears after double Close: got %d, want 1", sink.clears)
	}
}
