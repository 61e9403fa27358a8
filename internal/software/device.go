// Package software is a CPU implementation of the bloom.Device backend. It
// mirrors the GPU pass semantics on plain images so the pipeline can run and
// be tested headless, without a GL context.
package software

import (
	"errors"
	"fmt"
	"image"

	"bloom-engine/bloom"
)

// ErrExhausted is the allocator-exhaustion failure injected via
// Device.FailAt. The real cache fails with whatever the platform reports;
// either way the pipeline propagates it and drops the frame.
var ErrExhausted = errors.New("software: buffer cache exhausted")

// Buffer is a CPU frame buffer: an RGBA pixel plane plus, for depth/stencil
// formats, a byte-per-pixel stencil plane.
type Buffer struct {
	width    int
	height   int
	format   bloom.Format
	samples  int
	pix      *image.RGBA
	stencil  []uint8
	bilinear bool
	released bool
}

func (b *Buffer) Width() int           { return b.width }
func (b *Buffer) Height() int          { return b.height }
func (b *Buffer) Format() bloom.Format { return b.format }
func (b *Buffer) Samples() int         { return b.samples }

// Pix exposes the colour plane, for tests and for presenting headless output.
func (b *Buffer) Pix() *image.RGBA { return b.pix }

// Stencil exposes the stencil plane (nil for colour-only formats), row-major
// one byte per pixel.
func (b *Buffer) Stencil() []uint8 { return b.stencil }

// SetStencil writes one stencil value, the way a scene render would mark
// geometry.
func (b *Buffer) SetStencil(x, y int, v uint8) {
	b.stencil[y*b.width+x] = v
}

func (b *Buffer) check() {
	if b.released {
		panic("software: buffer used after release")
	}
}

// Device implements bloom.Device on the CPU. It also instruments the buffer
// lifecycle: live-buffer accounting, an executed-pass log and an
// allocation-failure injection point, which the pipeline tests lean on.
type Device struct {
	// FailAt, when non-zero, makes the FailAt'th Acquire call (1-based,
	// counted over the Device's lifetime) fail with ErrExhausted.
	FailAt int

	// PassLog records every executed pass in order.
	PassLog []bloom.Pass

	acquires int
	live     int

	threshold  float32
	intensity  float32
	bloomTex   *Buffer
	stencilRef uint8

	targets []targetPair
}

type targetPair struct {
	color        *Buffer
	depthStencil *Buffer
}

// New returns an empty device.
func New() *Device {
	return &Device{}
}

// Live returns the number of buffers currently acquired and not yet released.
func (d *Device) Live() int { return d.live }

// Acquires returns the total number of successful Acquire calls.
func (d *Device) Acquires() int { return d.acquires }

func (d *Device) Acquire(width, height int, format bloom.Format, samples int) (bloom.Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", bloom.ErrInvalidDimension, width, height)
	}
	if d.FailAt > 0 && d.acquires+1 == d.FailAt {
		return nil, ErrExhausted
	}
	d.acquires++
	d.live++

	buf := &Buffer{
		width:   width,
		height:  height,
		format:  format,
		samples: samples,
		pix:     image.NewRGBA(image.Rect(0, 0, width, height)),
	}
	if format.HasDepthStencil() {
		buf.stencil = make([]uint8, width*height)
	}
	return buf, nil
}

func (d *Device) Release(buf bloom.Buffer) {
	b := buf.(*Buffer)
	if b.released {
		panic("software: buffer released twice")
	}
	b.released = true
	d.live--
}

func (d *Device) SetBilinear(buf bloom.Buffer) {
	b := buf.(*Buffer)
	b.check()
	b.bilinear = true
}

func (d *Device) Discard(buf bloom.Buffer) {
	b := buf.(*Buffer)
	b.check()
	for i := range b.pix.Pix {
		b.pix.Pix[i] = 0
	}
}

func (d *Device) SetMaskThreshold(threshold float32) {
	d.threshold = threshold
}

func (d *Device) SetCompositeInputs(intensity float32, bloomTex bloom.Buffer, stencilRef uint8) {
	b := bloomTex.(*Buffer)
	b.check()
	d.intensity = intensity
	d.bloomTex = b
	d.stencilRef = stencilRef
}

func (d *Device) PushTarget(color, depthStencil bloom.Buffer) {
	c := color.(*Buffer)
	ds := depthStencil.(*Buffer)
	c.check()
	ds.check()
	d.targets = append(d.targets, targetPair{color: c, depthStencil: ds})
}

func (d *Device) PopTarget() {
	if len(d.targets) == 0 {
		panic("software: PopTarget without PushTarget")
	}
	d.targets = d.targets[:len(d.targets)-1]
}
