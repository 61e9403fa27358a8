package bloom

import "errors"

// ErrInvalidDimension is returned by Device.Acquire when a scratch buffer is
// requested with a non-positive width or height. Frame dimensions are always
// positive so this indicates a caller bug, but it must be rejected rather
// than handed to the allocator.
var ErrInvalidDimension = errors.New("invalid buffer dimension")

// Format describes the pixel storage of a frame buffer.
type Format int

const (
	// FormatColor is an 8-bit RGBA colour surface.
	FormatColor Format = iota

	// FormatColorDepthStencil is an 8-bit RGBA colour surface with a
	// combined depth/stencil attachment.
	FormatColorDepthStencil
)

// HasDepthStencil reports whether buffers of this format carry a
// depth/stencil attachment.
func (f Format) HasDepthStencil() bool {
	return f == FormatColorDepthStencil
}

// Buffer is a 2D pixel surface owned by a Device. Buffers are temporary:
// every buffer obtained from Device.Acquire must be released exactly once,
// and never used after release.
type Buffer interface {
	Width() int
	Height() int
	Format() Format
	Samples() int
}

// Device is the rendering backend the bloom pipeline runs against. It owns
// the temporary-buffer cache and executes the fixed shader passes; the
// pipeline only sequences them. Two implementations exist: internal/opengl
// for GPU rendering and internal/software for headless/CPU use.
type Device interface {
	// Acquire returns a scratch buffer of the given size and format from
	// the temporary-buffer cache. Fails with ErrInvalidDimension for
	// non-positive dimensions; allocator exhaustion propagates as-is.
	Acquire(width, height int, format Format, samples int) (Buffer, error)

	// Release returns a buffer to the cache. Each acquired buffer must be
	// released exactly once.
	Release(buf Buffer)

	// Copy writes src's colour content into dst. When the dimensions
	// differ the content is scaled, bilinearly if src has bilinear
	// sampling enabled.
	Copy(src, dst Buffer)

	// SetBilinear enables bilinear sampling on buf for subsequent passes
	// that read from it.
	SetBilinear(buf Buffer)

	// Discard marks buf's current contents as dead. Called on a ping-pong
	// destination before it is overwritten by a full-surface pass.
	Discard(buf Buffer)

	// RunPass executes one shader pass reading src and writing every
	// pixel of dst.
	RunPass(pass Pass, src, dst Buffer)

	// SetMaskThreshold sets the luminance cut-off used by PassMaskExtract.
	SetMaskThreshold(threshold float32)

	// SetCompositeInputs binds the uniforms consumed by the composite and
	// masked-quad passes: blend intensity, the blurred bloom texture and
	// the stencil reference value.
	SetCompositeInputs(intensity float32, bloomTex Buffer, stencilRef uint8)

	// PushTarget redirects colour writes to color while the depth/stencil
	// attachment of depthStencil stays bound, so stencil tests see the
	// marks written during the original scene render. The previous target
	// is saved and restored by PopTarget.
	PushTarget(color, depthStencil Buffer)

	// PopTarget restores the render target saved by the matching
	// PushTarget.
	PopTarget()

	// DrawMaskedQuad draws a full-screen quad (corners (0,0)-(1,1) under
	// an orthographic projection) onto the current target with src bound
	// as the main texture. The pass applies a stencil-equal test against
	// the configured reference: matching pixels accumulate the bloom
	// contribution, all other pixels are left untouched.
	DrawMaskedQuad(src Buffer)
}
