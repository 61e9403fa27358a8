package bloom_test

import (
	"bytes"
	"errors"
	"image/color"
	"testing"

	"bloom-engine/bloom"
	"bloom-engine/internal/software"
)

// newFrame acquires a w×h frame with a depth/stencil attachment, filled with
// a dark background, a bright square in the middle and stencil marks over
// that square — a miniature of what a scene render produces.
func newFrame(t *testing.T, dev *software.Device, w, h int, mark uint8) bloom.Buffer {
	t.Helper()
	buf, err := dev.Acquire(w, h, bloom.FormatColorDepthStencil, 1)
	if err != nil {
		t.Fatalf("acquire frame: %v", err)
	}
	sb := buf.(*software.Buffer)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			sb.Pix().SetRGBA(x, y, color.RGBA{R: 40, G: 40, B: 40, A: 255})
		}
	}
	// bright enough to pass the default mask threshold, dim enough that the
	// composite does not saturate every channel
	for y := h / 4; y < h/2; y++ {
		for x := w / 4; x < w/2; x++ {
			sb.Pix().SetRGBA(x, y, color.RGBA{R: 160, G: 140, B: 90, A: 255})
			sb.SetStencil(x, y, mark)
		}
	}
	return buf
}

func newDst(t *testing.T, dev *software.Device, w, h int) bloom.Buffer {
	t.Helper()
	buf, err := dev.Acquire(w, h, bloom.FormatColor, 1)
	if err != nil {
		t.Fatalf("acquire dst: %v", err)
	}
	return buf
}

func pixels(buf bloom.Buffer) []byte {
	return buf.(*software.Buffer).Pix().Pix
}

func TestProcessFrameReleasesAllBuffers(t *testing.T) {
	dev := software.New()
	src := newFrame(t, dev, 64, 64, 1)
	dst := newDst(t, dev, 64, 64)

	params := bloom.DefaultParams()
	if err := bloom.ProcessFrame(dev, src, dst, params); err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}

	// only src and dst, owned by the test, may remain live
	if got := dev.Live(); got != 2 {
		t.Errorf("live buffers after frame: got %d, want 2", got)
	}
}

func TestProcessFrameDebugReleasesAllBuffers(t *testing.T) {
	dev := software.New()
	src := newFrame(t, dev, 64, 64, 1)
	dst := newDst(t, dev, 64, 64)

	params := bloom.DefaultParams()
	params.Debug = true
	if err := bloom.ProcessFrame(dev, src, dst, params); err != nil {
		t.Fatalf("ProcessFrame debug: %v", err)
	}

	if got := dev.Live(); got != 2 {
		t.Errorf("live buffers after debug frame: got %d, want 2", got)
	}
}

// Inject an allocation failure at every possible point in the frame and
// check that the pipeline neither leaks nor double-releases.
func TestProcessFrameNoLeakUnderAllocFailure(t *testing.T) {
	// count the acquires of a clean frame first
	probe := software.New()
	src := newFrame(t, probe, 64, 64, 1)
	dst := newDst(t, probe, 64, 64)
	if err := bloom.ProcessFrame(probe, src, dst, bloom.DefaultParams()); err != nil {
		t.Fatalf("probe frame: %v", err)
	}
	frameAcquires := probe.Acquires() - 2

	for failAt := 1; failAt <= frameAcquires; failAt++ {
		dev := software.New()
		src := newFrame(t, dev, 64, 64, 1)
		dst := newDst(t, dev, 64, 64)
		dev.FailAt = dev.Acquires() + failAt

		err := bloom.ProcessFrame(dev, src, dst, bloom.DefaultParams())
		if !errors.Is(err, software.ErrExhausted) {
			t.Errorf("failAt=%d: expected exhaustion error, got %v", failAt, err)
		}
		if got := dev.Live(); got != 2 {
			t.Errorf("failAt=%d: live buffers after failed frame: got %d, want 2", failAt, got)
		}
	}
}

// In debug mode the destination is the post-blur bloom seed, bit for bit,
// whatever the blend mode or stencil reference.
func TestProcessFrameDebugOutput(t *testing.T) {
	for _, mode := range []bloom.Mode{bloom.ModeScreen, bloom.ModeAdd} {
		params := bloom.DefaultParams()
		params.DownsampleLevel = 0 // keep seed and dst the same size
		params.Iterations = 2
		params.Mode = mode
		params.Debug = true

		dev := software.New()
		src := newFrame(t, dev, 64, 64, 1)
		dst := newDst(t, dev, 64, 64)
		if err := bloom.ProcessFrame(dev, src, dst, params); err != nil {
			t.Fatalf("mode %v: %v", mode, err)
		}

		// rebuild the seed by hand on a second device
		ref := software.New()
		refSrc := newFrame(t, ref, 64, 64, 1)
		ref.SetMaskThreshold(params.Threshold)
		seed, err := bloom.Downsample(ref, refSrc, params.DownsampleLevel)
		if err != nil {
			t.Fatalf("reference downsample: %v", err)
		}
		if err := bloom.Blur(ref, seed, params.Iterations); err != nil {
			t.Fatalf("reference blur: %v", err)
		}

		if !bytes.Equal(pixels(dst), pixels(seed)) {
			t.Errorf("mode %v: debug output differs from post-blur seed", mode)
		}
		ref.Release(seed)
	}
}

// The full scenario: 256×256 source, two downsample levels, one blur
// iteration, additive blend, stencil reference 1. Pixels outside the stencil
// region must equal the blend-pass output exactly; pixels inside must carry
// the extra masked-quad contribution.
func TestProcessFrameEndToEnd(t *testing.T) {
	params := bloom.DefaultParams()
	params.DownsampleLevel = 2
	params.Iterations = 1
	params.Intensity = 0.4
	params.Mode = bloom.ModeAdd
	params.StencilRef = 1
	params.Debug = false

	dev := software.New()
	src := newFrame(t, dev, 256, 256, 1)
	dst := newDst(t, dev, 256, 256)

	if err := bloom.ProcessFrame(dev, src, dst, params); err != nil {
		t.Fatalf("ProcessFrame: %v", err)
	}

	if dst.Width() != 256 || dst.Height() != 256 {
		t.Fatalf("dst dimensions: got %dx%d, want 256x256", dst.Width(), dst.Height())
	}

	usedAdd := false
	for _, p := range dev.PassLog {
		if p == bloom.PassCompositeAdd {
			usedAdd = true
		}
		if p == bloom.PassCompositeScreen {
			t.Errorf("screen pass executed in add mode")
		}
	}
	if !usedAdd {
		t.Errorf("additive composite pass never executed")
	}

	// reference: blend pass only, no masked quad
	ref := software.New()
	refSrc := newFrame(t, ref, 256, 256, 1)
	ref.SetMaskThreshold(params.Threshold)
	seed, err := bloom.Downsample(ref, refSrc, params.DownsampleLevel)
	if err != nil {
		t.Fatalf("reference downsample: %v", err)
	}
	if err := bloom.Blur(ref, seed, params.Iterations); err != nil {
		t.Fatalf("reference blur: %v", err)
	}
	blendOnly := newDst(t, ref, 256, 256)
	ref.SetCompositeInputs(params.Intensity, seed, params.StencilRef)
	ref.SetBilinear(seed)
	ref.RunPass(bloom.PassCompositeAdd, refSrc, blendOnly)
	ref.Release(seed)

	got := dst.(*software.Buffer).Pix()
	want := blendOnly.(*software.Buffer).Pix()
	stencil := src.(*software.Buffer).Stencil()

	insideDiffers := false
	for y := 0; y < 256; y++ {
		for x := 0; x < 256; x++ {
			gi := got.PixOffset(x, y)
			wi := want.PixOffset(x, y)
			same := bytes.Equal(got.Pix[gi:gi+4], want.Pix[wi:wi+4])

			if stencil[y*256+x] == params.StencilRef {
				if !same {
					insideDiffers = true
				}
			} else if !same {
				t.Fatalf("pixel (%d,%d) outside stencil region differs from blend output", x, y)
			}
		}
	}
	if !insideDiffers {
		t.Errorf("no pixel in the stencil region shows the masked-quad contribution")
	}
}
