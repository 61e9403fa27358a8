package bloom_test

import (
	"bytes"
	"image/color"
	"math/rand"
	"testing"

	"bloom-engine/bloom"
	"bloom-engine/internal/software"
)

func newNoiseBuffer(t *testing.T, dev *software.Device, w, h int, seed int64) bloom.Buffer {
	t.Helper()
	buf, err := dev.Acquire(w, h, bloom.FormatColor, 1)
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	rng := rand.New(rand.NewSource(seed))
	pix := buf.(*software.Buffer).Pix()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			pix.SetRGBA(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return buf
}

// blurResult runs Blur on a fresh device with deterministic content and
// returns the resulting pixels.
func blurResult(t *testing.T, iterations int) []byte {
	t.Helper()
	dev := software.New()
	buf := newNoiseBuffer(t, dev, 48, 48, 7)
	if err := bloom.Blur(dev, buf, iterations); err != nil {
		t.Fatalf("blur(%d): %v", iterations, err)
	}
	out := append([]byte(nil), pixels(buf)...)
	dev.Release(buf)
	if got := dev.Live(); got != 0 {
		t.Errorf("blur(%d): live buffers: got %d, want 0", iterations, got)
	}
	return out
}

func TestBlurZeroIterationsLeavesContentUnchanged(t *testing.T) {
	dev := software.New()
	buf := newNoiseBuffer(t, dev, 48, 48, 7)
	before := append([]byte(nil), pixels(buf)...)

	if err := bloom.Blur(dev, buf, 0); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if !bytes.Equal(before, pixels(buf)) {
		t.Errorf("zero-iteration blur changed the content")
	}
}

func TestBlurChangesContent(t *testing.T) {
	dev := software.New()
	buf := newNoiseBuffer(t, dev, 48, 48, 7)
	before := append([]byte(nil), pixels(buf)...)

	if err := bloom.Blur(dev, buf, 1); err != nil {
		t.Fatalf("blur: %v", err)
	}
	if bytes.Equal(before, pixels(buf)) {
		t.Errorf("one-iteration blur left noise untouched")
	}
}

func TestBlurIterationCap(t *testing.T) {
	capped := blurResult(t, 10)

	for _, iterations := range []int{11, 25, 1000} {
		if !bytes.Equal(capped, blurResult(t, iterations)) {
			t.Errorf("blur(%d) differs from blur(10); cap not applied", iterations)
		}
	}

	// the cap really executes 10 pairs, no more
	dev := software.New()
	buf := newNoiseBuffer(t, dev, 16, 16, 3)
	if err := bloom.Blur(dev, buf, 99); err != nil {
		t.Fatalf("blur: %v", err)
	}
	blurPasses := 0
	for _, p := range dev.PassLog {
		if p == bloom.PassBlurHorizontal || p == bloom.PassBlurVertical {
			blurPasses++
		}
	}
	if blurPasses != 20 {
		t.Errorf("blur passes executed: got %d, want 20", blurPasses)
	}
}

func TestBlurAlternatesAxes(t *testing.T) {
	dev := software.New()
	buf := newNoiseBuffer(t, dev, 16, 16, 3)
	if err := bloom.Blur(dev, buf, 3); err != nil {
		t.Fatalf("blur: %v", err)
	}

	var got []bloom.Pass
	for _, p := range dev.PassLog {
		if p == bloom.PassBlurHorizontal || p == bloom.PassBlurVertical {
			got = append(got, p)
		}
	}
	want := []bloom.Pass{
		bloom.PassBlurHorizontal, bloom.PassBlurVertical,
		bloom.PassBlurHorizontal, bloom.PassBlurVertical,
		bloom.PassBlurHorizontal, bloom.PassBlurVertical,
	}
	if len(got) != len(want) {
		t.Fatalf("blur passes: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pass %d: got %v, want %v", i, got[i], want[i])
		}
	}
}
