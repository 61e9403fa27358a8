// Package bloom implements a multi-pass screen-space bloom filter with a
// stencil-based mask. Each frame the source is downsampled into a luminance
// mask, blurred with separable ping-pong passes, and composited back over the
// original frame; a stencil-equal test confines the full effect to masked
// geometry. The shader passes themselves are opaque stages executed by a
// Device backend.
package bloom

import "fmt"

// ProcessFrame runs the whole pipeline once: downsample, blur, composite.
// It is the per-frame entry point; the caller invokes it with the finished
// scene frame in src and receives the composited image in dst. Every scratch
// buffer acquired during the frame is released before returning, on every
// path including failures. No retries: a failed frame is simply dropped and
// dst holds whatever had been written so far.
func ProcessFrame(dev Device, src, dst Buffer, params Params) error {
	p := params.Clamp()

	dev.SetMaskThreshold(p.Threshold)

	seed, err := Downsample(dev, src, p.DownsampleLevel)
	if err != nil {
		return fmt.Errorf("bloom: %w", err)
	}

	if err := Blur(dev, seed, p.Iterations); err != nil {
		dev.Release(seed)
		return fmt.Errorf("bloom: %w", err)
	}

	err = Composite(dev, src, seed, p, dst)
	dev.Release(seed)
	if err != nil {
		return fmt.Errorf("bloom: %w", err)
	}
	return nil
}
