package bloom

import "fmt"

// Downsample builds the bloom seed: src is copied, halved in resolution
// levels times, then run through the mask-extract pass. src itself is never
// mutated or resized. The returned buffer is owned by the caller, who must
// release it.
//
// Halving right-shifts each dimension; a dimension that would reach zero is
// floored at 1, so any level count is safe.
func Downsample(dev Device, src Buffer, levels int) (Buffer, error) {
	if levels < 0 {
		levels = 0
	}

	w := src.Width()
	h := src.Height()

	cur, err := dev.Acquire(w, h, src.Format(), src.Samples())
	if err != nil {
		return nil, fmt.Errorf("downsample: %w", err)
	}
	dev.SetBilinear(src)
	dev.Copy(src, cur)

	for i := 0; i < levels; i++ {
		w >>= 1
		h >>= 1
		if w < 1 {
			w = 1
		}
		if h < 1 {
			h = 1
		}

		next, err := dev.Acquire(w, h, src.Format(), src.Samples())
		if err != nil {
			dev.Release(cur)
			return nil, fmt.Errorf("downsample level %d: %w", i, err)
		}
		dev.SetBilinear(cur)
		dev.RunPass(PassDownsample, cur, next)
		dev.Release(cur)
		cur = next
	}

	mask, err := dev.Acquire(w, h, src.Format(), src.Samples())
	if err != nil {
		dev.Release(cur)
		return nil, fmt.Errorf("downsample mask: %w", err)
	}
	dev.RunPass(PassMaskExtract, cur, mask)
	dev.Release(cur)

	return mask, nil
}
