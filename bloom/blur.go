package bloom

import "fmt"

// maxBlurIterations caps the blur work per frame no matter what the caller
// asked for.
const maxBlurIterations = 10

// Blur runs iterations horizontal+vertical separable blur pairs over target,
// replacing its content in place. Filtering shaders cannot read and write the
// same surface, so the passes ping-pong between two scratch buffers and the
// result is copied back at the end. Zero iterations leaves the content
// unchanged.
func Blur(dev Device, target Buffer, iterations int) error {
	if iterations < 0 {
		iterations = 0
	}
	if iterations > maxBlurIterations {
		iterations = maxBlurIterations
	}

	a, err := dev.Acquire(target.Width(), target.Height(), target.Format(), target.Samples())
	if err != nil {
		return fmt.Errorf("blur: %w", err)
	}
	b, err := dev.Acquire(target.Width(), target.Height(), target.Format(), target.Samples())
	if err != nil {
		dev.Release(a)
		return fmt.Errorf("blur: %w", err)
	}

	dev.Copy(target, a)

	for i := 0; i < iterations; i++ {
		for _, pass := range [2]Pass{PassBlurHorizontal, PassBlurVertical} {
			dev.Discard(b)
			dev.SetBilinear(a)
			dev.RunPass(pass, a, b)
			a, b = b, a
		}
	}

	dev.Copy(a, target)
	dev.Release(a)
	dev.Release(b)
	return nil
}
