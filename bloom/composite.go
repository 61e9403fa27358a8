package bloom

import "fmt"

// Composite blends the blurred bloom buffer over src and writes the result to
// dst, honouring the stencil reference. In debug mode the bloom buffer is
// written to dst directly so the intermediate mask/blur result can be
// inspected.
//
// The blend pass covers the whole frame; the masked-quad pass then adds the
// stencil-gated contribution on top. Pixels whose stencil value differs from
// the reference therefore equal the blend pass output exactly. The quad pass
// needs the stencil marks laid down during the scene render, so colour writes
// are redirected to the scratch buffer while src's depth/stencil attachment
// stays bound.
func Composite(dev Device, src, bloomBuf Buffer, params Params, dst Buffer) error {
	if params.Debug {
		dev.SetBilinear(bloomBuf)
		dev.Copy(bloomBuf, dst)
		return nil
	}

	dev.SetCompositeInputs(params.Intensity, bloomBuf, params.StencilRef)

	tmp, err := dev.Acquire(src.Width(), src.Height(), src.Format(), src.Samples())
	if err != nil {
		return fmt.Errorf("composite: %w", err)
	}
	defer dev.Release(tmp)

	dev.SetBilinear(bloomBuf)
	dev.RunPass(blendPass(params.Mode), src, tmp)

	dev.PushTarget(tmp, src)
	dev.DrawMaskedQuad(src)
	dev.PopTarget()

	dev.Copy(tmp, dst)
	return nil
}
