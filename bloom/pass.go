package bloom

// Pass selects one stage of the external shader program set. The numeric
// values are the wire contract with the shaders: indices 0-6 must keep their
// meaning and order.
type Pass int

const (
	PassDownsample      Pass = iota // 0: half-resolution downsample step
	PassMaskExtract                 // 1: luminance mask extraction
	PassBlurHorizontal              // 2: separable blur, horizontal axis
	PassBlurVertical                // 3: separable blur, vertical axis
	PassCompositeScreen             // 4: bloom-over-base composite, screen blend
	PassCompositeAdd                // 5: bloom-over-base composite, additive blend
	PassMaskedQuad                  // 6: stencil-masked full-screen quad
)

func (p Pass) String() string {
	switch p {
	case PassDownsample:
		return "downsample"
	case PassMaskExtract:
		return "mask-extract"
	case PassBlurHorizontal:
		return "blur-horizontal"
	case PassBlurVertical:
		return "blur-vertical"
	case PassCompositeScreen:
		return "composite-screen"
	case PassCompositeAdd:
		return "composite-add"
	case PassMaskedQuad:
		return "masked-quad"
	}
	return "unknown"
}

// blendPass maps a blend mode to its composite pass. Unrecognised modes fall
// back to the screen blend.
func blendPass(mode Mode) Pass {
	switch mode {
	case ModeAdd:
		return PassCompositeAdd
	default:
		return PassCompositeScreen
	}
}
