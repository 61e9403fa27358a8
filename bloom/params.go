package bloom

// Mode selects how the blurred bloom is blended over the base frame.
type Mode int

const (
	// ModeScreen blends with screen compositing: 1-(1-base)*(1-bloom).
	// Soft, never over-saturates.
	ModeScreen Mode = iota

	// ModeAdd blends additively: base + bloom*intensity. Stronger glow,
	// clips at white.
	ModeAdd
)

func (m Mode) String() string {
	switch m {
	case ModeScreen:
		return "screen"
	case ModeAdd:
		return "add"
	}
	return "unknown"
}

// Params is the per-frame snapshot of the user-facing bloom knobs. A copy is
// clamped at the start of every frame; the blur stage additionally hard-caps
// the iteration count.
type Params struct {
	// Iterations is the number of horizontal+vertical blur pairs
	// (floor 1, capped at 10 inside the blur stage).
	Iterations int

	// DownsampleLevel halves the bloom seed resolution this many times
	// (floor 0; 0-4 is the useful range).
	DownsampleLevel int

	// Intensity scales the bloom contribution during compositing (floor 0).
	Intensity float32

	// Threshold is the luminance cut-off for the mask-extract pass.
	Threshold float32

	// StencilRef restricts full bloom application to pixels whose stencil
	// value equals this reference.
	StencilRef uint8

	// Mode is the composite blend mode.
	Mode Mode

	// Debug writes the post-blur bloom seed straight to the destination,
	// bypassing compositing. Used for inspecting the intermediate result.
	Debug bool
}

// DefaultParams returns a reasonable starting configuration.
func DefaultParams() Params {
	return Params{
		Iterations:      2,
		DownsampleLevel: 2,
		Intensity:       1.0,
		Threshold:       0.5,
		StencilRef:      1,
		Mode:            ModeScreen,
	}
}

// Clamp returns a copy of p with every knob forced into its legal range.
func (p Params) Clamp() Params {
	if p.Iterations < 1 {
		p.Iterations = 1
	}
	if p.DownsampleLevel < 0 {
		p.DownsampleLevel = 0
	}
	if p.Intensity < 0 {
		p.Intensity = 0
	}
	if p.Threshold < 0 {
		p.Threshold = 0
	}
	return p
}
