package software

import (
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/blend"
	"github.com/chewxy/math32"
	xdraw "golang.org/x/image/draw"

	"bloom-engine/bloom"
)

// blurKernel is the 5-tap separable Gaussian used by the blur passes, one
// axis per pass.
var blurKernel = [5]float32{0.0625, 0.25, 0.375, 0.25, 0.0625}

func (d *Device) Copy(src, dst bloom.Buffer) {
	s := src.(*Buffer)
	t := dst.(*Buffer)
	s.check()
	t.check()

	if s.width == t.width && s.height == t.height {
		copy(t.pix.Pix, s.pix.Pix)
		return
	}
	scaler(s).Scale(t.pix, t.pix.Bounds(), s.pix, s.pix.Bounds(), xdraw.Src, nil)
}

func (d *Device) RunPass(pass bloom.Pass, src, dst bloom.Buffer) {
	s := src.(*Buffer)
	t := dst.(*Buffer)
	s.check()
	t.check()
	d.PassLog = append(d.PassLog, pass)

	switch pass {
	case bloom.PassDownsample:
		scaler(s).Scale(t.pix, t.pix.Bounds(), s.pix, s.pix.Bounds(), xdraw.Src, nil)

	case bloom.PassMaskExtract:
		maskExtract(s.pix, t.pix, d.threshold)

	case bloom.PassBlurHorizontal:
		blurAxis(s.pix, t.pix, 1, 0)

	case bloom.PassBlurVertical:
		blurAxis(s.pix, t.pix, 0, 1)

	case bloom.PassCompositeScreen:
		up := d.scaledBloom(t.width, t.height)
		copy(t.pix.Pix, blend.Screen(s.pix, up).Pix)

	case bloom.PassCompositeAdd:
		up := d.scaledBloom(t.width, t.height)
		copy(t.pix.Pix, blend.Add(s.pix, up).Pix)

	default:
		panic(fmt.Sprintf("software: pass %d not runnable via RunPass", pass))
	}
}

func (d *Device) DrawMaskedQuad(src bloom.Buffer) {
	s := src.(*Buffer)
	s.check()
	if len(d.targets) == 0 {
		panic("software: DrawMaskedQuad without a render target")
	}
	d.PassLog = append(d.PassLog, bloom.PassMaskedQuad)

	target := d.targets[len(d.targets)-1]
	c := target.color
	stencil := target.depthStencil.stencil

	up := d.scaledBloom(c.width, c.height)

	for y := 0; y < c.height; y++ {
		for x := 0; x < c.width; x++ {
			var mark uint8
			if stencil != nil {
				mark = stencil[y*c.width+x]
			}
			if mark != d.stencilRef {
				continue
			}
			ci := c.pix.PixOffset(x, y)
			ui := up.PixOffset(x, y)
			for ch := 0; ch < 3; ch++ {
				c.pix.Pix[ci+ch] = clamp8(float32(c.pix.Pix[ci+ch]) + float32(up.Pix[ui+ch]))
			}
		}
	}
}

// scaledBloom upscales the bound bloom texture to w×h and applies the blend
// intensity, producing the per-pixel bloom contribution for the composite
// and masked-quad passes.
func (d *Device) scaledBloom(w, h int) *image.RGBA {
	if d.bloomTex == nil {
		panic("software: composite pass without SetCompositeInputs")
	}
	d.bloomTex.check()

	up := image.NewRGBA(image.Rect(0, 0, w, h))
	scaler(d.bloomTex).Scale(up, up.Bounds(), d.bloomTex.pix, d.bloomTex.pix.Bounds(), xdraw.Src, nil)

	for i := 0; i < len(up.Pix); i += 4 {
		up.Pix[i+0] = clamp8(float32(up.Pix[i+0]) * d.intensity)
		up.Pix[i+1] = clamp8(float32(up.Pix[i+1]) * d.intensity)
		up.Pix[i+2] = clamp8(float32(up.Pix[i+2]) * d.intensity)
		up.Pix[i+3] = 255
	}
	return up
}

func scaler(src *Buffer) xdraw.Scaler {
	if src.bilinear {
		return xdraw.BiLinear
	}
	return xdraw.NearestNeighbor
}

// maskExtract keeps pixels whose luminance reaches the threshold and zeroes
// the rest, the bright-pass that seeds the bloom.
func maskExtract(src, dst *image.RGBA, threshold float32) {
	for i := 0; i < len(src.Pix); i += 4 {
		r := float32(src.Pix[i+0]) / 255
		g := float32(src.Pix[i+1]) / 255
		b := float32(src.Pix[i+2]) / 255
		luma := 0.2126*r + 0.7152*g + 0.0722*b

		if luma >= threshold {
			dst.Pix[i+0] = src.Pix[i+0]
			dst.Pix[i+1] = src.Pix[i+1]
			dst.Pix[i+2] = src.Pix[i+2]
		} else {
			dst.Pix[i+0] = 0
			dst.Pix[i+1] = 0
			dst.Pix[i+2] = 0
		}
		dst.Pix[i+3] = 255
	}
}

// blurAxis applies the 5-tap kernel along one axis with edge clamping.
func blurAxis(src, dst *image.RGBA, dx, dy int) {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var r, g, b float32
			for k := -2; k <= 2; k++ {
				sx := clampInt(x+k*dx, 0, w-1)
				sy := clampInt(y+k*dy, 0, h-1)
				si := src.PixOffset(sx, sy)
				wk := blurKernel[k+2]
				r += float32(src.Pix[si+0]) * wk
				g += float32(src.Pix[si+1]) * wk
				b += float32(src.Pix[si+2]) * wk
			}
			di := dst.PixOffset(x, y)
			dst.Pix[di+0] = clamp8(r)
			dst.Pix[di+1] = clamp8(g)
			dst.Pix[di+2] = clamp8(b)
			dst.Pix[di+3] = src.Pix[src.PixOffset(x, y)+3]
		}
	}
}

func clamp8(v float32) uint8 {
	return uint8(math32.Min(255, math32.Max(0, math32.Round(v))))
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
