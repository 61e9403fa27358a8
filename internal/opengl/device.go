// Package opengl is the GPU implementation of the bloom.Device backend. It
// runs the seven fixed shader passes over OpenGL framebuffer textures and
// keeps released scratch textures in a cache keyed by size and format, so a
// steady-state frame allocates nothing.
package opengl

import (
	"fmt"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"bloom-engine/bloom"
)

// Texture is a GPU frame buffer: a colour texture plus, for depth/stencil
// formats, a combined depth-stencil renderbuffer.
type Texture struct {
	id       uint32
	rbo      uint32 // depth-stencil renderbuffer, 0 for colour-only formats
	width    int
	height   int
	format   bloom.Format
	samples  int
	released bool
}

func (t *Texture) Width() int           { return t.width }
func (t *Texture) Height() int          { return t.height }
func (t *Texture) Format() bloom.Format { return t.format }
func (t *Texture) Samples() int         { return t.samples }

// ID returns the GL texture name, for presenting the buffer outside the
// pipeline.
func (t *Texture) ID() uint32 { return t.id }

type texKey struct {
	width   int
	height  int
	format  bloom.Format
	samples int
}

type savedTarget struct {
	fbo      int32
	viewport [4]int32
}

// Device implements bloom.Device over OpenGL 4.1 core. Init must run on the
// thread that owns the GL context; all calls stay on that thread.
type Device struct {
	fbo     uint32 // draw framebuffer for pass output and target redirection
	readFBO uint32 // read side for Copy blits
	triVAO  uint32 // empty VAO for full-screen triangle passes

	passes [6]passProg
	quad   quadProg
	scene  sceneProg

	cache map[texKey][]*Texture

	targets []savedTarget

	threshold  float32
	intensity  float32
	stencilRef uint8
	bloomTex   *Texture
}

// NewDevice compiles the pass programs and prepares the framebuffer objects.
// A current GL context is required.
func NewDevice() (*Device, error) {
	d := &Device{cache: make(map[texKey][]*Texture)}

	gl.GenFramebuffers(1, &d.fbo)
	gl.GenFramebuffers(1, &d.readFBO)
	gl.GenVertexArrays(1, &d.triVAO)

	if err := d.initPasses(); err != nil {
		return nil, fmt.Errorf("opengl device: %w", err)
	}
	if err := d.initScene(); err != nil {
		return nil, fmt.Errorf("opengl device: %w", err)
	}
	return d, nil
}

func (d *Device) Acquire(width, height int, format bloom.Format, samples int) (bloom.Buffer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", bloom.ErrInvalidDimension, width, height)
	}

	key := texKey{width: width, height: height, format: format, samples: samples}
	if free := d.cache[key]; len(free) > 0 {
		tex := free[len(free)-1]
		d.cache[key] = free[:len(free)-1]
		tex.released = false
		// cached textures may have been left bilinear by a previous frame
		gl.BindTexture(gl.TEXTURE_2D, tex.id)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
		gl.BindTexture(gl.TEXTURE_2D, 0)
		return tex, nil
	}

	tex := &Texture{width: width, height: height, format: format, samples: samples}

	gl.GenTextures(1, &tex.id)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA8,
		int32(width), int32(height), 0, gl.RGBA, gl.UNSIGNED_BYTE, nil)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.NEAREST)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.BindTexture(gl.TEXTURE_2D, 0)

	if format.HasDepthStencil() {
		gl.GenRenderbuffers(1, &tex.rbo)
		gl.BindRenderbuffer(gl.RENDERBUFFER, tex.rbo)
		gl.RenderbufferStorage(gl.RENDERBUFFER, gl.DEPTH24_STENCIL8,
			int32(width), int32(height))
		gl.BindRenderbuffer(gl.RENDERBUFFER, 0)
	}

	return tex, nil
}

func (d *Device) Release(buf bloom.Buffer) {
	tex := buf.(*Texture)
	if tex.released {
		panic("opengl: buffer released twice")
	}
	tex.released = true

	key := texKey{width: tex.width, height: tex.height, format: tex.format, samples: tex.samples}
	d.cache[key] = append(d.cache[key], tex)
}

func (d *Device) SetBilinear(buf bloom.Buffer) {
	tex := buf.(*Texture)
	gl.BindTexture(gl.TEXTURE_2D, tex.id)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	gl.BindTexture(gl.TEXTURE_2D, 0)
}

// Discard is a no-op on the GPU: every pass writes the full surface, so the
// stale contents are simply overwritten.
func (d *Device) Discard(buf bloom.Buffer) {}

func (d *Device) Copy(src, dst bloom.Buffer) {
	s := src.(*Texture)
	t := dst.(*Texture)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, d.readFBO)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, s.id, 0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, d.fbo)
	gl.FramebufferTexture2D(gl.DRAW_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.id, 0)

	filter := int32(gl.NEAREST)
	if s.width != t.width || s.height != t.height {
		filter = gl.LINEAR
	}
	gl.BlitFramebuffer(0, 0, int32(s.width), int32(s.height),
		0, 0, int32(t.width), int32(t.height),
		gl.COLOR_BUFFER_BIT, uint32(filter))

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
}

func (d *Device) PushTarget(color, depthStencil bloom.Buffer) {
	c := color.(*Texture)
	ds := depthStencil.(*Texture)

	var saved savedTarget
	gl.GetIntegerv(gl.FRAMEBUFFER_BINDING, &saved.fbo)
	gl.GetIntegerv(gl.VIEWPORT, &saved.viewport[0])
	d.targets = append(d.targets, saved)

	gl.BindFramebuffer(gl.FRAMEBUFFER, d.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, c.id, 0)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, ds.rbo)
	gl.Viewport(0, 0, int32(c.width), int32(c.height))
}

func (d *Device) PopTarget() {
	if len(d.targets) == 0 {
		panic("opengl: PopTarget without PushTarget")
	}
	saved := d.targets[len(d.targets)-1]
	d.targets = d.targets[:len(d.targets)-1]

	// detach the borrowed depth/stencil before handing the FBO back
	gl.BindFramebuffer(gl.FRAMEBUFFER, d.fbo)
	gl.FramebufferRenderbuffer(gl.FRAMEBUFFER, gl.DEPTH_STENCIL_ATTACHMENT, gl.RENDERBUFFER, 0)

	gl.BindFramebuffer(gl.FRAMEBUFFER, uint32(saved.fbo))
	gl.Viewport(saved.viewport[0], saved.viewport[1], saved.viewport[2], saved.viewport[3])
}

// Present blits a buffer to the default framebuffer for display.
func (d *Device) Present(buf bloom.Buffer, windowW, windowH int) {
	tex := buf.(*Texture)

	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, d.readFBO)
	gl.FramebufferTexture2D(gl.READ_FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, tex.id, 0)
	gl.BindFramebuffer(gl.DRAW_FRAMEBUFFER, 0)
	gl.BlitFramebuffer(0, 0, int32(tex.width), int32(tex.height),
		0, 0, int32(windowW), int32(windowH),
		gl.COLOR_BUFFER_BIT, gl.NEAREST)
	gl.BindFramebuffer(gl.READ_FRAMEBUFFER, 0)
}

// Destroy frees every cached texture and the device's GL objects. Buffers
// still held by callers are not touched.
func (d *Device) Destroy() {
	for key, free := range d.cache {
		for _, tex := range free {
			gl.DeleteTextures(1, &tex.id)
			if tex.rbo != 0 {
				gl.DeleteRenderbuffers(1, &tex.rbo)
			}
		}
		delete(d.cache, key)
	}
	d.destroyPasses()
	d.destroyScene()
	gl.DeleteFramebuffers(1, &d.fbo)
	gl.DeleteFramebuffers(1, &d.readFBO)
	gl.DeleteVertexArrays(1, &d.triVAO)
}
