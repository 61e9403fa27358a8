package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"bloom-engine/bloom"
	"bloom-engine/math"
)

// ── Pass shaders ──────────────────────────────────────────────────────────────

// triVertSrc — full-screen triangle via gl_VertexID (no VBO needed). Shared
// by passes 0-5.
const triVertSrc = `
#version 410 core
out vec2 fragUV;
void main() {
    const vec2 pos[3] = vec2[3](
        vec2(-1.0, -1.0),
        vec2( 3.0, -1.0),
        vec2(-1.0,  3.0)
    );
    gl_Position = vec4(pos[gl_VertexID], 0.0, 1.0);
    fragUV      = pos[gl_VertexID] * 0.5 + 0.5;
}
` + "\x00"

// downsampleFragSrc — plain resample; the bilinear sampler on the source
// averages the four covered texels at half resolution.
const downsampleFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D srcTex;

void main() {
    outColor = texture(srcTex, fragUV);
}
` + "\x00"

// maskFragSrc — keeps pixels whose luminance reaches the threshold.
const maskFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D srcTex;
uniform float     threshold;

void main() {
    vec3  color = texture(srcTex, fragUV).rgb;
    float luma  = dot(color, vec3(0.2126, 0.7152, 0.0722));
    outColor = vec4(color * step(threshold, luma), 1.0);
}
` + "\x00"

// blurFragSrc — single-axis 5-tap Gaussian blur.
// texelDir = (1/w, 0) for horizontal, (0, 1/h) for vertical.
const blurFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D srcTex;
uniform vec2      texelDir;

void main() {
    const float w[5] = float[](0.0625, 0.25, 0.375, 0.25, 0.0625);
    vec3 result = vec3(0.0);
    for (int i = -2; i <= 2; i++) {
        result += texture(srcTex, fragUV + float(i) * texelDir).rgb * w[i + 2];
    }
    outColor = vec4(result, 1.0);
}
` + "\x00"

// screenFragSrc — screen blend of the bloom over the base frame.
const screenFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D srcTex;
uniform sampler2D bloomTex;
uniform float     intensity;

void main() {
    vec3 base  = texture(srcTex, fragUV).rgb;
    vec3 glow  = texture(bloomTex, fragUV).rgb * intensity;
    outColor = vec4(1.0 - (1.0 - base) * (1.0 - glow), 1.0);
}
` + "\x00"

// addFragSrc — additive blend of the bloom over the base frame.
const addFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D srcTex;
uniform sampler2D bloomTex;
uniform float     intensity;

void main() {
    vec3 base = texture(srcTex, fragUV).rgb;
    vec3 glow = texture(bloomTex, fragUV).rgb * intensity;
    outColor = vec4(base + glow, 1.0);
}
` + "\x00"

// quadVertSrc — unit quad under an orthographic projection, for the
// stencil-masked pass.
const quadVertSrc = `
#version 410 core
layout(location = 0) in vec2 aPos;
layout(location = 1) in vec2 aUV;

uniform mat4 uProj;

out vec2 fragUV;

void main() {
    gl_Position = uProj * vec4(aPos, 0.0, 1.0);
    fragUV      = aUV;
}
` + "\x00"

// quadFragSrc — emits the bloom contribution; framebuffer blending adds it
// on top of the pixels that pass the stencil test.
const quadFragSrc = `
#version 410 core
in  vec2 fragUV;
out vec4 outColor;

uniform sampler2D bloomTex;
uniform float     intensity;

void main() {
    outColor = vec4(texture(bloomTex, fragUV).rgb * intensity, 1.0);
}
` + "\x00"

// ── Pass programs ─────────────────────────────────────────────────────────────

type passProg struct {
	prog         uint32
	texelLoc     int32
	thresholdLoc int32
	intensityLoc int32
}

type quadProg struct {
	prog         uint32
	projLoc      int32
	intensityLoc int32
	vao          uint32
	vbo          uint32
}

func (d *Device) initPasses() error {
	frag := [6]struct {
		name string
		src  string
	}{
		{"downsample", downsampleFragSrc},
		{"mask-extract", maskFragSrc},
		{"blur-horizontal", blurFragSrc},
		{"blur-vertical", blurFragSrc},
		{"composite-screen", screenFragSrc},
		{"composite-add", addFragSrc},
	}

	for i := range frag {
		prog, err := newProgram(triVertSrc, frag[i].src)
		if err != nil {
			return fmt.Errorf("%s shader: %w", frag[i].name, err)
		}
		p := &d.passes[i]
		p.prog = prog
		p.texelLoc = gl.GetUniformLocation(prog, gl.Str("texelDir\x00"))
		p.thresholdLoc = gl.GetUniformLocation(prog, gl.Str("threshold\x00"))
		p.intensityLoc = gl.GetUniformLocation(prog, gl.Str("intensity\x00"))

		gl.UseProgram(prog)
		gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("srcTex\x00")), 0)
		gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("bloomTex\x00")), 1)
	}

	prog, err := newProgram(quadVertSrc, quadFragSrc)
	if err != nil {
		return fmt.Errorf("masked-quad shader: %w", err)
	}
	d.quad.prog = prog
	d.quad.projLoc = gl.GetUniformLocation(prog, gl.Str("uProj\x00"))
	d.quad.intensityLoc = gl.GetUniformLocation(prog, gl.Str("intensity\x00"))
	gl.UseProgram(prog)
	gl.Uniform1i(gl.GetUniformLocation(prog, gl.Str("bloomTex\x00")), 1)

	// unit quad (0,0)-(1,1), two triangles, interleaved position + uv
	verts := []float32{
		0, 0, 0, 0,
		1, 0, 1, 0,
		1, 1, 1, 1,
		0, 0, 0, 0,
		1, 1, 1, 1,
		0, 1, 0, 1,
	}
	gl.GenVertexArrays(1, &d.quad.vao)
	gl.GenBuffers(1, &d.quad.vbo)
	gl.BindVertexArray(d.quad.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, d.quad.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(verts)*4, gl.Ptr(verts), gl.STATIC_DRAW)
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 16, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 16, gl.PtrOffset(8))
	gl.BindVertexArray(0)

	return nil
}

func (d *Device) destroyPasses() {
	for i := range d.passes {
		if d.passes[i].prog != 0 {
			gl.DeleteProgram(d.passes[i].prog)
			d.passes[i].prog = 0
		}
	}
	if d.quad.prog != 0 {
		gl.DeleteProgram(d.quad.prog)
		d.quad.prog = 0
	}
	if d.quad.vbo != 0 {
		gl.DeleteBuffers(1, &d.quad.vbo)
		d.quad.vbo = 0
	}
	if d.quad.vao != 0 {
		gl.DeleteVertexArrays(1, &d.quad.vao)
		d.quad.vao = 0
	}
}

func (d *Device) SetMaskThreshold(threshold float32) {
	d.threshold = threshold
}

func (d *Device) SetCompositeInputs(intensity float32, bloomTex bloom.Buffer, stencilRef uint8) {
	d.intensity = intensity
	d.bloomTex = bloomTex.(*Texture)
	d.stencilRef = stencilRef
}

func (d *Device) RunPass(pass bloom.Pass, src, dst bloom.Buffer) {
	if pass < 0 || int(pass) >= len(d.passes) {
		panic(fmt.Sprintf("opengl: pass %d not runnable via RunPass", pass))
	}
	s := src.(*Texture)
	t := dst.(*Texture)
	p := &d.passes[pass]

	gl.BindFramebuffer(gl.FRAMEBUFFER, d.fbo)
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, gl.COLOR_ATTACHMENT0, gl.TEXTURE_2D, t.id, 0)
	gl.Viewport(0, 0, int32(t.width), int32(t.height))
	gl.Disable(gl.DEPTH_TEST)
	gl.Disable(gl.STENCIL_TEST)
	gl.Disable(gl.BLEND)

	gl.UseProgram(p.prog)

	switch pass {
	case bloom.PassMaskExtract:
		gl.Uniform1f(p.thresholdLoc, d.threshold)
	case bloom.PassBlurHorizontal:
		gl.Uniform2f(p.texelLoc, 1.0/float32(s.width), 0)
	case bloom.PassBlurVertical:
		gl.Uniform2f(p.texelLoc, 0, 1.0/float32(s.height))
	case bloom.PassCompositeScreen, bloom.PassCompositeAdd:
		gl.Uniform1f(p.intensityLoc, d.intensity)
		gl.ActiveTexture(gl.TEXTURE1)
		gl.BindTexture(gl.TEXTURE_2D, d.bloomTex.id)
	}

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.id)

	gl.BindVertexArray(d.triVAO)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
	gl.BindVertexArray(0)

	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
}

// DrawMaskedQuad draws the unit quad onto the current render target with the
// stencil test restricting writes to pixels whose stencil value equals the
// configured reference. The bloom contribution accumulates via additive
// framebuffer blending; src stays bound as the base texture for the pass.
func (d *Device) DrawMaskedQuad(src bloom.Buffer) {
	s := src.(*Texture)

	gl.UseProgram(d.quad.prog)

	proj := math.Mat4Orthographic(0, 1, 0, 1, -1, 1)
	gl.UniformMatrix4fv(d.quad.projLoc, 1, false, (*float32)(unsafe.Pointer(&proj[0][0])))
	gl.Uniform1f(d.quad.intensityLoc, d.intensity)

	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, s.id)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, d.bloomTex.id)

	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.STENCIL_TEST)
	gl.StencilFunc(gl.EQUAL, int32(d.stencilRef), 0xFF)
	gl.StencilOp(gl.KEEP, gl.KEEP, gl.KEEP)
	gl.StencilMask(0x00)

	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE)

	gl.BindVertexArray(d.quad.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 6)
	gl.BindVertexArray(0)

	gl.Disable(gl.BLEND)
	gl.Disable(gl.STENCIL_TEST)
	gl.StencilMask(0xFF)
}
