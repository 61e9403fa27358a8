package opengl

import (
	"fmt"
	"unsafe"

	gl "github.com/go-gl/gl/v4.1-core/gl"

	"bloom-engine/bloom"
	"bloom-engine/core"
	"bloom-engine/math"
	"bloom-engine/scene"
)

// sceneVertSrc / sceneFragSrc — minimal lit shader for the demo scene that
// feeds the pipeline: directional lambert plus an emissive term, so glowing
// geometry exceeds the bloom threshold.
const sceneVertSrc = `
#version 410 core
layout(location = 0) in vec3 aPos;
layout(location = 1) in vec3 aNormal;
layout(location = 2) in vec2 aUV;

uniform mat4 uMVP;
uniform mat4 uModel;

out vec3 fragNormal;

void main() {
    gl_Position = uMVP * vec4(aPos, 1.0);
    fragNormal  = mat3(uModel) * aNormal;
}
` + "\x00"

const sceneFragSrc = `
#version 410 core
in  vec3 fragNormal;
out vec4 outColor;

uniform vec4  uColor;
uniform float uEmissive;
uniform vec3  uLightDir;

void main() {
    float ndotl = max(dot(normalize(fragNormal), -normalize(uLightDir)), 0.0);
    vec3  lit   = uColor.rgb * (0.2 + 0.8 * ndotl);
    outColor = vec4(lit + uColor.rgb * uEmissive, uColor.a);
}
` + "\x00"

type sceneProg struct {
	prog        uint32
	mvpLoc      int32
	modelLoc    int32
	colorLoc    int32
	emissiveLoc int32
	lightDirLoc int32

	meshes map[*scene.Mesh]*meshBuffers
}

type meshBuffers struct {
	vao        uint32
	vbo        uint32
	ebo        uint32
	indexCount int32
}

func (d *Device) initScene() error {
	prog, err := newProgram(sceneVertSrc, sceneFragSrc)
	if err != nil {
		return fmt.Errorf("scene shader: %w", err)
	}
	d.scene.prog = prog
	d.scene.mvpLoc = gl.GetUniformLocation(prog, gl.Str("uMVP\x00"))
	d.scene.modelLoc = gl.GetUniformLocation(prog, gl.Str("uModel\x00"))
	d.scene.colorLoc = gl.GetUniformLocation(prog, gl.Str("uColor\x00"))
	d.scene.emissiveLoc = gl.GetUniformLocation(prog, gl.Str("uEmissive\x00"))
	d.scene.lightDirLoc = gl.GetUniformLocation(prog, gl.Str("uLightDir\x00"))
	d.scene.meshes = make(map[*scene.Mesh]*meshBuffers)
	return nil
}

func (d *Device) destroyScene() {
	for mesh, buf := range d.scene.meshes {
		gl.DeleteVertexArrays(1, &buf.vao)
		gl.DeleteBuffers(1, &buf.vbo)
		if buf.ebo != 0 {
			gl.DeleteBuffers(1, &buf.ebo)
		}
		delete(d.scene.meshes, mesh)
	}
	if d.scene.prog != 0 {
		gl.DeleteProgram(d.scene.prog)
		d.scene.prog = 0
	}
}

// BeginScene starts rendering the camera frame into target, which must carry
// a depth/stencil attachment. Clears colour, depth and stencil.
func (d *Device) BeginScene(target bloom.Buffer, sky core.Color, lightDir math.Vec3) {
	d.PushTarget(target, target)

	gl.ClearColor(sky.R, sky.G, sky.B, sky.A)
	gl.ClearStencil(0)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT | gl.STENCIL_BUFFER_BIT)

	gl.Enable(gl.DEPTH_TEST)
	gl.UseProgram(d.scene.prog)
	gl.Uniform3f(d.scene.lightDirLoc, lightDir.X, lightDir.Y, lightDir.Z)
}

// DrawMesh renders one mesh. A non-zero stencilMark tags every covered pixel
// with that value, which is what the masked-quad pass later tests against.
func (d *Device) DrawMesh(mesh *scene.Mesh, mvp, model math.Mat4, color core.Color, emissive float32, stencilMark uint8) {
	buf := d.uploadMesh(mesh)
	if buf == nil {
		return
	}

	if stencilMark != 0 {
		gl.Enable(gl.STENCIL_TEST)
		gl.StencilFunc(gl.ALWAYS, int32(stencilMark), 0xFF)
		gl.StencilOp(gl.KEEP, gl.KEEP, gl.REPLACE)
		gl.StencilMask(0xFF)
	} else {
		gl.Disable(gl.STENCIL_TEST)
	}

	gl.UniformMatrix4fv(d.scene.mvpLoc, 1, false, (*float32)(unsafe.Pointer(&mvp[0][0])))
	gl.UniformMatrix4fv(d.scene.modelLoc, 1, false, (*float32)(unsafe.Pointer(&model[0][0])))
	gl.Uniform4f(d.scene.colorLoc, color.R, color.G, color.B, color.A)
	gl.Uniform1f(d.scene.emissiveLoc, emissive)

	gl.BindVertexArray(buf.vao)
	gl.DrawElements(gl.TRIANGLES, buf.indexCount, gl.UNSIGNED_INT, gl.PtrOffset(0))
	gl.BindVertexArray(0)
}

// EndScene finishes the camera frame and restores the previous render target.
func (d *Device) EndScene() {
	gl.Disable(gl.STENCIL_TEST)
	gl.Disable(gl.DEPTH_TEST)
	d.PopTarget()
}

func (d *Device) uploadMesh(mesh *scene.Mesh) *meshBuffers {
	if buf, ok := d.scene.meshes[mesh]; ok {
		return buf
	}
	if len(mesh.Vertices) == 0 || len(mesh.Indices) == 0 {
		return nil
	}

	stride := int32(unsafe.Sizeof(scene.Vertex{}))
	buf := &meshBuffers{indexCount: int32(len(mesh.Indices))}

	gl.GenVertexArrays(1, &buf.vao)
	gl.GenBuffers(1, &buf.vbo)
	gl.BindVertexArray(buf.vao)

	gl.BindBuffer(gl.ARRAY_BUFFER, buf.vbo)
	gl.BufferData(gl.ARRAY_BUFFER,
		len(mesh.Vertices)*int(stride),
		gl.Ptr(mesh.Vertices),
		gl.STATIC_DRAW)

	var v scene.Vertex
	posOff := int(unsafe.Offsetof(v.Position))
	normOff := int(unsafe.Offsetof(v.Normal))
	uvOff := int(unsafe.Offsetof(v.UV))

	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(posOff))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(1, 3, gl.FLOAT, false, stride, gl.PtrOffset(normOff))
	gl.EnableVertexAttribArray(2)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(uvOff))

	gl.GenBuffers(1, &buf.ebo)
	gl.BindBuffer(gl.ELEMENT_ARRAY_BUFFER, buf.ebo)
	gl.BufferData(gl.ELEMENT_ARRAY_BUFFER,
		len(mesh.Indices)*4,
		gl.Ptr(mesh.Indices),
		gl.STATIC_DRAW)

	gl.BindVertexArray(0)

	d.scene.meshes[mesh] = buf
	return buf
}
