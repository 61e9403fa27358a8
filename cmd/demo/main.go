package main

import (
	"flag"
	"fmt"
	"os"

	gl "github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.3/glfw"

	"bloom-engine/bloom"
	"bloom-engine/core"
	"bloom-engine/internal/opengl"
	"bloom-engine/math"
	"bloom-engine/scene"
	"bloom-engine/surface"
)

// presentSink receives the capture buffer the composited frame lands in; the
// loop presents it after each frame.
type presentSink struct {
	buf bloom.Buffer
}

func (s *presentSink) SetTexture(buf bloom.Buffer) { s.buf = buf }
func (s *presentSink) ClearTexture()               { s.buf = nil }

// sceneObject is one mesh instance in the demo scene. Objects with a stencil
// mark receive the full bloom composite; everything else only gets the
// whole-frame blend layer.
type sceneObject struct {
	mesh        *scene.Mesh
	model       math.Mat4
	color       core.Color
	emissive    float32
	stencilMark uint8
}

func main() {
	modelPath := flag.String("model", "", "optional .glb/.gltf model used as the glowing object")
	debug := flag.Bool("debug", false, "show the intermediate mask/blur buffer instead of the composite")
	mode := flag.String("mode", "screen", "blend mode: screen or add")
	flag.Parse()

	if err := run(*modelPath, *debug, *mode); err != nil {
		fmt.Fprintf(os.Stderr, "demo: %v\n", err)
		os.Exit(1)
	}
}

func run(modelPath string, debug bool, mode string) error {
	config := core.DefaultWindowConfig()
	config.Title = "Bloom Engine Demo"
	window, err := core.NewWindow(config)
	if err != nil {
		return err
	}
	defer window.Destroy()

	if err := gl.Init(); err != nil {
		return fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	fmt.Println("OpenGL", gl.GoStr(gl.GetString(gl.VERSION)))

	dev, err := opengl.NewDevice()
	if err != nil {
		return err
	}
	defer dev.Destroy()

	params := bloom.DefaultParams()
	params.Debug = debug
	params.Mode = bloom.ModeScreen
	if mode == "add" {
		params.Mode = bloom.ModeAdd
	}

	objects, err := buildScene(modelPath, params.StencilRef)
	if err != nil {
		return err
	}

	lightDir := math.NewVec3(-0.5, -1, -0.3)
	sky := core.Color{R: 0.05, G: 0.06, B: 0.1, A: 1}

	// the composited output lives in a capture buffer that survives across
	// frames and is swapped out when the window resizes
	sink := &presentSink{}
	capture := surface.NewRedirector(dev, sink, bloom.FormatColor)
	capture.SetEnabled(true)
	defer capture.Close()

	stats := newStatsOverlay()

	var angle float32
	for !window.ShouldClose() {
		window.PollEvents()
		if window.IsKeyPressed(glfw.KeyEscape) {
			break
		}

		width, height := window.GetFramebufferSize()
		if width == 0 || height == 0 {
			continue // minimised
		}
		if err := capture.Update(width, height); err != nil {
			return err
		}
		angle += 0.01

		if err := renderFrame(dev, window, objects, angle, width, height, sky, lightDir, params, sink.buf); err != nil {
			return err
		}
		stats.tick(window, params)
	}
	return nil
}

// renderFrame draws the scene into an off-screen frame, runs the bloom
// pipeline over it and presents the result. The scene frame is scoped to this
// function; dst is the long-lived capture buffer owned by the redirector.
func renderFrame(dev *opengl.Device, window *core.Window, objects []sceneObject,
	angle float32, width, height int, sky core.Color, lightDir math.Vec3,
	params bloom.Params, dst bloom.Buffer) error {

	src, err := dev.Acquire(width, height, bloom.FormatColorDepthStencil, 1)
	if err != nil {
		return err
	}
	defer dev.Release(src)

	view := math.Mat4LookAt(math.NewVec3(0, 2.5, 6), math.NewVec3(0, 0.5, 0), math.Vec3Up)
	proj := math.Mat4Perspective(0.9, float32(width)/float32(height), 0.1, 100)
	spin := math.Mat4RotationY(angle)

	dev.BeginScene(src, sky, lightDir)
	for _, obj := range objects {
		model := obj.model
		if obj.stencilMark != 0 {
			model = spin.Mul(model)
		}
		mvp := model.Mul(view).Mul(proj)
		dev.DrawMesh(obj.mesh, mvp, model, obj.color, obj.emissive, obj.stencilMark)
	}
	dev.EndScene()

	if err := bloom.ProcessFrame(dev, src, dst, params); err != nil {
		return err
	}

	dev.Present(dst, width, height)
	window.SwapBuffers()
	return nil
}

// buildScene assembles a floor, two dim cubes and one glowing centre object,
// which is either a loaded model or a cube. Only the glowing object carries
// the stencil mark.
func buildScene(modelPath string, stencilRef uint8) ([]sceneObject, error) {
	objects := []sceneObject{
		{
			mesh:  scene.CreatePlane(12, 12),
			model: math.Mat4Translation(math.NewVec3(0, -0.5, 0)),
			color: core.Color{R: 0.25, G: 0.25, B: 0.28, A: 1},
		},
		{
			mesh:  scene.CreateCube(1),
			model: math.Mat4Translation(math.NewVec3(-2.5, 0, 0)),
			color: core.Color{R: 0.4, G: 0.2, B: 0.2, A: 1},
		},
		{
			mesh:  scene.CreateCube(1),
			model: math.Mat4Translation(math.NewVec3(2.5, 0, 0)),
			color: core.Color{R: 0.2, G: 0.2, B: 0.4, A: 1},
		},
	}

	glowing := []*scene.Mesh{scene.CreateCube(1.2)}
	if modelPath != "" {
		meshes, err := scene.LoadGLTF(modelPath)
		if err != nil {
			return nil, err
		}
		glowing = meshes
		fmt.Printf("loaded %d mesh primitive(s) from %s\n", len(meshes), modelPath)
	}

	for _, mesh := range glowing {
		objects = append(objects, sceneObject{
			mesh:        mesh,
			model:       math.Mat4Translation(math.NewVec3(0, 0.3, 0)),
			color:       core.Color{R: 0.9, G: 0.8, B: 0.3, A: 1},
			emissive:    1.5,
			stencilMark: stencilRef,
		})
	}
	return objects, nil
}
