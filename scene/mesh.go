package scene

import "bloom-engine/math"

type Vertex struct {
	Position math.Vec3
	Normal   math.Vec3
	UV       math.Vec2
}

type Mesh struct {
	Name     string
	Vertices []Vertex
	Indices  []uint32
}

// CreateCube returns a unit cube centred on the origin, scaled by size.
func CreateCube(size float32) *Mesh {
	h := size / 2

	faces := [6]struct {
		normal  math.Vec3
		corners [4]math.Vec3
	}{
		{math.Vec3{Z: 1}, [4]math.Vec3{{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h}}},
		{math.Vec3{Z: -1}, [4]math.Vec3{{X: h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: -h}, {X: -h, Y: h, Z: -h}, {X: h, Y: h, Z: -h}}},
		{math.Vec3{X: 1}, [4]math.Vec3{{X: h, Y: -h, Z: h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: h, Y: h, Z: h}}},
		{math.Vec3{X: -1}, [4]math.Vec3{{X: -h, Y: -h, Z: -h}, {X: -h, Y: -h, Z: h}, {X: -h, Y: h, Z: h}, {X: -h, Y: h, Z: -h}}},
		{math.Vec3{Y: 1}, [4]math.Vec3{{X: -h, Y: h, Z: h}, {X: h, Y: h, Z: h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h}}},
		{math.Vec3{Y: -1}, [4]math.Vec3{{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: -h, Z: h}, {X: -h, Y: -h, Z: h}}},
	}

	uvs := [4]math.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}}

	mesh := &Mesh{Name: "cube"}
	for _, face := range faces {
		base := uint32(len(mesh.Vertices))
		for i, c := range face.corners {
			mesh.Vertices = append(mesh.Vertices, Vertex{
				Position: c,
				Normal:   face.normal,
				UV:       uvs[i],
			})
		}
		mesh.Indices = append(mesh.Indices,
			base, base+1, base+2,
			base, base+2, base+3)
	}
	return mesh
}

// CreatePlane returns a flat quad in the XZ plane, width x depth, facing up.
func CreatePlane(width, depth float32) *Mesh {
	hw := width / 2
	hd := depth / 2

	return &Mesh{
		Name: "plane",
		Vertices: []Vertex{
			{Position: math.Vec3{X: -hw, Z: -hd}, Normal: math.Vec3Up, UV: math.Vec2{X: 0, Y: 0}},
			{Position: math.Vec3{X: hw, Z: -hd}, Normal: math.Vec3Up, UV: math.Vec2{X: 1, Y: 0}},
			{Position: math.Vec3{X: hw, Z: hd}, Normal: math.Vec3Up, UV: math.Vec2{X: 1, Y: 1}},
			{Position: math.Vec3{X: -hw, Z: hd}, Normal: math.Vec3Up, UV: math.Vec2{X: 0, Y: 1}},
		},
		Indices: []uint32{0, 2, 1, 0, 3, 2},
	}
}
