package libgl

import (
	"skyibl/gfx"

	"github.com/go-gl/gl/v4.5-core/gl"
	"github.com/go-gl/mathgl/mgl32"
)

// CubeMesh is a unit cube around the origin with outward facing triangles,
// it is drawn from the inside with front faces culled.
type CubeMesh struct {
	vao UnboundVertexArray
	vbo UnboundBuffer
	ebo UnboundBuffer
}

var cubeVertices = []mgl32.Vec3{
	{-1, -1, -1}, {1, -1, -1}, {1, 1, -1}, {-1, 1, -1},
	{-1, -1, 1}, {1, -1, 1}, {1, 1, 1}, {-1, 1, 1},
}

// counter clockwise seen from outside
var cubeIndices = []uint32{
	4, 5, 6, 6, 7, 4, // +z
	1, 0, 3, 3, 2, 1, // -z
	5, 1, 2, 2, 6, 5, // +x
	0, 4, 7, 7, 3, 0, // -x
	7, 6, 2, 2, 3, 7, // +y
	0, 1, 5, 5, 4, 0, // -y
}

func NewCubeMesh() *CubeMesh {
	vbo := NewBuffer()
	vbo.Allocate(cubeVertices, 0)
	ebo := NewBuffer()
	ebo.Allocate(cubeIndices, 0)

	vao := NewVertexArray()
	vao.Layout(0, 0, 3, gl.FLOAT, false, 0)
	vao.BindBuffer(0, vbo, 0, 3*4)
	vao.BindElementBuffer(ebo)

	return &CubeMesh{vao: vao, vbo: vbo, ebo: ebo}
}

func (mesh *CubeMesh) Draw(ctx gfx.Context) {
	mesh.vao.Bind()
	ctx.DrawIndexed(len(cubeIndices), 0, 0)
}

func (mesh *CubeMesh) Delete() {
	mesh.vao.Delete()
	mesh.vbo.Delete()
	mesh.ebo.Delete()
}
