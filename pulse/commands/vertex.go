package commands

import (
	"structs"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/oliverbestmann/tessel/glm"
)

// Vertex is a vertex of a textured triangle. Index selects the texture slot,
// relative to the renderers texture index.
type Vertex struct {
	_ structs.HostLayout

	Position glm.Vec2f
	TexCoord glm.Vec2f
	Index    uint32
}

var vertexLayout = wgpu.VertexBufferLayout{
	ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{
			// position
			Format:         wgpu.VertexFormatFloat32x2,
			Offset:         uint64(unsafe.Offsetof(Vertex{}.Position)),
			ShaderLocation: 0,
		},
		{
			// texture coordinate
			Format:         wgpu.VertexFormatFloat32x2,
			Offset:         uint64(unsafe.Offsetof(Vertex{}.TexCoord)),
			ShaderLocation: 1,
		},
		{
			// texture slot
			Format:         wgpu.VertexFormatUint32,
			Offset:         uint64(unsafe.Offsetof(Vertex{}.Index)),
			ShaderLocation: 2,
		},
	},
}

// Quad returns the vertices and indices of a rectangle of the given size, rotated
// around its center. The indices start at vertex firstVertex and describe two
// counter clockwise triangles.
func Quad(center, size glm.Vec2f, rotation glm.Rad, slot uint32, firstVertex uint32) ([4]Vertex, [6]uint32) {
	corners := [4]glm.Vec2f{
		{-0.5, -0.5},
		{0.5, -0.5},
		{0.5, 0.5},
		{-0.5, 0.5},
	}

	// texture space has its origin in the top left corner
	texCoords := [4]glm.Vec2f{
		{0, 1},
		{1, 1},
		{1, 0},
		{0, 0},
	}

	var vertices [4]Vertex
	for idx, corner := range corners {
		vertices[idx] = Vertex{
			Position: glm.Rotate(corner.Mul(size), rotation).Add(center),
			TexCoord: texCoords[idx],
			Index:    slot,
		}
	}

	indices := [6]uint32{0, 1, 2, 0, 2, 3}
	for idx := range indices {
		indices[idx] += firstVertex
	}

	return vertices, indices
}
