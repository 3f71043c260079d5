package commands

import (
	"math"
	"testing"

	"github.com/oliverbestmann/tessel/glm"
)

func near(a, b glm.Vec2f) bool {
	return math.Abs(float64(a[0]-b[0])) < 1e-5 && math.Abs(float64(a[1]-b[1])) < 1e-5
}

func TestVertexLayout(t *testing.T) {
	if vertexLayout.ArrayStride != 20 {
		t.Fatalf("unexpected stride %d", vertexLayout.ArrayStride)
	}

	offsets := []uint64{0, 8, 16}
	for idx, attr := range vertexLayout.Attributes {
		if attr.Offset != offsets[idx] || attr.ShaderLocation != uint32(idx) {
			t.Fatalf("unexpected attribute %d: %+v", idx, attr)
		}
	}
}

func TestQuad(t *testing.T) {
	vertices, indices := Quad(glm.Vec2f{1, 1}, glm.Vec2f{2, 4}, 0, 3, 8)

	expected := [4]glm.Vec2f{{0, -1}, {2, -1}, {2, 3}, {0, 3}}
	for idx, vertex := range vertices {
		if !near(vertex.Position, expected[idx]) {
			t.Errorf("vertex %d at %v, expected %v", idx, vertex.Position, expected[idx])
		}

		if vertex.Index != 3 {
			t.Errorf("vertex %d uses slot %d", idx, vertex.Index)
		}
	}

	if indices != [6]uint32{8, 9, 10, 8, 10, 11} {
		t.Fatalf("unexpected indices %v", indices)
	}
}

func TestQuadRotated(t *testing.T) {
	vertices, _ := Quad(glm.Vec2f{}, glm.Vec2f{2, 2}, math.Pi/2, 0, 0)

	// a quarter turn moves the bottom left corner to the bottom right
	if !near(vertices[0].Position, glm.Vec2f{1, -1}) {
		t.Fatalf("unexpected position %v", vertices[0].Position)
	}
}
