package gpu

import (
	"testing"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/trirast"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterleaveVertices(t *testing.T) {
	b, err := trirast.BuildBuffers([]trirast.TriangleSet{{
		Material:  trirast.Material{Diffuse: mgl32.Vec3{0.6, 0.4, 0.4}},
		Vertices:  []mgl32.Vec3{{0.15, 0.6, 0.75}, {0.25, 0.9, 0.75}, {0.35, 0.6, 0.75}},
		Triangles: [][]int{{0, 1, 2}},
	}})
	require.NoError(t, err)

	vertices, err := InterleaveVertices(b)
	require.NoError(t, err)
	require.Len(t, vertices, 3)
	assert.Equal(t, Vertex{Position: [3]float32{0.25, 0.9, 0.75}, Diffuse: [3]float32{0.6, 0.4, 0.4}}, vertices[1])

	b.Colors = b.Colors[:3]
	_, err = InterleaveVertices(b)
	assert.Error(t, err)
}

func TestVertexLayout(t *testing.T) {
	assert.Equal(t, uint64(24), vertexBufferLayout.ArrayStride)
	assert.Equal(t, uintptr(24), unsafe.Sizeof(Vertex{}))
	require.Len(t, vertexBufferLayout.Attributes, 2)
	assert.Equal(t, uint64(unsafe.Offsetof(Vertex{}.Diffuse)), vertexBufferLayout.Attributes[1].Offset)
}

func TestCameraUniform(t *testing.T) {
	cam := trirast.DefaultCamera()

	u := NewCameraUniform(cam, 1, false)
	assert.Len(t, u.Bytes(), cameraUniformSize)
	assert.Equal(t, cam.ViewMatrix(), u.ModelView)
	assert.Equal(t, mgl32.Vec4{}, u.AltOffset)

	near := u.Projection.Mul4x1(mgl32.Vec4{0, 0, -cam.Near, 1})
	far := u.Projection.Mul4x1(mgl32.Vec4{0, 0, -cam.Far, 1})
	assert.InDelta(t, 0, near[2]/near[3], 1e-5)
	assert.InDelta(t, 1, far[2]/far[3], 1e-4)

	alt := NewCameraUniform(cam, 1, true)
	assert.Equal(t, mgl32.Vec4{-1, -1, 0, 0}, alt.AltOffset)
}

func TestSurfaceAspect(t *testing.T) {
	aspect, ok := surfaceAspect(800, 400)
	assert.True(t, ok)
	assert.Equal(t, float32(2), aspect)

	for _, size := range [][2]uint32{{0, 0}, {800, 0}, {0, 600}} {
		_, ok := surfaceAspect(size[0], size[1])
		assert.False(t, ok, "%dx%d", size[0], size[1])
	}
}

func TestRenderer_SkipsEmptySurface(t *testing.T) {
	r := NewRenderer(nil, trirast.DefaultCamera(), &trirast.SceneBuffers{}, nil)
	r.Config = &wgpu.SurfaceConfiguration{Width: 640, Height: 480}

	// Minimizing reports a zero framebuffer; no surface or device is touched.
	r.Resize(0, 0)
	assert.Zero(t, r.Config.Width)
	assert.Zero(t, r.Config.Height)

	assert.NoError(t, r.Render(trirast.Frame{Background: mgl32.Vec4{0, 0, 0, 1}}))
}
