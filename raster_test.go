package trirast

import (
	"image/color"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clipSpaceBuffers builds a scene whose positions are already clip-space
// coordinates (w = 1) so it can be drawn with identity matrices.
func clipSpaceBuffers(t *testing.T, sets ...TriangleSet) *SceneBuffers {
	t.Helper()
	b, err := BuildBuffers(sets)
	require.NoError(t, err)
	return b
}

func fullScreenSet(z float32, diffuse mgl32.Vec3) TriangleSet {
	return TriangleSet{
		Material:  Material{Diffuse: diffuse},
		Vertices:  []mgl32.Vec3{{-1, -1, z}, {3, -1, z}, {-1, 3, z}},
		Triangles: [][]int{{0, 1, 2}},
	}
}

func identityProgram(t *testing.T) *Program {
	t.Helper()
	p, err := LinkProgram(FlatVertexShader, FlatFragmentShader)
	require.NoError(t, err)
	return p
}

func TestFramebuffer_Clear(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(mgl32.Vec4{1, 0, 0.5, 1}, 1)

	assert.Equal(t, 3, fb.Width())
	assert.Equal(t, 2, fb.Height())
	assert.Equal(t, color.RGBA{255, 0, 128, 255}, fb.Color.RGBAAt(2, 1))
	for _, d := range fb.Depth {
		assert.Equal(t, float32(1), d)
	}
}

func TestFramebuffer_DrawCoversScreen(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Clear(mgl32.Vec4{0, 0, 0, 1}, 1)
	b := clipSpaceBuffers(t, fullScreenSet(0, mgl32.Vec3{0, 0, 1}))
	p := identityProgram(t)
	p.Uniform3f(LocDiffuseColor, mgl32.Vec3{0, 0, 1})

	n, err := fb.DrawIndexed(p, b, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, fb.Color.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{0, 0, 255, 255}, fb.Color.RGBAAt(3, 3))
	assert.InDelta(t, 0.5, fb.Depth[0], 1e-6)
}

func TestFramebuffer_DepthTest(t *testing.T) {
	red := mgl32.Vec3{1, 0, 0}
	green := mgl32.Vec3{0, 1, 0}
	b := clipSpaceBuffers(t, fullScreenSet(0.5, red), fullScreenSet(-0.5, green))

	for _, order := range [][]int{{0, 1}, {1, 0}} {
		fb := NewFramebuffer(8, 8)
		fb.Clear(mgl32.Vec4{0, 0, 0, 1}, 1)
		p := identityProgram(t)
		for _, i := range order {
			d := b.Draws[i]
			p.Uniform3f(LocDiffuseColor, d.Diffuse)
			_, err := fb.DrawIndexed(p, b, d.FirstIndex, d.IndexCount)
			require.NoError(t, err)
		}
		assert.Equal(t, color.RGBA{0, 255, 0, 255}, fb.Color.RGBAAt(4, 4), "draw order %v", order)
		assert.InDelta(t, 0.25, fb.Depth[4*8+4], 1e-6)
	}
}

func TestFramebuffer_WindingIgnored(t *testing.T) {
	set := fullScreenSet(0, mgl32.Vec3{1, 1, 1})
	set.Triangles = [][]int{{0, 2, 1}}
	b := clipSpaceBuffers(t, set)

	fb := NewFramebuffer(4, 4)
	fb.Clear(mgl32.Vec4{0, 0, 0, 1}, 1)
	n, err := fb.DrawIndexed(identityProgram(t), b, 0, 3)
	require.NoError(t, err)
	assert.Equal(t, 16, n)
}

func TestFramebuffer_NearClip(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	fb.Clear(mgl32.Vec4{0, 0, 0, 1}, 1)

	behind := clipSpaceBuffers(t, fullScreenSet(-2, mgl32.Vec3{1, 1, 1}))
	n, err := fb.DrawIndexed(identityProgram(t), behind, 0, 3)
	require.NoError(t, err)
	assert.Zero(t, n)

	// One vertex pokes through the near plane; the remainder still draws.
	partial := clipSpaceBuffers(t, TriangleSet{
		Vertices:  []mgl32.Vec3{{-1, -1, 0}, {3, -1, 0}, {-1, 3, -3}},
		Triangles: [][]int{{0, 1, 2}},
	})
	n, err = fb.DrawIndexed(identityProgram(t), partial, 0, 3)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
	assert.Less(t, n, 16)
}

func TestFramebuffer_DrawOutOfRange(t *testing.T) {
	fb := NewFramebuffer(4, 4)
	b := clipSpaceBuffers(t, fullScreenSet(0, mgl32.Vec3{1, 1, 1}))

	_, err := fb.DrawIndexed(identityProgram(t), b, 0, 6)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
	_, err = fb.DrawIndexed(identityProgram(t), b, 3, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)

	// A corrupted index buffer is caught at draw time as well.
	b.Indices[2] = 99
	_, err = fb.DrawIndexed(identityProgram(t), b, 0, 3)
	assert.ErrorIs(t, err, ErrIndexOutOfRange)
}

func TestClipNear(t *testing.T) {
	inside := [3]clipVertex{{0, 0, 0, 1}, {1, 0, 0, 1}, {0, 1, 0, 1}}
	assert.Len(t, clipNear(inside), 3)

	outside := [3]clipVertex{{0, 0, -2, 1}, {1, 0, -2, 1}, {0, 1, -2, 1}}
	assert.Empty(t, clipNear(outside))

	oneOut := [3]clipVertex{{0, 0, 0, 1}, {1, 0, 0, 1}, {0, 1, -3, 1}}
	poly := clipNear(oneOut)
	require.Len(t, poly, 4)
	for _, v := range poly {
		assert.GreaterOrEqual(t, v[2]+v[3], float32(-1e-6))
	}
}
