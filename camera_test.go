package trirast

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestCamera_ProjectCenter(t *testing.T) {
	cam := DefaultCamera()

	x, y, _, ok := cam.Project(mgl32.Vec3{0.5, 0.5, 0.75}, 100, 100)
	assert.True(t, ok)
	assert.InDelta(t, 50, x, 1e-3)
	assert.InDelta(t, 50, y, 1e-3)
}

func TestCamera_ProjectMirrorsX(t *testing.T) {
	cam := DefaultCamera()

	// The eye looks down +z with +y up, so world +x ends up on the left of
	// the window and world +y towards the top.
	x, y, _, ok := cam.Project(mgl32.Vec3{0.25, 0.25, 0.75}, 100, 100)
	assert.True(t, ok)
	assert.InDelta(t, 60, x, 1e-3)
	assert.InDelta(t, 60, y, 1e-3)
}

func TestCamera_DepthOrdering(t *testing.T) {
	cam := DefaultCamera()

	_, _, near, ok := cam.Project(mgl32.Vec3{0.5, 0.5, 0.25}, 64, 64)
	assert.True(t, ok)
	_, _, far, ok := cam.Project(mgl32.Vec3{0.5, 0.5, 1.5}, 64, 64)
	assert.True(t, ok)
	assert.Less(t, near, far)
}

func TestCamera_BehindEye(t *testing.T) {
	cam := DefaultCamera()

	_, _, _, ok := cam.Project(mgl32.Vec3{0.5, 0.5, -2}, 64, 64)
	assert.False(t, ok)
}

func TestCamera_Matrices(t *testing.T) {
	cam := DefaultCamera()

	eye := cam.ViewMatrix().Mul4x1(cam.Eye.Vec4(1))
	assert.InDelta(t, 0, eye.Vec3().Len(), 1e-6)

	proj := cam.ProjectionMatrix(1)
	assert.Equal(t, mgl32.Perspective(math.Pi/2, 1, 0.1, 10), proj)
	assert.Equal(t, proj, cam.ProjectionMatrix(0), "non-positive aspect falls back to square")
}
