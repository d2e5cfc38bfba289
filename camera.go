package trirast

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera is a fixed look-at camera with a symmetric perspective frustum.
type Camera struct {
	Eye    mgl32.Vec3 `json:"eye"`
	Center mgl32.Vec3 `json:"center"`
	Up     mgl32.Vec3 `json:"up"`
	FovY   float32    `json:"fov_y"` // radians
	Near   float32    `json:"near"`
	Far    float32    `json:"far"`
}

// DefaultCamera looks from just in front of the unit window at its center.
func DefaultCamera() Camera {
	return Camera{
		Eye:    mgl32.Vec3{0.5, 0.5, -0.5},
		Center: mgl32.Vec3{0.5, 0.5, 0},
		Up:     mgl32.Vec3{0, 1, 0},
		FovY:   math.Pi / 2,
		Near:   0.1,
		Far:    10,
	}
}

func (c Camera) ViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Eye, c.Center, c.Up)
}

// ProjectionMatrix maps view space to OpenGL clip space (NDC z in [-1, 1]).
func (c Camera) ProjectionMatrix(aspect float32) mgl32.Mat4 {
	if aspect <= 0 {
		aspect = 1
	}
	return mgl32.Perspective(c.FovY, aspect, c.Near, c.Far)
}

// Project maps a world-space point to window coordinates (origin top-left)
// and NDC depth. ok is false for points behind the eye.
func (c Camera) Project(p mgl32.Vec3, width, height int) (x, y, depth float32, ok bool) {
	aspect := float32(width) / float32(height)
	clip := c.ProjectionMatrix(aspect).Mul4(c.ViewMatrix()).Mul4x1(p.Vec4(1))
	if clip[3] <= 0 {
		return 0, 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	x = (ndc[0] + 1) * 0.5 * float32(width)
	y = (1 - ndc[1]) * 0.5 * float32(height)
	return x, y, ndc[2], true
}
