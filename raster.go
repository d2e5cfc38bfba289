package trirast

import (
	"image"
	"image/color"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Framebuffer is a color target with a matching depth buffer. Depth values
// are window-space, 0 at the near plane and 1 at the far plane.
type Framebuffer struct {
	Color *image.RGBA
	Depth []float32
}

func NewFramebuffer(width, height int) *Framebuffer {
	return &Framebuffer{
		Color: image.NewRGBA(image.Rect(0, 0, width, height)),
		Depth: make([]float32, width*height),
	}
}

func (fb *Framebuffer) Width() int  { return fb.Color.Rect.Dx() }
func (fb *Framebuffer) Height() int { return fb.Color.Rect.Dy() }

func (fb *Framebuffer) Clear(c mgl32.Vec4, depth float32) {
	rgba := toRGBA(c)
	pix := fb.Color.Pix
	for i := 0; i < len(pix); i += 4 {
		pix[i+0] = rgba.R
		pix[i+1] = rgba.G
		pix[i+2] = rgba.B
		pix[i+3] = rgba.A
	}
	for i := range fb.Depth {
		fb.Depth[i] = depth
	}
}

func toRGBA(c mgl32.Vec4) color.RGBA {
	ch := func(v float32) uint8 {
		v = mgl32.Clamp(v, 0, 1)
		return uint8(math.Round(float64(v) * 255))
	}
	return color.RGBA{R: ch(c[0]), G: ch(c[1]), B: ch(c[2]), A: ch(c[3])}
}

// clipVertex is a vertex after the vertex stage.
type clipVertex = mgl32.Vec4

// screenVertex is a vertex after perspective divide and viewport transform.
type screenVertex struct {
	x, y, z float32
}

// nearEpsilon keeps the clipped polygon strictly in front of w = 0.
const nearEpsilon = 1e-6

// clipNear clips a triangle against the near plane z >= -w and returns the
// resulting convex polygon (0, 3 or 4 vertices).
func clipNear(tri [3]clipVertex) []clipVertex {
	dist := func(v clipVertex) float32 { return v[2] + v[3] }

	out := make([]clipVertex, 0, 4)
	for i := 0; i < 3; i++ {
		a, b := tri[i], tri[(i+1)%3]
		da, db := dist(a), dist(b)
		if da >= 0 {
			out = append(out, a)
		}
		if (da >= 0) != (db >= 0) {
			t := da / (da - db)
			out = append(out, a.Add(b.Sub(a).Mul(t)))
		}
	}
	return out
}

func (fb *Framebuffer) toScreen(v clipVertex) (screenVertex, bool) {
	w := v[3]
	if w <= nearEpsilon {
		return screenVertex{}, false
	}
	inv := 1 / w
	nx, ny, nz := v[0]*inv, v[1]*inv, v[2]*inv
	return screenVertex{
		x: (nx + 1) * 0.5 * float32(fb.Width()),
		y: (1 - ny) * 0.5 * float32(fb.Height()),
		z: (nz + 1) * 0.5,
	}, true
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// fillTriangle scan-converts one screen-space triangle with a LESS depth test.
// Both windings are drawn.
func (fb *Framebuffer) fillTriangle(a, b, c screenVertex, rgba color.RGBA) int {
	area := edge(a, b, c.x, c.y)
	if area == 0 {
		return 0
	}
	if area < 0 {
		b, c = c, b
		area = -area
	}

	minX := int(math.Floor(float64(min(a.x, b.x, c.x))))
	maxX := int(math.Ceil(float64(max(a.x, b.x, c.x))))
	minY := int(math.Floor(float64(min(a.y, b.y, c.y))))
	maxY := int(math.Ceil(float64(max(a.y, b.y, c.y))))
	minX = max(minX, 0)
	minY = max(minY, 0)
	maxX = min(maxX, fb.Width()-1)
	maxY = min(maxY, fb.Height()-1)

	written := 0
	stride := fb.Width()
	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			w0 := edge(b, c, px, py)
			w1 := edge(c, a, px, py)
			w2 := edge(a, b, px, py)
			if w0 < 0 || w1 < 0 || w2 < 0 {
				continue
			}
			z := (w0*a.z + w1*b.z + w2*c.z) / area
			if z < 0 || z > 1 {
				continue
			}
			di := y*stride + x
			if z >= fb.Depth[di] {
				continue
			}
			fb.Depth[di] = z
			fb.Color.SetRGBA(x+fb.Color.Rect.Min.X, y+fb.Color.Rect.Min.Y, rgba)
			written++
		}
	}
	return written
}

// DrawIndexed draws count indices of buffers starting at first with program,
// as a triangle list. It returns the number of fragments that passed the depth
// test.
func (fb *Framebuffer) DrawIndexed(p *Program, buffers *SceneBuffers, first, count uint32) (int, error) {
	if err := buffers.CheckRange(first, count); err != nil {
		return 0, err
	}
	nVerts := uint32(buffers.VertexCount())

	u := p.uniforms
	rgba := toRGBA(p.fragment(&u))

	written := 0
	for i := first; i < first+count; i += 3 {
		var tri [3]clipVertex
		for k := uint32(0); k < 3; k++ {
			idx := buffers.Indices[i+k]
			if idx >= nVerts {
				return written, ErrIndexOutOfRange
			}
			pos := mgl32.Vec3{buffers.Positions[3*idx], buffers.Positions[3*idx+1], buffers.Positions[3*idx+2]}
			tri[k] = p.vertex(&u, pos)
		}

		poly := clipNear(tri)
		if len(poly) < 3 {
			continue
		}
		screen := make([]screenVertex, 0, len(poly))
		for _, v := range poly {
			s, ok := fb.toScreen(v)
			if !ok {
				break
			}
			screen = append(screen, s)
		}
		if len(screen) != len(poly) {
			continue
		}
		for k := 1; k+1 < len(screen); k++ {
			written += fb.fillTriangle(screen[0], screen[k], screen[k+1], rgba)
		}
	}
	return written, nil
}
