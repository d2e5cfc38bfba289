package trirast

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/go-gl/mathgl/mgl32"
)

// Material is the per-set lighting description. Only Diffuse is drawn; the
// other terms are carried so a scene round-trips intact.
type Material struct {
	Ambient  mgl32.Vec3 `json:"ambient"`
	Diffuse  mgl32.Vec3 `json:"diffuse"`
	Specular mgl32.Vec3 `json:"specular"`
	N        float32    `json:"n"`
}

// TriangleSet is one record of the triangles file: a vertex list, triangles
// indexing into it, and a single material.
type TriangleSet struct {
	Material  Material     `json:"material"`
	Vertices  []mgl32.Vec3 `json:"vertices"`
	Normals   []mgl32.Vec3 `json:"normals,omitempty"`
	Triangles [][]int      `json:"triangles"`
}

func (s TriangleSet) Validate() error {
	for i, c := range s.Material.Diffuse {
		if c < 0 || c > 1 {
			return fmt.Errorf("%w: diffuse[%d] = %g outside [0,1]", ErrInvalidScene, i, c)
		}
	}
	if len(s.Normals) != 0 && len(s.Normals) != len(s.Vertices) {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidScene, len(s.Normals), len(s.Vertices))
	}
	for t, tri := range s.Triangles {
		if len(tri) != 3 {
			return fmt.Errorf("%w: triangle %d has %d indices, want 3", ErrInvalidScene, t, len(tri))
		}
		for _, idx := range tri {
			if idx < 0 || idx >= len(s.Vertices) {
				return fmt.Errorf("%w: triangle %d references vertex %d of %d", ErrIndexOutOfRange, t, idx, len(s.Vertices))
			}
		}
	}
	return nil
}

// DecodeTriangles reads a triangles file and validates every set in it.
func DecodeTriangles(r io.Reader) ([]TriangleSet, error) {
	var sets []TriangleSet
	dec := json.NewDecoder(r)
	if err := dec.Decode(&sets); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, fmt.Errorf("%w: trailing data after scene", ErrDecode)
	}
	for i, s := range sets {
		if err := s.Validate(); err != nil {
			return nil, fmt.Errorf("set %d: %w", i, err)
		}
	}
	return sets, nil
}
