package trirast

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/google/uuid"
)

type BufferID string

func makeBufferID() BufferID {
	return BufferID(uuid.NewString())
}

// DrawRange is the slice of the index buffer that belongs to one triangle set.
type DrawRange struct {
	Set        int
	FirstIndex uint32
	IndexCount uint32
	Diffuse    mgl32.Vec3
}

// SceneBuffers is the flattened, upload-ready form of a scene. Positions and
// Colors hold xyz / rgb triples per vertex; Indices are already rebased onto
// the concatenated vertex list.
type SceneBuffers struct {
	VertexBufferID BufferID
	ColorBufferID  BufferID
	IndexBufferID  BufferID

	Positions []float32
	Colors    []float32
	Indices   []uint32
	Draws     []DrawRange
}

func (b *SceneBuffers) VertexCount() int {
	return len(b.Positions) / 3
}

func (b *SceneBuffers) TriangleCount() int {
	return len(b.Indices) / 3
}

// BuildBuffers concatenates all sets into one vertex/color/index buffer triple.
// It fails if any triangle would index past the vertex buffer.
func BuildBuffers(sets []TriangleSet) (*SceneBuffers, error) {
	var nVerts, nIdx int
	for _, s := range sets {
		nVerts += len(s.Vertices)
		nIdx += 3 * len(s.Triangles)
	}

	b := &SceneBuffers{
		VertexBufferID: makeBufferID(),
		ColorBufferID:  makeBufferID(),
		IndexBufferID:  makeBufferID(),
		Positions:      make([]float32, 0, 3*nVerts),
		Colors:         make([]float32, 0, 3*nVerts),
		Indices:        make([]uint32, 0, nIdx),
		Draws:          make([]DrawRange, 0, len(sets)),
	}

	for whichSet, s := range sets {
		base := uint32(b.VertexCount())
		for _, v := range s.Vertices {
			b.Positions = append(b.Positions, v[0], v[1], v[2])
			b.Colors = append(b.Colors, s.Material.Diffuse[0], s.Material.Diffuse[1], s.Material.Diffuse[2])
		}

		first := uint32(len(b.Indices))
		for t, tri := range s.Triangles {
			if len(tri) != 3 {
				return nil, fmt.Errorf("set %d triangle %d: %w: %d indices, want 3", whichSet, t, ErrInvalidScene, len(tri))
			}
			for _, idx := range tri {
				if idx < 0 || idx >= len(s.Vertices) {
					return nil, fmt.Errorf("set %d triangle %d: %w: vertex %d of %d", whichSet, t, ErrIndexOutOfRange, idx, len(s.Vertices))
				}
				b.Indices = append(b.Indices, base+uint32(idx))
			}
		}

		b.Draws = append(b.Draws, DrawRange{
			Set:        whichSet,
			FirstIndex: first,
			IndexCount: uint32(len(b.Indices)) - first,
			Diffuse:    s.Material.Diffuse,
		})
	}

	return b, nil
}

// CheckRange reports whether a draw of count indices starting at first stays
// inside the index buffer.
func (b *SceneBuffers) CheckRange(first, count uint32) error {
	end := uint64(first) + uint64(count)
	if end > uint64(len(b.Indices)) {
		return fmt.Errorf("%w: draw [%d, %d) of %d indices", ErrIndexOutOfRange, first, end, len(b.Indices))
	}
	if count%3 != 0 {
		return fmt.Errorf("%w: index count %d is not a whole number of triangles", ErrIndexOutOfRange, count)
	}
	return nil
}
