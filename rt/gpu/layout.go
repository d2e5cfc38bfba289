package gpu

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/cogentcore/webgpu/wgpu"
	"github.com/gekko3d/trirast"
	"github.com/go-gl/mathgl/mgl32"
)

// Vertex is the interleaved layout of the vertex buffer.
type Vertex struct {
	Position [3]float32
	Diffuse  [3]float32
}

var vertexBufferLayout = wgpu.VertexBufferLayout{
	ArrayStride: uint64(unsafe.Sizeof(Vertex{})),
	StepMode:    wgpu.VertexStepModeVertex,
	Attributes: []wgpu.VertexAttribute{
		{Format: wgpu.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},
		{Format: wgpu.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1},
	},
}

// InterleaveVertices zips the position and color streams into Vertex records.
func InterleaveVertices(b *trirast.SceneBuffers) ([]Vertex, error) {
	if len(b.Positions) != len(b.Colors) || len(b.Positions)%3 != 0 {
		return nil, fmt.Errorf("position/color streams disagree: %d vs %d floats", len(b.Positions), len(b.Colors))
	}
	out := make([]Vertex, len(b.Positions)/3)
	for i := range out {
		copy(out[i].Position[:], b.Positions[3*i:3*i+3])
		copy(out[i].Diffuse[:], b.Colors[3*i:3*i+3])
	}
	return out, nil
}

// CameraUniform mirrors the Camera struct in triangles.wgsl.
type CameraUniform struct {
	ModelView  mgl32.Mat4
	Projection mgl32.Mat4
	AltOffset  mgl32.Vec4
}

const cameraUniformSize = 2*64 + 16

// glToWebGPUDepth remaps OpenGL clip z in [-w, w] to WebGPU's [0, w].
var glToWebGPUDepth = mgl32.Mat4{
	1, 0, 0, 0,
	0, 1, 0, 0,
	0, 0, 0.5, 0,
	0, 0, 0.5, 1,
}

func NewCameraUniform(cam trirast.Camera, aspect float32, alt bool) CameraUniform {
	u := CameraUniform{
		ModelView:  cam.ViewMatrix(),
		Projection: glToWebGPUDepth.Mul4(cam.ProjectionMatrix(aspect)),
	}
	if alt {
		u.AltOffset = trirast.AltOffset.Vec4(0)
	}
	return u
}

func (u CameraUniform) Bytes() []byte {
	buf := new(bytes.Buffer)
	buf.Grow(cameraUniformSize)
	if err := binary.Write(buf, binary.LittleEndian, u); err != nil {
		panic(fmt.Errorf("failed to write camera uniform: %w", err))
	}
	return buf.Bytes()
}

// surfaceAspect is width/height, and false when either side is zero.
func surfaceAspect(width, height uint32) (float32, bool) {
	if width == 0 || height == 0 {
		return 0, false
	}
	return float32(width) / float32(height), true
}
