package trirast

import (
	"fmt"
	"image"
)

// Renderer draws one frame of an uploaded scene.
type Renderer interface {
	Render(frame Frame) error
}

// SoftwareRenderer rasterizes on the CPU into a Framebuffer. It is what the
// headless snapshot path and the tests use.
type SoftwareRenderer struct {
	Camera  Camera
	Buffers *SceneBuffers
	Target  *Framebuffer

	program      *Program
	locModelView UniformLocation
	locProj      UniformLocation
	locDiffuse   UniformLocation
	locAlt       UniformLocation
	logger       Logger
}

// NewSoftwareRenderer links the flat shader pair and binds the scene buffers.
func NewSoftwareRenderer(cam Camera, buffers *SceneBuffers, width, height int, logger Logger) (*SoftwareRenderer, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("framebuffer size %dx%d must be positive", width, height)
	}
	if buffers == nil {
		return nil, fmt.Errorf("no scene buffers")
	}
	program, err := LinkProgram(FlatVertexShader, FlatFragmentShader)
	if err != nil {
		return nil, err
	}

	r := &SoftwareRenderer{
		Camera:  cam,
		Buffers: buffers,
		Target:  NewFramebuffer(width, height),
		program: program,
		logger:  orNop(logger),
	}
	for name, dst := range map[string]*UniformLocation{
		"modelViewMatrix":  &r.locModelView,
		"projectionMatrix": &r.locProj,
		"diffuseColor":     &r.locDiffuse,
		"altPosition":      &r.locAlt,
	} {
		loc, err := program.UniformLocation(name)
		if err != nil {
			return nil, err
		}
		*dst = loc
	}

	r.logger.Debugf("software renderer %dx%d: %d vertices (%s), %d triangles (%s), %d sets",
		width, height, buffers.VertexCount(), buffers.VertexBufferID, buffers.TriangleCount(), buffers.IndexBufferID, len(buffers.Draws))
	return r, nil
}

func (r *SoftwareRenderer) Render(frame Frame) error {
	r.Target.Clear(frame.Background, 1)

	aspect := float32(r.Target.Width()) / float32(r.Target.Height())
	r.program.UniformMatrix4(r.locProj, r.Camera.ProjectionMatrix(aspect))
	r.program.UniformMatrix4(r.locModelView, r.Camera.ViewMatrix())
	r.program.Uniform1b(r.locAlt, frame.AltPosition)

	for _, d := range r.Buffers.Draws {
		r.program.Uniform3f(r.locDiffuse, d.Diffuse)
		n, err := r.Target.DrawIndexed(r.program, r.Buffers, d.FirstIndex, d.IndexCount)
		if err != nil {
			return fmt.Errorf("frame %d set %d: %w", frame.Index, d.Set, err)
		}
		r.logger.Debugf("frame %d set %d: %d triangles, %d fragments", frame.Index, d.Set, d.IndexCount/3, n)
	}
	return nil
}

func (r *SoftwareRenderer) Image() *image.RGBA {
	return r.Target.Color
}
