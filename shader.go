package trirast

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
)

// AltOffset is added to every vertex position while the alternate-position
// flag is up.
var AltOffset = mgl32.Vec3{-1, -1, 0}

// Uniforms is the state shared by both shader stages for one draw.
type Uniforms struct {
	ModelView    mgl32.Mat4
	Projection   mgl32.Mat4
	DiffuseColor mgl32.Vec3
	AltPosition  bool
}

type UniformLocation int

const (
	LocModelView UniformLocation = iota
	LocProjection
	LocDiffuseColor
	LocAltPosition
)

var uniformNames = map[string]UniformLocation{
	"modelViewMatrix":  LocModelView,
	"projectionMatrix": LocProjection,
	"diffuseColor":     LocDiffuseColor,
	"altPosition":      LocAltPosition,
}

// VertexShader maps a model-space position to clip space.
type VertexShader func(u *Uniforms, position mgl32.Vec3) mgl32.Vec4

// FragmentShader returns the RGBA color of a covered pixel.
type FragmentShader func(u *Uniforms) mgl32.Vec4

func FlatVertexShader(u *Uniforms, position mgl32.Vec3) mgl32.Vec4 {
	if u.AltPosition {
		position = position.Add(AltOffset)
	}
	return u.Projection.Mul4(u.ModelView).Mul4x1(position.Vec4(1))
}

func FlatFragmentShader(u *Uniforms) mgl32.Vec4 {
	return u.DiffuseColor.Vec4(1)
}

// Program is a linked vertex/fragment pair plus its uniform state.
type Program struct {
	vertex   VertexShader
	fragment FragmentShader
	uniforms Uniforms
}

func LinkProgram(vs VertexShader, fs FragmentShader) (*Program, error) {
	if vs == nil {
		return nil, fmt.Errorf("%w: missing vertex stage", ErrShaderLink)
	}
	if fs == nil {
		return nil, fmt.Errorf("%w: missing fragment stage", ErrShaderLink)
	}
	return &Program{
		vertex:   vs,
		fragment: fs,
		uniforms: Uniforms{ModelView: mgl32.Ident4(), Projection: mgl32.Ident4()},
	}, nil
}

func (p *Program) UniformLocation(name string) (UniformLocation, error) {
	loc, ok := uniformNames[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownUniform, name)
	}
	return loc, nil
}

func (p *Program) UniformMatrix4(loc UniformLocation, m mgl32.Mat4) {
	switch loc {
	case LocModelView:
		p.uniforms.ModelView = m
	case LocProjection:
		p.uniforms.Projection = m
	default:
		panic(fmt.Sprintf("uniform %d is not a mat4", loc))
	}
}

func (p *Program) Uniform3f(loc UniformLocation, v mgl32.Vec3) {
	if loc != LocDiffuseColor {
		panic(fmt.Sprintf("uniform %d is not a vec3", loc))
	}
	p.uniforms.DiffuseColor = v
}

func (p *Program) Uniform1b(loc UniformLocation, v bool) {
	if loc != LocAltPosition {
		panic(fmt.Sprintf("uniform %d is not a bool", loc))
	}
	p.uniforms.AltPosition = v
}

func (p *Program) Uniforms() Uniforms {
	return p.uniforms
}
