package trirast

import "errors"

var (
	ErrFetch           = errors.New("unable to open triangles file")
	ErrDecode          = errors.New("malformed triangles file")
	ErrInvalidScene    = errors.New("invalid triangle set")
	ErrIndexOutOfRange = errors.New("index exceeds vertex buffer")
	ErrShaderLink      = errors.New("shader program link failed")
	ErrUnknownUniform  = errors.New("unknown uniform")
)
