package shaders

import (
	_ "embed"
)

//go:embed triangles.wgsl
var TrianglesWGSL string
