// Package trirast loads flat-shaded triangle scenes in the prog3 JSON format
// and draws them with a fixed perspective camera.
//
// Scenes are decoded into TriangleSets, packed into one set of SceneBuffers and
// drawn one set per draw call. SoftwareRenderer rasterizes on the CPU for
// snapshots and tests; package rt/gpu draws the same buffers through WebGPU.
package trirast
