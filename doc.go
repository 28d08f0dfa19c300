// Package instgrid generates grid-arranged per-instance transforms and packs
// them into the flat byte layout a GPU instanced draw consumes.
//
// # Overview
//
// instgrid covers the CPU side of mesh instancing in the GoGPU ecosystem:
// it lays out N×N copies of a mesh on a regular grid, rotates each copy 45°
// about its own offset from the origin, and encodes the resulting transforms
// as a contiguous vertex-attribute stream. The gpu subpackage uploads that
// stream through gogpu/wgpu and describes it to a render pipeline.
//
// # Quick Start
//
//	import "github.com/gogpu/instgrid"
//
//	// The 10x10 demo grid, centered on the origin.
//	instances, data := instgrid.GridConfig().Create()
//
//	// data is ready for a vertex buffer upload: 64 bytes per instance,
//	// one column-major 4x4 model matrix each.
//	_ = instances
//	_ = data
//
// # Byte Contract
//
// Each instance encodes to exactly 64 bytes: 16 little-endian 4-byte floats
// forming a column-major 4×4 homogeneous transform (four vec4 columns back
// to back, translation in the last column). Element i of an InstanceSet
// occupies bytes [i*64, i*64+64) of the encoded buffer and feeds per-instance
// attribute slot i in the shader. There is no padding between instances.
//
// # Ordering
//
// Generation is row-major with z as the outer axis and x as the inner axis,
// so the instance at index z*n+x sits at position (x, 0, z) minus the
// displacement. Buffer element order maps 1:1 to shader instance indices;
// the order is part of the contract.
//
// # Determinism
//
// Generation and encoding are pure: the same inputs always produce
// bit-identical output. There is no hidden randomness or time dependence.
package instgrid

// Version information
const (
	// Version is the current version of the library
	Version = "0.1.0"

	// VersionMajor is the major version
	VersionMajor = 0

	// VersionMinor is the minor version
	VersionMinor = 1

	// VersionPatch is the patch version
	VersionPatch = 0
)
