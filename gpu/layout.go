package gpu

import (
	"github.com/gogpu/gputypes"

	"github.com/gogpu/instgrid"
)

// instanceAttrBase is the first shader location of the transform columns.
// Locations 0-4 stay free for mesh vertex attributes.
// Must match InstanceInput in shaders/instance.wgsl.
const instanceAttrBase = 5

// InstanceVertexLayout returns the vertex buffer layout for the per-instance
// transform stream produced by instgrid. The stride is one RawTransform
// (64 bytes) and the step mode is Instance: the same 64-byte block feeds
// every vertex of one mesh copy before the stream advances to the next
// instance.
//
// A mat4 occupies four attribute slots because it is four vec4 columns; the
// shader reassembles them into one matrix.
func InstanceVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: instgrid.RawTransformStride,
			StepMode:    gputypes.VertexStepModeInstance,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x4, Offset: 0, ShaderLocation: instanceAttrBase},      // column 0
				{Format: gputypes.VertexFormatFloat32x4, Offset: 16, ShaderLocation: instanceAttrBase + 1}, // column 1
				{Format: gputypes.VertexFormatFloat32x4, Offset: 32, ShaderLocation: instanceAttrBase + 2}, // column 2
				{Format: gputypes.VertexFormatFloat32x4, Offset: 48, ShaderLocation: instanceAttrBase + 3}, // column 3
			},
		},
	}
}
