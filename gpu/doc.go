// Package gpu uploads instgrid instance streams through gogpu/wgpu and
// describes them to render pipelines.
//
// The package covers the device-facing side of grid instancing:
//
//   - InstanceGroup: generates a grid from an instgrid.Config, encodes it,
//     and owns the resulting vertex buffer on the device.
//   - InstanceVertexLayout: the per-instance vertex buffer layout consumed
//     at shader locations 5-8 (four vec4 columns of one model matrix).
//   - Mesh and MeshPipeline: a minimal instanced render pipeline that draws
//     one mesh once per instance transform.
//
// All entry points take the hal.Device and hal.Queue of an already-open
// adapter; opening devices, surfaces, and presentation stay with the caller.
package gpu
