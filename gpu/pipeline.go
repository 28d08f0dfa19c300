package gpu

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/instgrid"
)

// ErrPipelineNotReady is returned when the pipeline is used before
// EnsurePipeline has succeeded.
var ErrPipelineNotReady = errors.New("gpu: pipeline not created")

// cameraUniformSize is the byte size of the camera uniform: one mat4.
// Must match Camera in shaders/instance.wgsl.
const cameraUniformSize = 64

// MeshPipeline renders one mesh many times in a single draw call, one copy
// per instance transform. The vertex state carries two buffers: the mesh at
// slot 0 stepping per vertex (locations 0-1) and the instance stream at
// slot 1 stepping per instance (locations 5-8).
//
// The pipeline owns a camera uniform (group 0, binding 0) holding the
// view-projection matrix; it starts as the identity and is replaced with
// SetCamera.
type MeshPipeline struct {
	device hal.Device
	queue  hal.Queue

	// GPU objects for the render pipeline.
	shader       hal.ShaderModule
	cameraLayout hal.BindGroupLayout
	pipeLayout   hal.PipelineLayout
	pipeline     hal.RenderPipeline
	cameraBuf    hal.Buffer
	cameraBind   hal.BindGroup
}

// NewMeshPipeline creates a new instanced mesh pipeline with the given
// device and queue. GPU objects are not created until EnsurePipeline is
// called.
func NewMeshPipeline(device hal.Device, queue hal.Queue) *MeshPipeline {
	return &MeshPipeline{
		device: device,
		queue:  queue,
	}
}

// EnsurePipeline creates the shader, layouts, camera uniform, and render
// pipeline if they don't already exist. Idempotent.
func (p *MeshPipeline) EnsurePipeline() error {
	if p.pipeline != nil {
		return nil
	}
	return p.createPipeline()
}

// SetCamera uploads the view-projection matrix applied to every instance.
// EnsurePipeline must have succeeded first.
func (p *MeshPipeline) SetCamera(viewProj mgl32.Mat4) error {
	if p.cameraBuf == nil {
		return ErrPipelineNotReady
	}
	p.queue.WriteBuffer(p.cameraBuf, 0, instgrid.RawTransform(viewProj).AppendBytes(nil))
	return nil
}

// RecordDraws records one instanced draw into an existing render pass: the
// whole mesh once per transform in the group. This is a no-op until
// EnsurePipeline has succeeded or when mesh or group is nil.
func (p *MeshPipeline) RecordDraws(rp hal.RenderPassEncoder, mesh *Mesh, group *InstanceGroup) {
	if p.pipeline == nil || mesh == nil || group == nil {
		return
	}
	rp.SetPipeline(p.pipeline)
	rp.SetBindGroup(0, p.cameraBind, nil)
	rp.SetVertexBuffer(0, mesh.Buffer(), 0)
	rp.SetVertexBuffer(1, group.Buffer(), 0)
	rp.Draw(mesh.VertexCount(), group.DrawCount(), 0, 0)
}

// createPipeline compiles the instancing shader and creates the render
// pipeline with the mesh and instance vertex layouts.
func (p *MeshPipeline) createPipeline() error {
	if instanceShaderSource == "" {
		return fmt.Errorf("instance shader source is empty")
	}

	shader, err := p.device.CreateShaderModule(&hal.ShaderModuleDescriptor{
		Label:  "instance_shader",
		Source: hal.ShaderSource{WGSL: instanceShaderSource},
	})
	if err != nil {
		return fmt.Errorf("compile instance shader: %w", err)
	}
	p.shader = shader

	cameraLayout, err := p.device.CreateBindGroupLayout(&hal.BindGroupLayoutDescriptor{
		Label: "instance_camera_layout",
		Entries: []gputypes.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: gputypes.ShaderStageVertex,
				Buffer:     &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("create camera layout: %w", err)
	}
	p.cameraLayout = cameraLayout

	pipeLayout, err := p.device.CreatePipelineLayout(&hal.PipelineLayoutDescriptor{
		Label:            "instance_pipe_layout",
		BindGroupLayouts: []hal.BindGroupLayout{p.cameraLayout},
	})
	if err != nil {
		return fmt.Errorf("create instance pipeline layout: %w", err)
	}
	p.pipeLayout = pipeLayout

	cameraBuf, err := p.device.CreateBuffer(&hal.BufferDescriptor{
		Label: "instance_camera",
		Size:  cameraUniformSize,
		Usage: gputypes.BufferUsageUniform | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("create camera buffer: %w", err)
	}
	p.cameraBuf = cameraBuf
	p.queue.WriteBuffer(cameraBuf, 0, instgrid.RawTransform(mgl32.Ident4()).AppendBytes(nil))

	cameraBind, err := p.device.CreateBindGroup(&hal.BindGroupDescriptor{
		Label:  "instance_camera_bind",
		Layout: p.cameraLayout,
		Entries: []gputypes.BindGroupEntry{
			{Binding: 0, Resource: gputypes.BufferBinding{
				Buffer: cameraBuf.NativeHandle(), Offset: 0, Size: cameraUniformSize,
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("create camera bind group: %w", err)
	}
	p.cameraBind = cameraBind

	premulBlend := gputypes.BlendStatePremultiplied()
	pipeline, err := p.device.CreateRenderPipeline(&hal.RenderPipelineDescriptor{
		Label:  "instance_pipeline",
		Layout: p.pipeLayout,
		Vertex: hal.VertexState{
			Module:     p.shader,
			EntryPoint: "vs_main",
			Buffers:    pipelineVertexLayouts(),
		},
		Fragment: &hal.FragmentState{
			Module:     p.shader,
			EntryPoint: "fs_main",
			Targets: []gputypes.ColorTargetState{
				{
					Format:    gputypes.TextureFormatBGRA8Unorm,
					Blend:     &premulBlend,
					WriteMask: gputypes.ColorWriteMaskAll,
				},
			},
		},
		Primitive: gputypes.PrimitiveState{
			Topology: gputypes.PrimitiveTopologyTriangleList,
			CullMode: gputypes.CullModeNone,
		},
		Multisample: gputypes.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("create instance pipeline: %w", err)
	}
	p.pipeline = pipeline

	instgrid.Logger().Info("instance pipeline created",
		"meshStride", meshVertexStride,
		"instanceStride", instgrid.RawTransformStride)

	return nil
}

// Destroy releases all GPU resources held by the pipeline in reverse
// creation order. Safe to call multiple times or on a pipeline with no
// allocated resources.
func (p *MeshPipeline) Destroy() {
	if p.device == nil {
		return
	}
	if p.pipeline != nil {
		p.device.DestroyRenderPipeline(p.pipeline)
		p.pipeline = nil
	}
	if p.cameraBind != nil {
		p.device.DestroyBindGroup(p.cameraBind)
		p.cameraBind = nil
	}
	if p.cameraBuf != nil {
		p.device.DestroyBuffer(p.cameraBuf)
		p.cameraBuf = nil
	}
	if p.pipeLayout != nil {
		p.device.DestroyPipelineLayout(p.pipeLayout)
		p.pipeLayout = nil
	}
	if p.cameraLayout != nil {
		p.device.DestroyBindGroupLayout(p.cameraLayout)
		p.cameraLayout = nil
	}
	if p.shader != nil {
		p.device.DestroyShaderModule(p.shader)
		p.shader = nil
	}
}

// meshVertexLayout returns the vertex buffer layout for the mesh stream at
// slot 0: interleaved position+color, stepping per vertex.
func meshVertexLayout() []gputypes.VertexBufferLayout {
	return []gputypes.VertexBufferLayout{
		{
			ArrayStride: meshVertexStride,
			StepMode:    gputypes.VertexStepModeVertex,
			Attributes: []gputypes.VertexAttribute{
				{Format: gputypes.VertexFormatFloat32x3, Offset: 0, ShaderLocation: 0},  // position
				{Format: gputypes.VertexFormatFloat32x3, Offset: 12, ShaderLocation: 1}, // color
			},
		},
	}
}

// pipelineVertexLayouts returns both vertex buffers of the instanced
// pipeline: the mesh at slot 0, the instance transforms at slot 1.
func pipelineVertexLayouts() []gputypes.VertexBufferLayout {
	return append(meshVertexLayout(), InstanceVertexLayout()...)
}
