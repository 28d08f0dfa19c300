package gpu

import (
	"errors"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/instgrid"
)

func TestNewMeshPipeline(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewMeshPipeline(device, queue)
	defer p.Destroy()

	if p.device == nil {
		t.Error("expected non-nil device")
	}
	if p.queue == nil {
		t.Error("expected non-nil queue")
	}

	// Before pipeline creation, all GPU objects should be nil.
	if p.shader != nil {
		t.Error("expected nil shader before EnsurePipeline")
	}
	if p.pipeline != nil {
		t.Error("expected nil pipeline before EnsurePipeline")
	}
	if p.cameraBuf != nil {
		t.Error("expected nil camera buffer before EnsurePipeline")
	}
}

func TestMeshPipelineEnsure(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewMeshPipeline(device, queue)
	defer p.Destroy()

	err := p.EnsurePipeline()
	if err != nil {
		t.Fatalf("EnsurePipeline failed: %v", err)
	}

	if p.shader == nil {
		t.Error("expected non-nil shader")
	}
	if p.cameraLayout == nil {
		t.Error("expected non-nil cameraLayout")
	}
	if p.pipeLayout == nil {
		t.Error("expected non-nil pipeLayout")
	}
	if p.cameraBuf == nil {
		t.Error("expected non-nil camera buffer")
	}
	if p.cameraBind == nil {
		t.Error("expected non-nil camera bind group")
	}
	if p.pipeline == nil {
		t.Error("expected non-nil pipeline")
	}

	// Idempotent: calling again should not re-create.
	origPipeline := p.pipeline
	err = p.EnsurePipeline()
	if err != nil {
		t.Fatalf("second EnsurePipeline failed: %v", err)
	}
	if p.pipeline != origPipeline {
		t.Error("pipeline was recreated unnecessarily")
	}
}

func TestMeshPipelineSetCameraBeforeEnsure(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewMeshPipeline(device, queue)
	defer p.Destroy()

	err := p.SetCamera(mgl32.Ident4())
	if !errors.Is(err, ErrPipelineNotReady) {
		t.Errorf("expected ErrPipelineNotReady, got %v", err)
	}
}

func TestMeshPipelineSetCamera(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewMeshPipeline(device, queue)
	defer p.Destroy()

	if err := p.EnsurePipeline(); err != nil {
		t.Fatalf("EnsurePipeline failed: %v", err)
	}

	proj := mgl32.Perspective(mgl32.DegToRad(45), 16.0/9.0, 0.1, 100)
	view := mgl32.LookAtV(mgl32.Vec3{0, 5, 10}, mgl32.Vec3{}, mgl32.Vec3{0, 1, 0})
	if err := p.SetCamera(proj.Mul4(view)); err != nil {
		t.Fatalf("SetCamera failed: %v", err)
	}
}

func TestMeshPipelineRecordDrawsNilSafe(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewMeshPipeline(device, queue)
	defer p.Destroy()

	// Before EnsurePipeline, RecordDraws must be a no-op (not panic).
	p.RecordDraws(nil, nil, nil)

	if err := p.EnsurePipeline(); err != nil {
		t.Fatalf("EnsurePipeline failed: %v", err)
	}

	// Nil mesh or group is still a no-op.
	p.RecordDraws(nil, nil, nil)
}

func TestMeshPipelineDestroy(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewMeshPipeline(device, queue)

	if err := p.EnsurePipeline(); err != nil {
		t.Fatalf("EnsurePipeline failed: %v", err)
	}

	p.Destroy()

	if p.shader != nil {
		t.Error("expected nil shader after Destroy")
	}
	if p.cameraLayout != nil {
		t.Error("expected nil cameraLayout after Destroy")
	}
	if p.pipeLayout != nil {
		t.Error("expected nil pipeLayout after Destroy")
	}
	if p.cameraBuf != nil {
		t.Error("expected nil camera buffer after Destroy")
	}
	if p.cameraBind != nil {
		t.Error("expected nil camera bind group after Destroy")
	}
	if p.pipeline != nil {
		t.Error("expected nil pipeline after Destroy")
	}

	// Double-destroy should be safe.
	p.Destroy()
}

func TestMeshPipelineDestroyBeforeCreate(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	p := NewMeshPipeline(device, queue)

	// Destroying without creating should not panic.
	p.Destroy()
}

// TestMeshPipelineRenderPass exercises the full draw path: pipeline creation,
// render pass encoding with one instanced draw, submission, and fence wait.
func TestMeshPipelineRenderPass(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	group, err := NewInstanceGroup(device, queue, instgrid.GridConfig())
	if err != nil {
		t.Fatalf("NewInstanceGroup failed: %v", err)
	}
	defer group.Destroy()

	mesh, err := NewMesh(device, queue, "test_mesh", triangleVertices())
	if err != nil {
		t.Fatalf("NewMesh failed: %v", err)
	}
	defer mesh.Destroy()

	p := NewMeshPipeline(device, queue)
	defer p.Destroy()
	if err := p.EnsurePipeline(); err != nil {
		t.Fatalf("EnsurePipeline failed: %v", err)
	}
	if err := p.SetCamera(mgl32.Ident4()); err != nil {
		t.Fatalf("SetCamera failed: %v", err)
	}

	tex, err := device.CreateTexture(&hal.TextureDescriptor{
		Label:         "test_target",
		Size:          hal.Extent3D{Width: 64, Height: 64, DepthOrArrayLayers: 1},
		MipLevelCount: 1,
		SampleCount:   1,
		Dimension:     gputypes.TextureDimension2D,
		Format:        gputypes.TextureFormatBGRA8Unorm,
		Usage:         gputypes.TextureUsageRenderAttachment,
	})
	if err != nil {
		t.Fatalf("CreateTexture failed: %v", err)
	}
	defer device.DestroyTexture(tex)

	view, err := device.CreateTextureView(tex, &hal.TextureViewDescriptor{
		Label: "test_target_view",
	})
	if err != nil {
		t.Fatalf("CreateTextureView failed: %v", err)
	}
	defer device.DestroyTextureView(view)

	encoder, err := device.CreateCommandEncoder(&hal.CommandEncoderDescriptor{
		Label: "test_encoder",
	})
	if err != nil {
		t.Fatalf("CreateCommandEncoder failed: %v", err)
	}
	if err := encoder.BeginEncoding("test_frame"); err != nil {
		t.Fatalf("BeginEncoding failed: %v", err)
	}

	rp := encoder.BeginRenderPass(&hal.RenderPassDescriptor{
		Label: "test_pass",
		ColorAttachments: []hal.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     gputypes.LoadOpClear,
			StoreOp:    gputypes.StoreOpStore,
			ClearValue: gputypes.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	p.RecordDraws(rp, mesh, group)
	rp.End()

	cmdBuf, err := encoder.EndEncoding()
	if err != nil {
		t.Fatalf("EndEncoding failed: %v", err)
	}
	defer device.FreeCommandBuffer(cmdBuf)

	fence, err := device.CreateFence()
	if err != nil {
		t.Fatalf("CreateFence failed: %v", err)
	}
	defer device.DestroyFence(fence)

	if err := queue.Submit([]hal.CommandBuffer{cmdBuf}, fence, 1); err != nil {
		t.Fatalf("Submit failed: %v", err)
	}
	fenceOK, err := device.Wait(fence, 1, 5*time.Second)
	if err != nil || !fenceOK {
		t.Fatalf("Wait failed: ok=%v err=%v", fenceOK, err)
	}
}
