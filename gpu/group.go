package gpu

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"

	"github.com/gogpu/instgrid"
)

// Device errors.
var (
	// ErrNilDevice is returned when a constructor is called without a device.
	ErrNilDevice = errors.New("gpu: device is nil")

	// ErrNilQueue is returned when a constructor is called without a queue.
	ErrNilQueue = errors.New("gpu: queue is nil")
)

// instanceBufferLabel is the default debug label of the uploaded buffer.
const instanceBufferLabel = "Instance Buffer"

// GroupOption configures the device-side buffer of an InstanceGroup.
type GroupOption func(*groupOptions)

// groupOptions holds optional buffer configuration.
type groupOptions struct {
	label string
	usage gputypes.BufferUsage
}

// defaultGroupOptions returns the default buffer configuration: the
// "Instance Buffer" label with Vertex|CopyDst usage.
func defaultGroupOptions() groupOptions {
	return groupOptions{
		label: instanceBufferLabel,
		usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	}
}

// WithLabel overrides the debug label of the created buffer.
func WithLabel(label string) GroupOption {
	return func(o *groupOptions) {
		o.label = label
	}
}

// WithUsage replaces the buffer usage flags. The default Vertex|CopyDst
// covers the instanced-draw path; add CopySrc when the buffer must also
// feed buffer-to-buffer copies.
func WithUsage(usage gputypes.BufferUsage) GroupOption {
	return func(o *groupOptions) {
		o.usage = usage
	}
}

// InstanceGroup owns one uploaded instance stream: the generated instances
// together with the device buffer holding their encoded transforms. It is a
// plain data-owning bundle; an entity/component registry can store it as a
// value without this package knowing anything about the registry.
//
// Create with NewInstanceGroup, release with Destroy.
type InstanceGroup struct {
	// CountPerRow and Displacement echo the Config the group was built from.
	CountPerRow  uint32
	Displacement mgl32.Vec3

	// Instances is the generated set, in buffer element order.
	Instances instgrid.InstanceSet

	device hal.Device
	buffer hal.Buffer
}

// NewInstanceGroup generates the cfg grid, encodes it, and uploads the bytes
// to a fresh device buffer.
//
// The single-instance preset (an empty set) still uploads one identity
// transform so that a renderer drawing DrawCount() copies reads a valid
// block for the lone copy at the origin.
func NewInstanceGroup(device hal.Device, queue hal.Queue, cfg instgrid.Config, opts ...GroupOption) (*InstanceGroup, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}

	o := defaultGroupOptions()
	for _, opt := range opts {
		opt(&o)
	}

	instances, data := cfg.Create()
	if len(data) == 0 {
		data = instgrid.RawTransform(mgl32.Ident4()).AppendBytes(nil)
	}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: o.label,
		Size:  uint64(len(data)),
		Usage: o.usage,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", o.label, err)
	}
	queue.WriteBuffer(buf, 0, data)

	instgrid.Logger().Debug("instance buffer uploaded",
		"label", o.label,
		"instances", len(instances),
		"bytes", len(data))

	return &InstanceGroup{
		CountPerRow:  cfg.CountPerRow,
		Displacement: cfg.Displacement,
		Instances:    instances,
		device:       device,
		buffer:       buf,
	}, nil
}

// Len returns the number of generated instances.
func (g *InstanceGroup) Len() int {
	return len(g.Instances)
}

// DrawCount returns the instance count for an instanced draw call: the set
// length, or 1 for the single-instance preset (an empty set draws one copy
// at the origin).
func (g *InstanceGroup) DrawCount() uint32 {
	if len(g.Instances) == 0 {
		return 1
	}
	return uint32(len(g.Instances)) //nolint:gosec // set length fits uint32, it is built from a uint32 side length
}

// Buffer returns the uploaded per-instance vertex buffer. The buffer is
// GPU-read-only after creation; the group never rewrites it.
func (g *InstanceGroup) Buffer() hal.Buffer {
	return g.buffer
}

// Destroy releases the device buffer. Safe to call multiple times.
func (g *InstanceGroup) Destroy() {
	if g.device != nil && g.buffer != nil {
		g.device.DestroyBuffer(g.buffer)
	}
	g.buffer = nil
}
