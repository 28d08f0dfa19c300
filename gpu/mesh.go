package gpu

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/gogpu/gputypes"
	"github.com/gogpu/wgpu/hal"
)

// ErrInvalidMeshData is returned when mesh vertex data is empty or not a
// whole number of vertices.
var ErrInvalidMeshData = errors.New("gpu: mesh data is not a whole number of vertices")

// meshVertexStride is the byte stride per mesh vertex in the instanced
// pipeline. Layout per vertex:
//
//	position (vec3<f32>) = 12 bytes (location 0)
//	color    (vec3<f32>) = 12 bytes (location 1)
//
// Total = 24 bytes per vertex.
const meshVertexStride = 24

// Mesh holds the uploaded vertex buffer of the base geometry that gets
// instanced. Vertices are interleaved position+color, meshVertexStride
// bytes apiece; build the data with AppendMeshVertex.
type Mesh struct {
	device      hal.Device
	buffer      hal.Buffer
	vertexCount uint32
}

// NewMesh uploads interleaved vertex data to a fresh device buffer. The
// data length must be a non-zero multiple of the vertex stride (24 bytes:
// position vec3 + color vec3).
func NewMesh(device hal.Device, queue hal.Queue, label string, data []byte) (*Mesh, error) {
	if device == nil {
		return nil, ErrNilDevice
	}
	if queue == nil {
		return nil, ErrNilQueue
	}
	if len(data) == 0 || len(data)%meshVertexStride != 0 {
		return nil, fmt.Errorf("%w: %d bytes, stride %d", ErrInvalidMeshData, len(data), meshVertexStride)
	}

	buf, err := device.CreateBuffer(&hal.BufferDescriptor{
		Label: label,
		Size:  uint64(len(data)),
		Usage: gputypes.BufferUsageVertex | gputypes.BufferUsageCopyDst,
	})
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", label, err)
	}
	queue.WriteBuffer(buf, 0, data)

	return &Mesh{
		device:      device,
		buffer:      buf,
		vertexCount: uint32(len(data) / meshVertexStride), //nolint:gosec // vertex count fits uint32
	}, nil
}

// VertexCount returns the number of vertices in the mesh.
func (m *Mesh) VertexCount() uint32 {
	return m.vertexCount
}

// Buffer returns the uploaded vertex buffer.
func (m *Mesh) Buffer() hal.Buffer {
	return m.buffer
}

// Destroy releases the device buffer. Safe to call multiple times.
func (m *Mesh) Destroy() {
	if m.device != nil && m.buffer != nil {
		m.device.DestroyBuffer(m.buffer)
	}
	m.buffer = nil
}

// AppendMeshVertex appends one interleaved vertex (position then color, six
// little-endian floats) to dst and returns the extended slice.
func AppendMeshVertex(dst []byte, position, color mgl32.Vec3) []byte {
	off := len(dst)
	dst = append(dst, make([]byte, meshVertexStride)...)
	writeMeshVertex(dst[off:], position, color)
	return dst
}

// writeMeshVertex writes a single mesh vertex into the buffer.
// Layout: position (vec3<f32>) + color (vec3<f32>) = 24 bytes.
func writeMeshVertex(buf []byte, position, color mgl32.Vec3) {
	binary.LittleEndian.PutUint32(buf[0:4], math.Float32bits(position.X()))
	binary.LittleEndian.PutUint32(buf[4:8], math.Float32bits(position.Y()))
	binary.LittleEndian.PutUint32(buf[8:12], math.Float32bits(position.Z()))
	binary.LittleEndian.PutUint32(buf[12:16], math.Float32bits(color.X()))
	binary.LittleEndian.PutUint32(buf[16:20], math.Float32bits(color.Y()))
	binary.LittleEndian.PutUint32(buf[20:24], math.Float32bits(color.Z()))
}
