package instgrid

import (
	"encoding/binary"
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// RawTransformStride is the byte stride per instance in the encoded buffer.
// Layout per instance:
//
//	column 0 (vec4<f32>) = 16 bytes
//	column 1 (vec4<f32>) = 16 bytes
//	column 2 (vec4<f32>) = 16 bytes
//	column 3 (vec4<f32>) = 16 bytes (translation in xyz)
//
// Total = 64 bytes per instance: 16 contiguous little-endian 4-byte floats,
// column-major 4×4. This is the only memory layout the consuming vertex
// stage relies on.
const RawTransformStride = 64

// RawTransform is one instance transform flattened for GPU consumption: a
// 4×4 homogeneous matrix as 16 floats in column-major order, the standard
// graphics convention. A vertex stage reads it as four consecutive vec4
// attributes and reassembles the matrix.
type RawTransform [16]float32

// Raw composes the instance's model matrix: rotate about the local origin,
// then translate to the grid position.
func (i Instance) Raw() RawTransform {
	p := i.Position
	m := mgl32.Translate3D(p.X(), p.Y(), p.Z()).Mul4(i.Rotation.Mat4())
	return RawTransform(m)
}

// Translation returns the translation encoded in the transform: the first
// three components of the last column. For a transform produced by Raw this
// round-trips the instance position exactly up to float arithmetic.
func (r RawTransform) Translation() mgl32.Vec3 {
	return mgl32.Vec3{r[12], r[13], r[14]}
}

// Raw encodes every instance in set order, 1:1 with the input.
func (s InstanceSet) Raw() []RawTransform {
	out := make([]RawTransform, len(s))
	for idx := range s {
		out[idx] = s[idx].Raw()
	}
	return out
}

// Bytes returns the ready-to-upload buffer: each instance's RawTransform in
// set order, RawTransformStride bytes apiece, no padding between instances.
// An empty set yields an empty buffer.
func (s InstanceSet) Bytes() []byte {
	buf := make([]byte, len(s)*RawTransformStride)
	for idx := range s {
		putRawTransform(buf[idx*RawTransformStride:], s[idx].Raw())
	}
	return buf
}

// AppendBytes appends the transform's 64-byte wire form to dst and returns
// the extended slice.
func (r RawTransform) AppendBytes(dst []byte) []byte {
	off := len(dst)
	dst = append(dst, make([]byte, RawTransformStride)...)
	putRawTransform(dst[off:], r)
	return dst
}

// putRawTransform writes one transform as 16 contiguous little-endian
// 4-byte floats. buf must have at least RawTransformStride bytes.
func putRawTransform(buf []byte, m RawTransform) {
	for k, v := range m {
		binary.LittleEndian.PutUint32(buf[k*4:k*4+4], math.Float32bits(v))
	}
}
