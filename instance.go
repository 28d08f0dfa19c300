package instgrid

import (
	"github.com/go-gl/mathgl/mgl32"
)

// Grid preset constants. These are the documented defaults of the demo
// grid, not hidden magic numbers: alternate presets are plain Config values.
const (
	// RotationDegrees is the fixed rotation applied to every instance that
	// does not sit exactly on the origin, about the axis pointing from the
	// origin to the instance. It is a design constant of the generator, not
	// a per-call parameter.
	RotationDegrees = 45.0

	// DefaultInstancesPerRow is the side length of the grid preset.
	DefaultInstancesPerRow = 10
)

// Instance is one grid cell's spatial transform: a rendered copy of the base
// mesh distinguished only by position and rotation. Both fields are computed
// by Generate and not mutated afterwards.
type Instance struct {
	Position mgl32.Vec3

	// Rotation is always a valid unit quaternion. Generate never builds it
	// from a zero-length axis.
	Rotation mgl32.Quat
}

// InstanceSet is an ordered sequence of instances. Index i maps 1:1 to
// per-instance attribute slot i in the encoded GPU buffer, so insertion
// order is semantically meaningful and must not be reordered.
type InstanceSet []Instance

// Generate lays out gridSize×gridSize instances row-major, z as the outer
// axis and x as the inner axis, each at position (x, 0, z) minus the
// displacement. A gridSize of 0 yields an empty set; that is valid, not an
// error.
//
// Instances off the origin rotate RotationDegrees about their normalized
// position; the instance exactly at the origin keeps the identity rotation.
// Generate is pure and deterministic: identical inputs produce bit-identical
// sets.
func Generate(gridSize uint32, displacement mgl32.Vec3) InstanceSet {
	set := make(InstanceSet, 0, int(gridSize)*int(gridSize))
	for z := uint32(0); z < gridSize; z++ {
		for x := uint32(0); x < gridSize; x++ {
			position := mgl32.Vec3{float32(x), 0, float32(z)}.Sub(displacement)
			set = append(set, Instance{
				Position: position,
				Rotation: rotationAt(position),
			})
		}
	}
	return set
}

// rotationAt returns the rotation for an instance at the given position.
// A rotation axis must have nonzero length; a quaternion built from a zero
// axis is degenerate and distorts scale, so the exact-zero position keeps
// the identity rotation (0° about the z unit axis) instead.
func rotationAt(position mgl32.Vec3) mgl32.Quat {
	if position == (mgl32.Vec3{}) {
		return mgl32.QuatIdent()
	}
	return mgl32.QuatRotate(mgl32.DegToRad(RotationDegrees), position.Normalize())
}

// Config selects how many instances to lay out and where the grid sits
// relative to the origin. The zero value is the single-instance preset.
type Config struct {
	// CountPerRow is the grid side length; the set holds
	// CountPerRow×CountPerRow instances.
	CountPerRow uint32

	// Displacement recenters the grid: every position is (x, 0, z) minus
	// this vector.
	Displacement mgl32.Vec3
}

// Create generates and encodes the grid described by the config, shorthand
// for Create(c.CountPerRow, c.Displacement).
func (c Config) Create() (InstanceSet, []byte) {
	return Create(c.CountPerRow, c.Displacement)
}

// SingleConfig returns the single-instance preset: no grid, zero
// displacement. Generation yields an empty set and an empty buffer; a
// renderer using this preset draws exactly one copy at the origin.
func SingleConfig() Config {
	return Config{}
}

// GridConfig returns the demo grid preset: DefaultInstancesPerRow per row,
// displaced by half the row count on x and z so the grid is centered on the
// origin with the identity-rotation instance in the middle.
func GridConfig() Config {
	return Config{
		CountPerRow:  DefaultInstancesPerRow,
		Displacement: GridDisplacement(DefaultInstancesPerRow),
	}
}

// GridDisplacement returns the displacement that centers a countPerRow grid
// on the origin: half the row count on the x and z axes.
func GridDisplacement(countPerRow uint32) mgl32.Vec3 {
	half := float32(countPerRow) * 0.5
	return mgl32.Vec3{half, 0, half}
}

// Create generates the grid and encodes it in one step. The byte buffer is
// the concatenation of every instance's RawTransform in set order, ready to
// hand to a device buffer upload; its length is always 64×len(set).
func Create(countPerRow uint32, displacement mgl32.Vec3) (InstanceSet, []byte) {
	set := Generate(countPerRow, displacement)
	return set, set.Bytes()
}
