// Package particles holds the particle buffer and the per-frame integrator
// that scales and spins it.
package particles

import (
	"fmt"

	"github.com/ayusman/handcloud/internal/shape"
)

const (
	// DefaultCount is the number of particles in a set unless configured.
	DefaultCount = 5000

	// RotationStep is the angle in radians added about the vertical axis
	// on every integrator step.
	RotationStep = 0.002
)

// Set is an ordered particle cloud stored as a flat x,y,z buffer of length
// 3*Len(). The buffer is replaced, never resized, when the shape changes.
type Set struct {
	positions []float32
	kind      shape.Kind
	rotation  float64
}

// New creates a set of n particles laid out on kind.
func New(n int, kind shape.Kind, gen *shape.Generator) (*Set, error) {
	if n <= 0 {
		return nil, fmt.Errorf("particle count must be positive, got %d", n)
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("%w: %d", shape.ErrUnknownKind, int(kind))
	}
	s := &Set{positions: make([]float32, 3*n)}
	s.Regenerate(kind, gen)
	return s, nil
}

// Len returns the number of particles.
func (s *Set) Len() int {
	return len(s.positions) / 3
}

// Kind returns the template the set was last generated on.
func (s *Set) Kind() shape.Kind {
	return s.kind
}

// Rotation returns the accumulated orientation about the vertical axis.
func (s *Set) Rotation() float64 {
	return s.rotation
}

// Positions exposes the live buffer. Callers must not retain it across
// a Regenerate.
func (s *Set) Positions() []float32 {
	return s.positions
}

// Copy returns a copy of the buffer.
func (s *Set) Copy() []float32 {
	out := make([]float32, len(s.positions))
	copy(out, s.positions)
	return out
}

// Regenerate swaps in a freshly drawn buffer for kind and resets the
// orientation, the same as building a new point cloud from scratch.
func (s *Set) Regenerate(kind shape.Kind, gen *shape.Generator) {
	buf := make([]float32, len(s.positions))
	gen.Fill(buf, kind)
	s.positions = buf
	s.kind = kind
	s.rotation = 0
}

// Scale multiplies every coordinate by f in place.
func (s *Set) Scale(f float64) {
	k := float32(f)
	for i := range s.positions {
		s.positions[i] *= k
	}
}

// Step runs one integrator frame: the spread factor compounds onto the
// already-scaled coordinates and the set turns by RotationStep.
func (s *Set) Step(spread float64) {
	s.Scale(spread)
	s.rotation += RotationStep
}
