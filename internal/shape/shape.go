// Package shape generates particle positions on the four parametric templates:
// heart, flower, saturn ring and galaxy spiral.
package shape

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
)

// Kind identifies a shape template.
type Kind int

const (
	Heart Kind = iota
	Flower
	Saturn
	Galaxy

	// NumKinds is the number of templates. Valid kinds are in [0, NumKinds).
	NumKinds
)

// ErrUnknownKind is returned by ParseKind for names that match no template.
var ErrUnknownKind = errors.New("unknown shape")

var kindNames = [NumKinds]string{"heart", "flower", "saturn", "galaxy"}

// String returns the lowercase template name.
func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("shape(%d)", int(k))
	}
	return kindNames[k]
}

// Valid reports whether k names one of the templates.
func (k Kind) Valid() bool {
	return k >= 0 && k < NumKinds
}

// Next returns the template after k, wrapping back to Heart.
func (k Kind) Next() Kind {
	return (k + 1) % NumKinds
}

// ParseKind resolves a template name, ignoring case and surrounding space.
func ParseKind(name string) (Kind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for i, n := range kindNames {
		if n == name {
			return Kind(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, name)
}

// Kinds returns all templates in cycling order.
func Kinds() []Kind {
	return []Kind{Heart, Flower, Saturn, Galaxy}
}

// MarshalText implements encoding.TextMarshaler so kinds appear by name in
// JSON and YAML.
func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Generator draws points on a template. A Generator is not safe for
// concurrent use unless built with NewGenerator(nil).
type Generator struct {
	float func() float64
}

// NewGenerator returns a Generator drawing from r. A nil r uses the
// package-level source, which is safe for concurrent use.
func NewGenerator(r *rand.Rand) *Generator {
	if r == nil {
		return &Generator{float: rand.Float64}
	}
	return &Generator{float: r.Float64}
}

// NewSeededGenerator returns a deterministic Generator.
func NewSeededGenerator(seed uint64) *Generator {
	return NewGenerator(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)))
}

var defaultGenerator = NewGenerator(nil)

// Generate draws n points on the given template using the default source.
func Generate(kind Kind, n int) []mgl32.Vec3 {
	return defaultGenerator.Generate(kind, n)
}

// uniform draws from [lo, hi).
func (g *Generator) uniform(lo, hi float64) float64 {
	return lo + g.float()*(hi-lo)
}

// Point draws a single point on the template. It panics on an invalid kind.
func (g *Generator) Point(kind Kind) mgl32.Vec3 {
	switch kind {
	case Heart:
		return g.heart()
	case Flower:
		return g.flower()
	case Saturn:
		return g.saturn()
	case Galaxy:
		return g.galaxy()
	}
	panic(fmt.Sprintf("shape: invalid kind %d", int(kind)))
}

// Generate redraws n independent points on the template.
func (g *Generator) Generate(kind Kind, n int) []mgl32.Vec3 {
	if n < 0 {
		n = 0
	}
	points := make([]mgl32.Vec3, n)
	for i := range points {
		points[i] = g.Point(kind)
	}
	return points
}

// Fill overwrites dst, a flat x,y,z buffer, with len(dst)/3 fresh points.
// Trailing elements that do not form a full triple are left untouched.
func (g *Generator) Fill(dst []float32, kind Kind) {
	for i := 0; i+2 < len(dst); i += 3 {
		p := g.Point(kind)
		dst[i] = p[0]
		dst[i+1] = p[1]
		dst[i+2] = p[2]
	}
}

func (g *Generator) heart() mgl32.Vec3 {
	t := g.uniform(0, 2*math.Pi)
	s := math.Sin(t)
	x := s * s * s
	y := (13*math.Cos(t) - 5*math.Cos(2*t) - 2*math.Cos(3*t) - math.Cos(4*t)) / 16
	z := g.uniform(-0.25, 0.25)
	return mgl32.Vec3{float32(x), float32(y), float32(z)}
}

// flower is a six-petal rose. The radius goes negative on alternate lobes,
// which is what draws the petals; it must not be clamped.
func (g *Generator) flower() mgl32.Vec3 {
	angle := g.uniform(0, 2*math.Pi)
	r := 0.8 * math.Sin(6*angle)
	z := g.uniform(-0.25, 0.25)
	return mgl32.Vec3{float32(r * math.Cos(angle)), float32(r * math.Sin(angle)), float32(z)}
}

// saturn lies on a flat ring near the x-z plane.
func (g *Generator) saturn() mgl32.Vec3 {
	angle := g.uniform(0, 2*math.Pi)
	radius := g.uniform(1, 1.3)
	y := g.uniform(-0.1, 0.1)
	return mgl32.Vec3{float32(radius * math.Cos(angle)), float32(y), float32(radius * math.Sin(angle))}
}

// galaxy is a three-turn linear spiral in the x-z plane.
func (g *Generator) galaxy() mgl32.Vec3 {
	angle := g.uniform(0, 6*math.Pi)
	radius := 0.1 * angle
	y := g.uniform(-0.15, 0.15)
	return mgl32.Vec3{float32(radius * math.Cos(angle)), float32(y), float32(radius * math.Sin(angle))}
}
