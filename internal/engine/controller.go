package engine

import (
	"math/rand/v2"
	"sync"
	"time"

	"github.com/gogpu/gg"

	"github.com/ayusman/handcloud/internal/detector"
	"github.com/ayusman/handcloud/internal/gesture"
	"github.com/ayusman/handcloud/internal/logging"
	"github.com/ayusman/handcloud/internal/particles"
	"github.com/ayusman/handcloud/internal/shape"
)

// Config holds configuration options for a Controller.
type Config struct {
	ParticleCount int
	InitialShape  shape.Kind
	Thresholds    gesture.Thresholds
	Logger        logging.Logger

	// Generator draws particle positions. Nil uses the shared source.
	Generator *shape.Generator
}

// Controller owns the one RenderState and the ParticleSet. Gesture frames
// and display frames arrive on different goroutines; every mutation and
// read goes through mu so each call runs to completion before the next.
type Controller struct {
	mu         sync.Mutex
	state      State
	set        *particles.Set
	gen        *shape.Generator
	classifier *gesture.Classifier
	frame      uint64

	// hue returns a hue in [0, 360) for pinch recoloring.
	hue func() float64
	// afterFunc schedules the firework revert. Replaced in tests.
	afterFunc func(time.Duration, func())

	subMu   sync.RWMutex
	subs    map[int]func(Snapshot)
	nextSub int

	fireworkHooks []func()

	log logging.Logger
}

// New creates a Controller with a freshly generated particle set.
func New(cfg Config) (*Controller, error) {
	if cfg.ParticleCount == 0 {
		cfg.ParticleCount = particles.DefaultCount
	}
	if cfg.Thresholds == (gesture.Thresholds{}) {
		cfg.Thresholds = gesture.DefaultThresholds()
	}
	gen := cfg.Generator
	if gen == nil {
		gen = shape.NewGenerator(nil)
	}

	set, err := particles.New(cfg.ParticleCount, cfg.InitialShape, gen)
	if err != nil {
		return nil, err
	}

	return &Controller{
		state:      DefaultState(cfg.InitialShape),
		set:        set,
		gen:        gen,
		classifier: gesture.NewClassifier(cfg.Thresholds),
		hue:        func() float64 { return rand.Float64() * 360 },
		afterFunc: func(d time.Duration, f func()) {
			time.AfterFunc(d, f)
		},
		subs: make(map[int]func(Snapshot)),
		log:  logging.OrNop(cfg.Logger),
	}, nil
}

// HandleFrame classifies the first hand in frame and applies its signals.
// An empty frame changes nothing. The applied signals are returned.
func (c *Controller) HandleFrame(frame detector.HandFrame) gesture.Signals {
	hand, ok := frame.Primary()
	if !ok {
		return gesture.Signals{}
	}

	signals := c.classifier.Classify(hand)

	c.mu.Lock()
	if signals.OpenPalm {
		c.state.Spread = OpenSpread
	} else {
		c.state.Spread = ClosedSpread
	}
	if signals.Pinch {
		c.recolorLocked()
	}
	if signals.PointUp {
		c.setShapeLocked(c.state.Shape.Next())
	}
	if signals.TwoFingersUp {
		c.fireworkLocked()
	}
	c.mu.Unlock()

	if signals.TwoFingersUp {
		c.runFireworkHooks()
	}
	if signals.Any() {
		c.log.Debugf("gesture %s -> shape=%s", signals, c.State().Shape)
	}

	return signals
}

// Tick runs one display frame: the integrator scales and spins the set,
// then a snapshot goes to every subscriber.
func (c *Controller) Tick() Snapshot {
	c.mu.Lock()
	c.set.Step(c.state.Spread)
	c.state.Rotation = c.set.Rotation()
	c.frame++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.publish(snap)
	return snap
}

// State returns a copy of the render state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Snapshot returns the current state and a copy of the positions without
// advancing a frame.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// ParticleCount returns the number of particles in the set.
func (c *Controller) ParticleCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.set.Len()
}

// SetShape switches to kind and regenerates the set, resetting color and
// point size. Invalid kinds are ignored.
func (c *Controller) SetShape(kind shape.Kind) bool {
	if !kind.Valid() {
		return false
	}
	c.mu.Lock()
	c.setShapeLocked(kind)
	c.mu.Unlock()
	return true
}

// NextShape advances to the next template and returns it.
func (c *Controller) NextShape() shape.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setShapeLocked(c.state.Shape.Next())
	return c.state.Shape
}

// RandomizeColor applies the pinch recolor and returns the new color.
func (c *Controller) RandomizeColor() gg.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recolorLocked()
	return c.state.Color
}

// SetColor sets the particle color.
func (c *Controller) SetColor(col gg.RGBA) {
	c.mu.Lock()
	c.state.Color = col
	c.mu.Unlock()
}

// Firework triggers the point-size pulse.
func (c *Controller) Firework() {
	c.mu.Lock()
	c.fireworkLocked()
	c.mu.Unlock()
	c.runFireworkHooks()
}

// OnFirework registers fn to run, outside the lock, each time a firework
// fires. Hooks must be registered before frames start flowing.
func (c *Controller) OnFirework(fn func()) {
	c.fireworkHooks = append(c.fireworkHooks, fn)
}

// Restore applies a persisted shape and color, for example from a
// previous session.
func (c *Controller) Restore(kind shape.Kind, col gg.RGBA) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if kind.Valid() && kind != c.state.Shape {
		c.setShapeLocked(kind)
	}
	c.state.Color = col
}

// Subscribe registers fn to receive a snapshot after every Tick and
// returns a function that removes it. fn runs on the display goroutine
// and must not block.
func (c *Controller) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	c.subMu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.subMu.Unlock()

	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Controller) publish(snap Snapshot) {
	c.subMu.RLock()
	defer c.subMu.RUnlock()
	for _, fn := range c.subs {
		fn(snap)
	}
}

func (c *Controller) runFireworkHooks() {
	for _, fn := range c.fireworkHooks {
		fn()
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	return Snapshot{
		State:     c.state,
		Frame:     c.frame,
		Positions: c.set.Copy(),
	}
}

// setShapeLocked regenerates the set and starts the new shape from the
// default look. A pending firework revert still lands on DefaultPointSize.
func (c *Controller) setShapeLocked(kind shape.Kind) {
	c.state.Shape = kind
	c.state.Color = DefaultColor
	c.state.PointSize = DefaultPointSize
	c.set.Regenerate(kind, c.gen)
	c.state.Rotation = c.set.Rotation()
}

func (c *Controller) recolorLocked() {
	c.state.Color = gg.HSL(c.hue(), PinchSaturation, PinchLightness)
}

// fireworkLocked enlarges the points now and schedules an uncancellable
// revert. When pulses overlap, every revert writes the same size, so the
// state settles at DefaultPointSize whichever timer fires last.
func (c *Controller) fireworkLocked() {
	c.state.PointSize = FireworkPointSize
	c.afterFunc(FireworkDuration, func() {
		c.mu.Lock()
		c.state.PointSize = DefaultPointSize
		c.mu.Unlock()
	})
}
