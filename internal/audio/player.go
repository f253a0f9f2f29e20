package audio

import (
	"fmt"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"

	"github.com/ayusman/handcloud/internal/logging"
)

// Player plays pops on the default output device. The speaker is opened on
// the first Play so machines without audio only fail when sound is used.
type Player struct {
	rate    beep.SampleRate
	log     logging.Logger
	once    sync.Once
	initErr error
}

// NewPlayer creates a Player.
func NewPlayer(log logging.Logger) *Player {
	return &Player{rate: SampleRate, log: logging.OrNop(log)}
}

func (p *Player) init() error {
	p.once.Do(func() {
		if err := speaker.Init(p.rate, p.rate.N(time.Second/20)); err != nil {
			p.initErr = fmt.Errorf("init speaker: %w", err)
		}
	})
	return p.initErr
}

// Pop plays one pop without blocking.
func (p *Player) Pop() error {
	if err := p.init(); err != nil {
		return err
	}
	speaker.Play(NewPop(p.rate))
	return nil
}

// PopFunc adapts Pop to a firework hook, logging failures once.
func (p *Player) PopFunc() func() {
	var warned sync.Once
	return func() {
		if err := p.Pop(); err != nil {
			warned.Do(func() { p.log.Warnf("sound disabled: %v", err) })
		}
	}
}

// Close stops playback.
func (p *Player) Close() {
	if p.init() != nil {
		return
	}
	speaker.Lock()
	speaker.Clear()
	speaker.Unlock()
}
