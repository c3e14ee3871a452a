package main

import (
	"encoding/binary"
	"math"
	"math/rand"

	"github.com/hajimehoshi/ebiten/v2/audio"

	"github.com/milk9111/crashthatcar/ecs/system"
)

const (
	sampleRate = 44100
	cueVolume  = 0.6
)

// tone is a decaying swept sine, optionally mixed with noise.
type tone struct {
	freq  float64
	sweep float64
	dur   float64
	noise float64
}

var cueTones = map[system.Cue]tone{
	system.CuePop:          {freq: 660, sweep: 1.5, dur: 0.08},
	system.CueExplosion:    {freq: 120, sweep: 0.5, dur: 0.35, noise: 0.7},
	system.CueBigExplosion: {freq: 70, sweep: 0.4, dur: 0.7, noise: 0.85},
	system.CueSpeedUp:      {freq: 440, sweep: 2, dur: 0.25},
	system.CueShot:         {freq: 300, sweep: 0.6, dur: 0.15, noise: 0.2},
	system.CueArmed:        {freq: 880, sweep: 1, dur: 0.12},
	system.CueFinish:       {freq: 523, sweep: 1.5, dur: 0.6},
	system.CueStart:        {freq: 392, sweep: 1.26, dur: 0.3},
}

// Cues plays the one-shot sounds named by cue events.
type Cues struct {
	players map[system.Cue]*audio.Player
}

func NewCues() *Cues {
	ctx := audio.NewContext(sampleRate)
	rng := rand.New(rand.NewSource(1))
	c := &Cues{players: make(map[system.Cue]*audio.Player, len(cueTones))}
	for cue, t := range cueTones {
		p := ctx.NewPlayerFromBytes(synth(t, rng))
		p.SetVolume(cueVolume)
		c.players[cue] = p
	}
	return c
}

func (c *Cues) Play(cue system.Cue) {
	if c == nil {
		return
	}
	p, ok := c.players[cue]
	if !ok {
		return
	}
	_ = p.Rewind()
	p.Play()
}

// synth renders t as 16-bit little-endian stereo PCM.
func synth(t tone, rng *rand.Rand) []byte {
	n := int(t.dur * sampleRate)
	buf := make([]byte, n*4)
	phase := 0.0
	for i := 0; i < n; i++ {
		p := float64(i) / float64(n)
		f := t.freq * math.Pow(t.sweep, p)
		phase += 2 * math.Pi * f / sampleRate
		s := math.Sin(phase)*(1-t.noise) + (rng.Float64()*2-1)*t.noise
		s *= (1 - p) * (1 - p) * 0.4
		v := uint16(int16(s * math.MaxInt16))
		binary.LittleEndian.PutUint16(buf[i*4:], v)
		binary.LittleEndian.PutUint16(buf[i*4+2:], v)
	}
	return buf
}
