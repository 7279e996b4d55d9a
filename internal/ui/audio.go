package ui

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2/audio"
)

// SoundType represents different sound effects.
type SoundType int

const (
	SoundMove SoundType = iota
	SoundCapture
	SoundPromotion
	SoundInvalid
	SoundLowTime
	SoundGameEnd
)

const sampleRate = 44100

// AudioManager plays procedurally generated sound effects.
type AudioManager struct {
	context *audio.Context
	sounds  map[SoundType][]byte
	enabled bool
	volume  float64
}

// NewAudioManager creates a new audio manager.
func NewAudioManager() *AudioManager {
	am := &AudioManager{
		context: audio.NewContext(sampleRate),
		sounds:  make(map[SoundType][]byte),
		enabled: true,
		volume:  0.5,
	}
	am.sounds[SoundMove] = synth(0.08, func(t, _ float64) float64 { return click(440, t) * 0.3 })
	am.sounds[SoundCapture] = synth(0.12, func(t, _ float64) float64 { return click(330, t) * 0.5 })
	am.sounds[SoundPromotion] = synth(0.25, func(t, p float64) float64 {
		// Rising fifth.
		freq := 523.25
		if p > 0.5 {
			freq = 783.99
		}
		return math.Sin(2*math.Pi*freq*t) * attackDecay(p) * 0.35
	})
	am.sounds[SoundInvalid] = synth(0.1, func(t, p float64) float64 {
		wave := math.Sin(2*math.Pi*150*t) + 0.3*math.Sin(4*math.Pi*150*t)
		return wave * (1 - p) * 0.15
	})
	am.sounds[SoundLowTime] = synth(0.1, func(t, p float64) float64 {
		return math.Sin(2*math.Pi*880*t) * attackDecay(p) * 0.3
	})
	am.sounds[SoundGameEnd] = synth(0.4, func(t, p float64) float64 {
		// C major chord with a flat top.
		env := 1.0
		if p < 0.1 {
			env = p / 0.1
		} else if p > 0.7 {
			env = (1 - p) / 0.3
		}
		sum := 0.0
		for _, f := range []float64{261.63, 329.63, 392.00} {
			sum += math.Sin(2 * math.Pi * f * t)
		}
		return sum / 3 * env * 0.5
	})
	return am
}

// synth renders duration seconds of a mono waveform as 16-bit stereo PCM.
// wave receives the time in seconds and the progress in [0, 1).
func synth(duration float64, wave func(t, progress float64) float64) []byte {
	samples := int(sampleRate * duration)
	data := make([]byte, samples*4)
	for i := 0; i < samples; i++ {
		t := float64(i) / sampleRate
		v := max(-1, min(1, wave(t, t/duration)))
		val := int16(v * 32767)
		data[i*4] = byte(val)
		data[i*4+1] = byte(val >> 8)
		data[i*4+2] = byte(val)
		data[i*4+3] = byte(val >> 8)
	}
	return data
}

// click is a decaying tone with a little noise, like wood on wood.
func click(freq, t float64) float64 {
	noise := (math.Sin(t*sampleRate*0.3) + math.Sin(t*sampleRate*0.7)) * 0.3
	return (math.Sin(2*math.Pi*freq*t) + noise) * math.Exp(-t*30)
}

func attackDecay(p float64) float64 {
	if p < 0.1 {
		return p / 0.1
	}
	return 1 - (p-0.1)/0.9
}

// Play plays a sound effect.
func (am *AudioManager) Play(sound SoundType) {
	if !am.enabled {
		return
	}
	data, ok := am.sounds[sound]
	if !ok {
		return
	}
	// A player per call lets sounds overlap.
	player := am.context.NewPlayerFromBytes(data)
	player.SetVolume(am.volume)
	player.Play()
}

// SetEnabled enables or disables audio.
func (am *AudioManager) SetEnabled(enabled bool) {
	am.enabled = enabled
}

// IsEnabled returns whether audio is enabled.
func (am *AudioManager) IsEnabled() bool {
	return am.enabled
}
