package audio

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/gopxl/beep/speaker"
	"github.com/gopxl/beep/wav"
	"go.uber.org/zap"
)

// ErrUnknownSound is returned when a sound or music track name was never loaded.
var ErrUnknownSound = errors.New("unknown sound")

// resampleQuality is the beep resampler quality used when a file's rate differs from the output rate.
const resampleQuality = 4

// Engine plays short sound effects and looping music tracks.
// When the output device cannot be opened the engine keeps decoding and validating sounds but
// plays nothing.
type Engine interface {
	// LoadSound decodes a WAV file into memory under name.
	//
	// Parameters:
	//   - name: the name used by PlaySound
	//   - path: the WAV file path
	//
	// Returns:
	//   - error: an error if the file cannot be read or decoded
	LoadSound(name, path string) error

	// LoadSoundData decodes WAV bytes into memory under name.
	//
	// Parameters:
	//   - name: the name used by PlaySound
	//   - data: the WAV file contents
	//
	// Returns:
	//   - error: an error if the data cannot be decoded
	LoadSoundData(name string, data []byte) error

	// LoadMusic decodes a WAV file into memory as a music track.
	//
	// Parameters:
	//   - name: the name used by StartMusic and StopMusic
	//   - path: the WAV file path
	//
	// Returns:
	//   - error: an error if the file cannot be read or decoded
	LoadMusic(name, path string) error

	// PlaySound plays a loaded sound once at the sound volume.
	//
	// Parameters:
	//   - name: the sound name
	//
	// Returns:
	//   - error: ErrUnknownSound if name was not loaded
	PlaySound(name string) error

	// StartMusic starts a music track from the beginning, stopping it first if it is playing.
	//
	// Parameters:
	//   - name: the track name
	//   - loop: whether the track repeats forever
	//
	// Returns:
	//   - error: ErrUnknownSound if name was not loaded
	StartMusic(name string, loop bool) error

	// StopMusic stops a music track. Stopping a track that is not playing is a no-op.
	//
	// Parameters:
	//   - name: the track name
	StopMusic(name string)

	// SetMusicVolume sets the music volume in [0, 100]. Playing tracks are updated immediately.
	SetMusicVolume(volume float64)

	// SetSoundVolume sets the sound effect volume in [0, 100].
	SetSoundVolume(volume float64)

	// MusicPlaying reports whether a music track is currently started.
	MusicPlaying(name string) bool

	// Enabled reports whether sounds reach an output device.
	Enabled() bool

	// Close stops every sound and music track.
	Close()
}

// track is a decoded sound held in memory.
type track struct {
	buffer *beep.Buffer
}

func (t *track) streamer() beep.StreamSeeker {
	return t.buffer.Streamer(0, t.buffer.Len())
}

// engine is the implementation of the Engine interface.
type engine struct {
	mu     sync.Mutex
	logger *zap.Logger

	sampleRate   beep.SampleRate
	bufferLength time.Duration
	enabled      bool
	musicVolume  float64
	soundVolume  float64

	mixer   *beep.Mixer
	sounds  map[string]*track
	music   map[string]*track
	playing map[string]*musicVoice
}

// musicVoice is a started music track.
type musicVoice struct {
	ctrl   *beep.Ctrl
	volume *effects.Volume
}

var _ Engine = &engine{}

// NewEngine creates an audio Engine. If output is requested but the speaker cannot be
// initialized, a warning is logged and the engine runs silently.
//
// Parameters:
//   - options: functional options to configure the engine
//
// Returns:
//   - Engine: the created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		logger:       zap.NewNop(),
		sampleRate:   beep.SampleRate(44100),
		bufferLength: 100 * time.Millisecond,
		enabled:      true,
		musicVolume:  100,
		soundVolume:  100,
		mixer:        &beep.Mixer{},
		sounds:       make(map[string]*track),
		music:        make(map[string]*track),
		playing:      make(map[string]*musicVoice),
	}
	for _, opt := range options {
		opt(e)
	}

	if e.enabled {
		if err := speaker.Init(e.sampleRate, e.sampleRate.N(e.bufferLength)); err != nil {
			e.logger.Warn("audio output unavailable, continuing without sound", zap.Error(err))
			e.enabled = false
		} else {
			speaker.Play(e.mixer)
			e.logger.Debug("audio output ready", zap.Int("sample_rate", int(e.sampleRate)))
		}
	}
	return e
}

func (e *engine) LoadSound(name, path string) error {
	t, err := e.decodeFile(path)
	if err != nil {
		return fmt.Errorf("failed to load sound %q: %w", name, err)
	}
	e.mu.Lock()
	e.sounds[name] = t
	e.mu.Unlock()
	return nil
}

func (e *engine) LoadSoundData(name string, data []byte) error {
	t, err := e.decode(io.NopCloser(bytes.NewReader(data)))
	if err != nil {
		return fmt.Errorf("failed to load sound %q: %w", name, err)
	}
	e.mu.Lock()
	e.sounds[name] = t
	e.mu.Unlock()
	return nil
}

func (e *engine) LoadMusic(name, path string) error {
	t, err := e.decodeFile(path)
	if err != nil {
		return fmt.Errorf("failed to load music %q: %w", name, err)
	}
	e.mu.Lock()
	e.music[name] = t
	e.mu.Unlock()
	return nil
}

func (e *engine) decodeFile(path string) (*track, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return e.decode(f)
}

// decode reads the whole WAV stream into a buffer at the engine's sample rate and closes it.
func (e *engine) decode(r io.ReadCloser) (*track, error) {
	streamer, format, err := wav.Decode(r)
	if err != nil {
		r.Close()
		return nil, err
	}
	defer streamer.Close()

	var source beep.Streamer = streamer
	if format.SampleRate != e.sampleRate {
		source = beep.Resample(resampleQuality, format.SampleRate, e.sampleRate, streamer)
	}
	format.SampleRate = e.sampleRate

	buffer := beep.NewBuffer(format)
	buffer.Append(source)
	if err := streamer.Err(); err != nil {
		return nil, err
	}
	return &track{buffer: buffer}, nil
}

func (e *engine) PlaySound(name string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.sounds[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSound, name)
	}
	if !e.enabled || e.soundVolume <= 0 {
		return nil
	}

	speaker.Lock()
	e.mixer.Add(newVolume(t.streamer(), e.soundVolume))
	speaker.Unlock()
	return nil
}

func (e *engine) StartMusic(name string, loop bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	t, ok := e.music[name]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSound, name)
	}
	e.stopLocked(name)

	var s beep.Streamer = t.streamer()
	if loop {
		s = beep.Loop(-1, t.streamer())
	}
	volume := newVolume(s, e.musicVolume)
	voice := &musicVoice{ctrl: &beep.Ctrl{Streamer: volume}, volume: volume}
	e.playing[name] = voice

	if e.enabled {
		speaker.Lock()
		e.mixer.Add(voice.ctrl)
		speaker.Unlock()
	}
	return nil
}

func (e *engine) StopMusic(name string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stopLocked(name)
}

func (e *engine) stopLocked(name string) {
	voice, ok := e.playing[name]
	if !ok {
		return
	}
	delete(e.playing, name)
	if e.enabled {
		speaker.Lock()
		voice.ctrl.Paused = true
		voice.ctrl.Streamer = nil
		speaker.Unlock()
	}
}

func (e *engine) SetMusicVolume(volume float64) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.musicVolume = clampVolume(volume)
	if e.enabled {
		speaker.Lock()
		defer speaker.Unlock()
	}
	for _, voice := range e.playing {
		applyVolume(voice.volume, e.musicVolume)
	}
}

func (e *engine) SetSoundVolume(volume float64) {
	e.mu.Lock()
	e.soundVolume = clampVolume(volume)
	e.mu.Unlock()
}

func (e *engine) MusicPlaying(name string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	_, ok := e.playing[name]
	return ok
}

func (e *engine) Enabled() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.enabled
}

func (e *engine) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()

	for name := range e.playing {
		e.stopLocked(name)
	}
	if !e.enabled {
		return
	}
	speaker.Lock()
	e.mixer.Clear()
	speaker.Unlock()
	e.enabled = false
}

// newVolume wraps s in a volume effect for a [0, 100] volume.
func newVolume(s beep.Streamer, volume float64) *effects.Volume {
	v := &effects.Volume{Streamer: s, Base: 2}
	applyVolume(v, volume)
	return v
}

// applyVolume maps a [0, 100] volume onto the base-2 exponent used by effects.Volume.
func applyVolume(v *effects.Volume, volume float64) {
	if volume <= 0 {
		v.Silent = true
		v.Volume = 0
		return
	}
	v.Silent = false
	v.Volume = math.Log2(volume / 100)
}

func clampVolume(volume float64) float64 {
	return math.Max(0, math.Min(100, volume))
}
