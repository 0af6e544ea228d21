// Package capture owns the hardware input stream lifecycle.
//
// A Source wraps one PortAudio input stream. Once started, the stream invokes
// the supplied block callback on the audio driver's schedule; the callback
// must be non-blocking and allocation-free on its steady-state path. The
// sample buffer passed to the callback is owned by the driver and only valid
// for the duration of the call.
package capture

import (
	"fmt"

	"github.com/gordonklaus/portaudio"
	"go.uber.org/zap"
)

// DefaultDevice selects the system default input device.
const DefaultDevice = "default"

// DefaultBlockSize is the number of frames delivered per callback.
const DefaultBlockSize = 1024

// Config selects and shapes the input stream.
type Config struct {
	// Device is DefaultDevice or the exact name of an input device as
	// reported by ListDevices. Name matching is exact; a missing name is
	// ErrDeviceNotFound, never a silent fallback to the default.
	Device string

	// BlockSize is the frames per callback; DefaultBlockSize when zero.
	BlockSize int

	// Logger receives stream lifecycle events. Nil disables logging.
	Logger *zap.Logger
}

// Device describes one enumerated input device.
type Device struct {
	Name          string
	Default       bool
	InputChannels int
	SampleRate    float64
}

// ListDevices enumerates the available input devices.
func ListDevices() ([]Device, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: initialize: %v", ErrDeviceEnumeration, err)
	}
	defer portaudio.Terminate()

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceEnumeration, err)
	}

	def, _ := portaudio.DefaultInputDevice()

	var out []Device
	for _, info := range infos {
		if info.MaxInputChannels < 1 {
			continue
		}
		out = append(out, Device{
			Name:          info.Name,
			Default:       def != nil && info.Name == def.Name,
			InputChannels: info.MaxInputChannels,
			SampleRate:    info.DefaultSampleRate,
		})
	}
	return out, nil
}

// Source is an open capture device. It is not safe for concurrent use.
type Source struct {
	dev       *portaudio.DeviceInfo
	stream    *portaudio.Stream
	log       *zap.Logger
	blockSize int
	closed    bool
}

// Open selects the configured device and negotiates a mono float32 stream
// configuration, without starting the stream. The PortAudio subsystem stays
// initialized until Close releases it.
func Open(cfg Config) (*Source, error) {
	if cfg.BlockSize <= 0 {
		cfg.BlockSize = DefaultBlockSize
	}
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: initialize: %v", ErrDeviceEnumeration, err)
	}

	dev, err := resolveDevice(cfg.Device)
	if err != nil {
		portaudio.Terminate()
		return nil, err
	}

	if dev.MaxInputChannels < 1 || dev.DefaultSampleRate <= 0 {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: device %q has no input configuration", ErrDeviceConfigUnavailable, dev.Name)
	}

	s := &Source{
		dev:       dev,
		log:       log,
		blockSize: cfg.BlockSize,
	}

	// Probe the mono float32 configuration before the caller commits to a
	// stream; a refusal here is a configuration error, not a runtime one.
	probe := func([]float32) {}
	if err := portaudio.IsFormatSupported(s.params(), probe); err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: device %q rejects mono float32 at %g Hz: %v",
			ErrUnsupportedSampleFormat, dev.Name, dev.DefaultSampleRate, err)
	}

	log.Info("input device opened",
		zap.String("device", dev.Name),
		zap.Float64("sample_rate", dev.DefaultSampleRate),
		zap.Int("block_size", cfg.BlockSize),
	)

	return s, nil
}

func resolveDevice(selector string) (*portaudio.DeviceInfo, error) {
	if selector == "" || selector == DefaultDevice {
		dev, err := portaudio.DefaultInputDevice()
		if err != nil {
			return nil, fmt.Errorf("%w: default input device: %v", ErrDeviceConfigUnavailable, err)
		}
		return dev, nil
	}

	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeviceEnumeration, err)
	}

	for _, info := range infos {
		if info.Name == selector && info.MaxInputChannels > 0 {
			return info, nil
		}
	}
	return nil, fmt.Errorf("%w: no input device named %q", ErrDeviceNotFound, selector)
}

func (s *Source) params() portaudio.StreamParameters {
	return portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   s.dev,
			Channels: 1,
			Latency:  s.dev.DefaultLowInputLatency,
		},
		SampleRate:      s.dev.DefaultSampleRate,
		FramesPerBuffer: s.blockSize,
	}
}

// SampleRate returns the negotiated stream sample rate.
func (s *Source) SampleRate() uint32 {
	return uint32(s.dev.DefaultSampleRate)
}

// BlockSize returns the frames delivered per callback.
func (s *Source) BlockSize() int { return s.blockSize }

// DeviceName returns the name of the selected device.
func (s *Source) DeviceName() string { return s.dev.Name }

// Start builds the input stream and begins invoking onBlock once per
// delivered block. The slice passed to onBlock is reused by the driver;
// callers needing the samples past the callback must copy them.
func (s *Source) Start(onBlock func(block []float32)) error {
	if s.stream != nil {
		return fmt.Errorf("%w: stream already started", ErrStreamBuild)
	}

	stream, err := portaudio.OpenStream(s.params(), onBlock)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrStreamBuild, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("%w: %v", ErrStreamPlayback, err)
	}

	s.stream = stream
	s.log.Info("capture started", zap.String("device", s.dev.Name))
	return nil
}

// Stop halts the stream and releases the driver handle. It is safe to call
// on a source that was never started, and may be called more than once.
func (s *Source) Stop() error {
	if s.stream == nil {
		return nil
	}
	stream := s.stream
	s.stream = nil

	err := stream.Stop()
	if cerr := stream.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return fmt.Errorf("%w: stop: %v", ErrStreamPlayback, err)
	}

	s.log.Info("capture stopped", zap.String("device", s.dev.Name))
	return nil
}

// Close stops the stream if needed and releases the PortAudio subsystem.
// The source cannot be reused afterwards.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	err := s.Stop()
	if terr := portaudio.Terminate(); err == nil && terr != nil {
		err = fmt.Errorf("%w: terminate: %v", ErrStreamPlayback, terr)
	}
	return err
}
