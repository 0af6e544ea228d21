package capture

import "errors"

// Error kinds surfaced across the capture boundary. Each failure mode is
// distinguishable with errors.Is so a caller can decide between retrying
// device selection and aborting; none are retried internally.
var (
	ErrDeviceEnumeration       = errors.New("capture: device enumeration failed")
	ErrDeviceNotFound          = errors.New("capture: device not found")
	ErrDeviceConfigUnavailable = errors.New("capture: no usable input configuration")
	ErrUnsupportedSampleFormat = errors.New("capture: unsupported sample format")
	ErrStreamBuild             = errors.New("capture: stream build failed")
	ErrStreamPlayback          = errors.New("capture: stream playback failed")
)
