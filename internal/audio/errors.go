package audio

import (
	"errors"
	"fmt"
)

// ErrCaptureActive is returned by Recorder.Start while a capture is running
var ErrCaptureActive = errors.New("audio capture already active")

// DeviceError reports that an input or output device could not be used
type DeviceError struct {
	Op     string // "open", "read", "play"
	Device string
	Err    error
}

func (e *DeviceError) Error() string {
	return fmt.Sprintf("audio device %s %s: %v", e.Device, e.Op, e.Err)
}

func (e *DeviceError) Unwrap() error {
	return e.Err
}
