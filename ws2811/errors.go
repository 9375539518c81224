package ws2811

import "github.com/pkg/errors"

var (
	// ErrNilDevice is returned when an operation is given no device.
	ErrNilDevice = errors.New("ws2811: nil device")
	// ErrChannelOutOfRange is returned for a channel outside [0, RPiPWMChannels).
	ErrChannelOutOfRange = errors.New("ws2811: channel out of range")
	// ErrIndexOutOfRange is returned for an LED index outside [0, Count).
	ErrIndexOutOfRange = errors.New("ws2811: index out of range")
	// ErrLengthExceedsCapacity is returned when a bitmap is larger than the channel buffer.
	ErrLengthExceedsCapacity = errors.New("ws2811: length exceeds channel capacity")
)
