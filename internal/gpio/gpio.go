// Package gpio provides GPIO input and output with hardware abstraction.
// The real implementation uses Linux GPIO character device.
// The fake implementation allows testing without hardware.
package gpio

// Reader reads a single GPIO input.
type Reader interface {
	// Read returns the raw line value, 0 or 1.
	Read() (int, error)

	// Close releases GPIO resources.
	Close() error
}

// Output drives a single GPIO output.
// Set must be safe to call from several goroutines; each call is one write.
type Output interface {
	Set(value int) error
	Close() error
}

// Default pin definitions (BCM numbering)
const (
	DefaultPinFloat  = 2  // float switch, pulled high when OK
	DefaultPinBuzzer = 4  // buzzer, active-high
	DefaultPinPower  = 18 // powertail relay, active-high = power enabled
)
