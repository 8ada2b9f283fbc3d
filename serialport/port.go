// Package serialport opens serial ports configured for the Array 3710A
// load: 8 data bits, no parity, one stop bit, 9600 baud by default
// (set on the device under Menu -> Baud Rate; 9600 or 4800 are the
// stable choices).
//
// The returned Port is an io.ReadWriteCloser. Its Read returns zero
// bytes once the configured read timeout elapses, which the load
// session treats as a short read — that is the entire timeout story;
// the session itself never keeps time.
package serialport

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Config holds the port configuration.
type Config struct {
	// BaudRate is the line speed; must match the rate set on the load
	BaudRate int

	// ReadTimeout bounds how long a Read waits for the first byte
	ReadTimeout time.Duration
}

// defaultConfig returns the default configuration.
func defaultConfig() Config {
	return Config{
		BaudRate:    9600,
		ReadTimeout: 500 * time.Millisecond,
	}
}

// Option is a functional option for configuring a Port.
type Option func(*Config)

// WithBaudRate sets the line speed. Default is 9600.
func WithBaudRate(baud int) Option {
	return func(c *Config) {
		if baud > 0 {
			c.BaudRate = baud
		}
	}
}

// WithReadTimeout sets the read timeout. Default is 500 ms, generous
// for a 26-byte frame at 9600 baud.
func WithReadTimeout(timeout time.Duration) Option {
	return func(c *Config) {
		if timeout > 0 {
			c.ReadTimeout = timeout
		}
	}
}

// Port is an open serial connection to one or more loads.
type Port struct {
	port serial.Port
}

// Open opens the named serial device (for example /dev/ttyUSB0 or
// COM4) as 8N1, applies the read timeout and flushes any bytes already
// sitting in the input buffer.
func Open(device string, opts ...Option) (*Port, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	mode := &serial.Mode{
		BaudRate: cfg.BaudRate,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	port, err := serial.Open(device, mode)
	if err != nil {
		return nil, fmt.Errorf("serialport: failed to open %s: %w", device, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("serialport: failed to set read timeout on %s: %w", device, err)
	}
	if err := port.ResetInputBuffer(); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("serialport: failed to flush %s: %w", device, err)
	}

	return &Port{port: port}, nil
}

// Read reads up to len(p) bytes. It returns 0, nil once the read
// timeout elapses with nothing received.
func (p *Port) Read(b []byte) (int, error) {
	return p.port.Read(b)
}

// Write writes the given bytes to the port.
func (p *Port) Write(b []byte) (int, error) {
	return p.port.Write(b)
}

// Close closes the port. Safe to call on a nil Port.
func (p *Port) Close() error {
	if p == nil || p.port == nil {
		return nil
	}
	return p.port.Close()
}
