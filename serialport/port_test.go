package serialport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()
	assert.Equal(t, 9600, cfg.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.ReadTimeout)
}

func TestOptions(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []Option{WithBaudRate(4800), WithReadTimeout(time.Second)} {
		opt(&cfg)
	}
	assert.Equal(t, 4800, cfg.BaudRate)
	assert.Equal(t, time.Second, cfg.ReadTimeout)
}

func TestOptionsIgnoreInvalid(t *testing.T) {
	cfg := defaultConfig()
	for _, opt := range []Option{WithBaudRate(0), WithBaudRate(-9600), WithReadTimeout(0)} {
		opt(&cfg)
	}
	assert.Equal(t, 9600, cfg.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.ReadTimeout)
}

func TestOpenMissingDevice(t *testing.T) {
	_, err := Open("/dev/does-not-exist-3710a")
	assert.Error(t, err)
}

func TestCloseNilPort(t *testing.T) {
	var p *Port
	assert.NoError(t, p.Close())
}
