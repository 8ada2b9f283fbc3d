package load

import (
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/sacherjj/array-devices/program"
	"github.com/sacherjj/array-devices/protocol"
)

// Load drives one Array 3710A electronic load over a byte-oriented
// duplex channel. Several Load instances may share one channel — every
// frame carries the device address — as long as callers serialize
// access to the channel itself.
//
// All commanding methods serialize on an internal mutex, so a single
// Load is safe for concurrent use, but the two scratch buffers make a
// command non-reentrant: one command is in flight per Load at a time.
//
// Cached measurements and flags reflect the last successful status
// read and go stale between calls; refresh them with UpdateStatus.
type Load struct {
	device  io.ReadWriter
	address byte
	config  Config

	mu  sync.Mutex
	out [protocol.FrameLength]byte
	in  [protocol.FrameLength]byte

	// Device-unit state, initialized to the device power-on defaults.
	maxCurrent uint16 // mA
	maxPower   uint16 // 0.1 W
	loadMode   byte
	loadValue  uint16

	// Measurements from the last successful status read.
	current    uint16 // mA
	voltage    uint32 // mV
	power      uint16 // 0.1 W
	resistance uint16 // 0.01 ohm

	remoteControl    bool
	loadOn           bool
	wrongPolarity    bool
	excessiveTemp    bool
	excessiveVoltage bool
	excessivePower   bool
}

// New creates a Load for the device at the given address (0x00-0xFE).
// The device must implement io.ReadWriter; for serial hardware see the
// serialport package. New performs no I/O — issue the first
// UpdateStatus explicitly to populate the cached readings.
//
// Example:
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	ld := load.New(port, 0, load.WithRetries(3))
//	err = ld.UpdateStatus(ctx)
func New(device io.ReadWriter, address byte, opts ...Option) *Load {
	if device == nil {
		panic("device cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Load{
		device:  device,
		address: address,
		config:  cfg,

		maxCurrent: protocol.MaxCurrentRaw,
		maxPower:   protocol.MaxPowerRaw,
		loadMode:   protocol.ModeResistance,
		loadValue:  500,
	}
}

// Address returns the device address this session talks to.
func (l *Load) Address() byte {
	return l.address
}

// UpdateStatus refreshes the cached measurements and status flags with
// a Read Values exchange. Transport and checksum failures are retried
// up to the configured extra attempts (WithRetries, default 2); each
// intermediate failure is logged through the configured Logger. After
// the budget is exhausted it fails with a RetryExhaustedError wrapping
// the last failure.
func (l *Load) UpdateStatus(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.updateStatusLocked(ctx)
}

func (l *Load) updateStatusLocked(ctx context.Context) error {
	attempts := 1 + l.config.Retries
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("cancelled: %w", err)
		}

		status, err := l.readStatusLocked()
		if err == nil {
			l.applyStatusLocked(status)
			return nil
		}
		lastErr = err
		l.logError("status read failed",
			"address", l.address,
			"attempt", attempt,
			"error", err.Error(),
		)
	}
	return &RetryExhaustedError{Attempts: attempts, Err: lastErr}
}

// readStatusLocked performs one Read Values exchange: send the request,
// receive a full frame, validate and decode it.
func (l *Load) readStatusLocked() (*protocol.Status, error) {
	if err := protocol.BuildReadValuesCmd(l.out[:], l.address); err != nil {
		return nil, err
	}
	if err := l.sendLocked(); err != nil {
		return nil, err
	}
	if err := l.receiveLocked(); err != nil {
		return nil, err
	}
	return protocol.ParseReadValuesResponse(l.in[:])
}

func (l *Load) applyStatusLocked(status *protocol.Status) {
	l.current = status.Current
	l.voltage = status.Voltage
	l.power = status.Power
	l.maxCurrent = status.MaxCurrent
	l.maxPower = status.MaxPower
	l.resistance = status.Resistance

	l.remoteControl = status.Flags.RemoteControl()
	l.loadOn = status.Flags.LoadOn()
	l.wrongPolarity = status.Flags.WrongPolarity()
	l.excessiveTemp = status.Flags.ExcessiveTemp()
	l.excessiveVoltage = status.Flags.ExcessiveVoltage()
	l.excessivePower = status.Flags.ExcessivePower()
}

// SetMaxCurrent sets the current limit in amps (0-30) and writes it
// through with a Set Parameters command.
func (l *Load) SetMaxCurrent(ctx context.Context, amps float64) error {
	raw, err := protocol.DeviceMaxCurrent(amps)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxCurrent = raw
	return l.setParametersLocked(ctx)
}

// SetMaxPower sets the power limit in watts (0-200) and writes it
// through with a Set Parameters command.
func (l *Load) SetMaxPower(ctx context.Context, watts float64) error {
	raw, err := protocol.DeviceMaxPower(watts)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.maxPower = raw
	return l.setParametersLocked(ctx)
}

// SetLoadCurrent switches the load to constant-current mode at the
// given setpoint in amps (0-30), rounded to the nearest milliamp.
func (l *Load) SetLoadCurrent(ctx context.Context, amps float64) error {
	raw, err := protocol.DeviceCurrent(amps)
	if err != nil {
		return err
	}
	return l.setLoadValue(ctx, protocol.ModeCurrent, raw)
}

// SetLoadPower switches the load to constant-power mode at the given
// setpoint in watts (0-200), rounded to the nearest 0.1 W.
func (l *Load) SetLoadPower(ctx context.Context, watts float64) error {
	raw, err := protocol.DevicePower(watts)
	if err != nil {
		return err
	}
	return l.setLoadValue(ctx, protocol.ModePower, raw)
}

// SetLoadResistance switches the load to constant-resistance mode at
// the given setpoint in ohms (0-500), rounded to the nearest 0.01 ohm.
func (l *Load) SetLoadResistance(ctx context.Context, ohms float64) error {
	raw, err := protocol.DeviceResistance(ohms)
	if err != nil {
		return err
	}
	return l.setLoadValue(ctx, protocol.ModeResistance, raw)
}

func (l *Load) setLoadValue(ctx context.Context, mode byte, raw uint16) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadMode = mode
	l.loadValue = raw
	return l.setParametersLocked(ctx)
}

// setParametersLocked writes the cached configuration to the device
// and refreshes the status so the cached readings reflect the applied
// configuration immediately. Set Parameters itself is write-only on
// the wire; the follow-up Read Values is the only confirmation the
// protocol offers.
func (l *Load) setParametersLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	err := protocol.BuildSetParametersCmd(l.out[:], l.address,
		l.maxCurrent, l.maxPower, l.loadMode, l.loadValue)
	if err != nil {
		return err
	}
	if err := l.sendLocked(); err != nil {
		return err
	}
	return l.updateStatusLocked(ctx)
}

// SetRemoteControl enables or disables remote control. The front panel
// is locked out while remote control is on, and the load silently
// ignores every other command while it is off. Setting the current
// value again is a no-op that issues no traffic.
func (l *Load) SetRemoteControl(ctx context.Context, on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.remoteControl == on {
		return nil
	}
	l.remoteControl = on
	return l.sendLoadStateLocked(ctx)
}

// SetLoadOn turns the load input on or off. Setting the current value
// again is a no-op that issues no traffic.
func (l *Load) SetLoadOn(ctx context.Context, on bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.loadOn == on {
		return nil
	}
	l.loadOn = on
	return l.sendLoadStateLocked(ctx)
}

func (l *Load) sendLoadStateLocked(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}
	if err := protocol.BuildLoadStateCmd(l.out[:], l.address, l.remoteControl, l.loadOn); err != nil {
		return err
	}
	return l.sendLocked()
}

// SetProgramSequence uploads a program to the device, which stores its
// own copy. The protocol splits the upload across two write-only
// frames with no atomicity: a failure between the two sends leaves an
// inconsistent program on the device, and the only recovery is to
// upload again.
func (l *Load) SetProgramSequence(ctx context.Context, prog *program.Program) error {
	if prog == nil {
		return fmt.Errorf("program cannot be nil")
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	err := protocol.BuildDefineProgramLowCmd(l.out[:], l.address,
		byte(prog.Type()), prog.Len(), prog.HalfPayload(0))
	if err != nil {
		return err
	}
	if err := l.sendLocked(); err != nil {
		return fmt.Errorf("define program steps 1-5: %w", err)
	}

	err = protocol.BuildDefineProgramHighCmd(l.out[:], l.address,
		prog.HalfPayload(protocol.ProgramStepsPerFrame), byte(prog.RunMode()))
	if err != nil {
		return err
	}
	if err := l.sendLocked(); err != nil {
		return fmt.Errorf("define program steps 6-10: %w", err)
	}

	l.logDebug("program uploaded",
		"address", l.address,
		"type", prog.Type().String(),
		"steps", prog.Len(),
	)
	return nil
}

// StartProgram starts the stored program sequence. When turnOnLoad is
// true and the load input is off, it is switched on as well — the
// device does not do that by itself.
func (l *Load) StartProgram(ctx context.Context, turnOnLoad bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	if err := protocol.BuildStartProgramCmd(l.out[:], l.address); err != nil {
		return err
	}
	if err := l.sendLocked(); err != nil {
		return err
	}

	if turnOnLoad && !l.loadOn {
		l.loadOn = true
		return l.sendLoadStateLocked(ctx)
	}
	return nil
}

// StopProgram stops the running program sequence. When turnOffLoad is
// true and the load input is on, it is switched off as well.
func (l *Load) StopProgram(ctx context.Context, turnOffLoad bool) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("cancelled: %w", err)
	}

	if err := protocol.BuildStopProgramCmd(l.out[:], l.address); err != nil {
		return err
	}
	if err := l.sendLocked(); err != nil {
		return err
	}

	if turnOffLoad && l.loadOn {
		l.loadOn = false
		return l.sendLoadStateLocked(ctx)
	}
	return nil
}

// sendLocked writes the outbound scratch buffer to the device. A write
// that reports fewer than the full frame is a failure; the protocol
// has no notion of partial frames.
func (l *Load) sendLocked() error {
	n, err := l.device.Write(l.out[:])
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	if n != protocol.FrameLength {
		return &ShortWriteError{Written: n, Expected: protocol.FrameLength}
	}
	if l.config.CommandDelay > 0 {
		time.Sleep(l.config.CommandDelay)
	}
	return nil
}

// receiveLocked reads one full frame into the inbound scratch buffer,
// which is zeroed first so a short read never leaves stale bytes
// behind. A zero-byte read is the transport's timeout convention and
// fails the attempt; there is no timeout handling here.
func (l *Load) receiveLocked() error {
	for i := range l.in {
		l.in[i] = 0
	}
	got := 0
	for got < protocol.FrameLength {
		n, err := l.device.Read(l.in[got:])
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}
		if n == 0 {
			return &ShortReadError{Received: got, Expected: protocol.FrameLength}
		}
		got += n
	}
	return nil
}

// Current returns the measured current in amps from the last status read.
func (l *Load) Current() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return protocol.ToPhysical(int64(l.current), protocol.CurrentScale)
}

// Voltage returns the measured voltage in volts from the last status read.
func (l *Load) Voltage() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return protocol.ToPhysical(int64(l.voltage), protocol.VoltageScale)
}

// Power returns the measured power in watts from the last status read.
func (l *Load) Power() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return protocol.ToPhysical(int64(l.power), protocol.PowerScale)
}

// Resistance returns the measured resistance in ohms from the last
// status read.
func (l *Load) Resistance() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return protocol.ToPhysical(int64(l.resistance), protocol.ResistanceScale)
}

// MaxCurrent returns the configured current limit in amps.
func (l *Load) MaxCurrent() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return protocol.ToPhysical(int64(l.maxCurrent), protocol.CurrentScale)
}

// MaxPower returns the configured power limit in watts.
func (l *Load) MaxPower() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	return protocol.ToPhysical(int64(l.maxPower), protocol.PowerScale)
}

// RemoteControl reports whether remote control was on at the last
// status read or state change.
func (l *Load) RemoteControl() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remoteControl
}

// LoadOn reports whether the load input was on at the last status read
// or state change.
func (l *Load) LoadOn() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.loadOn
}

// WrongPolarity reports the reversed-input fault flag from the last
// status read.
func (l *Load) WrongPolarity() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.wrongPolarity
}

// ExcessiveTemp reports the over-temperature fault flag from the last
// status read.
func (l *Load) ExcessiveTemp() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.excessiveTemp
}

// ExcessiveVoltage reports the over-voltage fault flag from the last
// status read.
func (l *Load) ExcessiveVoltage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.excessiveVoltage
}

// ExcessivePower reports the over-power fault flag from the last
// status read.
func (l *Load) ExcessivePower() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.excessivePower
}
