package load

import (
	"context"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sacherjj/array-devices/program"
	"github.com/sacherjj/array-devices/protocol"
)

// mockDevice records every written frame and answers reads from a
// queue of canned responses. An empty queue reads zero bytes, which is
// the timeout convention of the serial transport.
type mockDevice struct {
	writes    [][]byte
	responses [][]byte
	respIdx   int
	writeErr  error
	readErr   error
}

func (m *mockDevice) Write(p []byte) (int, error) {
	if m.writeErr != nil {
		return 0, m.writeErr
	}
	frame := make([]byte, len(p))
	copy(frame, p)
	m.writes = append(m.writes, frame)
	return len(p), nil
}

func (m *mockDevice) Read(p []byte) (int, error) {
	if m.readErr != nil {
		return 0, m.readErr
	}
	if m.respIdx >= len(m.responses) {
		return 0, nil
	}
	resp := m.responses[m.respIdx]
	m.respIdx++
	return copy(p, resp), nil
}

func (m *mockDevice) queue(frame []byte) {
	m.responses = append(m.responses, frame)
}

// statusFrame builds a valid Read Values response in device units.
func statusFrame(t *testing.T, address byte, current uint16, voltage uint32, power, maxCurrent, maxPower, resistance uint16, flags protocol.StatusFlags) []byte {
	t.Helper()
	frame := make([]byte, protocol.FrameLength)
	frame[0] = protocol.SyncByte
	frame[1] = address
	frame[2] = protocol.CmdReadValues
	binary.LittleEndian.PutUint16(frame[3:5], current)
	binary.LittleEndian.PutUint32(frame[5:9], voltage)
	binary.LittleEndian.PutUint16(frame[9:11], power)
	binary.LittleEndian.PutUint16(frame[11:13], maxCurrent)
	binary.LittleEndian.PutUint16(frame[13:15], maxPower)
	binary.LittleEndian.PutUint16(frame[15:17], resistance)
	frame[17] = byte(flags)
	require.NoError(t, protocol.WriteChecksum(frame))
	return frame
}

// recordingLogger captures messages for assertions.
type recordingLogger struct {
	debugMsgs []string
	errorMsgs []string
}

func (l *recordingLogger) Debug(msg string, kv ...interface{}) {
	l.debugMsgs = append(l.debugMsgs, msg)
}
func (l *recordingLogger) Info(msg string, kv ...interface{}) {}
func (l *recordingLogger) Error(msg string, kv ...interface{}) {
	l.errorMsgs = append(l.errorMsgs, msg)
}

func TestNewPanicsOnNilDevice(t *testing.T) {
	assert.Panics(t, func() { New(nil, 0) })
}

func TestNewPerformsNoIO(t *testing.T) {
	device := &mockDevice{}
	ld := New(device, 3)

	assert.Empty(t, device.writes)
	assert.Equal(t, byte(3), ld.Address())
	// Power-on defaults until the first status read.
	assert.Equal(t, 30.0, ld.MaxCurrent())
	assert.Equal(t, 200.0, ld.MaxPower())
}

func TestUpdateStatusDecodesFixture(t *testing.T) {
	device := &mockDevice{}
	// 1.234 A, 12.5 V, 15.4 W, limits 30 A / 200 W, 10.13 ohms,
	// remote control on, load on.
	device.queue(statusFrame(t, 0, 1234, 12500, 154, 30000, 2000, 1013,
		protocol.FlagRemoteControl|protocol.FlagLoadOn))

	ld := New(device, 0)
	require.NoError(t, ld.UpdateStatus(context.Background()))

	assert.InDelta(t, 1.234, ld.Current(), 1e-9)
	assert.InDelta(t, 12.5, ld.Voltage(), 1e-9)
	assert.InDelta(t, 15.4, ld.Power(), 1e-9)
	assert.InDelta(t, 10.13, ld.Resistance(), 1e-9)
	assert.Equal(t, 30.0, ld.MaxCurrent())
	assert.Equal(t, 200.0, ld.MaxPower())
	assert.True(t, ld.RemoteControl())
	assert.True(t, ld.LoadOn())
	assert.False(t, ld.WrongPolarity())
	assert.False(t, ld.ExcessiveTemp())
	assert.False(t, ld.ExcessiveVoltage())
	assert.False(t, ld.ExcessivePower())

	// One Read Values request on the wire.
	require.Len(t, device.writes, 1)
	assert.Equal(t, byte(protocol.CmdReadValues), device.writes[0][2])
}

func TestUpdateStatusRetriesThenFails(t *testing.T) {
	device := &mockDevice{} // empty queue: every read times out
	logger := &recordingLogger{}
	ld := New(device, 0, WithRetries(2), WithLogger(logger))

	err := ld.UpdateStatus(context.Background())
	require.Error(t, err)

	var exhausted *RetryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 3, exhausted.Attempts)
	assert.Contains(t, err.Error(), "retry count exceeded")

	var short *ShortReadError
	assert.ErrorAs(t, err, &short)

	// Initial attempt plus exactly two retries, each logged.
	assert.Len(t, device.writes, 3)
	assert.Len(t, logger.errorMsgs, 3)
}

func TestUpdateStatusZeroRetries(t *testing.T) {
	device := &mockDevice{}
	ld := New(device, 0, WithRetries(0))

	err := ld.UpdateStatus(context.Background())
	require.Error(t, err)
	assert.Len(t, device.writes, 1)
}

func TestUpdateStatusChecksumFailureIsRetried(t *testing.T) {
	device := &mockDevice{}
	corrupt := statusFrame(t, 0, 0, 0, 0, 30000, 2000, 50000, 0)
	corrupt[12] ^= 0x01 // break the checksum
	device.queue(corrupt)
	device.queue(statusFrame(t, 0, 500, 0, 0, 30000, 2000, 50000, 0))

	ld := New(device, 0)
	require.NoError(t, ld.UpdateStatus(context.Background()))

	assert.InDelta(t, 0.5, ld.Current(), 1e-9)
	assert.Len(t, device.writes, 2)
}

func TestUpdateStatusDeviceErrorWrapped(t *testing.T) {
	device := &mockDevice{readErr: errors.New("port unplugged")}
	ld := New(device, 0, WithRetries(1))

	err := ld.UpdateStatus(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port unplugged")
}

func TestUpdateStatusHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	device := &mockDevice{}
	ld := New(device, 0)

	err := ld.UpdateStatus(ctx)
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, device.writes)
}

func TestSetLoadCurrentWritesThrough(t *testing.T) {
	device := &mockDevice{}
	device.queue(statusFrame(t, 0, 10000, 5000, 500, 30000, 2000, 50, protocol.FlagRemoteControl))

	ld := New(device, 0)
	require.NoError(t, ld.SetLoadCurrent(context.Background(), 10))

	// Set Parameters then the status-refresh Read Values.
	require.Len(t, device.writes, 2)
	setParams := device.writes[0]
	assert.Equal(t, byte(protocol.CmdSetParameters), setParams[2])
	assert.Equal(t, uint16(30000), binary.LittleEndian.Uint16(setParams[3:5]))
	assert.Equal(t, uint16(2000), binary.LittleEndian.Uint16(setParams[5:7]))
	assert.Equal(t, byte(protocol.ModeCurrent), setParams[8])
	assert.Equal(t, uint16(10000), binary.LittleEndian.Uint16(setParams[9:11]))
	assert.Equal(t, byte(protocol.CmdReadValues), device.writes[1][2])

	// Cached readings reflect the refresh.
	assert.InDelta(t, 10.0, ld.Current(), 1e-9)
}

func TestSetLoadValueValidatesBeforeIO(t *testing.T) {
	device := &mockDevice{}
	ld := New(device, 0)
	ctx := context.Background()

	var rangeErr *protocol.RangeError
	require.ErrorAs(t, ld.SetLoadCurrent(ctx, 30.001), &rangeErr)
	require.ErrorAs(t, ld.SetLoadPower(ctx, 200.1), &rangeErr)
	require.ErrorAs(t, ld.SetLoadResistance(ctx, 500.01), &rangeErr)
	require.ErrorAs(t, ld.SetMaxCurrent(ctx, -1), &rangeErr)
	require.ErrorAs(t, ld.SetMaxPower(ctx, 201), &rangeErr)

	assert.Empty(t, device.writes, "validation failures must not touch the wire")
}

func TestSetLoadStateIdempotent(t *testing.T) {
	device := &mockDevice{}
	ld := New(device, 0)
	ctx := context.Background()

	// Both start false; re-setting false issues no traffic.
	require.NoError(t, ld.SetRemoteControl(ctx, false))
	require.NoError(t, ld.SetLoadOn(ctx, false))
	assert.Empty(t, device.writes)

	require.NoError(t, ld.SetRemoteControl(ctx, true))
	require.Len(t, device.writes, 1)
	assert.Equal(t, byte(protocol.CmdLoadState), device.writes[0][2])
	assert.Equal(t, byte(protocol.LoadStateRemoteControl), device.writes[0][3])

	// Same value again: still one write.
	require.NoError(t, ld.SetRemoteControl(ctx, true))
	assert.Len(t, device.writes, 1)

	require.NoError(t, ld.SetLoadOn(ctx, true))
	require.Len(t, device.writes, 2)
	assert.Equal(t, byte(protocol.LoadStateRemoteControl|protocol.LoadStateLoadOn), device.writes[1][3])
}

func TestSetProgramSequence(t *testing.T) {
	prog, err := program.New(program.TypeResistance, program.RunRepeat)
	require.NoError(t, err)
	for _, ohms := range []float64{500, 450, 400, 350, 300, 250, 200} {
		require.NoError(t, prog.AddStep(ohms, 10))
	}

	device := &mockDevice{}
	ld := New(device, 1)
	require.NoError(t, ld.SetProgramSequence(context.Background(), prog))

	require.Len(t, device.writes, 2)
	low, high := device.writes[0], device.writes[1]

	assert.Equal(t, byte(protocol.CmdDefineProgramLow), low[2])
	assert.Equal(t, byte(protocol.ModeResistance), low[3])
	assert.Equal(t, byte(7), low[4])
	assert.Equal(t, uint16(50000), binary.LittleEndian.Uint16(low[5:7]))
	assert.Equal(t, uint16(10), binary.LittleEndian.Uint16(low[7:9]))

	assert.Equal(t, byte(protocol.CmdDefineProgramHigh), high[2])
	// Slot six holds step 6 (250 ohms); slots eight through ten are
	// zero pairs.
	assert.Equal(t, uint16(25000), binary.LittleEndian.Uint16(high[3:5]))
	assert.Equal(t, uint16(20000), binary.LittleEndian.Uint16(high[7:9]))
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(high[11:13]))
	assert.Equal(t, byte(protocol.RunModeRepeat), high[23])

	require.NoError(t, protocol.VerifyChecksum(low))
	require.NoError(t, protocol.VerifyChecksum(high))
}

func TestSetProgramSequenceNil(t *testing.T) {
	ld := New(&mockDevice{}, 0)
	assert.Error(t, ld.SetProgramSequence(context.Background(), nil))
}

func TestStartProgramTurnsLoadOn(t *testing.T) {
	device := &mockDevice{}
	ld := New(device, 0)
	ctx := context.Background()

	require.NoError(t, ld.StartProgram(ctx, true))

	require.Len(t, device.writes, 2)
	assert.Equal(t, byte(protocol.CmdStartProgram), device.writes[0][2])
	assert.Equal(t, byte(protocol.CmdLoadState), device.writes[1][2])
	assert.Equal(t, byte(protocol.LoadStateLoadOn), device.writes[1][3])
	assert.True(t, ld.LoadOn())

	// Already on: starting again sends only the start command.
	require.NoError(t, ld.StartProgram(ctx, true))
	assert.Len(t, device.writes, 3)
}

func TestStartProgramWithoutLoad(t *testing.T) {
	device := &mockDevice{}
	ld := New(device, 0)

	require.NoError(t, ld.StartProgram(context.Background(), false))
	require.Len(t, device.writes, 1)
	assert.False(t, ld.LoadOn())
}

func TestStopProgramTurnsLoadOff(t *testing.T) {
	device := &mockDevice{}
	ld := New(device, 0)
	ctx := context.Background()

	require.NoError(t, ld.SetLoadOn(ctx, true))
	device.writes = nil

	require.NoError(t, ld.StopProgram(ctx, true))
	require.Len(t, device.writes, 2)
	assert.Equal(t, byte(protocol.CmdStopProgram), device.writes[0][2])
	assert.Equal(t, byte(protocol.CmdLoadState), device.writes[1][2])
	assert.Equal(t, byte(0), device.writes[1][3])
	assert.False(t, ld.LoadOn())

	// Already off: stopping again sends only the stop command.
	require.NoError(t, ld.StopProgram(ctx, true))
	assert.Len(t, device.writes, 3)
}

func TestShortWriteFails(t *testing.T) {
	device := &shortWriteDevice{}
	ld := New(device, 0)

	err := ld.StartProgram(context.Background(), false)
	var short *ShortWriteError
	require.ErrorAs(t, err, &short)
	assert.Equal(t, 10, short.Written)
}

// shortWriteDevice accepts only part of every frame.
type shortWriteDevice struct{}

func (d *shortWriteDevice) Write(p []byte) (int, error) { return 10, nil }
func (d *shortWriteDevice) Read(p []byte) (int, error)  { return 0, nil }

// fragmentingDevice returns a queued response a few bytes at a time,
// the way a slow serial port does.
type fragmentingDevice struct {
	mockDevice
	chunk int
}

func (d *fragmentingDevice) Read(p []byte) (int, error) {
	if d.respIdx >= len(d.responses) {
		return 0, nil
	}
	resp := d.responses[d.respIdx]
	n := d.chunk
	if n > len(resp) {
		n = len(resp)
	}
	copy(p, resp[:n])
	if n == len(resp) {
		d.respIdx++
	} else {
		d.responses[d.respIdx] = resp[n:]
	}
	return n, nil
}

func TestReceiveReassemblesFragments(t *testing.T) {
	device := &fragmentingDevice{chunk: 7}
	device.queue(statusFrame(t, 0, 2500, 24000, 600, 30000, 2000, 960, protocol.FlagRemoteControl))

	ld := New(device, 0)
	require.NoError(t, ld.UpdateStatus(context.Background()))
	assert.InDelta(t, 2.5, ld.Current(), 1e-9)
	assert.InDelta(t, 24.0, ld.Voltage(), 1e-9)
}
