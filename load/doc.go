// Package load drives Array 3710A DC electronic loads (also sold as
// Gossen, Tekpower and Circuit Specialists 3710A) over a serial link.
//
// # Usage
//
// A Load talks to one device address through any io.ReadWriter. Open a
// real port with the serialport package, then enable remote control
// before commanding anything — the device silently ignores commands
// while it is off:
//
//	port, err := serialport.Open("/dev/ttyUSB0")
//	ld := load.New(port, 0)
//
//	err = ld.UpdateStatus(ctx)
//	err = ld.SetRemoteControl(ctx, true)
//	err = ld.SetLoadCurrent(ctx, 2.5)
//	err = ld.SetLoadOn(ctx, true)
//
// Measurements are cached from the last status read and refreshed only
// by UpdateStatus; Current, Voltage, Power and the flag accessors do
// no I/O.
//
// Several Loads at different addresses can share one port; the address
// byte in every frame selects the device.
//
// # Status Reads and Retries
//
// Read Values is the only command the device answers. UpdateStatus
// retries transport and checksum failures up to the WithRetries budget
// (default 2 extra attempts) and then fails with a RetryExhaustedError.
// Every other command is write-only on the wire: the device gives no
// acknowledgment, so device-side rejection of those commands is
// undetectable. Setters compensate by following Set Parameters with a
// status refresh.
//
// # Programs
//
// Build a test sequence with the program package and upload it with
// SetProgramSequence, then StartProgram/StopProgram. The upload spans
// two frames without atomicity; re-upload after a failure in between.
//
// # Concurrency and Timeouts
//
// A Load serializes its own methods on a mutex. Timeout behavior
// belongs entirely to the transport: a transport that returns a short
// read after its deadline is what makes the retry loop fail cleanly
// instead of hanging. Cancellation via context is honored between
// command boundaries, not mid-exchange.
package load
