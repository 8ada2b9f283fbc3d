// Package protocol implements the serial command protocol of the Array
// 3710A DC electronic load (also sold as Gossen, Tekpower and Circuit
// Specialists 3710A).
//
// # Protocol Overview
//
// Every exchange is a fixed 26-byte frame in both directions:
//
//	[SYNC(0xAA)][ADDRESS][CMD][PAYLOAD(22)][CHECKSUM]
//
// The checksum is the low byte of the sum of the first 25 frame bytes.
// Multi-byte payload fields are little-endian. The address byte selects
// one load on a shared serial link (0x00-0xFE).
//
// Only CmdReadValues is answered; every other command is write-only on
// the wire and the device gives no acknowledgment.
//
// # Command Builders
//
// The Build* functions assemble a complete frame, checksum included,
// into a caller-supplied 26-byte buffer, so a session can reuse one
// scratch buffer for every command:
//
//	var frame [protocol.FrameLength]byte
//	err := protocol.BuildReadValuesCmd(frame[:], address)
//	err = protocol.BuildLoadStateCmd(frame[:], address, true, false)
//
// # Response Parsing
//
// ParseReadValuesResponse validates and decodes the status frame the
// load sends back for CmdReadValues:
//
//	status, err := protocol.ParseReadValuesResponse(frame[:])
//	amps := protocol.ToPhysical(int64(status.Current), protocol.CurrentScale)
//
// # Device Units
//
// The wire carries integers in device-native units: milliamps, tenths
// of a watt, millivolts and hundredths of an ohm. The scale constants
// and the ToDevice/ToPhysical pair convert between those and physical
// units; the Device* helpers additionally range-check against the
// limits the hardware enforces (30 A, 200 W, 500 ohms).
package protocol
