package protocol

import (
	"encoding/binary"
	"fmt"
)

// ParseReadValuesResponse decodes a Read Values response frame into a
// Status. Validates frame length, the sync byte and the checksum before
// touching any field.
//
// Response frame structure (absolute offsets, little-endian):
//
//	[0]     sync (0xAA)
//	[1]     device address
//	[2]     command echo
//	[3:5]   measured current (mA)
//	[5:9]   measured voltage (mV, 32-bit)
//	[9:11]  measured power (0.1 W)
//	[11:13] configured max current (mA)
//	[13:15] configured max power (0.1 W)
//	[15:17] measured resistance (0.01 ohm)
//	[17]    status flags
//	[18:25] pad
//	[25]    checksum
//
// The address and command echo bytes are not checked; the device is the
// only talker on a correctly wired bus and the checksum already covers
// them.
func ParseReadValuesResponse(frame []byte) (*Status, error) {
	if len(frame) != FrameLength {
		return nil, &FrameLengthError{Length: len(frame)}
	}
	if frame[0] != SyncByte {
		return nil, fmt.Errorf("invalid sync byte: got 0x%02X, expected 0x%02X", frame[0], SyncByte)
	}
	if err := VerifyChecksum(frame); err != nil {
		return nil, err
	}

	return &Status{
		Current:    binary.LittleEndian.Uint16(frame[3:5]),
		Voltage:    binary.LittleEndian.Uint32(frame[5:9]),
		Power:      binary.LittleEndian.Uint16(frame[9:11]),
		MaxCurrent: binary.LittleEndian.Uint16(frame[11:13]),
		MaxPower:   binary.LittleEndian.Uint16(frame[13:15]),
		Resistance: binary.LittleEndian.Uint16(frame[15:17]),
		Flags:      StatusFlags(frame[17]),
	}, nil
}
