package protocol

// Checksum computes the 8-bit frame checksum over the given bytes.
// The load uses basic summation: add every byte and keep the low 8 bits.
//
// For a full frame, the checksum covers bytes 0 through 24, so callers
// pass frame[:ChecksumOffset].
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// WriteChecksum computes the checksum over the first 25 bytes of frame
// and stores it in the final byte. The frame must be exactly
// FrameLength bytes.
func WriteChecksum(frame []byte) error {
	if len(frame) != FrameLength {
		return &FrameLengthError{Length: len(frame)}
	}
	frame[ChecksumOffset] = Checksum(frame[:ChecksumOffset])
	return nil
}

// VerifyChecksum recomputes the checksum over the first 25 bytes of
// frame and compares it to the final byte. Returns a ChecksumError on
// mismatch.
func VerifyChecksum(frame []byte) error {
	if len(frame) != FrameLength {
		return &FrameLengthError{Length: len(frame)}
	}
	actual := Checksum(frame[:ChecksumOffset])
	if actual != frame[ChecksumOffset] {
		return &ChecksumError{Expected: frame[ChecksumOffset], Actual: actual}
	}
	return nil
}
