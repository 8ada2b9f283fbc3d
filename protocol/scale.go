package protocol

import "math"

// ToDevice converts a physical value to device units, rounding to the
// nearest unit.
func ToDevice(physical float64, scale int) int {
	return int(math.Round(physical * float64(scale)))
}

// ToPhysical converts a device-unit value to its physical quantity.
func ToPhysical(device int64, scale int) float64 {
	return float64(device) / float64(scale)
}

// modeLimits returns the scale, device-unit maximum and unit label for
// a load mode or program type byte.
func modeLimits(mode byte) (scale int, maxRaw int, unit string, err error) {
	switch mode {
	case ModeCurrent:
		return CurrentScale, MaxCurrentRaw, "A", nil
	case ModePower:
		return PowerScale, MaxPowerRaw, "W", nil
	case ModeResistance:
		return ResistanceScale, MaxResistanceRaw, "ohms", nil
	default:
		return 0, 0, "", &InvalidModeError{Mode: mode}
	}
}

// deviceValue converts and range-checks one physical value. The
// RangeError is produced before anything else is touched, so a failed
// conversion never partially applies.
func deviceValue(quantity string, value float64, scale, maxRaw int, unit string) (uint16, error) {
	raw := ToDevice(value, scale)
	if raw < 0 || raw > maxRaw {
		return 0, &RangeError{
			Quantity: quantity,
			Value:    value,
			Min:      0,
			Max:      ToPhysical(int64(maxRaw), scale),
			Unit:     unit,
		}
	}
	return uint16(raw), nil
}

// DeviceCurrent converts a load current in amps to milliamps,
// validating the 0-30 A range.
func DeviceCurrent(amps float64) (uint16, error) {
	return deviceValue("load current", amps, CurrentScale, MaxCurrentRaw, "A")
}

// DevicePower converts a load power in watts to tenths of a watt,
// validating the 0-200 W range.
func DevicePower(watts float64) (uint16, error) {
	return deviceValue("load power", watts, PowerScale, MaxPowerRaw, "W")
}

// DeviceResistance converts a load resistance in ohms to hundredths of
// an ohm, validating the 0-500 ohm range.
func DeviceResistance(ohms float64) (uint16, error) {
	return deviceValue("load resistance", ohms, ResistanceScale, MaxResistanceRaw, "ohms")
}

// DeviceMaxCurrent converts a current limit in amps to milliamps,
// validating the 0-30 A range.
func DeviceMaxCurrent(amps float64) (uint16, error) {
	return deviceValue("max current", amps, CurrentScale, MaxCurrentRaw, "A")
}

// DeviceMaxPower converts a power limit in watts to tenths of a watt,
// validating the 0-200 W range.
func DeviceMaxPower(watts float64) (uint16, error) {
	return deviceValue("max power", watts, PowerScale, MaxPowerRaw, "W")
}

// DeviceSetting converts a program step setting in the physical units
// of the given mode to device units, validating the mode's range.
// Program steps use the same scales as the live load settings: amps
// x1000, watts x10, ohms x100.
func DeviceSetting(mode byte, value float64) (uint16, error) {
	scale, maxRaw, unit, err := modeLimits(mode)
	if err != nil {
		return 0, err
	}
	return deviceValue("step setting", value, scale, maxRaw, unit)
}

// PhysicalSetting converts a device-unit program step setting back to
// the physical units of the given mode. Returns 0 for an unrecognized
// mode; the encode path validates modes.
func PhysicalSetting(mode byte, raw uint16) float64 {
	scale, _, _, err := modeLimits(mode)
	if err != nil {
		return 0
	}
	return ToPhysical(int64(raw), scale)
}
