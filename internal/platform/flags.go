package platform

import "goxviet/internal/keyevent"

// CGEventFlags bits.
const (
	cgFlagCapsLock uint64 = 0x00010000
	cgFlagShift    uint64 = 0x00020000
	cgFlagControl  uint64 = 0x00040000
	cgFlagOption   uint64 = 0x00080000
	cgFlagCommand  uint64 = 0x00100000
	cgFlagFn       uint64 = 0x00800000
)

var flagBits = []struct {
	cg  uint64
	mod keyevent.Modifiers
}{
	{cgFlagCapsLock, keyevent.ModCapsLock},
	{cgFlagShift, keyevent.ModShift},
	{cgFlagControl, keyevent.ModControl},
	{cgFlagOption, keyevent.ModOption},
	{cgFlagCommand, keyevent.ModCommand},
	{cgFlagFn, keyevent.ModFn},
}

// ModifiersFromFlags converts a CGEventFlags value.
func ModifiersFromFlags(flags uint64) keyevent.Modifiers {
	var m keyevent.Modifiers
	for _, b := range flagBits {
		if flags&b.cg != 0 {
			m |= b.mod
		}
	}
	return m
}

// FlagsFromModifiers is the inverse of ModifiersFromFlags.
func FlagsFromModifiers(m keyevent.Modifiers) uint64 {
	var flags uint64
	for _, b := range flagBits {
		if m&b.mod != 0 {
			flags |= b.cg
		}
	}
	return flags
}
