package main

import (
	"fmt"
	"os"
)

// A .mpkminiplus file is the raw codec payload for one programme: byte
// i of the file is byte i of Encode(). No envelope, no checksum.

// SaveProgramme writes the programme's payload bytes to path.
func SaveProgramme(path string, p *Programme) error {
	if err := p.Validate(); err != nil {
		return err
	}
	return os.WriteFile(path, p.Encode(), 0o644)
}

// LoadProgramme reads a programme dump from path. The slot stored in
// the file is historical (whatever slot it was saved from) and is not
// honoured; the caller names the slot the loaded programme targets.
func LoadProgramme(path string, slot uint8) (*Programme, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return DecodeFilePayload(data, slot)
}

// DecodeFilePayload decodes file bytes into a programme bound to slot.
func DecodeFilePayload(data []byte, slot uint8) (*Programme, error) {
	if slot > SlotMax {
		return nil, fmt.Errorf("%w: slot %d out of range 0-%d", ErrInvalidConfiguration, slot, SlotMax)
	}
	if len(data) != PayloadSize {
		return nil, fmt.Errorf("%w: file is %d bytes, want %d", ErrMalformedInput, len(data), PayloadSize)
	}
	buf := make([]byte, PayloadSize)
	copy(buf, data)
	buf[offSlot] = slot
	return DecodeProgramme(buf)
}
