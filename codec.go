package main

import (
	"errors"
	"fmt"
)

// PayloadSize is the fixed length of one programme record on the wire.
// The same bytes travel inside a dump-reply/write-programme envelope
// and, verbatim, in a .mpkminiplus file.
const PayloadSize = 92

// Byte offsets into the programme payload.
const (
	offSlot       = 0
	offPadChannel = 1
	offKeyChannel = 2

	offPads   = 3
	padStride = 3 // event type, number, trigger mode

	offKnobs   = offPads + NumPads*padStride
	knobStride = 3 // CC, min, max

	offArpEnabled  = offKnobs + NumKnobs*knobStride
	offArpMode     = offArpEnabled + 1
	offArpDivision = offArpEnabled + 2
	offArpClock    = offArpEnabled + 3
	offArpLatch    = offArpEnabled + 4
	offArpSwing    = offArpEnabled + 5
	offArpTempoMSB = offArpEnabled + 6
	offArpTempoLSB = offArpEnabled + 7
	offArpOctave   = offArpEnabled + 8

	offJoyXMode   = offArpEnabled + 9
	offJoyXCCUp   = offArpEnabled + 10
	offJoyXCCDown = offArpEnabled + 11
	offJoyYMode   = offArpEnabled + 12
	offJoyYCCUp   = offArpEnabled + 13
	offJoyYCCDown = offArpEnabled + 14

	offOctave    = offArpEnabled + 15
	offTranspose = offArpEnabled + 16
)

var ErrMalformedInput = errors.New("malformed programme data")

// Encode serializes the programme into its wire payload. It is total
// for any programme that passes Validate; callers validate first.
// Every field owns distinct bytes, so encoding is injective.
func (p *Programme) Encode() []byte {
	data := make([]byte, PayloadSize)

	data[offSlot] = p.Slot
	data[offPadChannel] = p.PadChannel - 1
	data[offKeyChannel] = p.KeyChannel - 1

	for i, pad := range p.Pads {
		base := offPads + i*padStride
		data[base] = byte(pad.Type)
		data[base+1] = pad.Number
		data[base+2] = byte(pad.Mode)
	}

	for i, knob := range p.Knobs {
		base := offKnobs + i*knobStride
		data[base] = knob.CC
		data[base+1] = knob.Min
		data[base+2] = knob.Max
	}

	data[offArpEnabled] = boolByte(p.Arp.Enabled)
	data[offArpMode] = p.Arp.Mode
	data[offArpDivision] = p.Arp.TimeDivision
	data[offArpClock] = boolByte(p.Arp.ExternalClock)
	data[offArpLatch] = boolByte(p.Arp.Latch)
	data[offArpSwing] = p.Arp.Swing
	data[offArpTempoMSB] = p.Arp.Tempo >> 7
	data[offArpTempoLSB] = p.Arp.Tempo & 0x7F
	data[offArpOctave] = p.Arp.Octave

	data[offJoyXMode] = p.JoyX.Mode
	data[offJoyXCCUp] = p.JoyX.CCUp
	data[offJoyXCCDown] = p.JoyX.CCDown
	data[offJoyYMode] = p.JoyY.Mode
	data[offJoyYCCUp] = p.JoyY.CCUp
	data[offJoyYCCDown] = p.JoyY.CCDown

	data[offOctave] = p.Octave
	data[offTranspose] = p.Transpose

	return data
}

// DecodeProgramme parses a wire payload back into a programme. Any
// length or field-domain violation fails with ErrMalformedInput and
// yields no programme; it never returns a partially valid result.
func DecodeProgramme(data []byte) (*Programme, error) {
	if len(data) != PayloadSize {
		return nil, fmt.Errorf("%w: payload is %d bytes, want %d", ErrMalformedInput, len(data), PayloadSize)
	}
	for i, b := range data {
		if b > 0x7F {
			return nil, fmt.Errorf("%w: byte %d is not 7-bit clean (0x%02X)", ErrMalformedInput, i, b)
		}
	}

	p := &Programme{}

	p.Slot = data[offSlot]
	if data[offPadChannel] > 15 || data[offKeyChannel] > 15 {
		return nil, fmt.Errorf("%w: channel byte out of range", ErrMalformedInput)
	}
	p.PadChannel = data[offPadChannel] + 1
	p.KeyChannel = data[offKeyChannel] + 1

	for i := range p.Pads {
		base := offPads + i*padStride
		p.Pads[i] = PadBinding{
			Type:   PadType(data[base]),
			Number: data[base+1],
			Mode:   PadMode(data[base+2]),
		}
	}

	for i := range p.Knobs {
		base := offKnobs + i*knobStride
		p.Knobs[i] = KnobBinding{
			CC:  data[base],
			Min: data[base+1],
			Max: data[base+2],
		}
	}

	enabled, err := byteBool(data[offArpEnabled])
	if err != nil {
		return nil, fmt.Errorf("%w: arp enabled flag", ErrMalformedInput)
	}
	external, err := byteBool(data[offArpClock])
	if err != nil {
		return nil, fmt.Errorf("%w: arp clock flag", ErrMalformedInput)
	}
	latch, err := byteBool(data[offArpLatch])
	if err != nil {
		return nil, fmt.Errorf("%w: arp latch flag", ErrMalformedInput)
	}

	tempo := int(data[offArpTempoMSB])<<7 | int(data[offArpTempoLSB])
	if tempo < ArpTempoMin || tempo > ArpTempoMax {
		return nil, fmt.Errorf("%w: arp tempo %d out of range %d-%d", ErrMalformedInput, tempo, ArpTempoMin, ArpTempoMax)
	}

	p.Arp = ArpSettings{
		Enabled:       enabled,
		Mode:          data[offArpMode],
		TimeDivision:  data[offArpDivision],
		ExternalClock: external,
		Latch:         latch,
		Swing:         data[offArpSwing],
		Tempo:         uint8(tempo),
		Octave:        data[offArpOctave],
	}

	p.JoyX = JoystickAxis{Mode: data[offJoyXMode], CCUp: data[offJoyXCCUp], CCDown: data[offJoyXCCDown]}
	p.JoyY = JoystickAxis{Mode: data[offJoyYMode], CCUp: data[offJoyYCCUp], CCDown: data[offJoyYCCDown]}

	p.Octave = data[offOctave]
	p.Transpose = data[offTranspose]

	// Remaining domains (slot, pad/knob fields, arp mode, joystick
	// modes, octave, transpose) share the model's validation rules.
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	return p, nil
}

func boolByte(v bool) byte {
	if v {
		return 1
	}
	return 0
}

func byteBool(b byte) (bool, error) {
	switch b {
	case 0:
		return false, nil
	case 1:
		return true, nil
	}
	return false, fmt.Errorf("flag byte 0x%02X", b)
}
