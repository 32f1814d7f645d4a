package main

import (
	"errors"
	"fmt"
)

const (
	NumPads  = 16 // two banks of eight
	NumKnobs = 8
)

// Programme slots: 0 addresses the volatile RAM working buffer,
// 1-8 the stored programmes.
const (
	SlotRAM = 0
	SlotMax = 8
)

var ErrInvalidConfiguration = errors.New("invalid configuration")

// PadType selects which MIDI event a pad emits.
type PadType uint8

const (
	PadNote PadType = iota
	PadCC
	PadProgramChange
)

// PadMode is the trigger behaviour of a pad.
type PadMode uint8

const (
	PadMomentary PadMode = iota
	PadToggle
)

// Joystick axis modes.
const (
	JoyPitchbend uint8 = iota
	JoyCCSingle
	JoyCCDual
)

// Arpeggiator note orders.
const (
	ArpUp uint8 = iota
	ArpDown
	ArpInclusive
	ArpExclusive
	ArpOrder
	ArpRandom
)

const (
	ArpTempoMin = 30
	ArpTempoMax = 240
)

type PadBinding struct {
	Type   PadType `json:"type"`
	Number uint8   `json:"number"`
	Mode   PadMode `json:"mode"`
}

type KnobBinding struct {
	CC  uint8 `json:"cc"`
	Min uint8 `json:"min"`
	Max uint8 `json:"max"`
}

type ArpSettings struct {
	Enabled       bool  `json:"enabled"`
	Mode          uint8 `json:"mode"`          // ArpUp..ArpRandom
	TimeDivision  uint8 `json:"time_division"` // 0-7, 1/4 .. 1/32T
	ExternalClock bool  `json:"external_clock"`
	Latch         bool  `json:"latch"`
	Swing         uint8 `json:"swing"` // 0-5, 50%..75%
	Tempo         uint8 `json:"tempo"` // 30-240 BPM
	Octave        uint8 `json:"octave"`
}

type JoystickAxis struct {
	Mode   uint8 `json:"mode"` // JoyPitchbend, JoyCCSingle or JoyCCDual
	CCUp   uint8 `json:"cc_up"`
	CCDown uint8 `json:"cc_down"` // only meaningful in JoyCCDual mode
}

// Programme holds every per-programme setting of the controller. It is
// populated either from a decoded dump or by the caller, and is only
// ever sent to the device after Validate passes.
type Programme struct {
	Slot       uint8                 `json:"slot"`
	PadChannel uint8                 `json:"pad_channel"` // 1-16
	KeyChannel uint8                 `json:"key_channel"` // 1-16
	Pads       [NumPads]PadBinding   `json:"pads"`
	Knobs      [NumKnobs]KnobBinding `json:"knobs"`
	Arp        ArpSettings           `json:"arp"`
	JoyX       JoystickAxis          `json:"joystick_x"`
	JoyY       JoystickAxis          `json:"joystick_y"`
	Octave     uint8                 `json:"octave"`    // 0-8, 4 = no shift
	Transpose  uint8                 `json:"transpose"` // 0-24, 12 = no shift
}

// NewProgramme returns a programme with the factory defaults the
// controller ships with in every slot.
func NewProgramme(slot uint8) *Programme {
	p := &Programme{
		Slot:       slot,
		PadChannel: 10,
		KeyChannel: 1,
		Arp: ArpSettings{
			Mode:         ArpUp,
			TimeDivision: 2,
			Tempo:        120,
			Octave:       0,
		},
		JoyX:      JoystickAxis{Mode: JoyPitchbend},
		JoyY:      JoystickAxis{Mode: JoyCCSingle, CCUp: 1},
		Octave:    4,
		Transpose: 12,
	}
	for i := range p.Pads {
		p.Pads[i] = PadBinding{Type: PadNote, Number: uint8(36 + i), Mode: PadMomentary}
	}
	for i := range p.Knobs {
		p.Knobs[i] = KnobBinding{CC: uint8(70 + i), Min: 0, Max: 127}
	}
	return p
}

// Validate checks every field against its legal domain. It rejects,
// it never clamps; a failing programme must not be encoded or sent.
func (p *Programme) Validate() error {
	if p.Slot > SlotMax {
		return fmt.Errorf("%w: slot %d out of range 0-%d", ErrInvalidConfiguration, p.Slot, SlotMax)
	}
	if p.PadChannel < 1 || p.PadChannel > 16 {
		return fmt.Errorf("%w: pad channel %d out of range 1-16", ErrInvalidConfiguration, p.PadChannel)
	}
	if p.KeyChannel < 1 || p.KeyChannel > 16 {
		return fmt.Errorf("%w: key channel %d out of range 1-16", ErrInvalidConfiguration, p.KeyChannel)
	}
	for i, pad := range p.Pads {
		if pad.Type > PadProgramChange {
			return fmt.Errorf("%w: pad %d has unknown event type %d", ErrInvalidConfiguration, i+1, pad.Type)
		}
		if pad.Number > 127 {
			return fmt.Errorf("%w: pad %d number %d out of range 0-127", ErrInvalidConfiguration, i+1, pad.Number)
		}
		if pad.Mode > PadToggle {
			return fmt.Errorf("%w: pad %d has unknown trigger mode %d", ErrInvalidConfiguration, i+1, pad.Mode)
		}
	}
	for i, knob := range p.Knobs {
		if knob.CC > 127 {
			return fmt.Errorf("%w: knob %d CC %d out of range 0-127", ErrInvalidConfiguration, i+1, knob.CC)
		}
		if knob.Min > 127 || knob.Max > 127 {
			return fmt.Errorf("%w: knob %d range outside 0-127", ErrInvalidConfiguration, i+1)
		}
		if knob.Min > knob.Max {
			return fmt.Errorf("%w: knob %d min %d greater than max %d", ErrInvalidConfiguration, i+1, knob.Min, knob.Max)
		}
	}
	if err := p.Arp.validate(); err != nil {
		return err
	}
	if err := p.JoyX.validate("X"); err != nil {
		return err
	}
	if err := p.JoyY.validate("Y"); err != nil {
		return err
	}
	if p.Octave > 8 {
		return fmt.Errorf("%w: octave %d out of range 0-8", ErrInvalidConfiguration, p.Octave)
	}
	if p.Transpose > 24 {
		return fmt.Errorf("%w: transpose %d out of range 0-24", ErrInvalidConfiguration, p.Transpose)
	}
	return nil
}

func (a ArpSettings) validate() error {
	if a.Mode > ArpRandom {
		return fmt.Errorf("%w: arp mode %d out of range 0-%d", ErrInvalidConfiguration, a.Mode, ArpRandom)
	}
	if a.TimeDivision > 7 {
		return fmt.Errorf("%w: arp time division %d out of range 0-7", ErrInvalidConfiguration, a.TimeDivision)
	}
	if a.Swing > 5 {
		return fmt.Errorf("%w: arp swing %d out of range 0-5", ErrInvalidConfiguration, a.Swing)
	}
	if a.Tempo < ArpTempoMin || a.Tempo > ArpTempoMax {
		return fmt.Errorf("%w: arp tempo %d out of range %d-%d", ErrInvalidConfiguration, a.Tempo, ArpTempoMin, ArpTempoMax)
	}
	if a.Octave > 3 {
		return fmt.Errorf("%w: arp octave range %d out of range 0-3", ErrInvalidConfiguration, a.Octave)
	}
	return nil
}

func (j JoystickAxis) validate(axis string) error {
	if j.Mode > JoyCCDual {
		return fmt.Errorf("%w: joystick %s mode %d out of range 0-2", ErrInvalidConfiguration, axis, j.Mode)
	}
	if j.CCUp > 127 || j.CCDown > 127 {
		return fmt.Errorf("%w: joystick %s CC outside 0-127", ErrInvalidConfiguration, axis)
	}
	return nil
}
