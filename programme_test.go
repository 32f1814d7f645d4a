package main

import (
	"errors"
	"testing"
)

func TestChannelBounds(t *testing.T) {
	for _, ch := range []uint8{1, 16} {
		p := NewProgramme(1)
		p.PadChannel = ch
		p.KeyChannel = ch
		if err := p.Validate(); err != nil {
			t.Errorf("channel %d should validate, got %v", ch, err)
		}
	}
	for _, ch := range []uint8{0, 17} {
		p := NewProgramme(1)
		p.PadChannel = ch
		if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("pad channel %d: got %v, want ErrInvalidConfiguration", ch, err)
		}
		p = NewProgramme(1)
		p.KeyChannel = ch
		if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("key channel %d: got %v, want ErrInvalidConfiguration", ch, err)
		}
	}
}

func TestKnobRangeOrdering(t *testing.T) {
	p := NewProgramme(1)
	p.Knobs[3] = KnobBinding{CC: 21, Min: 80, Max: 20}
	if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("min > max: got %v, want ErrInvalidConfiguration", err)
	}

	p.Knobs[3] = KnobBinding{CC: 21, Min: 20, Max: 20}
	if err := p.Validate(); err != nil {
		t.Errorf("min == max should validate, got %v", err)
	}
}

func TestSlotBounds(t *testing.T) {
	p := NewProgramme(SlotMax)
	if err := p.Validate(); err != nil {
		t.Errorf("slot %d should validate, got %v", SlotMax, err)
	}
	p.Slot = SlotMax + 1
	if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("slot %d: got %v, want ErrInvalidConfiguration", p.Slot, err)
	}
}

func TestPadBindingDomains(t *testing.T) {
	p := NewProgramme(1)
	p.Pads[0] = PadBinding{Type: PadProgramChange + 1, Number: 10}
	if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("unknown pad type: got %v, want ErrInvalidConfiguration", err)
	}

	p = NewProgramme(1)
	p.Pads[7].Mode = PadToggle + 1
	if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("unknown pad mode: got %v, want ErrInvalidConfiguration", err)
	}
}

func TestArpTempoDomain(t *testing.T) {
	p := NewProgramme(1)
	p.Arp.Tempo = ArpTempoMin - 1
	if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Errorf("tempo %d: got %v, want ErrInvalidConfiguration", p.Arp.Tempo, err)
	}
	p.Arp.Tempo = ArpTempoMax
	if err := p.Validate(); err != nil {
		t.Errorf("tempo %d should validate, got %v", p.Arp.Tempo, err)
	}
}

func TestValidationRejectsWithoutClamping(t *testing.T) {
	p := NewProgramme(1)
	p.JoyX.Mode = 5
	if err := p.Validate(); !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("got %v, want ErrInvalidConfiguration", err)
	}
	if p.JoyX.Mode != 5 {
		t.Errorf("validation must not mutate the programme")
	}
}
