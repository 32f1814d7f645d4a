package main

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

// testProgramme returns a valid programme with every block set to
// something other than its default.
func testProgramme(slot uint8) *Programme {
	p := NewProgramme(slot)
	p.PadChannel = 3
	p.KeyChannel = 16
	for i := range p.Pads {
		p.Pads[i] = PadBinding{Type: PadType(i % 3), Number: uint8(10 + i), Mode: PadMode(i % 2)}
	}
	for i := range p.Knobs {
		p.Knobs[i] = KnobBinding{CC: uint8(20 + i), Min: uint8(i), Max: uint8(100 + i)}
	}
	p.Arp = ArpSettings{
		Enabled:       true,
		Mode:          ArpExclusive,
		TimeDivision:  5,
		ExternalClock: true,
		Latch:         true,
		Swing:         4,
		Tempo:         233, // needs both 7-bit tempo bytes
		Octave:        2,
	}
	p.JoyX = JoystickAxis{Mode: JoyCCDual, CCUp: 12, CCDown: 13}
	p.JoyY = JoystickAxis{Mode: JoyCCSingle, CCUp: 74}
	p.Octave = 6
	p.Transpose = 7
	return p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := testProgramme(5)
	if err := p.Validate(); err != nil {
		t.Fatalf("test programme does not validate: %v", err)
	}

	data := p.Encode()
	if len(data) != PayloadSize {
		t.Fatalf("encoded payload is %d bytes, want %d", len(data), PayloadSize)
	}

	got, err := DecodeProgramme(data)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, p)
	}
}

func TestDefaultProgrammeRoundTrips(t *testing.T) {
	for slot := uint8(0); slot <= SlotMax; slot++ {
		p := NewProgramme(slot)
		if err := p.Validate(); err != nil {
			t.Fatalf("slot %d: default programme invalid: %v", slot, err)
		}
		got, err := DecodeProgramme(p.Encode())
		if err != nil {
			t.Fatalf("slot %d: decode failed: %v", slot, err)
		}
		if !reflect.DeepEqual(got, p) {
			t.Errorf("slot %d: round trip mismatch", slot)
		}
	}
}

func TestDecodeRejectsWrongLength(t *testing.T) {
	data := testProgramme(1).Encode()

	for _, n := range []int{0, 1, PayloadSize - 1, PayloadSize + 1, PayloadSize * 2} {
		buf := make([]byte, n)
		copy(buf, data)
		if _, err := DecodeProgramme(buf); !errors.Is(err, ErrMalformedInput) {
			t.Errorf("length %d: got %v, want ErrMalformedInput", n, err)
		}
	}
}

func TestDecodeRejectsBadFieldValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func([]byte)
	}{
		{"slot out of range", func(d []byte) { d[offSlot] = 9 }},
		{"pad channel out of range", func(d []byte) { d[offPadChannel] = 16 }},
		{"key channel out of range", func(d []byte) { d[offKeyChannel] = 16 }},
		{"pad event type unknown", func(d []byte) { d[offPads] = 3 }},
		{"pad mode unknown", func(d []byte) { d[offPads+2] = 2 }},
		{"knob min greater than max", func(d []byte) {
			d[offKnobs+1] = 64
			d[offKnobs+2] = 10
		}},
		{"arp enabled flag not boolean", func(d []byte) { d[offArpEnabled] = 2 }},
		{"arp mode out of range", func(d []byte) { d[offArpMode] = 6 }},
		{"arp division out of range", func(d []byte) { d[offArpDivision] = 8 }},
		{"arp clock flag not boolean", func(d []byte) { d[offArpClock] = 2 }},
		{"arp latch flag not boolean", func(d []byte) { d[offArpLatch] = 2 }},
		{"arp swing out of range", func(d []byte) { d[offArpSwing] = 6 }},
		{"arp tempo below minimum", func(d []byte) {
			d[offArpTempoMSB] = 0
			d[offArpTempoLSB] = ArpTempoMin - 1
		}},
		{"arp tempo above maximum", func(d []byte) {
			d[offArpTempoMSB] = 127
			d[offArpTempoLSB] = 127
		}},
		{"arp octave out of range", func(d []byte) { d[offArpOctave] = 4 }},
		{"joystick mode out of range", func(d []byte) { d[offJoyXMode] = 3 }},
		{"octave out of range", func(d []byte) { d[offOctave] = 9 }},
		{"transpose out of range", func(d []byte) { d[offTranspose] = 25 }},
		{"byte not 7-bit clean", func(d []byte) { d[offPads+1] = 0x80 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			data := NewProgramme(2).Encode()
			tc.mutate(data)
			if _, err := DecodeProgramme(data); !errors.Is(err, ErrMalformedInput) {
				t.Errorf("got %v, want ErrMalformedInput", err)
			}
		})
	}
}

func TestEncodeIsInjectiveAcrossFields(t *testing.T) {
	base := testProgramme(1)
	variants := []func(*Programme){
		func(p *Programme) { p.Slot = 2 },
		func(p *Programme) { p.PadChannel = 4 },
		func(p *Programme) { p.KeyChannel = 5 },
		func(p *Programme) { p.Pads[0].Number = 99 },
		func(p *Programme) { p.Pads[15].Mode = PadMomentary },
		func(p *Programme) { p.Knobs[7].Max = 126 },
		func(p *Programme) { p.Arp.Tempo = 120 },
		func(p *Programme) { p.Arp.Latch = false },
		func(p *Programme) { p.JoyY.CCUp = 75 },
		func(p *Programme) { p.Transpose = 12 },
	}

	ref := base.Encode()
	for i, mutate := range variants {
		p := testProgramme(1)
		mutate(p)
		if err := p.Validate(); err != nil {
			t.Fatalf("variant %d invalid: %v", i, err)
		}
		if reflect.DeepEqual(p.Encode(), ref) {
			t.Errorf("variant %d encodes identically to the base programme", i)
		}
	}
}

func TestFilePayloadSlotSuppliedByCaller(t *testing.T) {
	p := testProgramme(2)
	payload := p.Encode()

	got, err := DecodeFilePayload(payload, 5)
	if err != nil {
		t.Fatalf("decode file payload failed: %v", err)
	}
	if got.Slot != 5 {
		t.Errorf("slot = %d, want caller-supplied 5", got.Slot)
	}

	got.Slot = p.Slot
	if !reflect.DeepEqual(got, p) {
		t.Errorf("loaded programme differs beyond the slot field")
	}
}

func TestSaveLoadProgrammeFile(t *testing.T) {
	p := testProgramme(2)
	path := filepath.Join(t.TempDir(), "test.mpkminiplus")

	if err := SaveProgramme(path, p); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(raw, p.Encode()) {
		t.Errorf("file bytes differ from the encoded payload")
	}

	got, err := LoadProgramme(path, 2)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if !reflect.DeepEqual(got, p) {
		t.Errorf("load mismatch:\n got %+v\nwant %+v", got, p)
	}
}

func TestLoadProgrammeRejectsTruncatedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "short.mpkminiplus")
	if err := os.WriteFile(path, make([]byte, PayloadSize-10), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadProgramme(path, 1); !errors.Is(err, ErrMalformedInput) {
		t.Errorf("got %v, want ErrMalformedInput", err)
	}
}
