package main

import (
	"errors"
	"fmt"
)

const (
	sysexStart = 0xF0
	sysexEnd   = 0xF7
)

// Akai MPK Mini Plus SysEx identity.
const (
	manufacturerAkai = 0x47
	deviceIDAllCall  = 0x7F
	modelMPKMiniPlus = 0x54
)

// Command bytes understood by the controller.
const (
	CmdWriteProgramme byte = 0x64
	CmdDumpRequest    byte = 0x66
	CmdDumpReply      byte = 0x67
)

// F0, manufacturer, device, model, command, two 7-bit length bytes, F7.
const envelopeOverhead = 8

// A stuck foreign frame should not grow the assembler without bound.
const maxFrameBytes = 512

var ErrMalformedEnvelope = errors.New("malformed sysex envelope")

// buildEnvelope wraps a payload in the controller's SysEx framing:
//
//	F0 47 7F 54 <cmd> <lenMSB> <lenLSB> <payload...> F7
func buildEnvelope(cmd byte, payload []byte) []byte {
	frame := make([]byte, 0, envelopeOverhead+len(payload))
	frame = append(frame,
		sysexStart,
		manufacturerAkai,
		deviceIDAllCall,
		modelMPKMiniPlus,
		cmd,
		byte(len(payload)>>7)&0x7F,
		byte(len(payload))&0x7F,
	)
	frame = append(frame, payload...)
	frame = append(frame, sysexEnd)
	return frame
}

// parseEnvelope validates the framing of a complete SysEx frame and
// returns the command byte and the inner payload.
func parseEnvelope(frame []byte) (byte, []byte, error) {
	if len(frame) < envelopeOverhead {
		return 0, nil, fmt.Errorf("%w: frame is %d bytes", ErrMalformedEnvelope, len(frame))
	}
	if frame[0] != sysexStart || frame[len(frame)-1] != sysexEnd {
		return 0, nil, fmt.Errorf("%w: missing start/end markers", ErrMalformedEnvelope)
	}
	if frame[1] != manufacturerAkai {
		return 0, nil, fmt.Errorf("%w: manufacturer 0x%02X is not Akai (0x%02X)", ErrMalformedEnvelope, frame[1], manufacturerAkai)
	}
	if frame[2] != deviceIDAllCall {
		return 0, nil, fmt.Errorf("%w: device id 0x%02X", ErrMalformedEnvelope, frame[2])
	}
	if frame[3] != modelMPKMiniPlus {
		return 0, nil, fmt.Errorf("%w: model id 0x%02X is not MPK Mini Plus (0x%02X)", ErrMalformedEnvelope, frame[3], modelMPKMiniPlus)
	}

	cmd := frame[4]
	switch cmd {
	case CmdWriteProgramme, CmdDumpRequest, CmdDumpReply:
	default:
		return 0, nil, fmt.Errorf("%w: unknown command 0x%02X", ErrMalformedEnvelope, cmd)
	}

	declared := int(frame[5])<<7 | int(frame[6])
	payload := frame[7 : len(frame)-1]
	if declared != len(payload) {
		return 0, nil, fmt.Errorf("%w: declared length %d, got %d payload bytes", ErrMalformedEnvelope, declared, len(payload))
	}
	return cmd, payload, nil
}

// frameAssembler reassembles SysEx frames from a stream of low-level
// reads that may split one frame across several chunks. A new start
// marker abandons any unterminated frame in progress.
type frameAssembler struct {
	buf        []byte
	collecting bool
}

// feed consumes one chunk and returns every frame completed by it.
func (a *frameAssembler) feed(chunk []byte) [][]byte {
	var frames [][]byte
	for _, b := range chunk {
		switch {
		case b == sysexStart:
			a.buf = append(a.buf[:0], b)
			a.collecting = true
		case !a.collecting:
			// Interleaved non-SysEx traffic.
		case b == sysexEnd:
			a.buf = append(a.buf, b)
			frame := make([]byte, len(a.buf))
			copy(frame, a.buf)
			frames = append(frames, frame)
			a.buf = a.buf[:0]
			a.collecting = false
		default:
			if len(a.buf) >= maxFrameBytes {
				a.buf = a.buf[:0]
				a.collecting = false
				continue
			}
			a.buf = append(a.buf, b)
		}
	}
	return frames
}
