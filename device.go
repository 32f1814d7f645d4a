package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var (
	ErrNoDeviceFound    = errors.New("no MPK Mini Plus found")
	ErrConnectionFailed = errors.New("connection failed")
	ErrNotConnected     = errors.New("not connected")
	ErrTimeout          = errors.New("timed out waiting for reply")
)

type ConnState int

const (
	Disconnected ConnState = iota
	Discovering
	Connected
)

func (s ConnState) String() string {
	switch s {
	case Disconnected:
		return "disconnected"
	case Discovering:
		return "discovering"
	case Connected:
		return "connected"
	}
	return fmt.Sprintf("ConnState(%d)", int(s))
}

// DeviceSession is one live connection to the controller. It owns the
// opened endpoint pair exclusively; reconnecting tears it down and
// builds a fresh one.
type DeviceSession struct {
	ID       uuid.UUID
	OpenedAt time.Time
	Retries  int // exchanges retried over this session's lifetime

	in     drivers.In
	out    drivers.Out
	stop   func()
	frames chan []byte
	done   chan struct{}
}

// Transport frames, sends and receives controller SysEx over one
// endpoint pair. All methods are safe for use from a single caller;
// the session façade serializes request/reply exchanges on top.
type Transport struct {
	mu      sync.Mutex
	state   ConnState
	session *DeviceSession
	log     zerolog.Logger
}

func NewTransport(log zerolog.Logger) *Transport {
	return &Transport{log: log.With().Str("component", "transport").Logger()}
}

func (t *Transport) State() ConnState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

func (t *Transport) Session() *DeviceSession {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.session
}

// Discover scans the host's MIDI endpoints for an input/output pair
// whose names contain the hint (the controller advertises itself as
// "MPK mini Plus" on every platform).
func (t *Transport) Discover(nameHint string) (drivers.In, drivers.Out, error) {
	t.setState(Discovering)

	lower := strings.ToLower(nameHint)

	var in drivers.In
	for _, p := range midi.GetInPorts() {
		if strings.Contains(strings.ToLower(p.String()), lower) {
			in = p
			break
		}
	}
	var out drivers.Out
	for _, p := range midi.GetOutPorts() {
		if strings.Contains(strings.ToLower(p.String()), lower) {
			out = p
			break
		}
	}

	if in == nil || out == nil {
		t.setState(Disconnected)
		return nil, nil, fmt.Errorf("%w: no endpoint pair matches %q", ErrNoDeviceFound, nameHint)
	}
	t.log.Debug().Str("in", in.String()).Str("out", out.String()).Msg("located controller ports")
	return in, out, nil
}

// Connect opens the endpoint pair and starts the SysEx listener. On
// any failure it returns to Disconnected and reports ConnectionFailed;
// it never retries on its own.
func (t *Transport) Connect(in drivers.In, out drivers.Out) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.session != nil {
		t.teardownLocked()
	}

	if err := in.Open(); err != nil {
		t.state = Disconnected
		return fmt.Errorf("%w: open input %q: %v", ErrConnectionFailed, in.String(), err)
	}
	if err := out.Open(); err != nil {
		_ = in.Close()
		t.state = Disconnected
		return fmt.Errorf("%w: open output %q: %v", ErrConnectionFailed, out.String(), err)
	}

	sess := &DeviceSession{
		ID:       uuid.New(),
		OpenedAt: time.Now(),
		in:       in,
		out:      out,
		frames:   make(chan []byte, 8),
		done:     make(chan struct{}),
	}

	asm := &frameAssembler{}
	stop, err := in.Listen(func(msg []byte, _ int32) {
		for _, frame := range asm.feed(msg) {
			select {
			case sess.frames <- frame:
			case <-sess.done:
				return
			default:
				t.log.Warn().Str("session_id", sess.ID.String()).Msg("dropping frame, receive buffer full")
			}
		}
	}, drivers.ListenConfig{
		SysEx:           true,
		SysExBufferSize: 1024,
		OnErr: func(err error) {
			t.log.Warn().Err(err).Msg("listener error")
		},
	})
	if err != nil {
		_ = in.Close()
		_ = out.Close()
		t.state = Disconnected
		return fmt.Errorf("%w: listen on %q: %v", ErrConnectionFailed, in.String(), err)
	}

	sess.stop = stop
	t.session = sess
	t.state = Connected
	t.log.Info().
		Str("session_id", sess.ID.String()).
		Str("in", in.String()).
		Str("out", out.String()).
		Msg("connected")
	return nil
}

// Disconnect tears the session down. In-flight receives against it
// fail with NotConnected.
func (t *Transport) Disconnect() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.teardownLocked()
}

func (t *Transport) teardownLocked() {
	if t.session != nil {
		close(t.session.done)
		if t.session.stop != nil {
			t.session.stop()
		}
		_ = t.session.in.Close()
		_ = t.session.out.Close()
		t.log.Info().Str("session_id", t.session.ID.String()).Msg("disconnected")
		t.session = nil
	}
	t.state = Disconnected
}

// Send frames the payload and writes it to the output endpoint.
func (t *Transport) Send(cmd byte, payload []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != Connected || t.session == nil {
		return ErrNotConnected
	}
	if !t.session.out.IsOpen() {
		t.teardownLocked()
		return fmt.Errorf("%w: output endpoint closed", ErrNotConnected)
	}
	frame := buildEnvelope(cmd, payload)
	if err := t.session.out.Send(frame); err != nil {
		t.teardownLocked()
		return fmt.Errorf("%w: %v", ErrNotConnected, err)
	}
	t.log.Debug().
		Str("session_id", t.session.ID.String()).
		Uint8("cmd", cmd).
		Int("payload_bytes", len(payload)).
		Msg("sent frame")
	return nil
}

// Receive blocks up to timeout for one complete, valid envelope and
// returns its command byte and payload. A malformed frame fails with
// MalformedEnvelope but leaves the session connected; the caller may
// simply receive again.
func (t *Transport) Receive(timeout time.Duration) (byte, []byte, error) {
	t.mu.Lock()
	if t.state != Connected || t.session == nil {
		t.mu.Unlock()
		return 0, nil, ErrNotConnected
	}
	sess := t.session
	t.mu.Unlock()

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case frame := <-sess.frames:
		cmd, payload, err := parseEnvelope(frame)
		if err != nil {
			t.log.Warn().Str("session_id", sess.ID.String()).Err(err).Msg("rejected frame")
			return 0, nil, err
		}
		return cmd, payload, nil
	case <-sess.done:
		return 0, nil, ErrNotConnected
	case <-timer.C:
		return 0, nil, fmt.Errorf("%w: nothing received in %v", ErrTimeout, timeout)
	}
}

func (t *Transport) setState(s ConnState) {
	t.mu.Lock()
	t.state = s
	t.mu.Unlock()
}
