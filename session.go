package main

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var ErrDeviceUnresponsive = errors.New("device unresponsive")

// Session composes the transport and the codec into programme-level
// operations. It serializes exchanges: the protocol has no request
// tags, replies are matched purely by arrival order, so at most one
// request may be outstanding.
type Session struct {
	mu  sync.Mutex
	tr  *Transport
	log zerolog.Logger

	timeout time.Duration
	retries int
	backoff time.Duration

	// locate is overridable so tests can hand the session fake ports.
	locate func() (drivers.In, drivers.Out, error)
}

func NewSession(tr *Transport, st Settings, log zerolog.Logger) *Session {
	s := &Session{
		tr:      tr,
		log:     log.With().Str("component", "session").Logger(),
		timeout: st.ReceiveTimeout,
		retries: st.Retries,
		backoff: st.Backoff,
	}
	s.locate = func() (drivers.In, drivers.Out, error) {
		return tr.Discover(st.PortHint)
	}
	return s
}

func (s *Session) State() ConnState {
	return s.tr.State()
}

// EnsureConnected performs exactly one discover+connect attempt when
// the transport is not already connected. The retry loop belongs to
// the caller, which can offer a retry-or-abandon choice on failure.
func (s *Session) EnsureConnected() error {
	if s.tr.State() == Connected {
		return nil
	}
	in, out, err := s.locate()
	if err != nil {
		return err
	}
	return s.tr.Connect(in, out)
}

// Fetch requests the programme stored in slot (0 = RAM buffer) and
// decodes the reply. Transient failures (timeout, malformed frame)
// are retried with a short backoff up to the configured budget.
func (s *Session) Fetch(slot uint8) (*Programme, error) {
	if slot > SlotMax {
		return nil, fmt.Errorf("%w: slot %d out of range 0-%d", ErrInvalidConfiguration, slot, SlotMax)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for attempt := 0; attempt < s.retries; attempt++ {
		if attempt > 0 {
			if sess := s.tr.Session(); sess != nil {
				sess.Retries++
			}
			time.Sleep(s.backoff)
		}

		if err := s.tr.Send(CmdDumpRequest, []byte{slot}); err != nil {
			return nil, err
		}
		cmd, payload, err := s.tr.Receive(s.timeout)
		if err != nil {
			if errors.Is(err, ErrTimeout) || errors.Is(err, ErrMalformedEnvelope) {
				s.log.Warn().Uint8("slot", slot).Int("attempt", attempt+1).Err(err).Msg("dump request failed, retrying")
				continue
			}
			return nil, err
		}
		if cmd != CmdDumpReply {
			s.log.Warn().Uint8("slot", slot).Uint8("cmd", cmd).Msg("unexpected command, retrying")
			continue
		}
		return DecodeProgramme(payload)
	}
	return nil, fmt.Errorf("%w: no dump reply for slot %d after %d attempts", ErrDeviceUnresponsive, slot, s.retries)
}

// Push validates, encodes and writes the programme to its slot. The
// controller sends no acknowledgment for writes; a completed send is
// success.
func (s *Session) Push(p *Programme) error {
	if err := p.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.tr.Send(CmdWriteProgramme, p.Encode()); err != nil {
		return err
	}
	s.log.Info().Uint8("slot", p.Slot).Msg("programme sent")
	return nil
}

// FetchAll reads the eight stored programmes in slot order.
func (s *Session) FetchAll() ([]*Programme, error) {
	progs := make([]*Programme, 0, SlotMax)
	for slot := uint8(1); slot <= SlotMax; slot++ {
		p, err := s.Fetch(slot)
		if err != nil {
			return nil, fmt.Errorf("fetch slot %d: %w", slot, err)
		}
		progs = append(progs, p)
	}
	return progs, nil
}

// PushAll writes each programme to its own slot, validating the whole
// batch first so a bad entry cannot leave the device half written.
func (s *Session) PushAll(progs []*Programme) error {
	for _, p := range progs {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("slot %d: %w", p.Slot, err)
		}
	}
	for _, p := range progs {
		if err := s.Push(p); err != nil {
			return fmt.Errorf("push slot %d: %w", p.Slot, err)
		}
	}
	return nil
}

// Copy duplicates the programme in one slot into another.
func (s *Session) Copy(from, to uint8) error {
	if to > SlotMax {
		return fmt.Errorf("%w: slot %d out of range 0-%d", ErrInvalidConfiguration, to, SlotMax)
	}
	p, err := s.Fetch(from)
	if err != nil {
		return err
	}
	p.Slot = to
	return s.Push(p)
}
