package main

import (
	"time"

	"github.com/rs/zerolog"
)

// runProbe checks the controller is alive by requesting the RAM
// working buffer and timing the round trip.
func runProbe(s *Session, log zerolog.Logger) {
	start := time.Now()
	p, err := s.Fetch(SlotRAM)
	if err != nil {
		log.Fatal().Err(err).Msg("controller did not answer")
	}
	elapsed := time.Since(start)

	sess := s.tr.Session()
	log.Info().
		Str("session_id", sess.ID.String()).
		Dur("round_trip", elapsed).
		Int("retries", sess.Retries).
		Uint8("pad_channel", p.PadChannel).
		Uint8("key_channel", p.KeyChannel).
		Msg("controller is responding")
}
