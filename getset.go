package main

import (
	"encoding/json"
	"fmt"
	"io"
)

// CLI operations: programmes travel as JSON on stdio, the way the
// desktop editor moved them between widgets and the device.

func getProgramme(s *Session, slot uint8, w io.Writer) error {
	p, err := s.Fetch(slot)
	if err != nil {
		return err
	}
	return writeJSON(w, p)
}

func sendProgramme(s *Session, slot uint8, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read programme JSON: %w", err)
	}
	var p Programme
	if err := json.Unmarshal(data, &p); err != nil {
		return fmt.Errorf("unmarshal programme JSON: %w", err)
	}
	p.Slot = slot
	return s.Push(&p)
}

func getAllProgrammes(s *Session, w io.Writer) error {
	progs, err := s.FetchAll()
	if err != nil {
		return err
	}
	return writeJSON(w, progs)
}

func sendAllProgrammes(s *Session, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("read programme JSON: %w", err)
	}
	var progs []*Programme
	if err := json.Unmarshal(data, &progs); err != nil {
		return fmt.Errorf("unmarshal programme JSON: %w", err)
	}
	return s.PushAll(progs)
}

func loadFile(path string, slot uint8, w io.Writer) error {
	p, err := LoadProgramme(path, slot)
	if err != nil {
		return err
	}
	return writeJSON(w, p)
}

func saveFile(s *Session, path string, slot uint8) error {
	p, err := s.Fetch(slot)
	if err != nil {
		return err
	}
	return SaveProgramme(path, p)
}

func writeJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal to JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}
