package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/rs/zerolog"
	"gitlab.com/gomidi/midi/v2"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

const usage = `usage: mpkedit [-config file] <command>

commands:
  ports              list available MIDI endpoints
  probe              check the controller answers dump requests
  get <slot>         fetch a programme (0 = RAM) and print it as JSON
  send <slot>        read programme JSON from stdin and write it to slot
  get-all            fetch programmes 1-8 and print them as a JSON array
  send-all           read a JSON array from stdin and write each programme
  copy <from> <to>   duplicate one stored programme into another slot
  load <file> <slot> print a .mpkminiplus file as programme JSON
  save <file> <slot> fetch a programme and save it as a .mpkminiplus file
  mcp                serve the editor over MCP on stdio
`

func main() {
	configPath := flag.String("config", "", "path to a settings TOML file")
	flag.Parse()

	settings := DefaultSettings()
	if *configPath != "" {
		var err error
		settings, err = LoadSettings(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}

	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "unknown log level %q\n", settings.LogLevel)
		os.Exit(1)
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()

	defer midi.CloseDriver()

	args := flag.Args()
	if len(args) == 0 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	transport := NewTransport(log)
	session := NewSession(transport, settings, log)
	defer transport.Disconnect()

	switch args[0] {
	case "ports":
		listPorts()
	case "probe":
		connectOrDie(session, log)
		runProbe(session, log)
	case "get":
		connectOrDie(session, log)
		slot := slotArg(args, 1, log)
		if err := getProgramme(session, slot, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("get failed")
		}
	case "send":
		connectOrDie(session, log)
		slot := slotArg(args, 1, log)
		if err := sendProgramme(session, slot, os.Stdin); err != nil {
			log.Fatal().Err(err).Msg("send failed")
		}
	case "get-all":
		connectOrDie(session, log)
		if err := getAllProgrammes(session, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("get-all failed")
		}
	case "send-all":
		connectOrDie(session, log)
		if err := sendAllProgrammes(session, os.Stdin); err != nil {
			log.Fatal().Err(err).Msg("send-all failed")
		}
	case "copy":
		connectOrDie(session, log)
		from := slotArg(args, 1, log)
		to := slotArg(args, 2, log)
		if err := session.Copy(from, to); err != nil {
			log.Fatal().Err(err).Msg("copy failed")
		}
	case "load":
		if len(args) < 3 {
			log.Fatal().Msg("load needs a file and a slot")
		}
		slot := slotArg(args, 2, log)
		if err := loadFile(args[1], slot, os.Stdout); err != nil {
			log.Fatal().Err(err).Msg("load failed")
		}
	case "save":
		if len(args) < 3 {
			log.Fatal().Msg("save needs a file and a slot")
		}
		connectOrDie(session, log)
		slot := slotArg(args, 2, log)
		if err := saveFile(session, args[1], slot); err != nil {
			log.Fatal().Err(err).Msg("save failed")
		}
	case "mcp":
		connectOrDie(session, log)
		runMCP(session, log)
	default:
		fmt.Fprint(os.Stderr, usage)
		log.Fatal().Str("command", args[0]).Msg("unknown command")
	}
}

// connectOrDie runs one discover+connect attempt. The interactive
// retry loop the desktop editor had lives with whoever drives this
// binary; a CLI run just reports and exits.
func connectOrDie(s *Session, log zerolog.Logger) {
	if err := s.EnsureConnected(); err != nil {
		log.Fatal().Err(err).Msg("controller not found")
	}
}

func slotArg(args []string, idx int, log zerolog.Logger) uint8 {
	if len(args) <= idx {
		log.Fatal().Msg("missing slot argument")
	}
	slot, err := strconv.Atoi(args[idx])
	if err != nil || slot < 0 || slot > SlotMax {
		log.Fatal().Str("arg", args[idx]).Msgf("slot must be 0-%d", SlotMax)
	}
	return uint8(slot)
}

func listPorts() {
	fmt.Println("MIDI inputs:")
	for _, in := range midi.GetInPorts() {
		fmt.Printf("  [%d] %s\n", in.Number(), in.String())
	}
	fmt.Println("MIDI outputs:")
	for _, out := range midi.GetOutPorts() {
		fmt.Printf("  [%d] %s\n", out.Number(), out.String())
	}
}
