package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/janch32/pico-downloader/memory"
	"github.com/janch32/pico-downloader/picobl"
)

func main() {
	flagBaud := flag.IntP("baud", "b", picobl.DefaultBaud, "Baud rate")
	flagChunkSize := flag.IntP("chunk-size", "c", picobl.DefaultChunkSize, "Chunk size")
	flagReboot := flag.BoolP("reboot", "r", false, "Send 'reboot' command before update")
	flagBase := flag.Uint32("base", memory.DefaultBase, "Address mapped to the start of the image (HEX input)")
	flagList := flag.BoolP("list", "l", false, "List all connected Pico devices")
	flagTerm := flag.BoolP("term", "t", false, "Open terminal on the port (after the upload if FILE is given)")
	flagDump := flag.String("dump", "", "Write the prepared image to `FILE` (.bin or .hex) and exit")
	flagVerbose := flag.BoolP("verbose", "v", false, "Debug output")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [flags] [PORT] FILE\n       %s --term [PORT]\n\nFlags:\n", os.Args[0], os.Args[0])
		flag.PrintDefaults()
	}

	flag.Parse()

	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"}).
		With().Timestamp().Logger()

	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	if *flagVerbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}

	if *flagList {
		if err := printDevices(); err != nil {
			log.Fatal().Err(err).Msg("device discovery failed")
		}
		return
	}

	cfg := uploadConfig{
		baud:      *flagBaud,
		chunkSize: *flagChunkSize,
		reboot:    *flagReboot,
		layout:    memory.Layout{Base: *flagBase, Capacity: memory.DefaultCapacity},
		dump:      *flagDump,
		term:      *flagTerm,
	}

	var ok bool
	cfg.port, cfg.file, ok = parseArgs(flag.Args(), cfg.term)
	if !ok {
		flag.Usage()
		os.Exit(2)
	}

	if err := run(cfg); err != nil {
		log.Fatal().Err(err).Msg("aborted")
	}
}

// parseArgs - Rozdělí poziční argumenty na port a soubor s firmwarem
//
// S --term stačí zadat jen port (nebo nic), potom se pouze otevře terminál.
// Jediný argument je soubor jen pokud na disku existuje jako běžný soubor.
func parseArgs(args []string, term bool) (port, file string, ok bool) {
	switch len(args) {
	case 0:
		return "", "", term
	case 1:
		if term && !isRegularFile(args[0]) {
			return args[0], "", true
		}
		return "", args[0], true
	case 2:
		return args[0], args[1], true
	}

	return "", "", false
}

func isRegularFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
