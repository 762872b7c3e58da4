package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"

	"github.com/janch32/pico-downloader/discover"
	"github.com/janch32/pico-downloader/memory"
	"github.com/janch32/pico-downloader/picobl"
	"github.com/janch32/pico-downloader/terminal"
)

// portAuto - Místo pevného portu se použije první nalezené zařízení
const portAuto = "auto"

// openTerminal se v testech nahrazuje
var openTerminal = terminal.Open

type uploadConfig struct {
	port      string
	file      string
	baud      int
	chunkSize int
	reboot    bool
	layout    memory.Layout
	dump      string
	term      bool
}

// run - Nahraje firmware, bez souboru jen otevře terminál
func run(cfg uploadConfig) error {
	if cfg.file == "" {
		return connect(cfg.port, cfg.baud)
	}

	return upload(cfg)
}

// connect - Otevře terminál na portu, prázdný port se dohledá
func connect(port string, baud int) error {
	port, err := resolvePort(port)
	if err != nil {
		return err
	}

	log.Info().Msgf("Connecting to: %s", port)
	return openTerminal(port, baud)
}

// upload - Načte firmware a nahraje ho do zařízení na daném portu
//
// Port se uvolní na všech cestách ven z funkce, i při chybě.
func upload(cfg uploadConfig) error {
	img, err := loadImage(cfg.file, cfg.layout)
	if err != nil {
		return err
	}

	header, err := picobl.NewHeader(img.Data)
	if err != nil {
		return err
	}

	log.Info().Msgf("File loaded. Size: %d bytes (%s), CRC32: 0x%08X",
		header.Length, humanize.IBytes(uint64(header.Length)), header.CRC)

	if cfg.dump != "" {
		if err := img.Dump(cfg.dump, cfg.layout.Base); err != nil {
			return err
		}
		log.Info().Str("file", cfg.dump).Msg("Image written")
		return nil
	}

	port, err := resolvePort(cfg.port)
	if err != nil {
		return err
	}

	err = flash(port, img, cfg)
	if err != nil {
		return err
	}

	if cfg.term {
		return connect(port, cfg.baud)
	}

	return nil
}

// flash - Otevře vlastní spojení a provede na něm nahrání
func flash(port string, img *memory.Image, cfg uploadConfig) error {
	session, err := picobl.Open(port, cfg.baud, log.Logger)
	if err != nil {
		return err
	}

	defer session.Close()

	log.Info().Msgf("Port %s opened at %d baud.", port, cfg.baud)

	return send(session, img, cfg, os.Stderr)
}

// send - Nahraje obraz po otevřeném spojení a vykresluje průběh do out
func send(session *picobl.Session, img *memory.Image, cfg uploadConfig, out io.Writer, opts ...picobl.Option) error {
	bar := newProgressBar(img.Len(), out)
	opts = append([]picobl.Option{
		picobl.WithChunkSize(cfg.chunkSize),
		picobl.WithReboot(cfg.reboot),
		picobl.WithLogger(log.Logger),
		picobl.WithProgressCallback(func(p picobl.Progress) {
			if err := bar.Set(p.Sent); err != nil {
				log.Debug().Err(err).Msg("progress bar")
			}
		}),
	}, opts...)

	err := picobl.New(session, opts...).Upload(img.Data)
	if err != nil {
		// Ukončit řádek s průběhem, aby se chyba vypsala na nový řádek
		bar.Exit()
		return err
	}

	bar.Finish()
	log.Info().Msg("Done.")

	return nil
}

func loadImage(path string, layout memory.Layout) (*memory.Image, error) {
	if memory.KindOf(path) == memory.KindHex {
		log.Info().Msgf("Parsing Intel HEX file: %q", path)
	} else {
		log.Info().Msgf("Loading binary file: %q", path)
	}

	img, err := memory.LoadFile(path, layout)
	if err != nil {
		return nil, err
	}

	if img.AppHeader {
		log.Warn().Msg("This file starts with 'APPS' magic. It appears to already have bootloader metadata.")
		log.Warn().Msg("The downloader will calculate CRC over this file, which is likely NOT what you want.")
		log.Warn().Msg("Expected: a raw binary without the metadata block")
	}

	if img.Kind == memory.KindHex {
		log.Debug().
			Int("records", img.Stats.Records).
			Int("kept", img.Stats.Kept).
			Int("below_base", img.Stats.BelowBase).
			Msg("hex relocation")

		if img.Stats.Overflow > 0 {
			log.Warn().Msgf("%d bytes did not fit in %s after 0x%08X and were dropped",
				img.Stats.Overflow, humanize.IBytes(uint64(layout.Capacity)), layout.Base)
		}
	}

	return img, nil
}

func resolvePort(port string) (string, error) {
	if port != "" && port != portAuto {
		return port, nil
	}

	log.Info().Msg("Port not specified, running auto port discovery...")

	dev, err := discover.FirstDevice()
	if err != nil {
		return "", err
	}

	return dev.Port, nil
}

func newProgressBar(total int, out io.Writer) *progressbar.ProgressBar {
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(out),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("Uploading"),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetPredictTime(true),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(out) }),
	)
}

func printDevices() error {
	devices, err := discover.AllDevices()
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		fmt.Println("No Pico devices found")
		return nil
	}

	for _, d := range devices {
		fmt.Printf("%s\t%s:%s\t%s\n", d.Port, d.VID, d.PID, d.Serial)
	}

	return nil
}
