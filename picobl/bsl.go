package picobl

import (
	"fmt"
	"time"
)

// State - Krok protokolu nahrávání
type State int

// Stavy v pořadí průchodu, StateReboot jen s WithReboot(true)
const (
	StateStart State = iota
	StateReboot
	StateTrigger
	StateMagic
	StateHeader
	StateStreaming
	StateDone
)

var stateNames = map[State]string{
	StateStart:     "start",
	StateReboot:    "reboot-requested",
	StateTrigger:   "trigger-update-mode",
	StateMagic:     "magic-sent",
	StateHeader:    "header-sent",
	StateStreaming: "streaming",
	StateDone:      "done",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Uploader - Řídí aktualizaci po otevřeném spojení
//
// Protokol nemá zpětnou vazbu, ze zařízení se nic nečte.
type Uploader struct {
	s      *Session
	config Config
	state  State
}

// New - Vytvoří uploader pro dané spojení
func New(s *Session, opts ...Option) *Uploader {
	if s == nil {
		panic("session cannot be nil")
	}

	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}

	return &Uploader{
		s:      s,
		config: cfg,
		state:  StateStart,
	}
}

// State - Poslední stav, do kterého uploader vstoupil
func (u *Uploader) State() State {
	return u.state
}

// Upload - Nahraje data do zařízení
//
//  1. reboot\r\n (volitelně), čekat, zahodit vstup
//  2. "u", čekat, zahodit vstup
//  3. magic bajt 0xAA
//  4. hlavička (délka, CRC-32)
//  5. data po blocích
//
// Jakákoliv chyba ukončí celou sekvenci, nic se neopakuje.
func (u *Uploader) Upload(data []byte) error {
	if len(data) == 0 {
		return ErrEmptyPayload
	}

	header, err := NewHeader(data)
	if err != nil {
		return err
	}

	u.enter(StateStart)

	if u.config.Reboot {
		if err := u.reboot(); err != nil {
			return u.fail(err)
		}
	}

	if err := u.trigger(); err != nil {
		return u.fail(err)
	}

	if err := u.sendMagic(); err != nil {
		return u.fail(err)
	}

	if err := u.sendHeader(header); err != nil {
		return u.fail(err)
	}

	if err := u.stream(data); err != nil {
		return u.fail(err)
	}

	u.enter(StateDone)
	u.config.Logger.Info().Msg("Upload complete!")

	return nil
}

func (u *Uploader) enter(state State) {
	u.config.Logger.Debug().
		Stringer("from", u.state).
		Stringer("to", state).
		Msg("state transition")
	u.state = state
}

func (u *Uploader) fail(err error) error {
	u.config.Logger.Error().Err(err).Stringer("state", u.state).Msg("upload aborted")
	return &StateError{State: u.state, Err: err}
}

// Odeslat "reboot" a počkat na restart zařízení
func (u *Uploader) reboot() error {
	u.enter(StateReboot)
	u.config.Logger.Info().Msg("Sending remote 'reboot' command...")

	return u.command(cmdReboot, u.config.RebootDelay)
}

// Přepnout bootloader do módu aktualizace
func (u *Uploader) trigger() error {
	u.enter(StateTrigger)
	u.config.Logger.Info().Msg("Sending 'u' to trigger update mode...")

	return u.command(cmdTrigger, u.config.TriggerDelay)
}

// command odešle cmd, počká na zařízení a zahodí vše, co mezitím poslalo
func (u *Uploader) command(cmd []byte, delay time.Duration) error {
	err := u.s.Write(cmd)
	if err == nil {
		err = u.s.Flush()
	}

	if err != nil {
		return err
	}

	u.s.Sleep(delay)

	return u.s.ClearInput()
}

func (u *Uploader) sendMagic() error {
	u.enter(StateMagic)
	u.config.Logger.Info().Msgf("Sending Magic 0x%02X...", constMagic)

	return u.s.Write([]byte{constMagic})
}

func (u *Uploader) sendHeader(h Header) error {
	u.enter(StateHeader)
	u.config.Logger.Info().Msgf("Sending Header: [Len=%d, CRC=0x%08X]", h.Length, h.CRC)

	b := h.Bytes()
	return u.s.Write(b[:])
}

// Odeslat data po blocích ChunkSize, poslední blok může být kratší
func (u *Uploader) stream(data []byte) error {
	u.enter(StateStreaming)
	u.config.Logger.Info().Msg("Uploading data...")

	sent := 0
	for sent < len(data) {
		end := sent + u.config.ChunkSize
		if end > len(data) {
			end = len(data)
		}

		if err := u.s.Write(data[sent:end]); err != nil {
			return err
		}

		sent = end

		if u.config.ProgressCallback != nil {
			u.config.ProgressCallback(Progress{Sent: sent, Total: len(data)})
		}
	}

	return nil
}
