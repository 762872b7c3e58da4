package picobl

import (
	"io"
	"time"

	"github.com/rs/zerolog"
	"go.bug.st/serial"
)

// Port - Obousměrný kanál, do kterého spojení zapisuje
type Port interface {
	io.Writer
	Drain() error
	ResetInputBuffer() error
	Close() error
}

// Session - Otevřené sériové spojení s bootloaderem
type Session struct {
	port  Port
	name  string
	log   zerolog.Logger
	sleep func(time.Duration)
}

// Open - Otevřít sériový port v režimu 8N1 bez řízení toku
//
// DTR a RTS se nastavují jen pokud to převodník umí, chyba se ignoruje.
func Open(name string, baud int, log zerolog.Logger) (*Session, error) {
	conn, err := serial.Open(name, &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})

	if err != nil {
		return nil, &PortOpenError{Port: name, Err: err}
	}

	err = conn.SetReadTimeout(constDefaultReadTimeout)
	if err != nil {
		conn.Close()
		return nil, &PortOpenError{Port: name, Err: err}
	}

	// Některé USB převodníky propustí data jen s nastaveným DTR/RTS
	if err := conn.SetDTR(true); err != nil {
		log.Debug().Err(err).Str("port", name).Msg("DTR not supported")
	}
	if err := conn.SetRTS(true); err != nil {
		log.Debug().Err(err).Str("port", name).Msg("RTS not supported")
	}

	s := NewSession(conn, name)
	s.log = log

	return s, nil
}

// NewSession - Obalí již otevřený port
func NewSession(port Port, name string) *Session {
	return &Session{
		port:  port,
		name:  name,
		log:   zerolog.Nop(),
		sleep: time.Sleep,
	}
}

// Name - Název portu
func (s *Session) Name() string {
	return s.name
}

// Write - Odeslat všechna data
func (s *Session) Write(data []byte) error {
	for len(data) > 0 {
		n, err := s.port.Write(data)
		if err != nil {
			return &IoError{Op: "write", Err: err}
		}

		if n == 0 {
			return &IoError{Op: "write", Err: io.ErrShortWrite}
		}

		data = data[n:]
	}

	return nil
}

// Flush - Počkat na odeslání výstupního bufferu
func (s *Session) Flush() error {
	if err := s.port.Drain(); err != nil {
		return &IoError{Op: "flush", Err: err}
	}
	return nil
}

// ClearInput - Zahodit nepřečtená data
func (s *Session) ClearInput() error {
	if err := s.port.ResetInputBuffer(); err != nil {
		return &IoError{Op: "clear input", Err: err}
	}
	return nil
}

// Sleep - Počkat, než se zařízení dostane do známého stavu
func (s *Session) Sleep(d time.Duration) {
	s.log.Debug().Dur("delay", d).Msg("waiting for device")
	s.sleep(d)
}

// Close - Uvolnit port
func (s *Session) Close() error {
	return s.port.Close()
}
