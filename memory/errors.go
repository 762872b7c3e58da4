package memory

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrNoData - HEX soubor neobsahuje žádná data od bázové adresy výš
	ErrNoData = errors.New("no data found in HEX file")

	// ErrEmptyImage - Načtený obraz má nulovou délku
	ErrEmptyImage = errors.New("empty file or no valid data loaded")
)

// FileReadError - Soubor nelze otevřít nebo přečíst
type FileReadError struct {
	Path string
	Err  error
}

func (e *FileReadError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("read firmware: %v", e.Err)
	}
	return fmt.Sprintf("read firmware %s: %v", e.Path, e.Err)
}

func (e *FileReadError) Unwrap() error {
	return e.Err
}

// HexParseError - Chybný Intel HEX záznam
type HexParseError struct {
	Line int
	Err  error
}

func (e *HexParseError) Error() string {
	return fmt.Sprintf("hex parse error on line %d: %v", e.Line, e.Err)
}

func (e *HexParseError) Unwrap() error {
	return e.Err
}

// withPath doplní cestu k souboru do FileReadError z readeru
func withPath(err error, path string) error {
	var fre *FileReadError
	if errors.As(err, &fre) && fre.Path == "" {
		fre.Path = path
	}
	return err
}
