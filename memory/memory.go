package memory

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Kind - Typ zdrojového souboru s firmwarem
type Kind int

const (
	// KindBinary - Binární soubor, nahrává se bajt po bajtu
	KindBinary Kind = iota
	// KindHex - Intel HEX text, přemapovaný do plochého obrazu
	KindHex
)

func (k Kind) String() string {
	if k == KindHex {
		return "Intel HEX"
	}
	return "binary"
}

// appMagic označuje binárku, která už obsahuje metadata bootloaderu
var appMagic = []byte("APPS")

// Stats - Diagnostické čítače posbírané při sestavení obrazu
type Stats struct {
	Records   int // Počet dekódovaných HEX záznamů
	Kept      int // Bajty dat zkopírované do obrazu
	BelowBase int // Zahozené bajty pod bázovou adresou
	Overflow  int // Zahozené bajty, které se nevešly do bufferu
}

// Image - Plochý obraz firmwaru připravený k nahrání
type Image struct {
	Data      []byte
	Path      string
	Kind      Kind
	AppHeader bool // Binárka začíná značkou "APPS"
	Stats     Stats
}

// Len - Délka dat v bajtech
func (img *Image) Len() int {
	return len(img.Data)
}

// KindOf - Určí typ souboru podle přípony (obsah se nezkoumá)
func KindOf(path string) Kind {
	if strings.EqualFold(filepath.Ext(path), ".hex") {
		return KindHex
	}
	return KindBinary
}

// LoadFile - Načte obraz ze souboru, hex nebo binární podle přípony
func LoadFile(path string, layout Layout) (*Image, error) {
	if KindOf(path) == KindHex {
		return LoadHexFile(path, layout)
	}
	return LoadBinFile(path)
}

// LoadBinFile - Načte binární soubor tak jak je
func LoadBinFile(path string) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	defer file.Close()

	img, err := ReadBin(file)
	if err != nil {
		return nil, withPath(err, path)
	}

	img.Path = path
	return img, nil
}

// ReadBin - Načte celý reader jako binární obraz
func ReadBin(r io.Reader) (*Image, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, &FileReadError{Err: err}
	}

	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	return &Image{
		Data:      data,
		Kind:      KindBinary,
		AppHeader: bytes.HasPrefix(data, appMagic),
	}, nil
}

// LoadHexFile - Načte .hex soubor (Intel HEX formát) a přemapuje adresy do plochého obrazu
func LoadHexFile(path string, layout Layout) (*Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &FileReadError{Path: path, Err: err}
	}

	defer file.Close()

	img, err := ReadHex(file, layout)
	if err != nil {
		return nil, withPath(err, path)
	}

	img.Path = path
	return img, nil
}
