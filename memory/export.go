package memory

import (
	"io"
	"os"

	"github.com/marcinbor85/gohex"
	"github.com/pkg/errors"
)

// hexLineLength - Bajtů dat na jeden záznam v exportovaném HEX souboru
const hexLineLength = 16

// WriteIntelHex - Zapíše obraz jako Intel HEX umístěný na adresu addr
func (img *Image) WriteIntelHex(w io.Writer, addr uint32) error {
	mem := gohex.NewMemory()

	err := mem.AddBinary(addr, img.Data)
	if err != nil {
		return errors.Wrapf(err, "place image at 0x%08X", addr)
	}

	return mem.DumpIntelHex(w, hexLineLength)
}

// WriteBin - Zapíše data obrazu do w tak jak jsou
func (img *Image) WriteBin(w io.Writer) error {
	_, err := w.Write(img.Data)
	return err
}

// Dump - Uloží obraz do souboru, při příponě .hex jako Intel HEX na adrese addr
func (img *Image) Dump(path string, addr uint32) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}

	if KindOf(path) == KindHex {
		err = img.WriteIntelHex(file, addr)
	} else {
		err = img.WriteBin(file)
	}

	if err != nil {
		file.Close()
		return err
	}

	return file.Close()
}
