package memory

import (
	"bufio"
	"encoding/binary"
	"encoding/hex"
	"io"
	"strings"

	"github.com/pkg/errors"
)

const (
	// DefaultBase - Absolutní adresa, která se mapuje na offset 0 v obrazu
	DefaultBase = 0x10010100

	// DefaultCapacity - Velikost pracovního bufferu (2 MiB)
	DefaultCapacity = 2 * 1024 * 1024

	// Smazaná flash
	fillByte = 0xFF
)

// Typy Intel HEX záznamů
const (
	recData                   = 0x00
	recEndOfFile              = 0x01
	recExtendedSegmentAddress = 0x02
	recStartSegmentAddress    = 0x03
	recExtendedLinearAddress  = 0x04
	recStartLinearAddress     = 0x05
)

// Layout - Mapování HEX adres do plochého obrazu
type Layout struct {
	Base     uint32 // Adresa, která odpovídá offsetu 0 v obrazu
	Capacity int    // Maximální velikost obrazu
}

// DefaultLayout - Rozložení aplikačního slotu za bootloaderem
func DefaultLayout() Layout {
	return Layout{
		Base:     DefaultBase,
		Capacity: DefaultCapacity,
	}
}

// Record - Jeden dekódovaný řádek Intel HEX
type Record interface {
	isRecord()
}

// DataRecord - Data na 16bitovém offsetu od aktuální bázové adresy
type DataRecord struct {
	Offset uint16
	Data   []byte
}

// ExtendedLinearAddress - Nastaví horních 16 bitů bázové adresy
type ExtendedLinearAddress struct {
	Upper uint16
}

// EndOfFile - Ukončí proud záznamů
type EndOfFile struct{}

// OtherRecord - Ostatní typy záznamů, se kterými se nic nedělá
type OtherRecord struct {
	Type byte
	Data []byte
}

func (DataRecord) isRecord()            {}
func (ExtendedLinearAddress) isRecord() {}
func (EndOfFile) isRecord()             {}
func (OtherRecord) isRecord()           {}

// ParseRecord - Dekóduje jeden řádek Intel HEX souboru
func ParseRecord(line string) (Record, error) {
	if len(line) == 0 || line[0] != ':' {
		return nil, errors.New("missing start code")
	}

	raw, err := hex.DecodeString(line[1:])
	if err != nil {
		return nil, errors.Wrap(err, "invalid hex digits")
	}

	// počet, adresa hi, adresa lo, typ, součet
	if len(raw) < 5 {
		return nil, errors.Errorf("record too short (%d bytes)", len(raw))
	}

	count := int(raw[0])
	if len(raw) != count+5 {
		return nil, errors.Errorf("byte count %d does not match record length %d", count, len(raw)-5)
	}

	sum := byte(0)
	for _, b := range raw {
		sum += b
	}

	if sum != 0 {
		return nil, errors.Errorf("checksum mismatch (expected 0x%02X)", raw[len(raw)-1]-sum)
	}

	offset := binary.BigEndian.Uint16(raw[1:3])
	data := raw[4 : 4+count]

	switch raw[3] {
	case recData:
		return DataRecord{Offset: offset, Data: data}, nil
	case recEndOfFile:
		if count != 0 {
			return nil, errors.New("end of file record carries data")
		}
		return EndOfFile{}, nil
	case recExtendedLinearAddress:
		if count != 2 {
			return nil, errors.Errorf("extended linear address record has %d data bytes", count)
		}
		return ExtendedLinearAddress{Upper: binary.BigEndian.Uint16(data)}, nil
	}

	// Segmentové adresy a startovací adresy obraz nepoužívá
	return OtherRecord{Type: raw[3], Data: data}, nil
}

// relocator drží stav během převodu HEX souboru na obraz
type relocator struct {
	layout    Layout
	base      uint64
	buffer    []byte
	highWater int
	stats     Stats
}

func newRelocator(layout Layout) *relocator {
	buffer := make([]byte, layout.Capacity)
	for i := range buffer {
		buffer[i] = fillByte
	}

	return &relocator{
		layout: layout,
		buffer: buffer,
	}
}

// apply zpracuje jeden záznam, po konci proudu vrací false
func (r *relocator) apply(rec Record) bool {
	r.stats.Records++

	switch rec := rec.(type) {
	case ExtendedLinearAddress:
		r.base = uint64(rec.Upper) << 16
	case DataRecord:
		r.write(r.base+uint64(rec.Offset), rec.Data)
	case EndOfFile:
		return false
	}

	return true
}

func (r *relocator) write(target uint64, data []byte) {
	if target < uint64(r.layout.Base) {
		// Hlavička a bootloader se nenahrávají
		r.stats.BelowBase += len(data)
		return
	}

	rel := target - uint64(r.layout.Base)
	end := rel + uint64(len(data))
	if end > uint64(len(r.buffer)) {
		r.stats.Overflow += len(data)
		return
	}

	copy(r.buffer[rel:end], data)
	r.stats.Kept += len(data)

	if int(end) > r.highWater {
		r.highWater = int(end)
	}
}

// ReadHex - Načte Intel HEX záznamy z r a sestaví přemapovaný obraz
func ReadHex(r io.Reader, layout Layout) (*Image, error) {
	if layout.Capacity <= 0 {
		return nil, errors.Errorf("invalid image capacity %d", layout.Capacity)
	}

	rel := newRelocator(layout)
	scanner := bufio.NewScanner(r)
	lineNum := 0

	for scanner.Scan() {
		lineNum++

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		rec, err := ParseRecord(line)
		if err != nil {
			return nil, &HexParseError{Line: lineNum, Err: err}
		}

		if !rel.apply(rec) {
			break
		}
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			// Platný záznam má nejvýš 521 znaků, tohle je poškozený soubor
			return nil, &HexParseError{Line: lineNum + 1, Err: err}
		}
		return nil, &FileReadError{Err: err}
	}

	if rel.highWater == 0 {
		return nil, errors.Wrapf(ErrNoData, "address >= 0x%08X", layout.Base)
	}

	return &Image{
		Data:  rel.buffer[:rel.highWater:rel.highWater],
		Kind:  KindHex,
		Stats: rel.stats,
	}, nil
}
