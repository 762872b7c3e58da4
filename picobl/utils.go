package picobl

import (
	"encoding/binary"
	"hash/crc32"
	"math"
	"time"

	"github.com/pkg/errors"
)

const (
	// Bajty na lince
	constMagic = 0xAA

	// Výchozí hodnoty
	DefaultBaud             = 115200
	DefaultChunkSize        = 4096
	constDefaultReadTimeout = 5 * time.Second
	constRebootDelay        = 2000 * time.Millisecond
	constTriggerDelay       = 1000 * time.Millisecond

	// HeaderSize - délka následovaná kontrolním součtem, obojí little-endian
	HeaderSize = 8
)

var (
	cmdReboot  = []byte("reboot\r\n")
	cmdTrigger = []byte("u")
)

// Checksum - CRC-32 (ISO-HDLC) celého obrazu
func Checksum(data []byte) uint32 {
	return crc32.ChecksumIEEE(data)
}

// Header - Hlavička odeslaná bootloaderu před daty
type Header struct {
	Length uint32
	CRC    uint32
}

// NewHeader - Sestaví hlavičku popisující data
func NewHeader(data []byte) (Header, error) {
	if uint64(len(data)) > math.MaxUint32 {
		return Header{}, ErrImageTooLarge
	}

	return Header{
		Length: uint32(len(data)),
		CRC:    Checksum(data),
	}, nil
}

// Bytes - Zakóduje hlavičku tak, jak se posílá po lince
func (h Header) Bytes() [HeaderSize]byte {
	var b [HeaderSize]byte
	binary.LittleEndian.PutUint32(b[0:], h.Length)
	binary.LittleEndian.PutUint32(b[4:], h.CRC)
	return b
}

// ParseHeader - Dekóduje 8 bajtů hlavičky
func ParseHeader(b []byte) (Header, error) {
	if len(b) != HeaderSize {
		return Header{}, errors.Errorf("header must be exactly %d bytes, got %d", HeaderSize, len(b))
	}

	return Header{
		Length: binary.LittleEndian.Uint32(b[0:]),
		CRC:    binary.LittleEndian.Uint32(b[4:]),
	}, nil
}
