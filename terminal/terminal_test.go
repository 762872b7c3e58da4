package terminal

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"
)

// chunkReader vrací při každém Read jeden blok, potom (0, nil) jako zavřený port
type chunkReader struct {
	chunks []string
}

func (r *chunkReader) Read(p []byte) (int, error) {
	if len(r.chunks) == 0 {
		return 0, nil
	}

	n := copy(p, r.chunks[0])
	r.chunks = r.chunks[1:]
	return n, nil
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("port closed")
}

func TestReadSerial(t *testing.T) {
	var out bytes.Buffer

	err := readSerial(&chunkReader{chunks: []string{"Pico shell\r\n", "> "}}, &out)
	if err != nil {
		t.Fatalf("readSerial() unexpected error: %v", err)
	}

	if got := out.String(); got != "Pico shell\r\n> \nEOF\n" {
		t.Errorf("output = %q", got)
	}
}

func TestWriteSerial(t *testing.T) {
	var conn bytes.Buffer

	err := writeSerial(&conn, strings.NewReader("reboot\r\n"))
	if err != nil {
		t.Fatalf("writeSerial() unexpected error: %v", err)
	}

	if got := conn.String(); got != "reboot\r\n" {
		t.Errorf("device received %q", got)
	}
}

func TestWriteSerialError(t *testing.T) {
	if err := writeSerial(failingWriter{}, strings.NewReader("u")); err == nil {
		t.Error("writeSerial() expected error")
	}
}

type loopback struct {
	chunkReader
	bytes.Buffer
}

func (l *loopback) Read(p []byte) (int, error) {
	return l.chunkReader.Read(p)
}

func (l *loopback) Write(p []byte) (int, error) {
	return l.Buffer.Write(p)
}

func TestBridgeEndsWithDevice(t *testing.T) {
	conn := &loopback{chunkReader: chunkReader{chunks: []string{"hi"}}}
	var out bytes.Buffer

	// Vstup nikdy neskončí, terminál ukončí až zařízení
	in, w := io.Pipe()
	defer w.Close()

	if err := Bridge(conn, in, &out); err != nil {
		t.Fatalf("Bridge() unexpected error: %v", err)
	}

	if !strings.HasPrefix(out.String(), "hi") {
		t.Errorf("output = %q", out.String())
	}
}
