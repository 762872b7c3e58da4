package main

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/janch32/pico-downloader/memory"
	"github.com/janch32/pico-downloader/picobl"
)

const appHex = ":020000041001E9\n" +
	":0401000001020304F1\n" +
	":00000001FF\n"

func TestUploadDumpHex(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "app.hex")
	dst := filepath.Join(dir, "app.bin")

	if err := os.WriteFile(src, []byte(appHex), 0o644); err != nil {
		t.Fatal(err)
	}

	err := upload(uploadConfig{
		file:   src,
		layout: memory.DefaultLayout(),
		dump:   dst,
	})
	if err != nil {
		t.Fatalf("upload() unexpected error: %v", err)
	}

	data, err := os.ReadFile(dst)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(data, []byte{0x01, 0x02, 0x03, 0x04}) {
		t.Errorf("dumped image = % X", data)
	}
}

func TestUploadStopsBeforePortOnBadImage(t *testing.T) {
	src := filepath.Join(t.TempDir(), "empty.bin")
	if err := os.WriteFile(src, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	err := upload(uploadConfig{
		port:   "/dev/this-port-does-not-exist",
		file:   src,
		layout: memory.DefaultLayout(),
	})
	if !errors.Is(err, memory.ErrEmptyImage) {
		t.Errorf("upload() error = %v, want ErrEmptyImage", err)
	}
}

func TestResolvePortExplicit(t *testing.T) {
	port, err := resolvePort("COM3")
	if err != nil || port != "COM3" {
		t.Errorf("resolvePort(COM3) = %q, %v", port, err)
	}
}

func TestParseArgs(t *testing.T) {
	file := filepath.Join(t.TempDir(), "app.bin")
	if err := os.WriteFile(file, []byte{0x01}, 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name string
		args []string
		term bool
		port string
		file string
		ok   bool
	}{
		{name: "file only", args: []string{"app.hex"}, file: "app.hex", ok: true},
		{name: "port and file", args: []string{"COM3", "app.hex"}, port: "COM3", file: "app.hex", ok: true},
		{name: "nothing", args: nil, ok: false},
		{name: "too many", args: []string{"a", "b", "c"}, ok: false},
		{name: "terminal with discovery", args: nil, term: true, ok: true},
		{name: "terminal on port", args: []string{"/dev/ttyACM0"}, term: true, port: "/dev/ttyACM0", ok: true},
		{name: "terminal after upload", args: []string{file}, term: true, file: file, ok: true},
		{name: "terminal after upload on port", args: []string{"COM3", file}, term: true, port: "COM3", file: file, ok: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			port, file, ok := parseArgs(tt.args, tt.term)
			if port != tt.port || file != tt.file || ok != tt.ok {
				t.Errorf("parseArgs(%q, %v) = %q, %q, %v, want %q, %q, %v",
					tt.args, tt.term, port, file, ok, tt.port, tt.file, tt.ok)
			}
		})
	}
}

func TestRunTerminalOnly(t *testing.T) {
	var gotPort string
	var gotBaud int

	saved := openTerminal
	openTerminal = func(port string, baud int) error {
		gotPort, gotBaud = port, baud
		return nil
	}
	t.Cleanup(func() { openTerminal = saved })

	err := run(uploadConfig{port: "/dev/ttyACM0", baud: 9600, term: true})
	if err != nil {
		t.Fatalf("run() unexpected error: %v", err)
	}

	if gotPort != "/dev/ttyACM0" || gotBaud != 9600 {
		t.Errorf("terminal opened on %q at %d", gotPort, gotBaud)
	}
}

// failingPort odmítne každý zápis
type failingPort struct{}

func (failingPort) Write([]byte) (int, error) { return 0, errors.New("device gone") }
func (failingPort) Drain() error              { return nil }
func (failingPort) ResetInputBuffer() error   { return nil }
func (failingPort) Close() error              { return nil }

func TestSendEndsProgressLineOnError(t *testing.T) {
	var out bytes.Buffer
	img := &memory.Image{Data: []byte{0x01, 0x02}}

	err := send(picobl.NewSession(failingPort{}, "mock"), img, uploadConfig{}, &out)

	var ioerr *picobl.IoError
	if !errors.As(err, &ioerr) {
		t.Fatalf("send() error = %v, want IoError", err)
	}

	if !strings.HasSuffix(out.String(), "\n") {
		t.Errorf("progress output %q does not end with a newline", out.String())
	}
}

type recordingPort struct {
	bytes.Buffer
}

func (*recordingPort) Drain() error            { return nil }
func (*recordingPort) ResetInputBuffer() error { return nil }
func (*recordingPort) Close() error            { return nil }

func TestSendUploadsImage(t *testing.T) {
	var out bytes.Buffer
	port := &recordingPort{}
	img := &memory.Image{Data: []byte{0x01, 0x02, 0x03}}

	err := send(picobl.NewSession(port, "mock"), img, uploadConfig{chunkSize: 2}, &out,
		picobl.WithTriggerDelay(0))
	if err != nil {
		t.Fatalf("send() unexpected error: %v", err)
	}

	header := picobl.Header{Length: 3, CRC: picobl.Checksum(img.Data)}.Bytes()
	want := append([]byte{'u', 0xAA}, header[:]...)
	want = append(want, img.Data...)

	if !bytes.Equal(port.Bytes(), want) {
		t.Errorf("wire = % X, want % X", port.Bytes(), want)
	}
}
