package memory

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/marcinbor85/gohex"
)

func testImage() *Image {
	data := make([]byte, 40)
	for i := range data {
		data[i] = byte(i)
	}
	return &Image{Data: data, Kind: KindBinary}
}

func TestWriteIntelHexRoundTrip(t *testing.T) {
	img := testImage()

	var buf bytes.Buffer
	if err := img.WriteIntelHex(&buf, DefaultBase); err != nil {
		t.Fatalf("WriteIntelHex() unexpected error: %v", err)
	}

	mem := gohex.NewMemory()
	if err := mem.ParseIntelHex(bytes.NewReader(buf.Bytes())); err != nil {
		t.Fatalf("gohex rejected exported file: %v", err)
	}

	segments := mem.GetDataSegments()
	if len(segments) != 1 || segments[0].Address != DefaultBase {
		t.Fatalf("segments = %+v", segments)
	}

	back, err := ReadHex(bytes.NewReader(buf.Bytes()), DefaultLayout())
	if err != nil {
		t.Fatalf("ReadHex() unexpected error: %v", err)
	}

	if !bytes.Equal(back.Data, img.Data) {
		t.Errorf("round trip = % X, want % X", back.Data, img.Data)
	}
}

func TestDump(t *testing.T) {
	img := testImage()
	dir := t.TempDir()

	binPath := filepath.Join(dir, "out.bin")
	if err := img.Dump(binPath, DefaultBase); err != nil {
		t.Fatalf("Dump(bin) unexpected error: %v", err)
	}

	data, err := os.ReadFile(binPath)
	if err != nil {
		t.Fatal(err)
	}

	if !bytes.Equal(data, img.Data) {
		t.Errorf("bin dump = % X, want % X", data, img.Data)
	}

	hexPath := filepath.Join(dir, "out.hex")
	if err := img.Dump(hexPath, DefaultBase); err != nil {
		t.Fatalf("Dump(hex) unexpected error: %v", err)
	}

	back, err := LoadFile(hexPath, DefaultLayout())
	if err != nil {
		t.Fatalf("LoadFile() unexpected error: %v", err)
	}

	if !bytes.Equal(back.Data, img.Data) {
		t.Errorf("hex dump = % X, want % X", back.Data, img.Data)
	}
}
