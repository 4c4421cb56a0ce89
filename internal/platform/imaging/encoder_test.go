package imaging

import (
	"bytes"
	"strings"
	"testing"
)

func TestEncode_DataURI(t *testing.T) {
	got, err := Encode(File{Data: []byte{0x1, 0x2}, MIME: "image/png"}, 0)
	if err != nil {
		t.Fatalf("Encode error: %v", err)
	}
	if !strings.HasPrefix(got, "data:image/png;base64,") {
		t.Fatalf("unexpected prefix: %s", got)
	}
}

func TestEncode_RejectsNonImageAndEmpty(t *testing.T) {
	if _, err := Encode(File{Data: []byte("x"), MIME: "application/pdf"}, 0); err == nil {
		t.Fatalf("expected error for non-image mime")
	}
	if _, err := Encode(File{MIME: "image/png"}, 0); err == nil {
		t.Fatalf("expected error for empty file")
	}
}

func TestEncodeAll_DropsOversizedAndExcess(t *testing.T) {
	small := File{Data: []byte("ok"), MIME: "image/jpeg"}
	big := File{Data: bytes.Repeat([]byte("a"), 100), MIME: "image/jpeg"}

	out := EncodeAll([]File{small, big, small, small, small}, Limits{
		MaxFileBytes: 10,
		MaxFiles:     3,
	})

	// big se descarta por tamaño, el último small por exceso de count.
	if len(out) != 3 {
		t.Fatalf("expected 3 encoded images, got %d", len(out))
	}
}
