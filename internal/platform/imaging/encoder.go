package imaging

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyFile  = errors.New("imaging: empty file")
	ErrNotAnImage = errors.New("imaging: mime is not an image")
	ErrFileTooBig = errors.New("imaging: file exceeds size ceiling")
)

// File es un binario subido + su MIME type declarado.
type File struct {
	Data []byte
	MIME string
}

// Limits son los techos que el caller decide según el flujo:
// listados directos y donation intake usan valores distintos.
type Limits struct {
	MaxFileBytes int
	MaxFiles     int
}

// Encode convierte un binario en data URI base64 almacenable.
func Encode(f File, maxBytes int) (string, error) {
	if len(f.Data) == 0 {
		return "", ErrEmptyFile
	}
	mime := strings.ToLower(strings.TrimSpace(f.MIME))
	if !strings.HasPrefix(mime, "image/") {
		return "", ErrNotAnImage
	}
	if maxBytes > 0 && len(f.Data) > maxBytes {
		return "", fmt.Errorf("%w: %d bytes", ErrFileTooBig, len(f.Data))
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(f.Data), nil
}

// EncodeAll aplica los techos por archivo y por lote.
// Archivos inválidos, sobredimensionados o excedentes se DESCARTAN en
// silencio en vez de fallar el request completo.
func EncodeAll(files []File, lim Limits) []string {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if lim.MaxFiles > 0 && len(out) >= lim.MaxFiles {
			break
		}
		enc, err := Encode(f, lim.MaxFileBytes)
		if err != nil {
			continue
		}
		out = append(out, enc)
	}
	return out
}
