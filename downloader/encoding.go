package downloader

import (
	"bytes"
	"fmt"
	"os"
	"unicode/utf8"

	"github.com/giygas/bdpm-api/logging"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
)

// Encoding labels recorded in the manifest.
const (
	EncodingUTF8        = "utf-8"
	EncodingUnconverted = "unconverted"
)

// SourceEncoding is a candidate encoding for non UTF-8 files.
type SourceEncoding struct {
	Name     string
	Encoding encoding.Encoding
}

// Normalizer rewrites committed files as UTF-8.
type Normalizer struct {
	Primary  SourceEncoding
	Fallback SourceEncoding
}

// NewNormalizer returns the BDPM default: ISO-8859-1, then Windows-1252.
func NewNormalizer() *Normalizer {
	return &Normalizer{
		Primary:  SourceEncoding{Name: "iso-8859-1", Encoding: charmap.ISO8859_1},
		Fallback: SourceEncoding{Name: "windows-1252", Encoding: charmap.Windows1252},
	}
}

// NormalizeFile converts path to UTF-8 in place and returns the encoding it
// was read as. UTF-8 and ASCII files are left untouched. When neither source
// encoding yields clean text the file is kept as-is and EncodingUnconverted is
// returned without error; only I/O failures are errors.
func (n *Normalizer) NormalizeFile(path string) (string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	if utf8.Valid(raw) {
		return EncodingUTF8, nil
	}

	name, out, ok := n.transcode(raw)
	if !ok {
		logging.Warn("Could not transcode file to UTF-8, keeping it as-is", "path", path)
		return EncodingUnconverted, nil
	}

	tmp := path + ".utf8"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("failed to replace %s: %w", path, err)
	}
	logging.Debug("File converted to UTF-8", "path", path, "from", name)
	return name, nil
}

func (n *Normalizer) transcode(raw []byte) (string, []byte, bool) {
	// Latin-1 maps every byte, so C1 control characters in the output are the
	// sign of a Windows-1252 file.
	if out, err := n.Primary.Encoding.NewDecoder().Bytes(raw); err == nil && clean(out) && !hasC1Controls(out) {
		return n.Primary.Name, out, true
	}
	logging.Debug("Primary encoding rejected, trying fallback", "primary", n.Primary.Name, "fallback", n.Fallback.Name)

	out, err := n.Fallback.Encoding.NewDecoder().Bytes(raw)
	if err != nil || !clean(out) {
		return "", nil, false
	}
	return n.Fallback.Name, out, true
}

func clean(b []byte) bool {
	return utf8.Valid(b) && !bytes.ContainsRune(b, utf8.RuneError)
}

func hasC1Controls(b []byte) bool {
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r >= 0x80 && r <= 0x9F {
			return true
		}
		b = b[size:]
	}
	return false
}
