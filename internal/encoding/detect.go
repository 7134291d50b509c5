// Package encoding normalises spreadsheet exports to UTF-8. Farm sheets arrive
// from Excel installs set up for Dari or Pashto as often as from English ones.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	textenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const peekSize = 4096

var bomUTF8 = []byte{0xEF, 0xBB, 0xBF}

// charsets maps the names chardet reports (lowercased) to a decoder.
// Arabic-script code pages come first in the list of what we expect to see.
var charsets = map[string]textenc.Encoding{
	"windows-1256": charmap.Windows1256,
	"iso-8859-6":   charmap.ISO8859_6,
	"windows-1252": charmap.Windows1252,
	"iso-8859-1":   charmap.Windows1252,
	"iso-8859-9":   charmap.ISO8859_9,
	"utf-16le":     unicode.UTF16(unicode.LittleEndian, unicode.UseBOM),
	"utf-16be":     unicode.UTF16(unicode.BigEndian, unicode.UseBOM),
}

// NewUTF8Reader detects the encoding of r and decodes it to UTF-8. A UTF-8 BOM
// is stripped and UTF-16 BOMs are honoured. Content that is already valid
// UTF-8 passes through. Anything else goes through chardet and falls back to
// Windows-1256, the usual code page for local Excel installs.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)

	buf, err := br.Peek(peekSize)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("peek: %w", err)
	}

	name := Detect(buf)
	if name == "utf-8" {
		if bytes.HasPrefix(buf, bomUTF8) {
			_, _ = br.Discard(len(bomUTF8))
		}

		return br, nil
	}

	return transform.NewReader(br, charsets[name].NewDecoder()), nil
}

// FromCharset decodes r from an explicitly named charset, for sheets whose
// encoding the operator already knows.
func FromCharset(r io.Reader, name string) (io.Reader, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "utf-8" || name == "utf8" {
		return r, nil
	}

	enc, ok := charsets[name]
	if !ok {
		return nil, fmt.Errorf("unsupported charset %q", name)
	}

	return transform.NewReader(r, enc.NewDecoder()), nil
}

// Detect names the charset of buf as one of the keys NewUTF8Reader can decode,
// or "utf-8".
func Detect(buf []byte) string {
	switch {
	case bytes.HasPrefix(buf, bomUTF8):
		return "utf-8"
	case bytes.HasPrefix(buf, []byte{0xFF, 0xFE}):
		return "utf-16le"
	case bytes.HasPrefix(buf, []byte{0xFE, 0xFF}):
		return "utf-16be"
	case utf8.Valid(buf):
		return "utf-8"
	}

	res, err := chardet.NewTextDetector().DetectBest(buf)
	if err == nil {
		name := strings.ToLower(res.Charset)
		if name == "utf-8" {
			return name
		}

		if _, ok := charsets[name]; ok {
			return name
		}
	}

	return "windows-1256"
}
