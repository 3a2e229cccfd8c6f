// Package encoding normalizes bank statement uploads to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	xenc "golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

const (
	CharsetUTF8        = "UTF-8"
	CharsetUTF16LE     = "UTF-16LE"
	CharsetUTF16BE     = "UTF-16BE"
	CharsetWindows1252 = "windows-1252"
	CharsetISO88599    = "ISO-8859-9"
)

const sniffSize = 4096

var boms = []struct {
	prefix  []byte
	charset string
	decoder xenc.Encoding
}{
	{prefix: []byte{0xEF, 0xBB, 0xBF}, charset: CharsetUTF8},
	{prefix: []byte{0xFF, 0xFE}, charset: CharsetUTF16LE, decoder: unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)},
	{prefix: []byte{0xFE, 0xFF}, charset: CharsetUTF16BE, decoder: unicode.UTF16(unicode.BigEndian, unicode.UseBOM)},
}

// chardet names mapped to the decoder used for them. Latin-1 is read as
// windows-1252, which is a superset for printable text.
var detected = map[string]struct {
	charset string
	decoder xenc.Encoding
}{
	"ISO-8859-1":   {CharsetWindows1252, charmap.Windows1252},
	"windows-1252": {CharsetWindows1252, charmap.Windows1252},
	"ISO-8859-9":   {CharsetISO88599, charmap.ISO8859_9},
}

// Decoded is a UTF-8 view over an upload together with the charset it was
// read as.
type Decoded struct {
	io.Reader
	Charset string
}

// Detect sniffs the start of r and returns a reader producing UTF-8.
// A byte order mark wins, then valid UTF-8, then chardet's best guess.
// Anything unrecognised is read as windows-1252.
func Detect(r io.Reader) (*Decoded, error) {
	br := bufio.NewReaderSize(r, sniffSize)

	buf, err := br.Peek(sniffSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peek: %w", err)
	}

	for _, bom := range boms {
		if !bytes.HasPrefix(buf, bom.prefix) {
			continue
		}

		if bom.decoder == nil {
			_, _ = br.Discard(len(bom.prefix))
			return &Decoded{Reader: br, Charset: bom.charset}, nil
		}

		return &Decoded{Reader: transform.NewReader(br, bom.decoder.NewDecoder()), Charset: bom.charset}, nil
	}

	if utf8.Valid(buf) {
		return &Decoded{Reader: br, Charset: CharsetUTF8}, nil
	}

	if result, err := chardet.NewTextDetector().DetectBest(buf); err == nil {
		if result.Charset == CharsetUTF8 {
			return &Decoded{Reader: br, Charset: CharsetUTF8}, nil
		}

		if d, ok := detected[result.Charset]; ok {
			return &Decoded{Reader: transform.NewReader(br, d.decoder.NewDecoder()), Charset: d.charset}, nil
		}
	}

	return &Decoded{Reader: transform.NewReader(br, charmap.Windows1252.NewDecoder()), Charset: CharsetWindows1252}, nil
}

// NewUTF8Reader is Detect without the charset.
func NewUTF8Reader(r io.Reader) (io.Reader, error) {
	d, err := Detect(r)
	if err != nil {
		return nil, err
	}

	return d, nil
}
