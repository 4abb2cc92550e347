package pdf

import (
	"errors"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// ErrUndecodable is returned when a font cannot map the shown bytes
var ErrUndecodable = errors.New("bytes not decodable with font encoding")

// Font decodes shown strings for one font resource
type Font struct {
	Alias    string
	BaseFont string

	cmap        *ToUnicodeCMap
	base        *byteEncoding
	differences map[byte]rune
	composite   bool
}

// NewFont builds a decoder from a font descriptor. A ToUnicode CMap that
// fails to parse is ignored.
func NewFont(alias string, d FontDescriptor) *Font {
	f := &Font{
		Alias:     alias,
		BaseFont:  d.BaseFont,
		composite: d.Subtype == "Type0" || strings.HasPrefix(d.Encoding, "Identity-"),
	}

	if len(d.ToUnicode) > 0 {
		if cmap, err := ParseToUnicodeCMap(d.ToUnicode); err == nil {
			f.cmap = cmap
		}
	}

	if !f.composite {
		f.base = baseEncoding(d.Encoding)
		if len(d.Differences) > 0 {
			f.differences = make(map[byte]rune, len(d.Differences))
			for code, name := range d.Differences {
				if r, ok := glyphRune(name); ok {
					f.differences[code] = r
				}
			}
		}
	}

	return f
}

// Decode maps shown bytes to text using the ToUnicode CMap, then the
// Differences array, then the base encoding.
func (f *Font) Decode(data []byte) (string, error) {
	if f.cmap != nil {
		if s, ok := f.cmap.Decode(data); ok {
			return s, nil
		}
	}
	if f.composite || f.base == nil {
		return "", ErrUndecodable
	}

	var sb strings.Builder
	for _, b := range data {
		if r, ok := f.differences[b]; ok {
			sb.WriteRune(r)
			continue
		}
		if r := f.base[b]; r != 0 {
			sb.WriteRune(r)
		}
	}
	return sb.String(), nil
}

// DecodeShownText decodes the operand bytes of a text showing operator.
// It never fails: when the font cannot decode the bytes it falls back to
// UTF-16 with a byte order mark and finally to lossy UTF-8.
func DecodeShownText(f *Font, data []byte) string {
	if f != nil {
		if s, err := f.Decode(data); err == nil {
			return s
		}
	}
	if s, ok := decodeUTF16BOM(data); ok {
		return s
	}
	return strings.ToValidUTF8(string(data), "\uFFFD")
}

// DecodeTextString decodes a PDF text string such as an ActualText value:
// UTF-16 when a byte order mark is present, PDFDocEncoding otherwise.
func DecodeTextString(data []byte) string {
	if s, ok := decodeUTF16BOM(data); ok {
		return s
	}
	var sb strings.Builder
	for _, b := range data {
		if r := pdfDocEncoding[b]; r != 0 {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

func decodeUTF16BOM(data []byte) (string, bool) {
	if len(data) < 2 {
		return "", false
	}
	var endian unicode.Endianness
	switch {
	case data[0] == 0xFE && data[1] == 0xFF:
		endian = unicode.BigEndian
	case data[0] == 0xFF && data[1] == 0xFE:
		endian = unicode.LittleEndian
	default:
		return "", false
	}
	body := data[2:]
	if len(body)%2 == 1 {
		// a dangling byte cannot form a code unit
		body = body[:len(body)-1]
	}
	out, err := unicode.UTF16(endian, unicode.IgnoreBOM).NewDecoder().Bytes(body)
	if err != nil {
		return "", false
	}
	return string(out), true
}
