package pdf

import (
	"strconv"
	"strings"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
)

// byteEncoding maps single byte character codes to runes
type byteEncoding [256]rune

func fromCharmap(cm *charmap.Charmap, overrides map[byte]rune) *byteEncoding {
	var enc byteEncoding
	for i := 0; i < 256; i++ {
		enc[i] = cm.DecodeByte(byte(i))
	}
	for b, r := range overrides {
		enc[b] = r
	}
	return &enc
}

var (
	winAnsiEncoding  = fromCharmap(charmap.Windows1252, nil)
	macRomanEncoding = fromCharmap(charmap.Macintosh, nil)

	// Standard encoding shares ASCII with Latin-1 apart from the quotes and
	// has its own upper half.
	standardEncoding = fromCharmap(charmap.ISO8859_1, standardUpperHalf)

	pdfDocEncoding = fromCharmap(charmap.ISO8859_1, pdfDocOverrides)
)

var standardUpperHalf = func() map[byte]rune {
	m := map[byte]rune{
		0x27: '’', 0x60: '‘',
		0xA1: '¡', 0xA2: '¢', 0xA3: '£', 0xA4: '⁄', 0xA5: '¥', 0xA6: 'ƒ', 0xA7: '§',
		0xA8: '¤', 0xA9: '\'', 0xAA: '“', 0xAB: '«', 0xAC: '‹', 0xAD: '›',
		0xAE: 'ﬁ', 0xAF: 'ﬂ', 0xB1: '–', 0xB2: '†', 0xB3: '‡',
		0xB4: '·', 0xB6: '¶', 0xB7: '•', 0xB8: '‚', 0xB9: '„', 0xBA: '”',
		0xBB: '»', 0xBC: '…', 0xBD: '‰', 0xBF: '¿', 0xC1: '`', 0xC2: '´',
		0xC3: 'ˆ', 0xC4: '˜', 0xC5: '¯', 0xC6: '˘', 0xC7: '˙', 0xC8: '¨',
		0xCA: '˚', 0xCB: '¸', 0xCD: '˝', 0xCE: '˛', 0xCF: 'ˇ',
		0xD0: '—', 0xE1: 'Æ', 0xE3: 'ª', 0xE8: 'Ł', 0xE9: 'Ø', 0xEA: 'Œ', 0xEB: 'º',
		0xF1: 'æ', 0xF5: 'ı', 0xF8: 'ł', 0xF9: 'ø', 0xFA: 'œ', 0xFB: 'ß',
	}
	// codes without a glyph in the upper half
	for b := 0x80; b <= 0xFF; b++ {
		if _, ok := m[byte(b)]; !ok {
			m[byte(b)] = 0
		}
	}
	return m
}()

var pdfDocOverrides = map[byte]rune{
	0x18: '˘', 0x19: 'ˇ', 0x1A: 'ˆ', 0x1B: '˙',
	0x1C: '˝', 0x1D: '˛', 0x1E: '˚', 0x1F: '˜',
	0x80: '•', 0x81: '†', 0x82: '‡', 0x83: '…', 0x84: '—',
	0x85: '–', 0x86: 'ƒ', 0x87: '⁄', 0x88: '‹', 0x89: '›',
	0x8A: '−', 0x8B: '‰', 0x8C: '„', 0x8D: '“', 0x8E: '”',
	0x8F: '‘', 0x90: '’', 0x91: '‚', 0x92: '™', 0x93: 'ﬁ',
	0x94: 'ﬂ', 0x95: 'Ł', 0x96: 'Œ', 0x97: 'Š', 0x98: 'Ÿ', 0x99: 'Ž',
	0x9A: 'ı', 0x9B: 'ł', 0x9C: 'œ', 0x9D: 'š', 0x9E: 'ž', 0xA0: '€',
}

// baseEncoding returns the byte table for a named simple font encoding.
// Unknown names fall back to the standard encoding.
func baseEncoding(name string) *byteEncoding {
	switch name {
	case "WinAnsiEncoding":
		return winAnsiEncoding
	case "MacRomanEncoding", "MacExpertEncoding":
		return macRomanEncoding
	case "PDFDocEncoding":
		return pdfDocEncoding
	default:
		return standardEncoding
	}
}

var glyphNames = map[string]rune{
	"space": ' ', "exclam": '!', "quotedbl": '"', "numbersign": '#', "dollar": '$',
	"percent": '%', "ampersand": '&', "quotesingle": '\'', "parenleft": '(',
	"parenright": ')', "asterisk": '*', "plus": '+', "comma": ',', "hyphen": '-',
	"period": '.', "slash": '/', "colon": ':', "semicolon": ';', "less": '<',
	"equal": '=', "greater": '>', "question": '?', "at": '@', "bracketleft": '[',
	"backslash": '\\', "bracketright": ']', "asciicircum": '^', "underscore": '_',
	"grave": '`', "braceleft": '{', "bar": '|', "braceright": '}', "asciitilde": '~',
	"zero": '0', "one": '1', "two": '2', "three": '3', "four": '4', "five": '5',
	"six": '6', "seven": '7', "eight": '8', "nine": '9',
	"quoteleft": '‘', "quoteright": '’', "quotedblleft": '“',
	"quotedblright": '”', "quotesinglbase": '‚', "quotedblbase": '„',
	"endash": '–', "emdash": '—', "bullet": '•', "ellipsis": '…',
	"dagger": '†', "daggerdbl": '‡', "trademark": '™', "copyright": '©',
	"registered": '®', "degree": '°', "section": '§', "paragraph": '¶', "euro": '€',
	"sterling": '£', "yen": '¥', "cent": '¢', "minus": '−', "multiply": '×',
	"divide": '÷', "fi": 'ﬁ', "fl": 'ﬂ', "ff": 'ﬀ', "ffi": 'ﬃ',
	"ffl": 'ﬄ', "germandbls": 'ß', "dotlessi": 'ı', "nbspace": ' ',
	"periodcentered": '·', "guillemotleft": '«', "guillemotright": '»',
	"AE": 'Æ', "ae": 'æ', "OE": 'Œ', "oe": 'œ', "Oslash": 'Ø', "oslash": 'ø',
}

var accentMarks = []struct {
	suffix string
	mark   rune
}{
	{"acute", '\u0301'}, {"grave", '\u0300'}, {"circumflex", '\u0302'},
	{"tilde", '\u0303'}, {"dieresis", '\u0308'}, {"ring", '\u030A'},
	{"cedilla", '\u0327'}, {"caron", '\u030C'},
}

// glyphRune resolves a glyph name from a Differences array
func glyphRune(name string) (rune, bool) {
	if r, ok := glyphNames[name]; ok {
		return r, true
	}
	if len(name) == 1 {
		return rune(name[0]), true
	}
	if strings.HasPrefix(name, "uni") && len(name) == 7 {
		if v, err := strconv.ParseUint(name[3:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	if strings.HasPrefix(name, "u") && len(name) >= 5 && len(name) <= 7 {
		if v, err := strconv.ParseUint(name[1:], 16, 32); err == nil {
			return rune(v), true
		}
	}
	// Accented letters such as eacute or Ccedilla compose to one rune
	for _, a := range accentMarks {
		if len(name) == len(a.suffix)+1 && strings.HasSuffix(name, a.suffix) {
			composed := norm.NFC.String(string([]rune{rune(name[0]), a.mark}))
			if r := []rune(composed); len(r) == 1 {
				return r[0], true
			}
		}
	}
	return 0, false
}
