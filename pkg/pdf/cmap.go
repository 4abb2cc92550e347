package pdf

import (
	"encoding/hex"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf16"
)

var (
	codespaceSectionRe = regexp.MustCompile(`begincodespacerange\s*((?:<[0-9A-Fa-f]+>\s*<[0-9A-Fa-f]+>\s*)+)endcodespacerange`)
	codespaceEntryRe   = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>`)
	bfcharSectionRe    = regexp.MustCompile(`beginbfchar\s*((?:<[0-9A-Fa-f]+>\s*<[0-9A-Fa-f]*>\s*)+)endbfchar`)
	bfcharEntryRe      = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]*)>`)
	bfrangeSectionRe   = regexp.MustCompile(`beginbfrange\s*((?:<[0-9A-Fa-f]+>\s*<[0-9A-Fa-f]+>\s*(?:<[0-9A-Fa-f]*>|\[[^\]]*\])\s*)+)endbfrange`)
	bfrangeEntryRe     = regexp.MustCompile(`<([0-9A-Fa-f]+)>\s*<([0-9A-Fa-f]+)>\s*(<[0-9A-Fa-f]*>|\[([^\]]*)\])`)
	hexTokenRe         = regexp.MustCompile(`<([0-9A-Fa-f]*)>`)
)

// ToUnicodeCMap represents a PDF ToUnicode CMap that maps character codes to Unicode text
type ToUnicodeCMap struct {
	// Direct character mappings (from beginbfchar sections)
	cidToUnicode map[uint16]string

	// Range mappings (from beginbfrange sections)
	ranges []cmapRange

	// Code width in bytes taken from begincodespacerange, 0 when absent
	codeWidth int
}

// cmapRange represents a range mapping from beginbfrange
type cmapRange struct {
	startCID     uint16
	endCID       uint16
	startUnicode []uint16 // UTF-16 code units of the first destination
	unicodeArray []string // For array mappings
}

// NewToUnicodeCMap creates an empty CMap
func NewToUnicodeCMap() *ToUnicodeCMap {
	return &ToUnicodeCMap{
		cidToUnicode: make(map[uint16]string),
		ranges:       []cmapRange{},
	}
}

// ParseToUnicodeCMap parses a ToUnicode CMap stream
func ParseToUnicodeCMap(data []byte) (*ToUnicodeCMap, error) {
	cmap := NewToUnicodeCMap()
	if err := cmap.Parse(data); err != nil {
		return nil, err
	}
	return cmap, nil
}

// Parse parses a ToUnicode CMap stream into the receiver
func (cmap *ToUnicodeCMap) Parse(data []byte) error {
	content := string(data)

	cmap.parseCodespace(content)
	cmap.parseBeginBFChar(content)
	cmap.parseBeginBFRange(content)

	if cmap.GetMappingCount() == 0 {
		return fmt.Errorf("cmap has no bfchar or bfrange mappings")
	}
	return nil
}

func (cmap *ToUnicodeCMap) parseCodespace(content string) {
	for _, section := range codespaceSectionRe.FindAllStringSubmatch(content, -1) {
		for _, entry := range codespaceEntryRe.FindAllStringSubmatch(section[1], -1) {
			width := len(entry[1]) / 2
			if width > cmap.codeWidth {
				cmap.codeWidth = width
			}
		}
	}
}

// parseBeginBFChar parses beginbfchar...endbfchar sections:
//
//	N beginbfchar
//	<src> <dst>
//	endbfchar
func (cmap *ToUnicodeCMap) parseBeginBFChar(content string) {
	for _, section := range bfcharSectionRe.FindAllStringSubmatch(content, -1) {
		for _, mapping := range bfcharEntryRe.FindAllStringSubmatch(section[1], -1) {
			src, ok := parseCode(mapping[1])
			if !ok {
				continue
			}
			dst, err := hex.DecodeString(mapping[2])
			if err != nil {
				continue
			}
			cmap.cidToUnicode[src] = utf16BytesToString(dst)
		}
	}
}

// parseBeginBFRange parses beginbfrange...endbfrange sections. The
// destination is either a starting code or an array of strings.
func (cmap *ToUnicodeCMap) parseBeginBFRange(content string) {
	for _, section := range bfrangeSectionRe.FindAllStringSubmatch(content, -1) {
		for _, r := range bfrangeEntryRe.FindAllStringSubmatch(section[1], -1) {
			start, ok1 := parseCode(r[1])
			end, ok2 := parseCode(r[2])
			if !ok1 || !ok2 || end < start {
				continue
			}

			if strings.HasPrefix(r[3], "[") {
				var values []string
				for _, tok := range hexTokenRe.FindAllStringSubmatch(r[4], -1) {
					b, err := hex.DecodeString(tok[1])
					if err != nil {
						continue
					}
					values = append(values, utf16BytesToString(b))
				}
				cmap.ranges = append(cmap.ranges, cmapRange{startCID: start, endCID: end, unicodeArray: values})
				continue
			}

			dst, err := hex.DecodeString(strings.Trim(r[3], "<>"))
			if err != nil || len(dst) == 0 {
				continue
			}
			cmap.ranges = append(cmap.ranges, cmapRange{
				startCID:     start,
				endCID:       end,
				startUnicode: bytesToUTF16(dst),
			})
		}
	}
}

func parseCode(s string) (uint16, bool) {
	b, err := hex.DecodeString(s)
	if err != nil || len(b) == 0 {
		return 0, false
	}
	if len(b) == 1 {
		return uint16(b[0]), true
	}
	return uint16(b[len(b)-2])<<8 | uint16(b[len(b)-1]), true
}

func bytesToUTF16(data []byte) []uint16 {
	if len(data) == 1 {
		return []uint16{uint16(data[0])}
	}
	units := make([]uint16, 0, len(data)/2)
	for i := 0; i+1 < len(data); i += 2 {
		units = append(units, uint16(data[i])<<8|uint16(data[i+1]))
	}
	return units
}

// utf16BytesToString converts big-endian UTF-16 destination bytes to a string
func utf16BytesToString(data []byte) string {
	units := bytesToUTF16(data)
	if len(units) > 0 && units[0] == 0xFEFF {
		units = units[1:]
	}
	return string(utf16.Decode(units))
}

// MapCIDToUnicode maps a code to its Unicode string
func (cmap *ToUnicodeCMap) MapCIDToUnicode(cid uint16) (string, bool) {
	if s, ok := cmap.cidToUnicode[cid]; ok {
		return s, true
	}

	for _, r := range cmap.ranges {
		if cid < r.startCID || cid > r.endCID {
			continue
		}
		offset := int(cid - r.startCID)
		if r.unicodeArray != nil {
			if offset < len(r.unicodeArray) {
				return r.unicodeArray[offset], true
			}
			return "", false
		}
		units := append([]uint16(nil), r.startUnicode...)
		units[len(units)-1] += uint16(offset)
		return string(utf16.Decode(units)), true
	}

	return "", false
}

// CodeWidth returns the number of bytes per character code
func (cmap *ToUnicodeCMap) CodeWidth() int {
	if cmap.codeWidth == 1 || cmap.codeWidth == 2 {
		return cmap.codeWidth
	}
	for cid := range cmap.cidToUnicode {
		if cid > 0xFF {
			return 2
		}
	}
	for _, r := range cmap.ranges {
		if r.endCID > 0xFF {
			return 2
		}
	}
	return 1
}

// Decode maps a shown string through the CMap. It reports false when no
// code of the input could be mapped.
func (cmap *ToUnicodeCMap) Decode(data []byte) (string, bool) {
	var result strings.Builder
	mapped := false

	if cmap.CodeWidth() == 1 {
		for _, b := range data {
			if s, ok := cmap.MapCIDToUnicode(uint16(b)); ok {
				result.WriteString(s)
				mapped = true
			} else {
				result.WriteRune(rune(b))
			}
		}
		return result.String(), mapped
	}

	for i := 0; i < len(data); i += 2 {
		if i+1 >= len(data) {
			// odd trailing byte
			if s, ok := cmap.MapCIDToUnicode(uint16(data[i])); ok {
				result.WriteString(s)
				mapped = true
			} else {
				result.WriteRune(rune(data[i]))
			}
			break
		}

		cid := uint16(data[i])<<8 | uint16(data[i+1])
		if s, ok := cmap.MapCIDToUnicode(cid); ok {
			result.WriteString(s)
			mapped = true
			continue
		}
		// Fallback: try single-byte codes
		for _, b := range data[i : i+2] {
			if s, ok := cmap.MapCIDToUnicode(uint16(b)); ok {
				result.WriteString(s)
				mapped = true
			} else if b != 0 {
				result.WriteRune(rune(b))
			}
		}
	}

	return result.String(), mapped
}

// GetMappingCount returns the total number of mappings in this CMap
func (cmap *ToUnicodeCMap) GetMappingCount() int {
	count := len(cmap.cidToUnicode)

	for _, r := range cmap.ranges {
		if r.unicodeArray != nil {
			count += len(r.unicodeArray)
		} else {
			count += int(r.endCID-r.startCID) + 1
		}
	}

	return count
}

// String returns a summary of the CMap for debugging
func (cmap *ToUnicodeCMap) String() string {
	return fmt.Sprintf("ToUnicodeCMap{direct: %d, ranges: %d, total: %d, width: %d}",
		len(cmap.cidToUnicode), len(cmap.ranges), cmap.GetMappingCount(), cmap.CodeWidth())
}
