package phoneme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Stress diacritics prefixed to the IPA rendering of a stressed phoneme.
const (
	PrimaryStress   = "ˈ"
	SecondaryStress = "ˌ"
)

// ArpabetMap maps stress-free ARPAbet tokens to their IPA renderings.
// Immutable after load.
type ArpabetMap struct {
	toIPA map[string]string
}

// LoadArpabetMap reads a mapping file of "TOKEN, rendering" lines.
// Lines that do not split into exactly two comma-separated parts are skipped.
func LoadArpabetMap(path string) (*ArpabetMap, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open arpabet mapping: %w", err)
	}
	defer f.Close()

	m, err := ParseArpabetMap(f)
	if err != nil {
		return nil, fmt.Errorf("parse arpabet mapping %s: %w", path, err)
	}

	return m, nil
}

// ParseArpabetMap parses mapping lines from r.
func ParseArpabetMap(r io.Reader) (*ArpabetMap, error) {
	toIPA := make(map[string]string)

	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		parts := strings.Split(scanner.Text(), ", ")
		if len(parts) != 2 {
			continue
		}

		toIPA[strings.TrimSpace(parts[0])] = strings.TrimSpace(parts[1])
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read arpabet mapping: %w", err)
	}

	return &ArpabetMap{toIPA: toIPA}, nil
}

// MapToken rewrites one ARPAbet token to IPA. A trailing stress digit
// (0, 1, 2) is stripped before lookup; digits 1 and 2 prefix the rendering
// with the primary and secondary stress diacritics. Unknown tokens pass
// through unchanged.
func (m *ArpabetMap) MapToken(tok string) string {
	base, stress := splitStress(tok)

	ipa, ok := m.toIPA[base]
	if !ok {
		return tok
	}

	switch stress {
	case '1':
		return PrimaryStress + ipa
	case '2':
		return SecondaryStress + ipa
	default:
		return ipa
	}
}

// MapTokens renders a word's token sequence as a single IPA string.
func (m *ArpabetMap) MapTokens(tokens []string) string {
	var b strings.Builder
	for _, tok := range tokens {
		b.WriteString(m.MapToken(tok))
	}

	return b.String()
}

// Len returns the number of mapping entries.
func (m *ArpabetMap) Len() int {
	return len(m.toIPA)
}

func splitStress(tok string) (base string, stress byte) {
	if len(tok) < 2 {
		return tok, 0
	}

	last := tok[len(tok)-1]
	if last == '0' || last == '1' || last == '2' {
		return tok[:len(tok)-1], last
	}

	return tok, 0
}
