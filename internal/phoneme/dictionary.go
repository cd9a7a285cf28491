// Package phoneme implements the phonemization stages: pronunciation
// dictionary lookup, neural G2P fallback, ARPAbet-to-IPA symbol mapping,
// and the formatted phoneme string grammar the vocoder expects.
package phoneme

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// Dictionary maps uppercase words to their ARPAbet pronunciations.
// Immutable after load.
type Dictionary struct {
	entries map[string]string
}

// LoadDictionary reads a CMU-style pronunciation dictionary.
// Lines starting with ";;;" and blank lines are skipped; the first
// whitespace-separated field is the word, the rest form the pronunciation.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dictionary: %w", err)
	}
	defer f.Close()

	d, err := ParseDictionary(f)
	if err != nil {
		return nil, fmt.Errorf("parse dictionary %s: %w", path, err)
	}

	return d, nil
}

// ParseDictionary parses dictionary lines from r. Word keys are uppercased
// so lookup behaves the same for the uppercase and lowercase distributions
// of the CMU dictionary.
func ParseDictionary(r io.Reader) (*Dictionary, error) {
	entries := make(map[string]string)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || strings.HasPrefix(line, ";;;") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}

		word := strings.ToUpper(fields[0])
		entries[word] = strings.Join(fields[1:], " ")
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read dictionary: %w", err)
	}

	return &Dictionary{entries: entries}, nil
}

// Lookup returns the whitespace-split ARPAbet tokens for word.
// The lookup key is the uppercased word.
func (d *Dictionary) Lookup(word string) ([]string, bool) {
	pron, ok := d.entries[strings.ToUpper(word)]
	if !ok {
		return nil, false
	}

	return strings.Fields(pron), true
}

// Len returns the number of dictionary entries.
func (d *Dictionary) Len() int {
	return len(d.entries)
}
