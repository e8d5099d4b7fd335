// Package dataset reads the yearly co-citation (ds-1) and collaboration (ds-2)
// TSV sources.
package dataset

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// CoCitation is one ds-1 record: two keywords co-cited in a year, with the
// number of times each author co-cited the pair.
type CoCitation struct {
	Year    int                `json:"year"`
	Key1    string             `json:"key1"`
	Key2    string             `json:"key2"`
	Authors map[string]float64 `json:"authors"`
}

// Total returns the co-citation count summed over all authors.
func (c CoCitation) Total() float64 {
	var total float64
	for _, n := range c.Authors {
		total += n
	}
	return total
}

// Collaboration is one ds-2 record: two authors who collaborated in a year.
type Collaboration struct {
	Year    int     `json:"year"`
	Author1 string  `json:"author1"`
	Author2 string  `json:"author2"`
	Count   float64 `json:"count"`
}

// Parse errors.
var (
	ErrFieldCount = errors.New("expected 4 tab-separated fields")
	ErrBadYear    = errors.New("invalid year")
	ErrBadAuthors = errors.New("invalid author-value map")
	ErrBadCount   = errors.New("invalid collaboration count")
	ErrEmptyKey   = errors.New("empty keyword or author")
)

const recordFieldNum = 4

// ReadCoCitations reads every ds-1 record from a TSV file.
func ReadCoCitations(path string) ([]CoCitation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ds-1 file: %w", err)
	}
	defer f.Close()
	return ParseCoCitations(f)
}

// ParseCoCitations parses ds-1 records from r.
func ParseCoCitations(r io.Reader) ([]CoCitation, error) {
	var out []CoCitation
	err := readRecords(r, func(fields []string) error {
		year, err := parseYear(fields[0])
		if err != nil {
			return err
		}
		if fields[1] == "" || fields[2] == "" {
			return ErrEmptyKey
		}
		authors, err := ParseAuthorValue(fields[3])
		if err != nil {
			return err
		}
		out = append(out, CoCitation{Year: year, Key1: fields[1], Key2: fields[2], Authors: authors})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ReadCollaborations reads every ds-2 record from a TSV file.
func ReadCollaborations(path string) ([]Collaboration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening ds-2 file: %w", err)
	}
	defer f.Close()
	return ParseCollaborations(f)
}

// ParseCollaborations parses ds-2 records from r.
func ParseCollaborations(r io.Reader) ([]Collaboration, error) {
	var out []Collaboration
	err := readRecords(r, func(fields []string) error {
		year, err := parseYear(fields[0])
		if err != nil {
			return err
		}
		if fields[1] == "" || fields[2] == "" {
			return ErrEmptyKey
		}
		count, err := strconv.ParseFloat(strings.TrimSpace(fields[3]), 64)
		if err != nil {
			return fmt.Errorf("%w: %q", ErrBadCount, fields[3])
		}
		out = append(out, Collaboration{Year: year, Author1: fields[1], Author2: fields[2], Count: count})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// readRecords walks tab-separated records, skipping blank lines, and reports
// failures with their line number.
func readRecords(r io.Reader, fn func(fields []string) error) error {
	cr := csv.NewReader(r)
	cr.Comma = '\t'
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	for {
		fields, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading records: %w", err)
		}
		line, _ := cr.FieldPos(0)
		if len(fields) == 1 && strings.TrimSpace(fields[0]) == "" {
			continue
		}
		if len(fields) != recordFieldNum {
			return fmt.Errorf("parsing line %d: %w (got %d)", line, ErrFieldCount, len(fields))
		}
		if err := fn(fields); err != nil {
			return fmt.Errorf("parsing line %d: %w", line, err)
		}
	}
}

func parseYear(s string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadYear, s)
	}
	return year, nil
}

// ParseAuthorValue decodes an author-to-count map. Both JSON objects and
// single-quoted dict literals ({'smith': 2}) are accepted.
func ParseAuthorValue(s string) (map[string]float64, error) {
	s = strings.TrimSpace(s)
	authors := make(map[string]float64)
	if err := json.Unmarshal([]byte(s), &authors); err == nil {
		return authors, nil
	}
	authors = make(map[string]float64)
	if err := json.Unmarshal([]byte(strings.ReplaceAll(s, "'", `"`)), &authors); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadAuthors, err)
	}
	return authors, nil
}
