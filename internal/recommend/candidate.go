package recommend

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// SourceWeb marks candidates fetched from the external search provider.
const SourceWeb = "web"

// Candidate is one normalized recommendation. Title doubles as the dedup key.
type Candidate struct {
	Title       string  `json:"title"`
	Author      string  `json:"author"`
	ExternalKey string  `json:"external_key,omitempty"`
	Source      string  `json:"source"`
	Score       float64 `json:"score,omitempty"`
}

// normalizeTitle produces the dedup key: trimmed and lower-cased.
func normalizeTitle(title string) string {
	return strings.ToLower(strings.TrimSpace(title))
}

// Seed is an optional shuffle seed accepting either a JSON number or a
// numeric string. It is valid only when the value parses to a finite float64;
// anything else is treated the same as an absent seed.
type Seed struct {
	value float64
	valid bool
}

func (s *Seed) UnmarshalJSON(data []byte) error {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch v := raw.(type) {
	case float64:
		s.set(v)
	case string:
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			s.set(f)
		}
	}
	return nil
}

func (s *Seed) set(f float64) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return
	}
	s.value = f
	s.valid = true
}

// Valid reports whether a finite seed value was supplied.
func (s *Seed) Valid() bool {
	return s != nil && s.valid
}
