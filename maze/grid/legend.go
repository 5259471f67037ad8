package grid

import (
	"encoding/json"
	"fmt"
	"os"
	"unicode/utf8"
)

// Legend maps maze characters to cell types. Each type has one canonical
// symbol used for rendering; Aliases add further accepted symbols.
type Legend struct {
	Wall    rune
	Open    rune
	Start   rune
	Goal    rune
	Aliases map[rune]CellType
}

// DefaultLegend returns the standard mapping: # wall, . or space open,
// S start, E or G goal.
func DefaultLegend() Legend {
	return Legend{
		Wall:  '#',
		Open:  '.',
		Start: 'S',
		Goal:  'E',
		Aliases: map[rune]CellType{
			' ': Open,
			'G': Goal,
		},
	}
}

// ClassicLegend matches the A/B maze files: A start, B goal, space open.
func ClassicLegend() Legend {
	return Legend{
		Wall:  '#',
		Open:  ' ',
		Start: 'A',
		Goal:  'B',
		Aliases: map[rune]CellType{
			'.': Open,
		},
	}
}

// Symbol returns the canonical symbol for a cell type
func (l Legend) Symbol(t CellType) rune {
	switch t {
	case Open:
		return l.Open
	case Start:
		return l.Start
	case Goal:
		return l.Goal
	default:
		return l.Wall
	}
}

// Lookup classifies a character
func (l Legend) Lookup(r rune) (CellType, bool) {
	switch r {
	case l.Wall:
		return Wall, true
	case l.Open:
		return Open, true
	case l.Start:
		return Start, true
	case l.Goal:
		return Goal, true
	}
	t, ok := l.Aliases[r]
	return t, ok
}

// Validate checks that every symbol is set and no character maps to two types
func (l Legend) Validate() error {
	seen := make(map[rune]CellType)
	claim := func(r rune, t CellType) error {
		if r == 0 {
			return fmt.Errorf("%w: no symbol for %s", ErrInvalidLegend, t)
		}
		if r == '\n' || r == '\r' {
			return fmt.Errorf("%w: line breaks cannot be cell symbols", ErrInvalidLegend)
		}
		if prev, ok := seen[r]; ok && prev != t {
			return fmt.Errorf("%w: %q maps to both %s and %s", ErrInvalidLegend, r, prev, t)
		}
		seen[r] = t
		return nil
	}

	for _, t := range []CellType{Wall, Open, Start, Goal} {
		if err := claim(l.Symbol(t), t); err != nil {
			return err
		}
	}
	for r, t := range l.Aliases {
		if err := claim(r, t); err != nil {
			return err
		}
	}
	return nil
}

// legendFile is the JSON form of a Legend
type legendFile struct {
	Wall    string            `json:"wall"`
	Open    string            `json:"open"`
	Start   string            `json:"start"`
	Goal    string            `json:"goal"`
	Aliases map[string]string `json:"aliases,omitempty"`
}

// MarshalJSON implements json.Marshaler
func (l Legend) MarshalJSON() ([]byte, error) {
	f := legendFile{
		Wall:  string(l.Wall),
		Open:  string(l.Open),
		Start: string(l.Start),
		Goal:  string(l.Goal),
	}
	if len(l.Aliases) > 0 {
		f.Aliases = make(map[string]string, len(l.Aliases))
		for r, t := range l.Aliases {
			f.Aliases[string(r)] = t.String()
		}
	}
	return json.Marshal(f)
}

// UnmarshalJSON implements json.Unmarshaler
func (l *Legend) UnmarshalJSON(data []byte) error {
	var f legendFile
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}

	var parsed Legend
	var err error
	if parsed.Wall, err = singleRune("wall", f.Wall); err != nil {
		return err
	}
	if parsed.Open, err = singleRune("open", f.Open); err != nil {
		return err
	}
	if parsed.Start, err = singleRune("start", f.Start); err != nil {
		return err
	}
	if parsed.Goal, err = singleRune("goal", f.Goal); err != nil {
		return err
	}

	if len(f.Aliases) > 0 {
		parsed.Aliases = make(map[rune]CellType, len(f.Aliases))
		for symbol, name := range f.Aliases {
			r, err := singleRune("alias", symbol)
			if err != nil {
				return err
			}
			t, err := ParseCellType(name)
			if err != nil {
				return fmt.Errorf("%w: alias %q: %v", ErrInvalidLegend, symbol, err)
			}
			parsed.Aliases[r] = t
		}
	}

	*l = parsed
	return nil
}

// LoadLegend reads and validates a legend JSON file
func LoadLegend(path string) (Legend, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Legend{}, err
	}

	var legend Legend
	if err := json.Unmarshal(data, &legend); err != nil {
		return Legend{}, fmt.Errorf("failed to parse legend %s: %w", path, err)
	}
	if err := legend.Validate(); err != nil {
		return Legend{}, err
	}
	return legend, nil
}

func singleRune(field, s string) (rune, error) {
	if utf8.RuneCountInString(s) != 1 {
		return 0, fmt.Errorf("%w: %s must be a single character, got %q", ErrInvalidLegend, field, s)
	}
	r, _ := utf8.DecodeRuneInString(s)
	return r, nil
}
