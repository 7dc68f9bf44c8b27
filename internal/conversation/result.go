package conversation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hammamikhairi/ottobrew/internal/domain"
)

// ParseResult reads a brew result typed as a rating followed by optional
// key=value tasting notes and free text, e.g.
//
//	4 acidity=6 body=7 tds=1.38 bright and juicy
//
// The result is validated before it is returned.
func ParseResult(input string) (domain.BrewResult, error) {
	fields := strings.Fields(input)
	if len(fields) == 0 {
		return domain.BrewResult{}, fmt.Errorf("a rating from 0 to 5 is required")
	}

	rating, err := strconv.Atoi(fields[0])
	if err != nil {
		return domain.BrewResult{}, fmt.Errorf("rating %q is not a number", fields[0])
	}

	res := domain.BrewResult{Rating: rating}
	var notes []string
	for _, f := range fields[1:] {
		key, value, ok := strings.Cut(f, "=")
		if !ok {
			notes = append(notes, f)
			continue
		}
		if err := setTasting(&res.Tasting, strings.ToLower(key), value); err != nil {
			return domain.BrewResult{}, err
		}
	}
	res.Notes = strings.Join(notes, " ")

	if err := res.Validate(); err != nil {
		return domain.BrewResult{}, err
	}
	return res, nil
}

func setTasting(t *domain.Tasting, key, value string) error {
	if key == "tds" {
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return fmt.Errorf("tds %q is not a number", value)
		}
		t.TDS = &v
		return nil
	}

	var target **int
	switch key {
	case "acidity", "a":
		target = &t.Acidity
	case "bitterness", "bitter":
		target = &t.Bitterness
	case "body", "b":
		target = &t.Body
	case "sweetness", "sweet":
		target = &t.Sweetness
	default:
		return fmt.Errorf("unknown tasting note %q", key)
	}
	v, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("%s %q is not a number", key, value)
	}
	*target = &v
	return nil
}
