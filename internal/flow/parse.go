package flow

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Jersey bounds differ by entry point: players picking their own number during
// a self-join get 0–99, coaches adding a player get 1–999.
const (
	JoinJerseyMin   = 0
	JoinJerseyMax   = 99
	RosterJerseyMin = 1
	RosterJerseyMax = 999
)

const (
	rpeMin       = 1.0
	rpeMax       = 10.0
	setsMax      = 20
	repsMax      = 100
	restMax      = 900
	percentMax   = 100.0
	fixedLoadMax = 500.0
)

var errInvalid = errors.New("invalid input")

// ParseRPE accepts a rate of perceived exertion in [1, 10] with either a comma
// or a dot as decimal separator and rounds it to one decimal.
func ParseRPE(s string) (float64, error) {
	v, err := parseDecimal(s)
	if err != nil {
		return 0, err
	}
	if v < rpeMin || v > rpeMax {
		return 0, fmt.Errorf("rpe %v out of range: %w", v, errInvalid)
	}
	return math.Round(v*10) / 10, nil
}

// ParseJersey accepts an integer jersey number within [min, max].
func ParseJersey(s string, min, max int) (int, error) {
	return parseIntRange(s, min, max)
}

func parseIntRange(s string, min, max int) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, errInvalid)
	}
	if v < min || v > max {
		return 0, fmt.Errorf("%d outside %d..%d: %w", v, min, max, errInvalid)
	}
	return v, nil
}

// plainDecimal is what a person types: digits with an optional comma or dot
// fraction. ParseFloat alone would also take hex, exponents and underscores.
var plainDecimal = regexp.MustCompile(`^\d+([.,]\d+)?$`)

func parseDecimal(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if !plainDecimal.MatchString(s) {
		return 0, fmt.Errorf("%q: %w", s, errInvalid)
	}
	v, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil {
		return 0, fmt.Errorf("%q: %w", s, errInvalid)
	}
	return v, nil
}

// parseReps accepts "8" or "8-12".
func parseReps(s string) (lo, hi int, err error) {
	s = strings.TrimSpace(s)
	loRaw, hiRaw, isRange := strings.Cut(s, "-")
	if lo, err = parseIntRange(loRaw, 1, repsMax); err != nil {
		return 0, 0, err
	}
	hi = lo
	if isRange {
		if hi, err = parseIntRange(hiRaw, 1, repsMax); err != nil {
			return 0, 0, err
		}
	}
	if lo > hi {
		return 0, 0, fmt.Errorf("reps %d-%d: %w", lo, hi, errInvalid)
	}
	return lo, hi, nil
}

// parseLoad accepts "70%" as a share of one-rep max or "60kg"/"60" as a fixed weight.
func parseLoad(s string) (percent, weight *float64, err error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if raw, ok := strings.CutSuffix(s, "%"); ok {
		v, err := parseDecimal(raw)
		if err != nil || v <= 0 || v > percentMax {
			return nil, nil, fmt.Errorf("load %q: %w", s, errInvalid)
		}
		return &v, nil, nil
	}
	raw, _ := strings.CutSuffix(s, "kg")
	v, err := parseDecimal(raw)
	if err != nil || v <= 0 || v > fixedLoadMax {
		return nil, nil, fmt.Errorf("load %q: %w", s, errInvalid)
	}
	return nil, &v, nil
}

// textLen validates trimmed text length in runes.
func textLen(s string, min, max int) (string, bool) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	return s, n >= min && n <= max
}
