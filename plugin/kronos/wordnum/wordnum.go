// Package wordnum converts spelled-out English numbers to integers.
package wordnum

import (
	"strings"
	"unicode"

	"github.com/pkg/errors"
	"golang.org/x/text/cases"
)

// ErrNotANumber is returned when the input contains a word that is not part of a number.
var ErrNotANumber = errors.New("not a number")

var units = map[string]int64{
	"zero": 0, "one": 1, "two": 2, "three": 3, "four": 4,
	"five": 5, "six": 6, "seven": 7, "eight": 8, "nine": 9,
	"ten": 10, "eleven": 11, "twelve": 12, "thirteen": 13, "fourteen": 14,
	"fifteen": 15, "sixteen": 16, "seventeen": 17, "eighteen": 18, "nineteen": 19,
}

var tens = map[string]int64{
	"twenty": 20, "thirty": 30, "forty": 40, "fourty": 40, "fifty": 50,
	"sixty": 60, "seventy": 70, "eighty": 80, "ninety": 90,
}

var majors = map[string]int64{
	"thousand":    1e3,
	"million":     1e6,
	"billion":     1e9,
	"trillion":    1e12,
	"quadrillion": 1e15,
	"quintillion": 1e18,
}

// Parse reads numbers such as "twenty-one", "a hundred", "two thousand and five"
// or "one million, two hundred thousand". Hyphens, commas and "and" are ignored.
func Parse(s string) (int64, error) {
	words := strings.FieldsFunc(cases.Fold().String(s), func(r rune) bool {
		return unicode.IsSpace(r) || r == '-' || r == ','
	})

	var total, group int64
	seen := false
	for i, w := range words {
		switch {
		case w == "and":
			continue
		case w == "a" && i == 0:
			group = 1
		case units[w] != 0 || w == "zero":
			group += units[w]
		case tens[w] != 0:
			group += tens[w]
		case strings.TrimSuffix(w, "s") == "hundred":
			if group == 0 {
				group = 1
			}
			group *= 100
		case majors[strings.TrimSuffix(w, "s")] != 0:
			if group == 0 {
				group = 1
			}
			total += group * majors[strings.TrimSuffix(w, "s")]
			group = 0
		default:
			return 0, errors.Wrapf(ErrNotANumber, "%q", s)
		}
		seen = true
	}
	if !seen {
		return 0, errors.Wrapf(ErrNotANumber, "%q", s)
	}
	return total + group, nil
}
