package convert

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

var digitRun = regexp.MustCompile(`[0-9]+`)

// HalfWidthDigits replaces full-width digits (０-９) with ASCII digits and leaves
// every other rune, including full-width punctuation, untouched.
func HalfWidthDigits(s string) string {
	return strings.Map(func(r rune) rune {
		p := width.LookupRune(r)
		if p.Kind() != width.EastAsianFullwidth {
			return r
		}
		if n := p.Narrow(); n >= '0' && n <= '9' {
			return n
		}
		return r
	}, s)
}

// Numbers returns every run of digits in text as an integer, left to right.
// Full-width and half-width digits are treated alike.
func Numbers(text string) ([]int, error) {
	runs := digitRun.FindAllString(HalfWidthDigits(text), -1)
	nums := make([]int, 0, len(runs))
	for _, run := range runs {
		n, err := strconv.Atoi(run)
		if err != nil {
			return nil, fmt.Errorf("parsing number %q: %w", run, err)
		}
		nums = append(nums, n)
	}
	return nums, nil
}
