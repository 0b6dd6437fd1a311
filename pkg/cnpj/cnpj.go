// Package cnpj validates Brazilian company tax identifiers, the tax-id format accounts
// are registered with.
package cnpj

import (
	"errors"
	"fmt"
	"strings"
)

const length = 14

var ErrInvalid = errors.New("invalid cnpj")

var (
	firstWeights  = []int{5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
	secondWeights = []int{6, 5, 4, 3, 2, 9, 8, 7, 6, 5, 4, 3, 2}
)

// Digits strips the punctuation of a formatted value. Letters are kept so that
// Valid rejects them.
func Digits(v string) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, r := range strings.TrimSpace(v) {
		switch r {
		case '.', '/', '-', ' ':
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Valid reports whether v is a 14 digit CNPJ (formatted or not) with correct check digits.
func Valid(v string) bool {
	d := Digits(v)
	if len(d) != length {
		return false
	}
	digits := make([]int, length)
	same := true
	for i, r := range d {
		if r < '0' || r > '9' {
			return false
		}
		digits[i] = int(r - '0')
		if i > 0 && digits[i] != digits[0] {
			same = false
		}
	}
	if same {
		return false
	}
	return checkDigit(digits, firstWeights) == digits[12] &&
		checkDigit(digits, secondWeights) == digits[13]
}

// Format renders v as NN.NNN.NNN/NNNN-NN.
func Format(v string) (string, error) {
	if !Valid(v) {
		return "", ErrInvalid
	}
	d := Digits(v)
	return fmt.Sprintf("%s.%s.%s/%s-%s", d[0:2], d[2:5], d[5:8], d[8:12], d[12:14]), nil
}

func checkDigit(digits, weights []int) int {
	sum := 0
	for i, w := range weights {
		sum += digits[i] * w
	}
	r := sum % 11
	if r < 2 {
		return 0
	}
	return 11 - r
}
