package sheet

import (
	"strconv"
	"strings"

	"github.com/rotisserie/eris"
)

// ParseRef converts an A1-style reference such as "C5" into zero-based
// row and column indexes.
func ParseRef(ref string) (row, col int, err error) {
	ref = strings.ToUpper(strings.TrimSpace(ref))
	i := 0
	for i < len(ref) && ref[i] >= 'A' && ref[i] <= 'Z' {
		col = col*26 + int(ref[i]-'A'+1)
		i++
	}
	if i == 0 || i == len(ref) {
		return 0, 0, eris.Errorf("sheet: invalid cell reference %q", ref)
	}
	n, err := strconv.Atoi(ref[i:])
	if err != nil || n < 1 {
		return 0, 0, eris.Errorf("sheet: invalid cell reference %q", ref)
	}
	return n - 1, col - 1, nil
}

// MustRef is ParseRef for compile-time constant references; it panics on error.
func MustRef(ref string) (row, col int) {
	r, c, err := ParseRef(ref)
	if err != nil {
		panic(err)
	}
	return r, c
}

// RefName formats zero-based indexes as an A1-style reference.
func RefName(row, col int) string {
	var letters []byte
	for n := col + 1; n > 0; n = (n - 1) / 26 {
		letters = append([]byte{byte('A' + (n-1)%26)}, letters...)
	}
	return string(letters) + strconv.Itoa(row+1)
}
