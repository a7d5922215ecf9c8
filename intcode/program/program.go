package program

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/colorfulnotion/intcode/vmerrors"
)

// Parse reads comma separated signed integers. Whitespace around tokens and a
// trailing comma are ignored.
func Parse(text string) ([]int64, error) {
	text = strings.TrimSpace(text)
	text = strings.TrimSuffix(text, ",")
	if strings.TrimSpace(text) == "" {
		return nil, vmerrors.ErrEmptyProgram
	}
	tokens := strings.Split(text, ",")
	cells := make([]int64, 0, len(tokens))
	for i, tok := range tokens {
		v, err := strconv.ParseInt(strings.TrimSpace(tok), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("%w (token %d %q)", vmerrors.ErrInvalidToken, i, strings.TrimSpace(tok))
		}
		cells = append(cells, v)
	}
	return cells, nil
}

// ReadFile loads a program from a text file.
func ReadFile(path string) ([]int64, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read program %s: %w", path, err)
	}
	cells, err := Parse(string(data))
	if err != nil {
		return nil, fmt.Errorf("parse program %s: %w", path, err)
	}
	return cells, nil
}

// Format renders cells back into program text.
func Format(cells []int64) string {
	parts := make([]string, len(cells))
	for i, c := range cells {
		parts[i] = strconv.FormatInt(c, 10)
	}
	return strings.Join(parts, ",")
}
