package kiturami

import (
	"fmt"
	"strings"
)

// Control message bodies are fixed-width concatenations of vendor fields.
// Numeric fields are either zero-padded decimal digits or uppercase hex
// without a prefix; the width and base of every field is dictated by the
// vendor and must match exactly.

type fieldBase int

const (
	baseDecimal fieldBase = iota
	baseHex
)

type bodyField struct {
	text  string
	value int
	width int
	base  fieldBase
	lit   bool
}

// lit emits a pre-encoded segment verbatim (slave IDs, padding, values
// read back from the device).
func lit(s string) bodyField {
	return bodyField{text: s, lit: true}
}

func dec(value, width int) bodyField {
	return bodyField{value: value, width: width, base: baseDecimal}
}

func hexUpper(value, width int) bodyField {
	return bodyField{value: value, width: width, base: baseHex}
}

func (f bodyField) encode() string {
	if f.lit {
		return f.text
	}
	switch f.base {
	case baseHex:
		return fmt.Sprintf("%0*X", f.width, f.value)
	default:
		return fmt.Sprintf("%0*d", f.width, f.value)
	}
}

func encodeBody(fields ...bodyField) string {
	var b strings.Builder
	for _, f := range fields {
		b.WriteString(f.encode())
	}
	return b.String()
}
