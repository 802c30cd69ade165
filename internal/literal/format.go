// Package literal converts matrices to and from bracketed text literals.
//
// The text form is a row-major nested list assigned to a variable:
//
//	M = [[0, 12, 255], [7, 7.5, -3]]
//
// Format writes it and Parse reads it back. Parse accepts the form Format
// produces plus the usual hand-edited variations (extra whitespace, any
// prefix before the first bracket, trailing text after the last one), so
// Parse(Format(m, v)) always equals m.
package literal

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/ironsheep/matrix-tools-mcp/internal/errors"
	"github.com/ironsheep/matrix-tools-mcp/internal/matrix"
)

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidIdentifier reports whether name is a bare identifier: letters, digits
// and underscores, not starting with a digit.
func ValidIdentifier(name string) bool {
	return identifierPattern.MatchString(name)
}

// Format renders m as "<name> = [[...], ...]".
//
// Whole numbers are written without a decimal point. Other values use the
// shortest decimal form that reads back to the same float64.
func Format(m *matrix.Matrix, name string) (string, error) {
	if !ValidIdentifier(name) {
		return "", errors.New(errors.CodeInvalidInput, "variable name %q is not a valid identifier", name)
	}

	var sb strings.Builder
	sb.WriteString(name)
	sb.WriteString(" = ")
	writeBody(&sb, m)
	return sb.String(), nil
}

// FormatBody renders only the bracketed literal, without an assignment.
func FormatBody(m *matrix.Matrix) string {
	var sb strings.Builder
	writeBody(&sb, m)
	return sb.String()
}

// writeBody writes the bracketed rows of m.
func writeBody(sb *strings.Builder, m *matrix.Matrix) {
	rows, cols := m.Dims()
	sb.WriteByte('[')
	for i := 0; i < rows; i++ {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteByte('[')
		for j := 0; j < cols; j++ {
			if j > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(formatNumber(m.At(i, j)))
		}
		sb.WriteByte(']')
	}
	sb.WriteByte(']')
}

// formatNumber never uses exponent notation so every token stays within
// the plain decimal grammar Parse documents.
func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return strconv.FormatFloat(v, 'f', 0, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
