package store

import (
	"strconv"
	"strings"
)

// rebindPlaceholders rewrites ? parameter markers into the $N form postgres
// requires. sqlite accepts ? natively, so every other driver passes through
// untouched. Markers inside single-quoted literals are left alone.
func rebindPlaceholders(driver, sqlText string) string {
	if driver != "postgres" {
		return sqlText
	}

	var sb strings.Builder
	sb.Grow(len(sqlText) + 8)

	n := 0
	inLiteral := false
	for i := 0; i < len(sqlText); i++ {
		c := sqlText[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			sb.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
