package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRebindPlaceholders(t *testing.T) {
	cases := []struct {
		name   string
		driver string
		in     string
		want   string
	}{
		{
			"sqlite passes through",
			"sqlite3",
			"SELECT id FROM users WHERE id = ?",
			"SELECT id FROM users WHERE id = ?",
		},
		{
			"postgres single marker",
			"postgres",
			"SELECT id FROM users WHERE id = ?",
			"SELECT id FROM users WHERE id = $1",
		},
		{
			"postgres numbers markers in order",
			"postgres",
			"INSERT INTO products (name, price, stock) VALUES (?, ?, ?)",
			"INSERT INTO products (name, price, stock) VALUES ($1, $2, $3)",
		},
		{
			"marker inside a literal is untouched",
			"postgres",
			"SELECT '?', id FROM users WHERE username = ?",
			"SELECT '?', id FROM users WHERE username = $1",
		},
		{
			"no markers",
			"postgres",
			"SELECT COUNT(*) FROM users",
			"SELECT COUNT(*) FROM users",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, rebindPlaceholders(tc.driver, tc.in))
		})
	}
}
