package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestIsDuplicateKeyErr(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"gorm sentinel", gorm.ErrDuplicatedKey, true},
		{"postgres 23505", errors.New(`ERROR: duplicate key value violates unique constraint "ux_price_lists_org_default" (SQLSTATE 23505)`), true},
		{"mysql 1062", errors.New("Error 1062 (23000): Duplicate entry"), true},
		{"sqlite 2067", errors.New("UNIQUE constraint failed: products.org_id, products.sku (2067)"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsDuplicateKeyErr(tc.err))
		})
	}
}
