package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	page := Normalize(0, 0)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)

	page = Normalize(-3, -1)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.Limit)

	page = Normalize(3, 50)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 50, page.Limit)
	assert.Equal(t, 100, page.Offset())

	page = Normalize(1, 10_000)
	assert.Equal(t, MaxLimit, page.Limit)
}

func TestTotalPages(t *testing.T) {
	page := Normalize(1, 20)

	assert.Equal(t, 3, page.TotalPages(45))
	assert.Equal(t, 1, page.TotalPages(20))
	assert.Equal(t, 2, page.TotalPages(21))
	assert.Equal(t, 0, page.TotalPages(0))
}
