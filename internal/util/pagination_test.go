package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPageWindow(t *testing.T) {
	cases := []struct {
		page, size    int
		offset, limit int
	}{
		{1, 20, 0, 20},
		{3, 10, 20, 10},
		{0, 0, 0, 20},
		{-5, 500, 0, 20},
		{2, 100, 100, 100},
	}
	for _, tc := range cases {
		offset, limit := PageWindow(tc.page, tc.size)
		assert.Equal(t, tc.offset, offset)
		assert.Equal(t, tc.limit, limit)
	}
}
