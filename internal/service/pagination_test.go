package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Freeeeeet/library_service/internal/service"
)

func Test_TotalPages(t *testing.T) {
	tests := []struct {
		name     string
		count    int
		pageSize int
		want     int
	}{
		{"empty", 0, 10, 0},
		{"exact_page", 10, 10, 1},
		{"one_over", 11, 10, 2},
		{"one_under", 9, 10, 1},
		{"single_item", 1, 20, 1},
		{"many_pages", 101, 10, 11},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, service.TotalPages(tc.count, tc.pageSize))
		})
	}
}

func Test_NormalizePage(t *testing.T) {
	page, size := service.NormalizePage(0, 0)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = service.NormalizePage(-3, 1000)
	assert.Equal(t, 1, page)
	assert.Equal(t, 20, size)

	page, size = service.NormalizePage(4, 50)
	assert.Equal(t, 4, page)
	assert.Equal(t, 50, size)
}
