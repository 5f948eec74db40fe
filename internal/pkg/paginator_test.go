package pkg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		count    int64
		want     int
		numPages int
		offset   int
	}{
		{name: "absent", raw: "", count: 13, want: 1, numPages: 2, offset: 0},
		{name: "malformed", raw: "abc", count: 13, want: 1, numPages: 2, offset: 0},
		{name: "zero", raw: "0", count: 13, want: 1, numPages: 2, offset: 0},
		{name: "negative", raw: "-3", count: 13, want: 1, numPages: 2, offset: 0},
		{name: "second", raw: "2", count: 13, want: 2, numPages: 2, offset: 10},
		{name: "beyond last", raw: "99", count: 13, want: 2, numPages: 2, offset: 10},
		{name: "exact multiple", raw: "2", count: 20, want: 2, numPages: 2, offset: 10},
		{name: "empty collection", raw: "5", count: 0, want: 1, numPages: 1, offset: 0},
		{name: "spaces", raw: " 2 ", count: 30, want: 2, numPages: 3, offset: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := Paginate(tt.raw, tt.count, PostsPerPage)
			assert.Equal(t, tt.want, p.Number)
			assert.Equal(t, tt.numPages, p.NumPages)
			assert.Equal(t, tt.offset, p.Offset())
			assert.Equal(t, tt.count, p.Count)
		})
	}
}

func TestPaginate_Neighbours(t *testing.T) {
	p := Paginate("2", 25, PostsPerPage)
	assert.True(t, p.HasNext)
	assert.True(t, p.HasPrevious)
	assert.Equal(t, 3, p.NextPageNumber)
	assert.Equal(t, 1, p.PreviousPageNumber)

	last := Paginate("3", 25, PostsPerPage)
	assert.False(t, last.HasNext)
	assert.Zero(t, last.NextPageNumber)

	only := Paginate("", 0, 0)
	assert.False(t, only.HasNext)
	assert.False(t, only.HasPrevious)
	assert.Equal(t, PostsPerPage, only.PerPage)
}
