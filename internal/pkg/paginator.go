package pkg

import (
	"strconv"
	"strings"
)

// PostsPerPage 所有列表统一的分页大小
const PostsPerPage = 10

// Page 分页元数据，字段名与模板上下文一致
type Page struct {
	Number             int   `json:"number"`
	NumPages           int   `json:"num_pages"`
	Count              int64 `json:"count"`
	PerPage            int   `json:"per_page"`
	HasNext            bool  `json:"has_next"`
	HasPrevious        bool  `json:"has_previous"`
	NextPageNumber     int   `json:"next_page_number,omitempty"`
	PreviousPageNumber int   `json:"previous_page_number,omitempty"`
}

// Offset 当前页第一条记录的偏移量
func (p Page) Offset() int {
	return (p.Number - 1) * p.PerPage
}

// Paginate 把原始页码规整到 [1, num_pages]：缺失或非法取 1，越界取最近的有效页。
// 空集合也有一页。
func Paginate(rawPage string, count int64, perPage int) Page {
	if perPage <= 0 {
		perPage = PostsPerPage
	}
	numPages := 1
	if count > 0 {
		numPages = int((count + int64(perPage) - 1) / int64(perPage))
	}

	number, err := strconv.Atoi(strings.TrimSpace(rawPage))
	switch {
	case err != nil, number < 1:
		number = 1
	case number > numPages:
		number = numPages
	}

	p := Page{
		Number:      number,
		NumPages:    numPages,
		Count:       count,
		PerPage:     perPage,
		HasNext:     number < numPages,
		HasPrevious: number > 1,
	}
	if p.HasNext {
		p.NextPageNumber = number + 1
	}
	if p.HasPrevious {
		p.PreviousPageNumber = number - 1
	}
	return p
}
