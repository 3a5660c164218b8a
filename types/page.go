/*
 * Copyright 2025 tomoncle.
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package types

import "strings"

// Default paging values applied when a request leaves them unset.
const (
	DefaultPage    = 1
	DefaultPerPage = 10
)

// Filters is an exact-match filter keyed by column name.
type Filters map[string]any

// Clone returns a shallow copy so callers can add keys without touching the original.
func (f Filters) Clone() Filters {
	out := make(Filters, len(f)+1)
	for k, v := range f {
		out[k] = v
	}
	return out
}

// With returns a copy of f with column set to value.
func (f Filters) With(column string, value any) Filters {
	out := f.Clone()
	out[column] = value
	return out
}

// OrderDir is a sort direction.
type OrderDir string

const (
	Asc  OrderDir = "asc"
	Desc OrderDir = "desc"
)

// IsValid reports whether d is asc or desc, ignoring case.
func (d OrderDir) IsValid() bool {
	switch OrderDir(strings.ToLower(string(d))) {
	case Asc, Desc:
		return true
	}
	return false
}

// SQL returns the keyword form of d, ASC when unset.
func (d OrderDir) SQL() string {
	if OrderDir(strings.ToLower(string(d))) == Desc {
		return "DESC"
	}
	return "ASC"
}

// PageRequest describes pagination, optional filters, and ordering.
type PageRequest struct {
	page     int
	perPage  int
	filters  Filters
	orderBy  string
	orderDir OrderDir
}

func (p *PageRequest) GetPerPage() int {
	if p.perPage < 1 {
		p.perPage = DefaultPerPage
	}
	return p.perPage
}

func (p *PageRequest) GetPage() int {
	if p.page < 1 {
		p.page = DefaultPage
	}
	return p.page
}

func (p *PageRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPerPage()
}

func (p *PageRequest) GetFilters() Filters {
	return p.filters
}

func (p *PageRequest) GetOrderBy() string {
	return p.orderBy
}

func (p *PageRequest) GetOrderDir() OrderDir {
	if p.orderDir == "" {
		return Asc
	}
	return p.orderDir
}

// WithFilters sets the exact-match filters and returns p.
func (p *PageRequest) WithFilters(filters Filters) *PageRequest {
	p.filters = filters
	return p
}

// OrderBy sets the order column and direction and returns p.
func (p *PageRequest) OrderBy(column string, dir OrderDir) *PageRequest {
	p.orderBy = column
	p.orderDir = dir
	return p
}

// NewPageRequest constructs a PageRequest for a 1-based page.
func NewPageRequest(page int, perPage int) *PageRequest {
	return &PageRequest{page: page, perPage: perPage}
}

// Pagination holds paged result items along with pagination metadata.
type Pagination[T any] struct {
	Items   []T  `json:"items"`
	Total   int  `json:"total"`
	Page    int  `json:"page"`
	PerPage int  `json:"per_page"`
	Pages   int  `json:"pages"`
	HasPrev bool `json:"has_prev"`
	HasNext bool `json:"has_next"`
}

// NewPagination builds the metadata for total rows split into pages of perPage.
func NewPagination[T any](items []T, total, page, perPage int) *Pagination[T] {
	if items == nil {
		items = make([]T, 0)
	}
	pages := 0
	if total > 0 && perPage > 0 {
		pages = (total + perPage - 1) / perPage
	}
	return &Pagination[T]{
		Items:   items,
		Total:   total,
		Page:    page,
		PerPage: perPage,
		Pages:   pages,
		HasPrev: page > 1,
		HasNext: page < pages,
	}
}
