/*
 * Copyright 2026 romakot321.
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

// QueryFilter describes a WHERE clause schema and its argument values.
type QueryFilter struct {
	Schema string
	Args   []interface{}
}

// NewQueryFilter creates a new query filter with schema and args.
func NewQueryFilter(schema string, args ...interface{}) *QueryFilter {
	return &QueryFilter{schema, args}
}

// PageRequest selects one page of a listing. Page numbering starts at 1.
// A zero (or negative) Page or Count means "unset": unless both are set,
// no offset and no limit are applied and all rows are returned.
type PageRequest struct {
	Page   int
	Count  int
	Orders []string // "id ASC", "name DESC"; empty means primary-key ascending
}

// NewPageRequest constructs a PageRequest for the given page and count.
func NewPageRequest(page, count int) *PageRequest {
	return &PageRequest{Page: page, Count: count}
}

// NewPageRequestWithOrders constructs a PageRequest with explicit ordering.
func NewPageRequestWithOrders(page, count int, orders ...string) *PageRequest {
	return &PageRequest{Page: page, Count: count, Orders: orders}
}

// Paginated reports whether both page and count are set.
func (p *PageRequest) Paginated() bool {
	return p != nil && p.Page > 0 && p.Count > 0
}

// Offset returns (page-1)*count, or 0 when the request is not paginated.
func (p *PageRequest) Offset() int {
	if !p.Paginated() {
		return 0
	}
	return (p.Page - 1) * p.Count
}

// Limit returns the page size, or 0 when the request is not paginated.
func (p *PageRequest) Limit() int {
	if !p.Paginated() {
		return 0
	}
	return p.Count
}

// GetOrders returns the requested ordering, never nil.
func (p *PageRequest) GetOrders() []string {
	if p == nil || p.Orders == nil {
		return []string{}
	}
	return p.Orders
}

// Pagination holds paged result items along with pagination metadata.
type Pagination[T any] struct {
	Page  int
	Count int
	Total int
	Items []*T
}

// NewDefaultPagination constructs an empty pagination container.
func NewDefaultPagination[T any](page, count int) *Pagination[T] {
	return &Pagination[T]{page, count, 0, make([]*T, 0)}
}
