// Package pagination provides types and utilities for paginated data queries.
package pagination

import (
	"math"
	"net/url"
	"strconv"
)

// PageRequest represents a client request for a page of data.
type PageRequest struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Normalize adjusts the request to ensure valid pagination values based on the config.
func (r *PageRequest) Normalize(cfg Config) {
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = cfg.DefaultPageSize
	}
	if r.Limit > cfg.MaxPageSize {
		r.Limit = cfg.MaxPageSize
	}
	if r.Limit > 0 && r.Page > math.MaxInt/r.Limit {
		r.Page = math.MaxInt / r.Limit
	}
}

// Offset calculates the number of records to skip based on page and limit.
func (r *PageRequest) Offset() int {
	return (r.Page - 1) * r.Limit
}

// PageRequestFromQuery parses the page and limit parameters from URL query values.
// Missing or malformed values fall back to the configured defaults.
func PageRequestFromQuery(values url.Values, cfg Config) PageRequest {
	page, _ := strconv.Atoi(values.Get("page"))
	limit, _ := strconv.Atoi(values.Get("limit"))

	req := PageRequest{
		Page:  page,
		Limit: limit,
	}

	req.Normalize(cfg)
	return req
}

// PageResult holds a page of data along with pagination metadata.
type PageResult[T any] struct {
	Data        []T `json:"data"`
	Count       int `json:"count"`
	Total       int `json:"total"`
	Pages       int `json:"pages"`
	CurrentPage int `json:"currentPage"`
}

// NewPageResult creates a PageResult with pages = ceil(total/limit).
// An empty result has zero pages.
func NewPageResult[T any](data []T, total, page, limit int) PageResult[T] {
	pages := 0
	if limit > 0 {
		pages = total / limit
		if total%limit != 0 {
			pages++
		}
	}

	if data == nil {
		data = []T{}
	}

	return PageResult[T]{
		Data:        data,
		Count:       len(data),
		Total:       total,
		Pages:       pages,
		CurrentPage: page,
	}
}
