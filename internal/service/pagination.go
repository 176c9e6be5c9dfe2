package service

import (
	"math"
	"strconv"
	"strings"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 12
	MaxPerPage     = 100

	// MaxPage bounds page numbers so the row offset stays representable
	MaxPage = math.MaxInt32
)

// Pagination is the metadata block returned next to every listed page
type Pagination struct {
	CurrentPage int  `json:"currentPage"`
	PerPage     int  `json:"perPage"`
	TotalItems  int  `json:"totalItems"`
	TotalPages  int  `json:"totalPages"`
	HasNext     bool `json:"hasNext"`
	HasPrev     bool `json:"hasPrev"`
}

// Page wraps one page of items with its pagination metadata
type Page[T any] struct {
	Data       []T        `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// Paginate builds the envelope for an already fetched page. perPage must be positive.
func Paginate[T any](items []T, totalItems, currentPage, perPage int) Page[T] {
	if items == nil {
		items = []T{}
	}

	totalPages := 0
	if totalItems > 0 {
		totalPages = (totalItems + perPage - 1) / perPage
	}

	return Page[T]{
		Data: items,
		Pagination: Pagination{
			CurrentPage: currentPage,
			PerPage:     perPage,
			TotalItems:  totalItems,
			TotalPages:  totalPages,
			HasNext:     currentPage < totalPages,
			HasPrev:     currentPage > 1 && totalItems > 0,
		},
	}
}

// NormalizePage parses the page parameter; anything but a positive integer becomes 1.
// Pages beyond MaxPage are clamped to it.
func NormalizePage(raw string) int {
	page, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || page < 1 {
		return DefaultPage
	}
	if page > MaxPage {
		return MaxPage
	}
	return int(page)
}

// NormalizePerPage parses the page size; values outside [1, MaxPerPage] become the default.
func NormalizePerPage(raw string) int {
	perPage, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || perPage < 1 || perPage > MaxPerPage {
		return DefaultPerPage
	}
	return perPage
}

// Offset is the number of rows skipped before the given page. It saturates at
// math.MaxInt rather than wrapping negative.
func Offset(page, perPage int) int {
	if page <= 1 || perPage <= 0 {
		return 0
	}
	if page-1 > math.MaxInt/perPage {
		return math.MaxInt
	}
	return (page - 1) * perPage
}
