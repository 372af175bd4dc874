// Package dto holds the input schemas accepted by services. Every type is
// validated with pkg/validation before anything is written.
package dto

import "strings"

func upper(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

func upperPtr(s *string) {
	if s != nil {
		*s = upper(*s)
	}
}

func trim(s *string) {
	if s != nil {
		*s = strings.TrimSpace(*s)
	}
}

// ListFilter pages through catalog style listings (customers, items).
type ListFilter struct {
	Search   string `form:"search" validate:"omitempty,max=100"`
	Category string `form:"category" validate:"omitempty,max=100"`
	Page     int    `form:"page" validate:"omitempty,gte=1"`
	PageSize int    `form:"page_size" validate:"omitempty,gte=1,lte=100"`
}

func (f *ListFilter) Normalize() {
	trim(&f.Search)
	trim(&f.Category)
	if f.Page == 0 {
		f.Page = 1
	}
	if f.PageSize == 0 {
		f.PageSize = 20
	}
}

// Offset is the row offset for the current page.
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}
