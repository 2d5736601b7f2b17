package service

import (
	"strings"

	"go-gin-gorm-accounts/internal/domain"
)

const DefaultSort = "createdAt:desc"

// ParseSort resolves a "field:direction" token. An unknown field becomes
// createdAt and an unknown or missing direction becomes desc.
func ParseSort(tok string) (domain.SortField, domain.SortDir) {
	field, dir, _ := strings.Cut(strings.TrimSpace(tok), ":")

	f := domain.SortField(strings.TrimSpace(field))
	if !f.Valid() {
		f = domain.SortCreatedAt
	}
	d := domain.SortDir(strings.TrimSpace(dir))
	if d != domain.SortAsc && d != domain.SortDesc {
		d = domain.SortDesc
	}
	return f, d
}
