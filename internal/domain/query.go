package domain

type SortField string

const (
	SortCreatedAt SortField = "createdAt"
	SortUpdatedAt SortField = "updatedAt"
	SortEmail     SortField = "email"
	SortName      SortField = "name"
)

type SortDir string

const (
	SortAsc  SortDir = "asc"
	SortDesc SortDir = "desc"
)

// Column is the store column backing a sort field.
func (f SortField) Column() string {
	switch f {
	case SortUpdatedAt:
		return "updated_at"
	case SortEmail:
		return "email"
	case SortName:
		return "name"
	default:
		return "created_at"
	}
}

func (f SortField) Valid() bool {
	switch f {
	case SortCreatedAt, SortUpdatedAt, SortEmail, SortName:
		return true
	}
	return false
}

// UserFilter is shared by Count and FindMany. Search matches email or name,
// case-insensitively, as a substring; an empty Search matches everything.
type UserFilter struct {
	Role   *Role
	Search string
}

type UserQuery struct {
	UserFilter
	Page      int
	PageSize  int
	SortField SortField
	SortDir   SortDir
}

func (q UserQuery) Offset() int { return (q.Page - 1) * q.PageSize }

type Paginated[T any] struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
	Items      []T   `json:"items"`
}

func NewPaginated[T any](page, pageSize int, total int64, items []T) Paginated[T] {
	if items == nil {
		items = []T{}
	}
	var pages int64
	if pageSize > 0 {
		pages = (total + int64(pageSize) - 1) / int64(pageSize)
	}
	return Paginated[T]{Page: page, PageSize: pageSize, Total: total, TotalPages: pages, Items: items}
}
