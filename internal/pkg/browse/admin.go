package browse

import (
	"sort"
	"strings"

	"github.com/songhub/backend/internal/models"
)

// PageSize is the fixed admin list page size.
const PageSize = 5

type SortOrder string

const (
	SortDesc SortOrder = "desc"
	SortAsc  SortOrder = "asc"
)

// ParseSortOrder maps anything other than "asc" to SortDesc.
func ParseSortOrder(s string) SortOrder {
	if strings.EqualFold(strings.TrimSpace(s), string(SortAsc)) {
		return SortAsc
	}
	return SortDesc
}

// Toggle flips the order.
func (o SortOrder) Toggle() SortOrder {
	if o == SortAsc {
		return SortDesc
	}
	return SortAsc
}

// AdminState is the admin list state. Values are immutable: transitions return a copy.
type AdminState struct {
	Search   string    `json:"search"`
	Category string    `json:"category"`
	Sort     SortOrder `json:"sort"`
	Page     int       `json:"page"`
}

// NewAdminState is the initial state: no filters, newest first, page 1.
func NewAdminState() AdminState {
	return AdminState{Category: AllCategories, Sort: SortDesc, Page: 1}
}

// WithSearch changes the search text; a change sends the list back to page 1.
func (s AdminState) WithSearch(search string) AdminState {
	if search != s.Search {
		s.Search = search
		s.Page = 1
	}
	return s
}

// WithCategory changes the category filter; a change sends the list back to page 1.
func (s AdminState) WithCategory(category string) AdminState {
	if category == "" {
		category = AllCategories
	}
	if category != s.Category {
		s.Category = category
		s.Page = 1
	}
	return s
}

// ToggleSort flips the created_at order.
func (s AdminState) ToggleSort() AdminState {
	s.Sort = s.normalize().Sort.Toggle()
	return s
}

// Next moves forward one page, clamped to totalPages.
func (s AdminState) Next(totalPages int) AdminState {
	s.Page = clampPage(s.Page+1, totalPages)
	return s
}

// Prev moves back one page, clamped to 1.
func (s AdminState) Prev(totalPages int) AdminState {
	s.Page = clampPage(s.Page-1, totalPages)
	return s
}

func (s AdminState) normalize() AdminState {
	if s.Category == "" {
		s.Category = AllCategories
	}
	if s.Sort != SortAsc {
		s.Sort = SortDesc
	}
	if s.Page < 1 {
		s.Page = 1
	}
	return s
}

// Row is an admin list entry: the song plus its resolved category label.
type Row struct {
	models.Song
	CategoryName string `json:"category_name"`
}

// AdminView is the admin list view model.
type AdminView struct {
	State      AdminState `json:"state"`
	Rows       []Row      `json:"rows"`
	Total      int        `json:"total"`
	PageSize   int        `json:"page_size"`
	TotalPages int        `json:"total_pages"`
	HasPrev    bool       `json:"has_prev"`
	HasNext    bool       `json:"has_next"`
}

// Admin derives the admin list: all statuses, category filter, name-prefix match,
// stable created_at sort, then the current page.
func Admin(c Catalog, st AdminState) AdminView {
	st = st.normalize()
	idx := newCategoryIndex(c.Categories)

	rows := make([]Row, 0, len(c.Songs))
	for i := range c.Songs {
		s := &c.Songs[i]
		name := idx.name(s)
		if !InCategory(name, st.Category) {
			continue
		}
		if !HasPrefixFold(s.SongName, st.Search) {
			continue
		}
		rows = append(rows, Row{Song: *s, CategoryName: name})
	}

	SortRows(rows, st.Sort)

	total := len(rows)
	totalPages := TotalPages(total, PageSize)
	st.Page = clampPage(st.Page, totalPages)
	start, end := pageBounds(total, st.Page, PageSize)

	return AdminView{
		State:      st,
		Rows:       rows[start:end],
		Total:      total,
		PageSize:   PageSize,
		TotalPages: totalPages,
		HasPrev:    totalPages > 0 && st.Page > 1,
		HasNext:    totalPages > 0 && st.Page < totalPages,
	}
}

// SortRows orders rows by CreatedAt in place. Equal timestamps keep their input order
// in both directions.
func SortRows(rows []Row, order SortOrder) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].CreatedAt, rows[j].CreatedAt
		if order == SortAsc {
			return a.Before(b)
		}
		return b.Before(a)
	})
}

// TotalPages is ceil(n/size); zero items means zero pages.
func TotalPages(n, size int) int {
	if n <= 0 || size <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

func clampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

func pageBounds(n, page, size int) (int, int) {
	start := (page - 1) * size
	if start > n {
		start = n
	}
	end := start + size
	if end > n {
		end = n
	}
	return start, end
}
