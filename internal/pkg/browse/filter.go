// Package browse derives the visitor and admin song listings from a catalog snapshot.
//
// Everything here is a pure function of (songs, categories, state): no I/O, no clocks,
// inputs are never mutated. Running a pipeline twice on the same arguments yields the
// same view.
package browse

import (
	"strings"

	"github.com/songhub/backend/internal/models"
)

const (
	// AllCategories is the category filter value that disables category filtering.
	AllCategories = "All"
	// Uncategorized is the group for songs whose category is not in the category list.
	Uncategorized = "Uncategorized"
)

// Catalog is a one-shot snapshot of the read path.
type Catalog struct {
	Songs      []models.Song     `json:"songs"`
	Categories []models.Category `json:"categories"`
}

// categoryIndex maps category ids to display names.
type categoryIndex map[uint]string

func newCategoryIndex(categories []models.Category) categoryIndex {
	idx := make(categoryIndex, len(categories))
	for _, c := range categories {
		idx[c.ID] = c.CategoryName
	}
	return idx
}

// name resolves the display name of a song's category against the category list.
// Songs without a listed category resolve to Uncategorized.
func (idx categoryIndex) name(s *models.Song) string {
	if n, ok := idx.lookup(s); ok {
		return n
	}
	return Uncategorized
}

// lookup returns the listed category name of a song, if it has one.
func (idx categoryIndex) lookup(s *models.Song) (string, bool) {
	if s.CategoryID == nil {
		return "", false
	}
	n, ok := idx[*s.CategoryID]
	return n, ok
}

// IsPublic keeps songs visitors may see.
func IsPublic(s *models.Song) bool {
	return s.Status == models.SongStatusPublic
}

// InCategory reports whether categoryName passes the category filter.
// An empty filter behaves like AllCategories.
func InCategory(categoryName, filter string) bool {
	if filter == "" || filter == AllCategories {
		return true
	}
	return categoryName == filter
}

// ContainsFold is the browse page text match: case-insensitive substring of the song
// name or of its category name.
func ContainsFold(songName, categoryName, search string) bool {
	if search == "" {
		return true
	}
	q := strings.ToLower(search)
	return strings.Contains(strings.ToLower(songName), q) ||
		strings.Contains(strings.ToLower(categoryName), q)
}

// HasPrefixFold is the admin list text match: case-insensitive prefix of the song name
// only. It differs from ContainsFold on purpose; both behaviours are relied upon.
func HasPrefixFold(songName, search string) bool {
	if search == "" {
		return true
	}
	return strings.HasPrefix(strings.ToLower(songName), strings.ToLower(search))
}
