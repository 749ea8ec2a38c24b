package browse

import "github.com/songhub/backend/internal/models"

// GroupLimit caps how many songs a category group shows on the browse page.
const GroupLimit = 5

// BrowseState is the visitor page filter state.
type BrowseState struct {
	Search   string `form:"search" json:"search"`
	Category string `form:"category" json:"category"`
}

// Normalize maps an empty category to AllCategories. The search text is used verbatim.
func (s BrowseState) Normalize() BrowseState {
	if s.Category == "" {
		s.Category = AllCategories
	}
	return s
}

// Grouped partitions songs by category name. Keys keeps category list order first,
// then any extra buckets (Uncategorized) in order of first appearance.
type Grouped struct {
	Keys  []string
	Songs map[string][]models.Song
}

// Group partitions songs by resolved category name. Every category in the list is a
// key, even with no songs; duplicate names share one key.
func Group(songs []models.Song, categories []models.Category) Grouped {
	idx := newCategoryIndex(categories)
	g := Grouped{Songs: make(map[string][]models.Song, len(categories)+1)}

	for _, c := range categories {
		g.add(c.CategoryName)
	}
	for i := range songs {
		name := idx.name(&songs[i])
		g.add(name)
		g.Songs[name] = append(g.Songs[name], songs[i])
	}
	return g
}

func (g *Grouped) add(key string) {
	if _, ok := g.Songs[key]; ok {
		return
	}
	g.Keys = append(g.Keys, key)
	g.Songs[key] = []models.Song{}
}

// CategoryGroup is one rendered section of the browse page.
type CategoryGroup struct {
	Category   string        `json:"category"`
	CategoryID *uint         `json:"category_id"`
	Songs      []models.Song `json:"songs"`
	Total      int           `json:"total"`
}

// BrowseView is the visitor page view model.
type BrowseView struct {
	State   BrowseState     `json:"state"`
	Options []string        `json:"options"`
	Groups  []CategoryGroup `json:"groups"`
	Matched int             `json:"matched"`
}

// Filter runs the visibility, category and text steps of the browse pipeline.
func Filter(c Catalog, st BrowseState) []models.Song {
	st = st.Normalize()
	idx := newCategoryIndex(c.Categories)

	out := make([]models.Song, 0, len(c.Songs))
	for i := range c.Songs {
		s := &c.Songs[i]
		if !IsPublic(s) {
			continue
		}
		listed, ok := idx.lookup(s)
		name := Uncategorized
		if ok {
			name = listed
		}
		if !InCategory(name, st.Category) {
			continue
		}
		// the Uncategorized label is not a real category name and never matches a search
		if !ContainsFold(s.SongName, listed, st.Search) {
			continue
		}
		out = append(out, *s)
	}
	return out
}

// Browse derives the visitor page: public songs, filtered, grouped by category, empty
// groups skipped, each group capped at GroupLimit.
func Browse(c Catalog, st BrowseState) BrowseView {
	st = st.Normalize()
	filtered := Filter(c, st)
	grouped := Group(filtered, c.Categories)

	view := BrowseView{
		State:   st,
		Options: categoryOptions(c.Categories),
		Groups:  []CategoryGroup{},
		Matched: len(filtered),
	}
	for _, key := range grouped.Keys {
		songs := grouped.Songs[key]
		if len(songs) == 0 {
			continue
		}
		shown := songs
		if len(shown) > GroupLimit {
			shown = shown[:GroupLimit]
		}
		view.Groups = append(view.Groups, CategoryGroup{
			Category:   key,
			CategoryID: firstCategoryID(songs, key),
			Songs:      shown,
			Total:      len(songs),
		})
	}
	return view
}

// categoryOptions lists the filter choices: AllCategories then each distinct name.
func categoryOptions(categories []models.Category) []string {
	seen := make(map[string]bool, len(categories))
	out := []string{AllCategories}
	for _, c := range categories {
		if seen[c.CategoryName] {
			continue
		}
		seen[c.CategoryName] = true
		out = append(out, c.CategoryName)
	}
	return out
}

func firstCategoryID(songs []models.Song, key string) *uint {
	if key == Uncategorized || len(songs) == 0 {
		return nil
	}
	return songs[0].CategoryID
}
