package browse

import (
	"fmt"
	"math/rand"
	"testing"

	"github.com/songhub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rowNames(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.SongName
	}
	return out
}

func numbered(n int) Catalog {
	c := Catalog{Categories: []models.Category{{ID: 1, CategoryName: "Worship"}}}
	for i := 1; i <= n; i++ {
		c.Songs = append(c.Songs, song(uint(i), fmt.Sprintf("Song %02d", i), idp(1), models.SongStatusPublic, i))
	}
	return c
}

func TestParseSortOrder(t *testing.T) {
	assert.Equal(t, SortAsc, ParseSortOrder("asc"))
	assert.Equal(t, SortAsc, ParseSortOrder(" ASC "))
	assert.Equal(t, SortDesc, ParseSortOrder("desc"))
	assert.Equal(t, SortDesc, ParseSortOrder(""))
	assert.Equal(t, SortDesc, ParseSortOrder("sideways"))
	assert.Equal(t, SortAsc, SortDesc.Toggle())
	assert.Equal(t, SortDesc, SortAsc.Toggle())
}

func TestAdminStateTransitions(t *testing.T) {
	st := NewAdminState()
	assert.Equal(t, AdminState{Category: AllCategories, Sort: SortDesc, Page: 1}, st)

	t.Run("search change resets page", func(t *testing.T) {
		s := st
		s.Page = 3
		assert.Equal(t, 1, s.WithSearch("am").Page)
		assert.Equal(t, 3, s.WithSearch("").Page, "unchanged search keeps the page")
	})

	t.Run("category change resets page", func(t *testing.T) {
		s := st
		s.Page = 2
		assert.Equal(t, 1, s.WithCategory("Worship").Page)
		assert.Equal(t, 2, s.WithCategory("").Page, "empty means All")
	})

	t.Run("toggle twice restores order", func(t *testing.T) {
		assert.Equal(t, SortAsc, st.ToggleSort().Sort)
		assert.Equal(t, st.Sort, st.ToggleSort().ToggleSort().Sort)
	})

	t.Run("next and prev clamp", func(t *testing.T) {
		assert.Equal(t, 2, st.Next(3).Page)
		assert.Equal(t, 1, st.Next(1).Page)
		assert.Equal(t, 1, st.Next(0).Page)
		assert.Equal(t, 1, st.Prev(3).Page)
		s := st
		s.Page = 3
		assert.Equal(t, 2, s.Prev(3).Page)
	})

	t.Run("transitions do not mutate the receiver", func(t *testing.T) {
		s := NewAdminState()
		s.WithSearch("x").WithCategory("Worship").ToggleSort().Next(9)
		assert.Equal(t, NewAdminState(), s)
	})
}

func TestTotalPages(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 4: 1, 5: 1, 6: 2, 10: 2, 11: 3, 23: 5}
	for n, want := range cases {
		assert.Equal(t, want, TotalPages(n, PageSize), "n=%d", n)
	}
	assert.Zero(t, TotalPages(3, 0))
}

func TestAdmin(t *testing.T) {
	t.Run("includes private songs", func(t *testing.T) {
		v := Admin(fixture(), NewAdminState())
		assert.Equal(t, 6, v.Total)
		assert.Contains(t, rowNames(v.Rows), "Secret Demo")
	})

	t.Run("newest first by default", func(t *testing.T) {
		v := Admin(fixture(), NewAdminState())
		assert.Equal(t, []string{"Ghost Category", "Loose Track", "Secret Demo", "Shout to the Lord", "How Great Thou Art"}, rowNames(v.Rows))
	})

	t.Run("ascending", func(t *testing.T) {
		v := Admin(fixture(), NewAdminState().ToggleSort())
		assert.Equal(t, "Amazing Grace", v.Rows[0].SongName)
	})

	t.Run("resolves category labels", func(t *testing.T) {
		v := Admin(fixture(), NewAdminState())
		labels := map[string]string{}
		for _, r := range v.Rows {
			labels[r.SongName] = r.CategoryName
		}
		assert.Equal(t, Uncategorized, labels["Ghost Category"])
		assert.Equal(t, Uncategorized, labels["Loose Track"])
		assert.Equal(t, "Praise", labels["Secret Demo"])
	})

	t.Run("prefix match only on song name", func(t *testing.T) {
		v := Admin(fixture(), NewAdminState().WithSearch("ama"))
		assert.Equal(t, []string{"Amazing Grace"}, rowNames(v.Rows))

		v = Admin(fixture(), NewAdminState().WithSearch("grace"))
		assert.Empty(t, v.Rows)

		v = Admin(fixture(), NewAdminState().WithSearch("worship"))
		assert.Empty(t, v.Rows, "category names are not searched")
	})

	t.Run("category filter", func(t *testing.T) {
		v := Admin(fixture(), NewAdminState().WithCategory(Uncategorized))
		assert.ElementsMatch(t, []string{"Loose Track", "Ghost Category"}, rowNames(v.Rows))
	})

	t.Run("pagination", func(t *testing.T) {
		c := numbered(12)
		st := NewAdminState().ToggleSort()

		v := Admin(c, st)
		assert.Equal(t, 3, v.TotalPages)
		assert.Equal(t, []string{"Song 01", "Song 02", "Song 03", "Song 04", "Song 05"}, rowNames(v.Rows))
		assert.False(t, v.HasPrev)
		assert.True(t, v.HasNext)

		st = st.Next(v.TotalPages).Next(v.TotalPages)
		v = Admin(c, st)
		assert.Equal(t, 3, v.State.Page)
		assert.Equal(t, []string{"Song 11", "Song 12"}, rowNames(v.Rows))
		assert.True(t, v.HasPrev)
		assert.False(t, v.HasNext)

		assert.Equal(t, 3, st.Next(v.TotalPages).Page)
	})

	t.Run("page beyond the end is clamped", func(t *testing.T) {
		st := NewAdminState()
		st.Page = 40
		v := Admin(numbered(7), st)
		assert.Equal(t, 2, v.State.Page)
		assert.Len(t, v.Rows, 2)
	})

	t.Run("no matches", func(t *testing.T) {
		v := Admin(fixture(), NewAdminState().WithSearch("zzz"))
		assert.Empty(t, v.Rows)
		assert.Zero(t, v.Total)
		assert.Zero(t, v.TotalPages)
		assert.Equal(t, 1, v.State.Page)
		assert.False(t, v.HasPrev)
		assert.False(t, v.HasNext)

		st := NewAdminState().WithSearch("zzz")
		st.Page = 3
		assert.Equal(t, 1, Admin(fixture(), st).State.Page)
	})

	t.Run("equal timestamps keep input order", func(t *testing.T) {
		c := Catalog{Songs: []models.Song{
			song(1, "first", nil, models.SongStatusPublic, 0),
			song(2, "second", nil, models.SongStatusPublic, 0),
			song(3, "third", nil, models.SongStatusPublic, 0),
		}}
		assert.Equal(t, []string{"first", "second", "third"}, rowNames(Admin(c, NewAdminState()).Rows))
		assert.Equal(t, []string{"first", "second", "third"}, rowNames(Admin(c, NewAdminState().ToggleSort()).Rows))
	})

	t.Run("does not reorder input", func(t *testing.T) {
		c := fixture()
		before := names(c.Songs)
		Admin(c, NewAdminState())
		assert.Equal(t, before, names(c.Songs))
	})
}

func TestAdminProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	searches := []string{"", "a", "B", "ab", "zz"}

	for iter := 0; iter < 200; iter++ {
		c := randomCatalog(r)
		st := NewAdminState().WithSearch(searches[r.Intn(len(searches))])
		if r.Intn(2) == 0 {
			st = st.ToggleSort()
		}
		st.Page = r.Intn(8)

		v := Admin(c, st)
		require.Equal(t, v, Admin(c, st), "admin must be idempotent")
		require.Equal(t, TotalPages(v.Total, PageSize), v.TotalPages)
		require.LessOrEqual(t, len(v.Rows), PageSize)
		require.GreaterOrEqual(t, v.State.Page, 1)

		if v.TotalPages == 0 {
			require.False(t, v.HasNext)
			require.Empty(t, v.Rows)
		} else {
			require.LessOrEqual(t, v.State.Page, v.TotalPages)
			require.Equal(t, v.State.Page < v.TotalPages, v.HasNext)
			require.NotEmpty(t, v.Rows)
		}

		for i := 1; i < len(v.Rows); i++ {
			a, b := v.Rows[i-1].CreatedAt, v.Rows[i].CreatedAt
			if v.State.Sort == SortAsc {
				require.False(t, b.Before(a))
			} else {
				require.False(t, a.Before(b))
			}
		}

		// walking every page visits each match exactly once
		seen := 0
		walk := v.State
		walk.Page = 1
		for p := 1; p <= v.TotalPages; p++ {
			seen += len(Admin(c, walk).Rows)
			walk = walk.Next(v.TotalPages)
		}
		require.Equal(t, v.Total, seen)
	}
}
