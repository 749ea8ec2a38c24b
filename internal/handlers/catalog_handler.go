package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/pkg/browse"
	"github.com/songhub/backend/internal/pkg/embed"
	"github.com/songhub/backend/internal/services"
)

const (
	msgSongNotFound     = "Song not found."
	msgCategoryNotFound = "Category not found."
	msgLoadFailed       = "Failed to load songs."
)

type CatalogHandler struct {
	catalog *services.CatalogService
	sheets  *services.LyricsSheetService
}

func NewCatalogHandler(catalog *services.CatalogService, sheets *services.LyricsSheetService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog, sheets: sheets}
}

// Catalog returns the public snapshot
// GET /catalog
func (h *CatalogHandler) Catalog(c *gin.Context) {
	h.snapshot(c, true)
}

// AdminSongs returns every song of every status
// GET /admin/songs
func (h *CatalogHandler) AdminSongs(c *gin.Context) {
	h.snapshot(c, false)
}

func (h *CatalogHandler) snapshot(c *gin.Context, publicOnly bool) {
	snap, err := h.catalog.Snapshot(c.Request.Context(), publicOnly)
	if err != nil {
		respondServiceError(c, err, msgLoadFailed, msgLoadFailed)
		return
	}
	respondSuccess(c, http.StatusOK, "", snap)
}

// Browse returns the grouped visitor view
// GET /browse?search=&category=
func (h *CatalogHandler) Browse(c *gin.Context) {
	var st browse.BrowseState
	if err := c.ShouldBindQuery(&st); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid filter.", nil)
		return
	}

	snap, err := h.catalog.Snapshot(c.Request.Context(), true)
	if err != nil {
		respondServiceError(c, err, msgLoadFailed, msgLoadFailed)
		return
	}
	respondSuccess(c, http.StatusOK, "", browse.Browse(snap, st))
}

// AdminView returns one page of the admin list
// GET /admin/songs/view?search=&category=&sort=asc|desc&page=
func (h *CatalogHandler) AdminView(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil {
		page = 1
	}
	st := browse.NewAdminState().
		WithSearch(c.Query("search")).
		WithCategory(c.Query("category"))
	st.Sort = browse.ParseSortOrder(c.Query("sort"))
	st.Page = page

	snap, err := h.catalog.Snapshot(c.Request.Context(), false)
	if err != nil {
		respondServiceError(c, err, msgLoadFailed, msgLoadFailed)
		return
	}
	respondSuccess(c, http.StatusOK, "", browse.Admin(snap, st))
}

// SongsByCategory lists the public songs of one category
// GET /categories/:id/songs
func (h *CatalogHandler) SongsByCategory(c *gin.Context) {
	id, ok := paramID(c, msgCategoryNotFound)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	songs, err := h.catalog.ListSongsByCategory(ctx, id, services.SongQuery{WithCategory: true, PublicOnly: true})
	if err != nil {
		respondServiceError(c, err, msgCategoryNotFound, msgLoadFailed)
		return
	}
	categories, err := h.catalog.ListCategories(ctx)
	if err != nil {
		respondServiceError(c, err, msgLoadFailed, msgLoadFailed)
		return
	}
	respondSuccess(c, http.StatusOK, "", browse.Catalog{Songs: songs, Categories: categories})
}

// ListCategories returns all categories
// GET /admin/categories
func (h *CatalogHandler) ListCategories(c *gin.Context) {
	categories, err := h.catalog.ListCategories(c.Request.Context())
	if err != nil {
		respondServiceError(c, err, msgLoadFailed, "Failed to load categories.")
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{"categories": categories})
}

// GetSong returns a public song with its embed reference
// GET /songs/:id
func (h *CatalogHandler) GetSong(c *gin.Context) {
	h.song(c, true)
}

// AdminGetSong returns a song of any status
// GET /admin/songs/:id
func (h *CatalogHandler) AdminGetSong(c *gin.Context) {
	h.song(c, false)
}

func (h *CatalogHandler) song(c *gin.Context, publicOnly bool) {
	id, ok := paramID(c, msgSongNotFound)
	if !ok {
		return
	}
	song, err := h.catalog.GetSong(c.Request.Context(), id, services.SongQuery{WithCategory: true, PublicOnly: publicOnly})
	if err != nil {
		respondServiceError(c, err, msgSongNotFound, msgLoadFailed)
		return
	}
	respondSuccess(c, http.StatusOK, "", gin.H{
		"song":  song,
		"embed": embed.Resolve(song.URL),
	})
}

// LyricsSheet renders a printable PDF of a public song
// GET /songs/:id/lyrics.pdf
func (h *CatalogHandler) LyricsSheet(c *gin.Context) {
	id, ok := paramID(c, msgSongNotFound)
	if !ok {
		return
	}
	song, err := h.catalog.GetSong(c.Request.Context(), id, services.SongQuery{WithCategory: true, PublicOnly: true})
	if err != nil {
		respondServiceError(c, err, msgSongNotFound, msgLoadFailed)
		return
	}

	categoryName := browse.Uncategorized
	if song.Category != nil {
		categoryName = song.Category.CategoryName
	}
	pdf, err := h.sheets.Render(song, categoryName)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "Failed to render lyrics sheet.", nil)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=\"song-%d-lyrics.pdf\"", song.ID))
	c.Data(http.StatusOK, "application/pdf", pdf)
}
