package handlers

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/songhub/backend/internal/services"
)

type SongHandler struct {
	songs         *services.SongService
	audit         *services.AuditService
	maxCoverBytes int64
}

func NewSongHandler(songs *services.SongService, audit *services.AuditService, maxCoverBytes int64) *SongHandler {
	return &SongHandler{songs: songs, audit: audit, maxCoverBytes: maxCoverBytes}
}

// CreateSong handles song creation
// POST /admin/songs
// Multipart form: song_name, lyric, url, status, category_id, cover_photo (file)
func (h *SongHandler) CreateSong(c *gin.Context) {
	in, fields := h.bindSongForm(c)
	if fields != nil {
		respondError(c, http.StatusUnprocessableEntity, "The given data was invalid.", fields)
		return
	}

	song, err := h.songs.Create(c.Request.Context(), in)
	if err != nil {
		respondServiceError(c, err, msgCategoryNotFound, "Failed to add song.")
		return
	}
	recordAudit(c, h.audit, services.ActionCreateSong, "song", song.ID, map[string]interface{}{
		"song_name": song.SongName,
		"status":    song.Status,
	})
	respondSuccess(c, http.StatusCreated, "Song added successfully.", gin.H{"song": song})
}

// UpdateSong handles song edits; omitting cover_photo keeps the current cover
// PUT /admin/songs/:id (or POST with _method=PUT)
func (h *SongHandler) UpdateSong(c *gin.Context) {
	id, ok := paramID(c, msgSongNotFound)
	if !ok {
		return
	}
	in, fields := h.bindSongForm(c)
	if fields != nil {
		respondError(c, http.StatusUnprocessableEntity, "The given data was invalid.", fields)
		return
	}

	song, err := h.songs.Update(c.Request.Context(), id, in)
	if err != nil {
		respondServiceError(c, err, msgSongNotFound, "Failed to update song.")
		return
	}
	recordAudit(c, h.audit, services.ActionUpdateSong, "song", song.ID, map[string]interface{}{
		"song_name":     song.SongName,
		"status":        song.Status,
		"cover_changed": in.Cover != nil,
	})
	respondSuccess(c, http.StatusOK, "Song updated successfully.", gin.H{"song": song})
}

// DeleteSong handles song deletion
// DELETE /admin/songs/:id
func (h *SongHandler) DeleteSong(c *gin.Context) {
	id, ok := paramID(c, msgSongNotFound)
	if !ok {
		return
	}
	if err := h.songs.Delete(c.Request.Context(), id); err != nil {
		respondServiceError(c, err, msgSongNotFound, "Failed to delete song.")
		return
	}
	recordAudit(c, h.audit, services.ActionDeleteSong, "song", id, nil)
	respondSuccess(c, http.StatusOK, "Song deleted successfully.", nil)
}

// bindSongForm reads a JSON body or a (multipart) form. Only transport level problems
// are reported here; field rules belong to the service.
func (h *SongHandler) bindSongForm(c *gin.Context) (services.SongInput, map[string]string) {
	var in services.SongInput

	if c.ContentType() == gin.MIMEJSON {
		if err := c.ShouldBindJSON(&in); err != nil {
			return in, map[string]string{"_": "Malformed JSON body."}
		}
		return in, nil
	}

	in.SongName = c.PostForm("song_name")
	in.Lyric = c.PostForm("lyric")
	in.URL = c.PostForm("url")
	in.Status = c.PostForm("status")

	if raw := strings.TrimSpace(c.PostForm("category_id")); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return in, map[string]string{"category_id": "The selected category is invalid."}
		}
		cid := uint(id)
		in.CategoryID = &cid
	}

	fh, err := c.FormFile("cover_photo")
	switch {
	case errors.Is(err, http.ErrMissingFile), errors.Is(err, http.ErrNotMultipart):
		return in, nil
	case err != nil:
		return in, map[string]string{"cover_photo": "The cover photo failed to upload."}
	}

	f, err := fh.Open()
	if err != nil {
		return in, map[string]string{"cover_photo": "The cover photo failed to upload."}
	}
	defer f.Close()

	// one byte over the ceiling is enough for the service to reject it
	data, err := io.ReadAll(io.LimitReader(f, h.maxCoverBytes+1))
	if err != nil {
		return in, map[string]string{"cover_photo": "The cover photo failed to upload."}
	}
	in.Cover = &services.Upload{Filename: fh.Filename, Data: data}
	return in, nil
}
