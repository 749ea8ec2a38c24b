package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/songhub/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSongServiceCreate(t *testing.T) {
	ctx := context.Background()

	t.Run("valid song with cover", func(t *testing.T) {
		f := newFixture(t)
		cat := f.category(t, "Worship")

		song, err := f.songs.Create(ctx, SongInput{
			SongName:   "  Amazing Grace ",
			Lyric:      "Amazing grace, how sweet the sound",
			URL:        "https://www.youtube.com/watch?v=ABC123",
			Status:     "public",
			CategoryID: &cat.ID,
			Cover:      &Upload{Filename: "cover.png", Data: pngBytes(t, 20, 20)},
		})
		require.NoError(t, err)
		assert.NotZero(t, song.ID)
		assert.Equal(t, "Amazing Grace", song.SongName)
		assert.True(t, strings.HasPrefix(song.CoverPhoto, "mem://covers/"))
		assert.True(t, strings.HasSuffix(song.CoverPhoto, ".png"))
		assert.Equal(t, 1, f.store.len())
		assert.False(t, song.CreatedAt.IsZero())
	})

	t.Run("category is optional", func(t *testing.T) {
		f := newFixture(t)
		song := f.song(t, "Loose", nil, models.SongStatusPrivate)
		assert.Nil(t, song.CategoryID)
		assert.Equal(t, models.SongStatusPrivate, song.Status)
	})

	t.Run("validation rejects before persistence", func(t *testing.T) {
		f := newFixture(t)
		missing := uint(42)

		_, err := f.songs.Create(ctx, SongInput{
			SongName:   strings.Repeat("x", 256),
			URL:        "not a url",
			Status:     "draft",
			CategoryID: &missing,
			Cover:      &Upload{Filename: "cover.png", Data: pngBytes(t, 4, 4)},
		})
		fields := validationFields(t, err)
		assert.Contains(t, fields, "song_name")
		assert.Contains(t, fields, "url")
		assert.Contains(t, fields, "status")
		assert.Equal(t, "The selected category is invalid.", fields["category_id"])

		var count int64
		require.NoError(t, f.db.Model(&models.Song{}).Count(&count).Error)
		assert.Zero(t, count)
		assert.Zero(t, f.store.len(), "cover must not be stored for a rejected form")
	})

	t.Run("name at the limit is accepted", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.songs.Create(ctx, SongInput{SongName: strings.Repeat("x", 255), URL: "https://a.example", Status: "public"})
		assert.NoError(t, err)
	})

	t.Run("missing fields", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.songs.Create(ctx, SongInput{})
		fields := validationFields(t, err)
		assert.Equal(t, "This field is required.", fields["song_name"])
		assert.Equal(t, "This field is required.", fields["url"])
		assert.Equal(t, "This field is required.", fields["status"])
	})

	t.Run("bad cover is a field error", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.songs.Create(ctx, SongInput{
			SongName: "Song", URL: "https://a.example", Status: "public",
			Cover: &Upload{Filename: "notes.txt", Data: []byte("just some text")},
		})
		fields := validationFields(t, err)
		assert.Contains(t, fields, "cover_photo")
	})

	t.Run("store failure removes the uploaded cover", func(t *testing.T) {
		f := newFixture(t)
		closeDB(t, f.db)

		_, err := f.songs.Create(ctx, SongInput{
			SongName: "Song", URL: "https://a.example", Status: "public",
			Cover: &Upload{Filename: "c.png", Data: pngBytes(t, 4, 4)},
		})
		var pe *PersistenceError
		require.ErrorAs(t, err, &pe)
		assert.Equal(t, "song", pe.Entity)
		assert.Equal(t, "create", pe.Op)
		assert.Zero(t, f.store.len())
	})
}

func TestSongServiceUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("keeps cover when none given", func(t *testing.T) {
		f := newFixture(t)
		song, err := f.songs.Create(ctx, SongInput{
			SongName: "Old", URL: "https://a.example", Status: "public",
			Cover: &Upload{Filename: "c.png", Data: pngBytes(t, 4, 4)},
		})
		require.NoError(t, err)

		updated, err := f.songs.Update(ctx, song.ID, SongInput{SongName: "New", URL: "https://b.example", Status: "private"})
		require.NoError(t, err)
		assert.Equal(t, song.CoverPhoto, updated.CoverPhoto)

		var got models.Song
		require.NoError(t, f.db.First(&got, song.ID).Error)
		assert.Equal(t, "New", got.SongName)
		assert.Equal(t, models.SongStatusPrivate, got.Status)
		assert.Equal(t, song.CoverPhoto, got.CoverPhoto)
	})

	t.Run("replacing the cover removes the old one", func(t *testing.T) {
		f := newFixture(t)
		song, err := f.songs.Create(ctx, SongInput{
			SongName: "Song", URL: "https://a.example", Status: "public",
			Cover: &Upload{Filename: "c.png", Data: pngBytes(t, 4, 4)},
		})
		require.NoError(t, err)

		updated, err := f.songs.Update(ctx, song.ID, SongInput{
			SongName: "Song", URL: "https://a.example", Status: "public",
			Cover: &Upload{Filename: "d.png", Data: pngBytes(t, 8, 8)},
		})
		require.NoError(t, err)
		assert.NotEqual(t, song.CoverPhoto, updated.CoverPhoto)
		assert.Equal(t, []string{song.CoverPhoto}, f.store.deleted)
		assert.Equal(t, 1, f.store.len())
	})

	t.Run("cover cleanup failure does not fail the update", func(t *testing.T) {
		f := newFixture(t)
		song, err := f.songs.Create(ctx, SongInput{
			SongName: "Song", URL: "https://a.example", Status: "public",
			Cover: &Upload{Filename: "c.png", Data: pngBytes(t, 4, 4)},
		})
		require.NoError(t, err)
		f.store.delErr = errors.New("bucket gone")

		_, err = f.songs.Update(ctx, song.ID, SongInput{
			SongName: "Song", URL: "https://a.example", Status: "public",
			Cover: &Upload{Filename: "d.png", Data: pngBytes(t, 4, 4)},
		})
		assert.NoError(t, err)
	})

	t.Run("can clear the category", func(t *testing.T) {
		f := newFixture(t)
		cat := f.category(t, "Worship")
		song := f.song(t, "Song", &cat.ID, models.SongStatusPublic)

		_, err := f.songs.Update(ctx, song.ID, SongInput{SongName: "Song", URL: song.URL, Status: "public"})
		require.NoError(t, err)

		var got models.Song
		require.NoError(t, f.db.First(&got, song.ID).Error)
		assert.Nil(t, got.CategoryID)
	})

	t.Run("unknown song", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.songs.Update(ctx, 7, SongInput{SongName: "x", URL: "https://a.example", Status: "public"})
		assert.ErrorIs(t, err, ErrNotFound)
	})

	t.Run("unknown category", func(t *testing.T) {
		f := newFixture(t)
		song := f.song(t, "Song", nil, models.SongStatusPublic)
		missing := uint(9)
		_, err := f.songs.Update(ctx, song.ID, SongInput{SongName: "x", URL: "https://a.example", Status: "public", CategoryID: &missing})
		assert.Contains(t, validationFields(t, err), "category_id")
	})
}

func TestSongServiceDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	song, err := f.songs.Create(ctx, SongInput{
		SongName: "Song", URL: "https://a.example", Status: "public",
		Cover: &Upload{Filename: "c.png", Data: pngBytes(t, 4, 4)},
	})
	require.NoError(t, err)

	require.NoError(t, f.songs.Delete(ctx, song.ID))
	assert.Zero(t, f.store.len())

	err = f.songs.Delete(ctx, song.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
