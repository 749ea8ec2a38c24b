package models

import "time"

type SongStatus string

const (
	SongStatusPublic  SongStatus = "public"
	SongStatusPrivate SongStatus = "private"
)

// Valid reports whether s is one of the known statuses.
func (s SongStatus) Valid() bool {
	return s == SongStatusPublic || s == SongStatusPrivate
}

// Song is a library entry pointing at a source video, owned by at most one category.
// Deleting the category removes the song (FK cascade, also enforced by CategoryService).
type Song struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	SongName   string     `gorm:"size:255;not null" json:"song_name"`
	Lyric      string     `gorm:"type:text" json:"lyric"`
	URL        string     `gorm:"size:2048;not null" json:"url"`
	CoverPhoto string     `gorm:"size:1024" json:"cover_photo"`
	Status     SongStatus `gorm:"size:16;not null;default:'public';index" json:"status"`
	CategoryID *uint      `gorm:"index" json:"category_id"`

	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	Category *Category `gorm:"foreignKey:CategoryID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE" json:"category,omitempty"`
}

// IsPublic reports whether visitors may see the song.
func (s *Song) IsPublic() bool {
	return s.Status == SongStatusPublic
}
