package services

import (
	"bytes"
	"fmt"

	"github.com/jung-kurt/gofpdf"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/songhub/backend/internal/models"
	"github.com/songhub/backend/internal/pkg/embed"
)

// LyricsSheetService renders printable lyric sheets.
type LyricsSheetService struct{}

func NewLyricsSheetService() *LyricsSheetService { return &LyricsSheetService{} }

// Render builds an A4 PDF with title, category, lyrics and a QR code to the song video.
func (s *LyricsSheetService) Render(song *models.Song, categoryName string) ([]byte, error) {
	link := song.URL
	if ref := embed.Resolve(song.URL); ref.Embedded {
		link = "https://youtu.be/" + ref.VideoID
	}

	png, err := qrcode.Encode(link, qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(song.SongName), false)
	pdf.AddPage()

	// QR in the top right corner, 35mm square
	opt := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: true}
	pdf.RegisterImageOptionsReader("qr", opt, bytes.NewReader(png))
	pdf.ImageOptions("qr", 210.0-10.0-35.0, 10, 35, 35, false, opt, 0, link)

	pdf.SetFont("Arial", "B", 18)
	pdf.MultiCell(150, 9, tr(song.SongName), "", "L", false)
	if categoryName != "" {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(150, 6, tr(categoryName))
		pdf.Ln(6)
	}
	pdf.SetY(50)

	pdf.SetFont("Arial", "", 12)
	lyric := song.Lyric
	if lyric == "" {
		lyric = "No lyrics available."
	}
	pdf.MultiCell(0, 6, tr(lyric), "", "L", false)

	var out bytes.Buffer
	if err := pdf.Output(&out); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}
