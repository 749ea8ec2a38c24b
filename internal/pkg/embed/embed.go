// Package embed turns a song's source video URL into something a player frame can load.
//
// Resolution is best effort: anything that is not a recognised video link comes back
// unchanged, and nothing here returns an error.
package embed

import (
	"net/url"
	"regexp"
	"strings"
)

// CanonicalBase is the embeddable player prefix; the video id is appended to it.
const CanonicalBase = "https://www.youtube.com/embed/"

var videoIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

var longFormHosts = map[string]bool{
	"youtube.com":       true,
	"www.youtube.com":   true,
	"m.youtube.com":     true,
	"music.youtube.com": true,
}

var shortLinkHosts = map[string]bool{
	"youtu.be":     true,
	"www.youtu.be": true,
}

// Reference is the outcome of resolving a source URL.
type Reference struct {
	Source   string `json:"source"`
	URL      string `json:"url"`
	VideoID  string `json:"video_id,omitempty"`
	Embedded bool   `json:"embedded"`
}

// Resolve returns the canonical embed reference for raw, or raw itself when no video id
// can be extracted.
func Resolve(raw string) Reference {
	ref := Reference{Source: raw, URL: raw}

	id := VideoID(raw)
	if id == "" {
		return ref
	}
	ref.VideoID = id
	ref.URL = CanonicalBase + id
	ref.Embedded = true
	return ref
}

// URL is shorthand for Resolve(raw).URL.
func URL(raw string) string {
	return Resolve(raw).URL
}

// VideoID extracts the video identifier from raw, or "" when there is none.
func VideoID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Host == "" {
		return ""
	}

	host := strings.ToLower(u.Hostname())
	var id string
	switch {
	case longFormHosts[host]:
		id = u.Query().Get("v")
		if id == "" {
			id = segmentAfter(u.Path, "embed")
		}
	case shortLinkHosts[host]:
		id = firstSegment(u.Path)
	}

	if !videoIDPattern.MatchString(id) {
		return ""
	}
	return id
}

func firstSegment(path string) string {
	for _, seg := range strings.Split(path, "/") {
		if seg != "" {
			return seg
		}
	}
	return ""
}

// segmentAfter returns the path segment following marker, e.g. "/embed/<id>".
func segmentAfter(path, marker string) string {
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for i := 0; i+1 < len(segs); i++ {
		if segs[i] == marker {
			return segs[i+1]
		}
	}
	return ""
}
