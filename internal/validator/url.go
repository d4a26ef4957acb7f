// Package validator recognises supported video URLs and extracts identifiers
// from them. It never touches the network.
package validator

import (
	"net/url"
	"strings"
)

// Supported hosts
const (
	HostYouTube       = "youtube.com"
	HostYouTubeWWW    = "www.youtube.com"
	HostYouTubeMobile = "m.youtube.com"
	HostYouTubeShort  = "youtu.be"
	HostYouTubeMusic  = "music.youtube.com"
)

// Query parameters
const (
	VideoParam    = "v"
	PlaylistParam = "list"
)

var allowedHosts = map[string]struct{}{
	HostYouTube:       {},
	HostYouTubeWWW:    {},
	HostYouTubeMobile: {},
	HostYouTubeShort:  {},
	HostYouTubeMusic:  {},
}

// Validate reports whether raw is an absolute URL on one of the supported hosts.
func Validate(raw string) bool {
	u, ok := parse(raw)
	if !ok {
		return false
	}
	_, allowed := allowedHosts[hostname(u)]
	return allowed
}

// ExtractID returns the video ID carried by raw: the first path segment for
// short links, the v query parameter for the regular hosts.
func ExtractID(raw string) (string, bool) {
	u, ok := parse(raw)
	if !ok {
		return "", false
	}

	switch hostname(u) {
	case HostYouTubeShort:
		segment, _, _ := strings.Cut(strings.TrimPrefix(u.Path, "/"), "/")
		if segment == "" {
			return "", false
		}
		return segment, true
	case HostYouTube, HostYouTubeWWW, HostYouTubeMobile:
		id := u.Query().Get(VideoParam)
		if id == "" {
			return "", false
		}
		return id, true
	default:
		return "", false
	}
}

// ExtractPlaylistID returns the list query parameter of a supported URL.
func ExtractPlaylistID(raw string) (string, bool) {
	if !Validate(raw) {
		return "", false
	}
	u, _ := parse(raw)
	id := u.Query().Get(PlaylistParam)
	if id == "" {
		return "", false
	}
	return id, true
}

func parse(raw string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || !u.IsAbs() || u.Host == "" {
		return nil, false
	}
	return u, true
}

// hostname returns the lowercased host without port
func hostname(u *url.URL) string {
	return strings.ToLower(u.Hostname())
}
