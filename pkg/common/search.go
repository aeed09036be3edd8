package common

import (
	"fmt"
	"net/url"
	"strings"
)

// DefaultSearchPrefix is the Lavalink search source used for plain queries
const DefaultSearchPrefix = "ytsearch:"

// IsURL checks whether the input should be loaded directly instead of searched
func IsURL(str string) bool {
	return strings.HasPrefix(str, "http://") || strings.HasPrefix(str, "https://") ||
		strings.HasPrefix(str, "www.") || IsYouTubeURL(str)
}

// IsYouTubeURL checks if a URL appears to be from YouTube
func IsYouTubeURL(urlStr string) bool {
	return strings.Contains(urlStr, "youtube.com") || strings.Contains(urlStr, "youtu.be")
}

// SearchIdentifier turns user input into a Lavalink load identifier
func SearchIdentifier(query string) string {
	query = strings.TrimSpace(query)
	if IsURL(query) {
		if strings.HasPrefix(query, "www.") {
			return "https://" + query
		}
		return query
	}
	return DefaultSearchPrefix + query
}

// ExtractYouTubeVideoID extracts the video ID from a YouTube URL
func ExtractYouTubeVideoID(youtubeURL string) string {
	parsedURL, err := url.Parse(youtubeURL)
	if err != nil {
		return ""
	}

	if strings.Contains(parsedURL.Host, "youtu.be") {
		return strings.TrimPrefix(parsedURL.Path, "/")
	}

	if strings.Contains(parsedURL.Host, "youtube.com") {
		if videoID := parsedURL.Query().Get("v"); videoID != "" {
			return videoID
		}
		if parts := strings.SplitN(parsedURL.Path, "/embed/", 2); len(parts) == 2 {
			return parts[1]
		}
	}

	return ""
}

// GetYouTubeThumbnailURL generates a thumbnail URL from a video ID
func GetYouTubeThumbnailURL(videoID string) string {
	if videoID == "" {
		return ""
	}
	return fmt.Sprintf("https://img.youtube.com/vi/%s/hqdefault.jpg", videoID)
}

// Thumbnail returns the artwork for a track, falling back to the YouTube
// thumbnail derived from its URI
func (t Track) Thumbnail() string {
	if t.ArtworkURL != "" {
		return t.ArtworkURL
	}
	if IsYouTubeURL(t.URI) {
		return GetYouTubeThumbnailURL(ExtractYouTubeVideoID(t.URI))
	}
	return ""
}
