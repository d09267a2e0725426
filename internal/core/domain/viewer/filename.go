package viewer

import (
	"path/filepath"
	"strings"
	"time"
)

const downloadTimestampLayout = "20060102_150405"

// DownloadFilename builds "<title>_<YYYYMMDD_HHMMSS><ext>" so repeated downloads do not collide.
// The extension is taken from the source, falling back to .png.
func DownloadFilename(title, source string, now time.Time) string {
	ext := strings.ToLower(filepath.Ext(source))
	if ext == "" {
		ext = ".png"
	}

	return sanitizeTitle(title) + "_" + now.Format(downloadTimestampLayout) + ext
}

func sanitizeTitle(title string) string {
	title = strings.TrimSpace(title)
	if title == "" {
		return "image"
	}

	return strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|':
			return '_'
		}
		if r < 0x20 {
			return -1
		}
		return r
	}, title)
}
