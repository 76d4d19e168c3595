package scanner

import (
	"log"
	"path/filepath"
	"strings"
)

// EntryKind is the category the classifier assigns to one directory entry.
type EntryKind int

const (
	EntryIgnore EntryKind = iota
	EntryDir
	EntryMetadata
	EntryPoster
	EntryVideo
	EntryComic
)

// Extension sets per entry category.
var videoExtensions = map[string]bool{
	".m4v": true, ".avi": true, ".mpg": true, ".mp4": true,
	".mkv": true, ".f4v": true, ".wmv": true, ".rmvb": true,
}

var comicExtensions = map[string]bool{
	".cbr": true, ".cbz": true, ".cbt": true, ".cb7": true,
}

var posterExtensions = map[string]bool{
	".jpg": true, ".png": true,
}

// Classify assigns one filesystem entry to a category. Skip-list matching
// is a case-sensitive exact match against the bare entry name; matching a
// directory prunes its whole subtree because it is never enqueued.
func Classify(name string, isDir bool, skip map[string]bool) EntryKind {
	if strings.HasPrefix(name, ".") {
		return EntryIgnore
	}
	if skip[name] {
		return EntryIgnore
	}
	if isDir {
		return EntryDir
	}

	ext := strings.ToLower(filepath.Ext(name))
	if ext == "" {
		log.Printf("classify: file has no extension, skipping: %s", name)
		return EntryIgnore
	}

	switch {
	case ext == ".nfo":
		return EntryMetadata
	case posterExtensions[ext]:
		// Other image roles (fanart, banners) are unsupported; only
		// poster-named images are kept.
		if strings.Contains(name, "poster") {
			return EntryPoster
		}
		return EntryIgnore
	case videoExtensions[ext]:
		return EntryVideo
	case comicExtensions[ext]:
		return EntryComic
	default:
		return EntryIgnore
	}
}
