package scanner

import (
	"log"
	"path/filepath"

	"github.com/mediadb/mediadb/internal/models"
)

// Aggregate folds parsed media into emission-ready items plus the
// deduplicated poster set consumed by the image materializer. Emission
// order follows the (already sorted) major media order, so successive
// scans of an unchanged tree produce identical output.
func Aggregate(major []Media, secondary []*Episode) ([]models.MediaItem, map[string]struct{}) {
	posters := make(map[string]struct{})
	for _, m := range major {
		switch m := m.(type) {
		case *Movie:
			collectPosters(posters, m.Path, m.Posters)
		case *TVShow:
			collectPosters(posters, m.Path, m.Posters)
		}
	}

	// Episodes group under their show directory: the parent of the
	// directory holding the episode document.
	seasons := make(map[string]map[string][]*Episode)
	for _, e := range secondary {
		show := filepath.Dir(e.Path)
		bySeason, ok := seasons[show]
		if !ok {
			bySeason = make(map[string][]*Episode)
			seasons[show] = bySeason
		}
		bySeason[e.Season] = append(bySeason[e.Season], e)
	}

	// Two documents in one directory resolve to the same path; the
	// store keys media by path, so emit the first and drop the rest.
	// A collision loses one record, never the scan.
	seen := make(map[string]bool, len(major))

	var items []models.MediaItem
	for _, m := range major {
		if seen[m.RelPath()] {
			log.Printf("aggregate: duplicate media path %q, keeping first record", m.RelPath())
			continue
		}
		seen[m.RelPath()] = true
		switch m := m.(type) {
		case *Movie:
			items = append(items, m.Item())
		case *TVShow:
			if item, ok := m.Item(seasons[m.Path]); ok {
				items = append(items, item)
			}
		case *Comic:
			items = append(items, m.Item())
		}
	}
	return items, posters
}

func collectPosters(set map[string]struct{}, dir string, names []string) {
	for _, name := range names {
		set[filepath.Join(dir, name)] = struct{}{}
	}
}
