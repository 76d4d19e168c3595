package scanner

import (
	"log"
	"os"
	"path/filepath"
	"sort"
)

// MediaSource bundles one directory's classified files as paths relative
// to the scan root. It is built per directory visit and consumed
// immediately by the parsers.
type MediaSource struct {
	Media   []string
	Posters []string
	Comics  []string
}

// Walker traverses a library root breadth-first, classifying entries and
// handing each directory's metadata documents and MediaSource to the
// parsers. Traversal uses an explicit FIFO worklist so depth never
// couples to stack depth.
type Walker struct {
	Root   string
	Skip   map[string]bool
	Comics *ComicParser

	// OnItemError receives per-item parse failures. The walk always
	// continues; the orchestrator decides whether to surface them.
	OnItemError func(source, msg string)
}

// Walk runs the traversal and returns the parsed entities partitioned
// into major media (movies, shows, comics; sorted by relative path) and
// secondary media (episodes). Unreadable directories are logged and
// their subtrees skipped.
func (w *Walker) Walk() (major []Media, secondary []*Episode, dirs int) {
	queue := []string{w.Root}

	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := os.ReadDir(dir)
		if err != nil {
			log.Printf("walk: cannot read directory %s: %v", dir, err)
			continue
		}
		dirs++

		var nfoFiles []string
		src := &MediaSource{}

		for _, entry := range entries {
			name := entry.Name()
			full := filepath.Join(dir, name)

			switch Classify(name, entry.IsDir(), w.Skip) {
			case EntryDir:
				queue = append(queue, full)
			case EntryMetadata:
				nfoFiles = append(nfoFiles, w.rel(full))
			case EntryPoster:
				src.Posters = append(src.Posters, w.rel(full))
			case EntryVideo:
				src.Media = append(src.Media, w.rel(full))
			case EntryComic:
				src.Comics = append(src.Comics, w.rel(full))
			}
		}

		for _, nfoRel := range nfoFiles {
			media, err := ParseNFO(w.Root, nfoRel, src)
			if err != nil {
				w.itemError(nfoRel, err.Error())
				continue
			}
			if media == nil {
				continue
			}
			switch m := media.(type) {
			case *Episode:
				secondary = append(secondary, m)
			default:
				major = append(major, m)
			}
		}

		if w.Comics != nil && len(src.Comics) > 0 {
			comics, errs := w.Comics.ParseAll(w.Root, src.Comics)
			for _, e := range errs {
				w.itemError("comic", e.Error())
			}
			for _, c := range comics {
				major = append(major, c)
			}
		}
	}

	// Deterministic downstream ordering regardless of filesystem
	// enumeration order.
	sort.Slice(major, func(i, j int) bool {
		return major[i].RelPath() < major[j].RelPath()
	})
	return major, secondary, dirs
}

func (w *Walker) rel(path string) string {
	rel, err := filepath.Rel(w.Root, path)
	if err != nil {
		return path
	}
	return rel
}

func (w *Walker) itemError(source, msg string) {
	if w.OnItemError != nil {
		w.OnItemError(source, msg)
		return
	}
	log.Printf("walk: %s: %s", source, msg)
}
