package scanner

import (
	"encoding/json"
	"log"
	"path/filepath"
	"sort"
	"strings"

	"github.com/mediadb/mediadb/internal/models"
)

// Media is one entity parsed from a metadata document or comic archive.
// Each variant carries only the fields that are meaningful for it, so a
// projection can never be called on the wrong kind of record.
type Media interface {
	// RelPath is the entity's path relative to the scan root: the owning
	// directory for movies and TV shows, the directory containing the
	// episode document for episodes, and the archive file for comics.
	RelPath() string
}

// Movie is a feature-length work parsed from a <movie> document.
type Movie struct {
	Path    string
	Title   string
	Year    string
	File    string
	Posters []string
	Tags    []string
	Genres  []string
	Actors  []string
	Studios []string
}

func (m *Movie) RelPath() string { return m.Path }

// Item projects the movie into its persisted shape.
func (m *Movie) Item() models.MediaItem {
	return models.MediaItem{
		Kind:    models.KindMovie,
		Path:    m.Path,
		Title:   m.Title,
		Posters: posterMap(m.Posters),
		Year:    m.Year,
		File:    m.File,
		Tags:    m.Tags,
		Genres:  m.Genres,
		Actors:  m.Actors,
		Studios: m.Studios,
	}
}

// TVShow is an episodic series parsed from a <tvshow> document. Year and
// file are not part of the show-level document; they live on episodes.
type TVShow struct {
	Path    string
	Title   string
	Posters []string
	Tags    []string
	Genres  []string
	Actors  []string
	Studios []string
}

func (t *TVShow) RelPath() string { return t.Path }

// Item projects the show together with its grouped episodes. A show with
// no parsed episodes emits nothing; that is a library layout problem, not
// a scan failure.
func (t *TVShow) Item(seasons map[string][]*Episode) (models.MediaItem, bool) {
	if len(seasons) == 0 {
		log.Printf("aggregate: expected seasons data for %s, got none", t.Path)
		return models.MediaItem{}, false
	}
	return models.MediaItem{
		Kind:    models.KindTVShow,
		Path:    t.Path,
		Title:   t.Title,
		Posters: posterMap(t.Posters),
		Seasons: seasonsJSON(seasons),
		Tags:    t.Tags,
		Genres:  t.Genres,
		Actors:  t.Actors,
		Studios: t.Studios,
	}, true
}

// Episode is a single episode parsed from an <episodedetails> document.
// Season and Episode are zero-padded two-digit strings.
type Episode struct {
	Path    string
	Title   string
	File    string
	Season  string
	Episode string
}

func (e *Episode) RelPath() string { return e.Path }

// Comic is synthesized from a comic archive's filename.
type Comic struct {
	Path    string
	Title   string
	File    string
	Posters []string
}

func (c *Comic) RelPath() string { return c.Path }

// Item projects the comic into its persisted shape. Comics carry no
// attribute tags.
func (c *Comic) Item() models.MediaItem {
	return models.MediaItem{
		Kind:    models.KindComic,
		Path:    c.Path,
		Title:   c.Title,
		Posters: posterMap(c.Posters),
		File:    c.File,
	}
}

// posterMap serializes poster filenames keyed by the season they belong
// to: "season-specials*" files map to "00", "season<NN>-*" files to their
// numeric prefix, everything else to "main". Last write wins on key
// collision.
func posterMap(posters []string) string {
	m := make(map[string]string, len(posters))
	for _, p := range posters {
		switch {
		case strings.HasPrefix(p, "season-specials"):
			m["00"] = p
		case strings.HasPrefix(p, "season"):
			prefix, _, _ := strings.Cut(p, "-")
			if n := strings.TrimPrefix(prefix, "season"); n != "" {
				m[n] = p
			}
		default:
			m["main"] = p
		}
	}
	data, err := json.Marshal(m)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// episodeEntry is the nested episode shape inside a show's seasons JSON.
type episodeEntry struct {
	Title   string `json:"title"`
	File    string `json:"file"`
	Season  string `json:"season"`
	Episode string `json:"episode"`
	Path    string `json:"path"`
}

// seasonsJSON serializes a show's season map with each season's episodes
// ordered by episode number.
func seasonsJSON(seasons map[string][]*Episode) string {
	out := make(map[string][]episodeEntry, len(seasons))
	for season, episodes := range seasons {
		sorted := make([]*Episode, len(episodes))
		copy(sorted, episodes)
		sort.SliceStable(sorted, func(i, j int) bool {
			return sorted[i].Episode < sorted[j].Episode
		})
		entries := make([]episodeEntry, 0, len(sorted))
		for _, e := range sorted {
			entries = append(entries, episodeEntry{
				Title:   e.Title,
				File:    e.File,
				Season:  e.Season,
				Episode: e.Episode,
				Path:    filepath.ToSlash(e.Path),
			})
		}
		out[season] = entries
	}
	data, err := json.Marshal(out)
	if err != nil {
		return "{}"
	}
	return string(data)
}

// padNumber left-pads a numeric string to two digits.
func padNumber(s string) string {
	for len(s) < 2 {
		s = "0" + s
	}
	return s
}
