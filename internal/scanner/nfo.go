package scanner

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// Recognized document root elements, Kodi/Jellyfin NFO vocabulary.
const (
	rootMovie   = "movie"
	rootTVShow  = "tvshow"
	rootEpisode = "episodedetails"
)

// ParseNFO parses one metadata document into a Media record. The parser
// is tolerant: unknown elements are ignored and missing optional fields
// stay empty. A nil Media with nil error means the document resolved to
// a disc-structure artifact and was deliberately dropped.
func ParseNFO(root, nfoRel string, src *MediaSource) (Media, error) {
	data, err := os.ReadFile(filepath.Join(root, nfoRel))
	if err != nil {
		return nil, fmt.Errorf("read metadata document %s: %w", nfoRel, err)
	}

	kind, fields, err := decodeNFO(data)
	if err != nil {
		return nil, fmt.Errorf("parse metadata document %s: %w", nfoRel, err)
	}

	dir := filepath.Dir(nfoRel)
	if dir == "." {
		dir = ""
	}

	var media Media
	var file string
	switch kind {
	case rootMovie:
		m := &Movie{
			Path:    dir,
			Title:   fields.title,
			Year:    fields.year,
			Posters: fields.posters,
			Tags:    fields.tags,
			Genres:  fields.genres,
			Actors:  fields.actors,
			Studios: fields.studios,
		}
		// Fall back to classifier-discovered artwork and video files when
		// the document does not declare them.
		if len(m.Posters) == 0 {
			m.Posters = baseNames(src.Posters)
		}
		if m.File == "" && len(src.Media) > 0 {
			m.File = filepath.Base(src.Media[0])
		}
		media, file = m, m.File
	case rootTVShow:
		t := &TVShow{
			Path:    dir,
			Title:   fields.title,
			Posters: baseNames(src.Posters),
			Tags:    fields.tags,
			Genres:  fields.genres,
			Actors:  fields.actors,
			Studios: fields.studios,
		}
		media, file = t, ""
	case rootEpisode:
		e := &Episode{
			Path:    dir,
			Title:   fields.title,
			Season:  padNumber(fields.season),
			Episode: padNumber(fields.episode),
		}
		if name, ok := resolveEpisodeFile(nfoRel, src, e.Season, e.Episode); ok {
			e.File = name
		} else {
			log.Printf("nfo: no matching episode file for %s among %v", nfoRel, src.Media)
		}
		media, file = e, e.File
	}

	// Disc-structure folders (BDMV) carry playlist fragments, not real
	// content; drop the record without reporting an error.
	if strings.Contains(strings.ToLower(file), "bdmv") {
		return nil, nil
	}
	return media, nil
}

// nfoFields accumulates the known field vocabulary while walking a
// document subtree.
type nfoFields struct {
	title   string
	year    string
	season  string
	episode string
	posters []string
	tags    []string
	genres  []string
	actors  []string
	studios []string
}

// decodeNFO locates the first recognized top-level element and collects
// its known fields. Additional recognized roots after the first are
// ignored; unrecognized roots are skipped.
func decodeNFO(data []byte) (string, *nfoFields, error) {
	d := xml.NewDecoder(bytes.NewReader(data))
	for {
		tok, err := d.Token()
		if err == io.EOF {
			return "", nil, fmt.Errorf("no recognized root element")
		}
		if err != nil {
			return "", nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch se.Name.Local {
		case rootMovie, rootTVShow, rootEpisode:
			fields := &nfoFields{}
			if err := collectFields(d, se.Name.Local, fields); err != nil {
				return "", nil, err
			}
			return se.Name.Local, fields, nil
		default:
			if err := d.Skip(); err != nil {
				return "", nil, err
			}
		}
	}
}

// collectFields walks the matched subtree and extracts known field
// elements wherever they appear. Unknown elements are descended into,
// not rejected, so vendor extensions pass through harmlessly.
func collectFields(d *xml.Decoder, kind string, f *nfoFields) error {
	depth := 1
	for depth > 0 {
		tok, err := d.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			name := t.Name.Local
			switch {
			case name == "title":
				f.title, err = elementText(d, &t)
			case name == "year" && kind == rootMovie:
				f.year, err = elementText(d, &t)
			case name == "season" && kind == rootEpisode:
				f.season, err = elementText(d, &t)
			case name == "episode" && kind == rootEpisode:
				f.episode, err = elementText(d, &t)
			case name == "poster" && kind == rootMovie:
				err = appendText(d, &t, &f.posters)
			case name == "genre" && kind != rootEpisode:
				err = appendText(d, &t, &f.genres)
			case name == "tag" && kind != rootEpisode:
				err = appendText(d, &t, &f.tags)
			case name == "studio" && kind != rootEpisode:
				err = appendText(d, &t, &f.studios)
			case name == "actor" && kind != rootEpisode:
				var actor struct {
					Names []string `xml:"name"`
				}
				if err = d.DecodeElement(&actor, &t); err == nil {
					for _, n := range actor.Names {
						if strings.TrimSpace(n) != "" {
							f.actors = append(f.actors, n)
						}
					}
				}
			default:
				depth++
				continue
			}
			if err != nil {
				return err
			}
		case xml.EndElement:
			depth--
		}
	}
	return nil
}

// elementText decodes one element's character data and consumes it.
func elementText(d *xml.Decoder, se *xml.StartElement) (string, error) {
	var s string
	if err := d.DecodeElement(&s, se); err != nil {
		return "", err
	}
	return s, nil
}

// appendText pushes the element's text onto dst if it is non-blank after
// trimming.
func appendText(d *xml.Decoder, se *xml.StartElement, dst *[]string) error {
	s, err := elementText(d, se)
	if err != nil {
		return err
	}
	if strings.TrimSpace(s) != "" {
		*dst = append(*dst, s)
	}
	return nil
}

// resolveEpisodeFile matches the episode document against the
// directory's video files: first by identical filename stem, then by a
// case-insensitive sNNeNN marker built from the padded season and
// episode numbers.
func resolveEpisodeFile(nfoRel string, src *MediaSource, season, episode string) (string, bool) {
	stem := fileStem(nfoRel)
	marker := strings.ToLower("s" + season + "e" + episode)
	for _, m := range src.Media {
		mediaStem := fileStem(m)
		if mediaStem == stem || strings.Contains(strings.ToLower(mediaStem), marker) {
			return filepath.Base(m), true
		}
	}
	return "", false
}

func fileStem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func baseNames(paths []string) []string {
	var names []string
	for _, p := range paths {
		names = append(names, filepath.Base(p))
	}
	return names
}
