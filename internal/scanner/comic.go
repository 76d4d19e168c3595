package scanner

import (
	"archive/zip"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/mediadb/mediadb/internal/images"
)

// ComicParser extracts cover images from comic archives and synthesizes
// Media records from their filenames. The cb* containers in the wild are
// zip-compatible.
type ComicParser struct {
	CoverDir  string
	Converter images.Converter
}

// ParseAll processes one batch of comic archives. Archives share no
// state, so the batch runs on a bounded worker pool; per-archive
// failures are returned alongside the successes and never abort the
// batch.
func (p *ComicParser) ParseAll(root string, comics []string) ([]*Comic, []error) {
	results := make([]*Comic, len(comics))
	failures := make([]error, len(comics))

	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, rel := range comics {
		g.Go(func() error {
			results[i], failures[i] = p.parse(root, rel)
			return nil
		})
	}
	_ = g.Wait()

	var parsed []*Comic
	var errs []error
	for i := range comics {
		if failures[i] != nil {
			errs = append(errs, failures[i])
			continue
		}
		parsed = append(parsed, results[i])
	}
	return parsed, errs
}

func (p *ComicParser) parse(root, rel string) (*Comic, error) {
	dest := filepath.Join(p.CoverDir, filepath.FromSlash(stripComicExt(filepath.ToSlash(rel))))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return nil, fmt.Errorf("create cover directory for %s: %w", rel, err)
	}

	if err := p.extractCover(filepath.Join(root, rel), dest); err != nil {
		return nil, err
	}

	base := filepath.Base(rel)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return &Comic{
		Path:    rel,
		Title:   stem,
		File:    base,
		Posters: []string{stem},
	}, nil
}

// extractCover writes the archive's first regular file entry to dest and
// routes it through the image converter. A conversion failure keeps the
// raw cover and is only logged.
func (p *ComicParser) extractCover(archivePath, dest string) error {
	zr, err := zip.OpenReader(archivePath)
	if err != nil {
		return fmt.Errorf("open comic archive %s: %w", archivePath, err)
	}
	defer zr.Close()

	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return fmt.Errorf("read cover entry in %s: %w", archivePath, err)
		}
		out, err := os.Create(dest)
		if err != nil {
			rc.Close()
			return fmt.Errorf("write cover for %s: %w", archivePath, err)
		}
		_, copyErr := io.Copy(out, rc)
		rc.Close()
		if closeErr := out.Close(); copyErr == nil {
			copyErr = closeErr
		}
		if copyErr != nil {
			return fmt.Errorf("write cover for %s: %w", archivePath, copyErr)
		}

		if p.Converter != nil {
			if err := p.Converter.Convert(dest, dest); err != nil {
				log.Printf("comic: cover conversion failed for %s: %v", dest, err)
			}
		}
		return nil
	}

	log.Printf("comic: archive has no file entries, no cover extracted: %s", archivePath)
	return nil
}

func stripComicExt(rel string) string {
	if ext := strings.ToLower(filepath.Ext(rel)); comicExtensions[ext] {
		return rel[:len(rel)-len(ext)]
	}
	return rel
}
