package images

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
)

// coverExtension is the normalized cover output format.
const coverExtension = ".webp"

// imageExtensions are the source formats the classifier admits as
// posters.
var imageExtensions = map[string]bool{
	".jpg": true, ".png": true,
}

// Materializer converts a scan's deduplicated poster set into the cover
// cache, mirroring each source's library-relative path with the image
// extension replaced. Outputs are keyed purely by path, so a retry
// overwrites harmlessly.
type Materializer struct {
	Converter Converter
}

// MaterializeAll converts every poster under root into coverDir. The
// files share no state, so the batch runs on a bounded worker pool;
// failures are per-file and returned without aborting the rest.
func (m *Materializer) MaterializeAll(root, coverDir string, posters map[string]struct{}) []error {
	rels := make([]string, 0, len(posters))
	for rel := range posters {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	failures := make([]error, len(rels))
	var g errgroup.Group
	g.SetLimit(runtime.NumCPU())
	for i, rel := range rels {
		g.Go(func() error {
			failures[i] = m.materialize(root, coverDir, rel)
			return nil
		})
	}
	_ = g.Wait()

	var errs []error
	for _, err := range failures {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}

func (m *Materializer) materialize(root, coverDir, rel string) error {
	dest := filepath.Join(coverDir, ReplaceImageExt(rel))
	if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
		return fmt.Errorf("create cover directory for %s: %w", rel, err)
	}
	if err := m.Converter.Convert(filepath.Join(root, rel), dest); err != nil {
		return err
	}
	return nil
}

// ReplaceImageExt swaps a known source image extension for the
// normalized cover extension. Paths without one (comic covers) pass
// through unchanged.
func ReplaceImageExt(rel string) string {
	ext := strings.ToLower(filepath.Ext(rel))
	if imageExtensions[ext] {
		return strings.TrimSuffix(rel, filepath.Ext(rel)) + coverExtension
	}
	return rel
}

// CoverDir returns the cover cache directory for one library.
func CoverDir(dataDir, folderName string) string {
	return filepath.Join(dataDir, "covers", folderName)
}

// CoverURL returns the server path a materialized cover is served under.
func CoverURL(folderName, rel string) string {
	return path.Join("/covers", folderName, filepath.ToSlash(ReplaceImageExt(rel)))
}
