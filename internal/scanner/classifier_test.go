package scanner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	skip := map[string]bool{"extras": true}

	tests := []struct {
		name  string
		isDir bool
		want  EntryKind
	}{
		{".hidden", true, EntryIgnore},
		{".DS_Store", false, EntryIgnore},
		{"extras", true, EntryIgnore},
		{"extras", false, EntryIgnore},
		{"Season 01", true, EntryDir},
		{"movie.nfo", false, EntryMetadata},
		{"poster.jpg", false, EntryPoster},
		{"season01-poster.png", false, EntryPoster},
		{"fanart.jpg", false, EntryIgnore},
		{"movie.mkv", false, EntryVideo},
		{"movie.MP4", false, EntryVideo},
		{"issue-001.cbz", false, EntryComic},
		{"issue-001.cbr", false, EntryComic},
		{"README", false, EntryIgnore},
		{"notes.txt", false, EntryIgnore},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Classify(tt.name, tt.isDir, skip), "entry %q", tt.name)
	}
}

func TestClassifySkipMatchIsExactAndCaseSensitive(t *testing.T) {
	skip := map[string]bool{"extras": true}

	assert.Equal(t, EntryDir, Classify("Extras", true, skip))
	assert.Equal(t, EntryDir, Classify("extras-backup", true, skip))
	assert.Equal(t, EntryIgnore, Classify("extras", true, skip))
}
