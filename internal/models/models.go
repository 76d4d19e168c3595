package models

// MediaKind is the numeric media type code persisted with each library item.
type MediaKind uint8

const (
	KindMovie  MediaKind = 0
	KindTVShow MediaKind = 1
	KindComic  MediaKind = 2
)

// FolderStatus tracks the scan lifecycle of a library folder.
type FolderStatus uint8

const (
	FolderIdle    FolderStatus = 0
	FolderLoading FolderStatus = 1
	FolderError   FolderStatus = 2
)

// SortType selects the ordering of a folder's media listing.
type SortType uint8

const (
	SortByTitle SortType = 0
	SortByYear  SortType = 1
	SortByPath  SortType = 2
)

// FilterType selects within-category tag matching semantics.
type FilterType uint8

const (
	FilterOr  FilterType = 0
	FilterAnd FilterType = 1
)

// Folder is a library root registered by the user. Position is a dense
// 0-based rank compacted on delete.
type Folder struct {
	Name       string       `json:"name"`
	Path       string       `json:"path"`
	Position   int          `json:"position"`
	SortType   SortType     `json:"sort"`
	FilterType FilterType   `json:"filterType"`
	Status     FolderStatus `json:"status"`
}

// MediaItem is the aggregation output for one major entity, flattened
// into the shape the store persists. Posters and Seasons hold serialized
// JSON maps; Seasons is empty for everything but TV shows.
type MediaItem struct {
	Kind    MediaKind `json:"type"`
	Path    string    `json:"path"`
	Title   string    `json:"title"`
	Posters string    `json:"posters"`
	Year    string    `json:"year"`
	File    string    `json:"file"`
	Seasons string    `json:"seasons"`

	Tags    []string `json:"tags"`
	Genres  []string `json:"genres"`
	Actors  []string `json:"actors"`
	Studios []string `json:"studios"`
}

// Tag is one (category, label) pair. Category is one of "tags",
// "genres", "actors", "studios".
type Tag struct {
	Category string `json:"group"`
	Label    string `json:"label"`
}

// MediaTag associates a tag with a media row by path within a folder.
type MediaTag struct {
	Path     string `json:"path"`
	Category string `json:"group"`
	Label    string `json:"label"`
}

// Settings holds the single persisted application settings row.
type Settings struct {
	HidePanel   bool     `json:"hidePanel"`
	CardWidth   int      `json:"cardWidth"`
	CardHeight  int      `json:"cardHeight"`
	SkipFolders []string `json:"skipFolders"`
}

// ScanResult summarizes one library scan.
type ScanResult struct {
	DirsWalked   int      `json:"dirs_walked"`
	ItemsEmitted int      `json:"items_emitted"`
	CoversSaved  int      `json:"covers_saved"`
	Errors       []string `json:"errors,omitempty"`
}
