package repository

import (
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediadb/mediadb/internal/db"
	"github.com/mediadb/mediadb/internal/models"
)

func testDB(t *testing.T) *sql.DB {
	t.Helper()
	conn, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestFolderCreateAssignsPositions(t *testing.T) {
	repo := NewFolderRepository(testDB(t))

	a, err := repo.Create("Movies", "/library/movies")
	require.NoError(t, err)
	b, err := repo.Create("Shows", "/library/shows")
	require.NoError(t, err)

	assert.Equal(t, 0, a.Position)
	assert.Equal(t, 1, b.Position)

	_, err = repo.Create("Movies", "/elsewhere")
	assert.Error(t, err)
}

func TestFolderCreateConcurrentPositionsAreDistinct(t *testing.T) {
	repo := NewFolderRepository(testDB(t))

	const n = 8
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := repo.Create(fmt.Sprintf("folder-%d", i), "/lib")
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	list, err := repo.List()
	require.NoError(t, err)
	require.Len(t, list, n)
	for i, f := range list {
		assert.Equal(t, i, f.Position)
	}
}

func TestFolderDeleteCompactsPositions(t *testing.T) {
	conn := testDB(t)
	folders := NewFolderRepository(conn)
	media := NewMediaRepository(conn)

	for _, name := range []string{"A", "B", "C"} {
		_, err := folders.Create(name, "/"+name)
		require.NoError(t, err)
	}
	require.NoError(t, media.ReplaceFolderContents("B",
		[]models.MediaItem{{Kind: models.KindMovie, Path: "m", Title: "M"}},
		[]models.MediaTag{{Path: "m", Category: "genres", Label: "Drama"}},
	))

	require.NoError(t, folders.Delete("B"))

	list, err := folders.List()
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "A", list[0].Name)
	assert.Equal(t, 0, list[0].Position)
	assert.Equal(t, "C", list[1].Name)
	assert.Equal(t, 1, list[1].Position)

	// The cascade removed B's media and tags.
	var count int
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM media`).Scan(&count))
	assert.Zero(t, count)
	require.NoError(t, conn.QueryRow(`SELECT COUNT(*) FROM tags`).Scan(&count))
	assert.Zero(t, count)
}

func TestFolderReorder(t *testing.T) {
	folders := NewFolderRepository(testDB(t))
	for _, name := range []string{"A", "B", "C", "D"} {
		_, err := folders.Create(name, "/"+name)
		require.NoError(t, err)
	}

	require.NoError(t, folders.Reorder(0, 2))
	list, err := folders.List()
	require.NoError(t, err)
	names := []string{list[0].Name, list[1].Name, list[2].Name, list[3].Name}
	assert.Equal(t, []string{"B", "C", "A", "D"}, names)

	require.NoError(t, folders.Reorder(3, 0))
	list, err = folders.List()
	require.NoError(t, err)
	names = []string{list[0].Name, list[1].Name, list[2].Name, list[3].Name}
	assert.Equal(t, []string{"D", "B", "C", "A"}, names)

	require.NoError(t, folders.Reorder(1, 1))
}

func TestFolderStatusUpdatesAndRecover(t *testing.T) {
	folders := NewFolderRepository(testDB(t))
	_, err := folders.Create("A", "/A")
	require.NoError(t, err)
	_, err = folders.Create("B", "/B")
	require.NoError(t, err)

	require.NoError(t, folders.UpdateStatus("A", models.FolderLoading))

	n, err := folders.Recover()
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	a, err := folders.GetByName("A")
	require.NoError(t, err)
	assert.Equal(t, models.FolderError, a.Status)
	b, err := folders.GetByName("B")
	require.NoError(t, err)
	assert.Equal(t, models.FolderIdle, b.Status)
}

func TestFolderGetByPosition(t *testing.T) {
	folders := NewFolderRepository(testDB(t))
	_, err := folders.Create("A", "/A")
	require.NoError(t, err)

	f, err := folders.GetByPosition(0)
	require.NoError(t, err)
	assert.Equal(t, "A", f.Name)

	_, err = folders.GetByPosition(5)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestReplaceFolderContents(t *testing.T) {
	conn := testDB(t)
	folders := NewFolderRepository(conn)
	media := NewMediaRepository(conn)
	_, err := folders.Create("Movies", "/movies")
	require.NoError(t, err)

	first := []models.MediaItem{
		{Kind: models.KindMovie, Path: "b", Title: "Beta", Year: "2001"},
		{Kind: models.KindMovie, Path: "a", Title: "alpha", Year: "2005"},
	}
	tags := []models.MediaTag{
		{Path: "a", Category: "genres", Label: "Drama"},
		{Path: "a", Category: "genres", Label: "Drama"}, // duplicate collapses
		{Path: "b", Category: "actors", Label: "Pat Lee"},
	}
	require.NoError(t, media.ReplaceFolderContents("Movies", first, tags))

	items, err := media.ListByFolder("Movies", models.SortByTitle)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "alpha", items[0].Title)

	byPath, err := media.TagsByPath("Movies")
	require.NoError(t, err)
	assert.Len(t, byPath["a"], 1)
	assert.Len(t, byPath["b"], 1)

	// A rescan replaces wholesale.
	second := []models.MediaItem{{Kind: models.KindComic, Path: "c", Title: "Comic"}}
	require.NoError(t, media.ReplaceFolderContents("Movies", second, nil))

	items, err = media.ListByFolder("Movies", models.SortByTitle)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "c", items[0].Path)

	byPath, err = media.TagsByPath("Movies")
	require.NoError(t, err)
	assert.Empty(t, byPath)
}

func TestListByFolderSortOrders(t *testing.T) {
	conn := testDB(t)
	folders := NewFolderRepository(conn)
	media := NewMediaRepository(conn)
	_, err := folders.Create("M", "/m")
	require.NoError(t, err)

	items := []models.MediaItem{
		{Kind: models.KindMovie, Path: "z", Title: "Apple", Year: "2010"},
		{Kind: models.KindMovie, Path: "a", Title: "banana", Year: "2001"},
		{Kind: models.KindMovie, Path: "m", Title: "Cherry", Year: "2005"},
	}
	require.NoError(t, media.ReplaceFolderContents("M", items, nil))

	byTitle, err := media.ListByFolder("M", models.SortByTitle)
	require.NoError(t, err)
	assert.Equal(t, []string{"Apple", "banana", "Cherry"}, titles(byTitle))

	byYear, err := media.ListByFolder("M", models.SortByYear)
	require.NoError(t, err)
	assert.Equal(t, []string{"banana", "Cherry", "Apple"}, titles(byYear))

	byPath, err := media.ListByFolder("M", models.SortByPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"banana", "Cherry", "Apple"}, titles(byPath))
}

func titles(items []models.MediaItem) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.Title
	}
	return out
}

func TestFolderTagOptions(t *testing.T) {
	conn := testDB(t)
	folders := NewFolderRepository(conn)
	media := NewMediaRepository(conn)
	_, err := folders.Create("M", "/m")
	require.NoError(t, err)

	tags := []models.MediaTag{
		{Path: "a", Category: "genres", Label: "Drama"},
		{Path: "b", Category: "genres", Label: "Drama"},
		{Path: "b", Category: "genres", Label: "Action"},
		{Path: "b", Category: "actors", Label: "Pat Lee"},
	}
	require.NoError(t, media.ReplaceFolderContents("M",
		[]models.MediaItem{{Kind: models.KindMovie, Path: "a", Title: "A"}, {Kind: models.KindMovie, Path: "b", Title: "B"}},
		tags))

	options, err := media.FolderTagOptions("M")
	require.NoError(t, err)
	assert.Equal(t, []models.Tag{
		{Category: "actors", Label: "Pat Lee"},
		{Category: "genres", Label: "Action"},
		{Category: "genres", Label: "Drama"},
	}, options)
}

func TestSettings(t *testing.T) {
	settings := NewSettingsRepository(testDB(t))

	s, err := settings.Get()
	require.NoError(t, err)
	assert.False(t, s.HidePanel)
	assert.Equal(t, 240, s.CardWidth)
	assert.Equal(t, 320, s.CardHeight)
	assert.Empty(t, s.SkipFolders)

	require.NoError(t, settings.UpdateHidePanel(true))
	require.NoError(t, settings.UpdateCardSize(300, 400))
	require.NoError(t, settings.UpdateSkipFolders([]string{"extras", "trailers"}))

	s, err = settings.Get()
	require.NoError(t, err)
	assert.True(t, s.HidePanel)
	assert.Equal(t, 300, s.CardWidth)
	assert.Equal(t, 400, s.CardHeight)
	assert.Equal(t, []string{"extras", "trailers"}, s.SkipFolders)
}
