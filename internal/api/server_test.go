package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mediadb/mediadb/internal/config"
	"github.com/mediadb/mediadb/internal/db"
	"github.com/mediadb/mediadb/internal/models"
	"github.com/mediadb/mediadb/internal/notifications"
	"github.com/mediadb/mediadb/internal/repository"
	"github.com/mediadb/mediadb/internal/scanner"
)

type noopConverter struct{}

func (noopConverter) Convert(src, dest string) error { return nil }

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	conn, err := db.OpenMemory()
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })

	folders := repository.NewFolderRepository(conn)
	media := repository.NewMediaRepository(conn)
	settings := repository.NewSettingsRepository(conn)

	sc := scanner.New(folders, settings, media,
		noopConverter{}, notifications.LogNotifier{}, notifications.LogNotifier{}, t.TempDir())

	cfg := &config.Config{DataDir: t.TempDir()}
	s := NewServer(cfg, folders, media, settings, sc, NewWSHub())
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func doJSON(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestFolderEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/folders", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var folders []models.Folder
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&folders))
	assert.Empty(t, folders)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/folders",
		map[string]string{"name": "Movies", "path": t.TempDir()})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/folders",
		map[string]string{"name": "NoSuchPath", "path": "/definitely/not/here"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/folders", nil)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&folders))
	require.Len(t, folders, 1)
	assert.Equal(t, "Movies", folders[0].Name)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/folders/Movies/sort",
		map[string]int{"sort": int(models.SortByYear)})
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/folders/Movies", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/folders/Movies/scan", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSettingsEndpoints(t *testing.T) {
	_, ts := newTestServer(t)

	resp := doJSON(t, http.MethodPut, ts.URL+"/api/settings/skip-folders",
		map[string][]string{"skipFolders": {"extras"}})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, http.MethodPut, ts.URL+"/api/settings/card-size",
		map[string]int{"cardWidth": 0, "cardHeight": 100})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/settings", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var settings models.Settings
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&settings))
	assert.Equal(t, []string{"extras"}, settings.SkipFolders)
	assert.Equal(t, 240, settings.CardWidth)
}

func TestMediaEndpoints(t *testing.T) {
	s, ts := newTestServer(t)

	_, err := s.folders.Create("M", "/m")
	require.NoError(t, err)
	items := []models.MediaItem{
		{Kind: models.KindMovie, Path: "action", Title: "Action Movie"},
		{Kind: models.KindMovie, Path: "drama", Title: "Drama Movie"},
	}
	tags := []models.MediaTag{
		{Path: "action", Category: "genres", Label: "Action"},
		{Path: "drama", Category: "genres", Label: "Drama"},
	}
	require.NoError(t, s.media.ReplaceFolderContents("M", items, tags))

	resp := doJSON(t, http.MethodGet, ts.URL+"/api/folders/M/media", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var listed []models.MediaItem
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	assert.Len(t, listed, 2)

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/folders/M/media/filter",
		map[string][]models.Tag{"tags": {{Category: "genres", Label: "Action"}}})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "Action Movie", listed[0].Title)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/folders/M/tags", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var options []models.Tag
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&options))
	assert.Len(t, options, 2)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/folders/Nope/media", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
