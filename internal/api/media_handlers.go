package api

import (
	"database/sql"
	"errors"
	"net/http"

	"github.com/mediadb/mediadb/internal/filter"
	"github.com/mediadb/mediadb/internal/httputil"
	"github.com/mediadb/mediadb/internal/models"
)

func (s *Server) handleListMedia(w http.ResponseWriter, r *http.Request) {
	folder, ok := s.lookupFolder(w, r)
	if !ok {
		return
	}

	items, err := s.media.ListByFolder(folder.Name, folder.SortType)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if items == nil {
		items = []models.MediaItem{}
	}
	httputil.WriteJSON(w, http.StatusOK, items)
}

type filterMediaRequest struct {
	Tags []models.Tag `json:"tags"`
}

// handleFilterMedia returns the folder's media restricted to the items
// matching the posted tag selection, in the folder's sort order.
func (s *Server) handleFilterMedia(w http.ResponseWriter, r *http.Request) {
	folder, ok := s.lookupFolder(w, r)
	if !ok {
		return
	}

	var req filterMediaRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items, err := s.media.ListByFolder(folder.Name, folder.SortType)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	tagsByPath, err := s.media.TagsByPath(folder.Name)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Untagged items never match a non-empty selection but must be
	// candidates for the empty one.
	for _, item := range items {
		if _, present := tagsByPath[item.Path]; !present {
			tagsByPath[item.Path] = nil
		}
	}

	matched := make(map[string]bool)
	for _, path := range filter.Match(tagsByPath, req.Tags, folder.FilterType) {
		matched[path] = true
	}

	filtered := make([]models.MediaItem, 0, len(matched))
	for _, item := range items {
		if matched[item.Path] {
			filtered = append(filtered, item)
		}
	}
	httputil.WriteJSON(w, http.StatusOK, filtered)
}

func (s *Server) handleListTagOptions(w http.ResponseWriter, r *http.Request) {
	folder, ok := s.lookupFolder(w, r)
	if !ok {
		return
	}

	options, err := s.media.FolderTagOptions(folder.Name)
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if options == nil {
		options = []models.Tag{}
	}
	httputil.WriteJSON(w, http.StatusOK, options)
}

func (s *Server) lookupFolder(w http.ResponseWriter, r *http.Request) (*models.Folder, bool) {
	folder, err := s.folders.GetByName(r.PathValue("name"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.WriteError(w, http.StatusNotFound, "folder not found")
		} else {
			httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		}
		return nil, false
	}
	return folder, true
}
