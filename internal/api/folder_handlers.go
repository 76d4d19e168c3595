package api

import (
	"database/sql"
	"errors"
	"net/http"
	"os"

	"github.com/mediadb/mediadb/internal/httputil"
	"github.com/mediadb/mediadb/internal/models"
)

type createFolderRequest struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

func (s *Server) handleListFolders(w http.ResponseWriter, r *http.Request) {
	folders, err := s.folders.List()
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if folders == nil {
		folders = []models.Folder{}
	}
	httputil.WriteJSON(w, http.StatusOK, folders)
}

func (s *Server) handleCreateFolder(w http.ResponseWriter, r *http.Request) {
	var req createFolderRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" || req.Path == "" {
		httputil.WriteError(w, http.StatusBadRequest, "name and path are required")
		return
	}
	if info, err := os.Stat(req.Path); err != nil || !info.IsDir() {
		httputil.WriteError(w, http.StatusBadRequest, "path is not a readable directory")
		return
	}

	folder, err := s.folders.Create(req.Name, req.Path)
	if err != nil {
		httputil.WriteError(w, http.StatusConflict, err.Error())
		return
	}

	s.foldersChanged()
	// New folders scan immediately so the UI has content to show.
	s.ScanFolder(folder)
	httputil.WriteJSON(w, http.StatusCreated, folder)
}

func (s *Server) handleDeleteFolder(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	if err := s.folders.Delete(name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.WriteError(w, http.StatusNotFound, "folder not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.foldersChanged()
	s.hub.FolderUpdated(name)
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"deleted": name})
}

type reorderRequest struct {
	From int `json:"from"`
	To   int `json:"to"`
}

func (s *Server) handleReorderFolders(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.folders.Reorder(req.From, req.To); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.WriteError(w, http.StatusNotFound, "no folder at that position")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (s *Server) handleUpdateFolderPath(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req struct {
		Path string `json:"path"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil || req.Path == "" {
		httputil.WriteError(w, http.StatusBadRequest, "path is required")
		return
	}
	if err := s.folders.UpdatePath(name, req.Path); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.foldersChanged()
	s.hub.FolderUpdated(name)
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (s *Server) handleUpdateFolderSort(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req struct {
		Sort models.SortType `json:"sort"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil || req.Sort > models.SortByPath {
		httputil.WriteError(w, http.StatusBadRequest, "invalid sort type")
		return
	}
	if err := s.folders.UpdateSortType(name, req.Sort); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.FolderUpdated(name)
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (s *Server) handleUpdateFolderFilterType(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	var req struct {
		FilterType models.FilterType `json:"filterType"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil || req.FilterType > models.FilterAnd {
		httputil.WriteError(w, http.StatusBadRequest, "invalid filter type")
		return
	}
	if err := s.folders.UpdateFilterType(name, req.FilterType); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.hub.FolderUpdated(name)
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (s *Server) handleScanFolder(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	folder, err := s.folders.GetByName(name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			httputil.WriteError(w, http.StatusNotFound, "folder not found")
			return
		}
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if !s.ScanFolder(folder) {
		httputil.WriteError(w, http.StatusConflict, "scan already in progress")
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, map[string]string{"scanning": name})
}
