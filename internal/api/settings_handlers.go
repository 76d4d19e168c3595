package api

import (
	"net/http"

	"github.com/mediadb/mediadb/internal/httputil"
)

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := s.settings.Get()
	if err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, settings)
}

func (s *Server) handleUpdateSkipFolders(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SkipFolders []string `json:"skipFolders"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.settings.UpdateSkipFolders(req.SkipFolders); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (s *Server) handleUpdateHidePanel(w http.ResponseWriter, r *http.Request) {
	var req struct {
		HidePanel bool `json:"hidePanel"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := s.settings.UpdateHidePanel(req.HidePanel); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}

func (s *Server) handleUpdateCardSize(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Width  int `json:"cardWidth"`
		Height int `json:"cardHeight"`
	}
	if err := httputil.ReadJSON(r, &req); err != nil {
		httputil.WriteError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Width <= 0 || req.Height <= 0 {
		httputil.WriteError(w, http.StatusBadRequest, "card dimensions must be positive")
		return
	}
	if err := s.settings.UpdateCardSize(req.Width, req.Height); err != nil {
		httputil.WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nil)
}
