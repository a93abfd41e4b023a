package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/tristan-derez/league-skin-picker/internal/dispatch"
	"github.com/tristan-derez/league-skin-picker/internal/selection"
)

type skinView struct {
	Name  string `json:"name"`
	ID    int    `json:"id,omitempty"`
	Num   int    `json:"num,omitempty"`
	Image string `json:"image,omitempty"`
}

type championData struct {
	Type     string     `json:"type,omitempty"`
	Champion string     `json:"champion"`
	Version  int        `json:"version"`
	Skins    []skinView `json:"skins"`
}

type selectRequest struct {
	Skin string `json:"skin"`
}

type selectResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// view joins the published skin names with their catalog ids.
func (s *Server) view(p selection.Published) championData {
	data := championData{Champion: p.Champion, Version: p.Version, Skins: make([]skinView, 0, len(p.Skins))}
	meta := s.deps.Metadata.Load()
	for _, name := range p.Skins {
		v := skinView{Name: name}
		if m, ok := meta.Lookup(p.Champion, name); ok {
			v.ID = m.ID
			v.Num = m.Num
			v.Image = "/api/images/" + strconv.Itoa(m.ID)
		}
		data.Skins = append(data.Skins, v)
	}
	return data
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := indexTemplate.Execute(w, s.view(s.deps.Selection.Snapshot())); err != nil {
		slog.Error("failed to render index", "error", err)
	}
}

func (s *Server) handleCurrentData(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.deps.Selection.Snapshot()))
}

func (s *Server) handleSelectSkin(w http.ResponseWriter, r *http.Request) {
	var req selectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, selectResponse{Message: "Malformed request body"})
		return
	}

	snapshot := s.deps.Selection.Snapshot()
	if snapshot.Empty() {
		writeJSON(w, http.StatusOK, selectResponse{Message: "No champion selected yet"})
		return
	}

	// installs run to completion even if the page goes away
	ctx := context.WithoutCancel(r.Context())
	res, err := s.deps.Dispatcher.Dispatch(ctx, snapshot.Champion, req.Skin)
	writeJSON(w, http.StatusOK, selectResult(req.Skin, res, err))
}

func selectResult(skin string, res dispatch.Result, err error) selectResponse {
	var installErr *dispatch.InstallError
	var profileErr *dispatch.ProfileError

	switch {
	case err == nil:
		msg := fmt.Sprintf("Skin %s applied", skin)
		if !res.Overlay.Valid() {
			msg += ", but the overlay failed to start"
		}
		return selectResponse{Success: true, Message: msg}
	case errors.Is(err, dispatch.ErrInvalidSelection):
		return selectResponse{Message: "Invalid skin selection"}
	case errors.As(err, &installErr):
		slog.Error("skin install failed", "path", installErr.Path, "error", installErr.Err)
		return selectResponse{Message: fmt.Sprintf("Failed to install skin from %s", installErr.Path)}
	case errors.As(err, &profileErr):
		slog.Error("profile save failed", "skin", profileErr.Skin, "error", profileErr.Err)
		return selectResponse{Message: fmt.Sprintf("Skin %s installed but the profile could not be saved", skin)}
	default:
		slog.Error("skin selection failed", "skin", skin, "error", err)
		return selectResponse{Message: "Skin selection failed"}
	}
}

func (s *Server) handleCatalogReload(w http.ResponseWriter, r *http.Request) {
	champions, err := s.deps.Catalog.Reload(r.Context())
	if err != nil {
		slog.Error("catalog reload failed", "error", err)
		writeJSON(w, http.StatusInternalServerError, selectResponse{Message: "Catalog reload failed"})
		return
	}
	writeJSON(w, http.StatusOK, selectResponse{Success: true, Message: fmt.Sprintf("%d champions loaded", champions)})
}

func (s *Server) handleImage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Cache-Control", "public, max-age=86400")
	http.ServeFile(w, r, s.deps.Images.ImagePath(id))
}

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "ok",
		"phase":     s.deps.Status.PhaseName(),
		"champions": s.deps.Status.Champions(),
	})
}
