package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/sidebar"
	"github.com/b1naryth1ef/atlas/web"
	"github.com/b1naryth1ef/atlas/wms"
	"go.uber.org/zap"
)

const (
	msgMissingPath   = "Paramètre path requis"
	msgInvalidPath   = "Chemin invalide"
	msgInvalidType   = "Type de fichier invalide"
	msgFileNotFound  = "Fichier introuvable"
	msgInvalidFormat = "Format GeoJSON invalide"
	msgReadError     = "Erreur lecture fichier"
	msgLayersError   = "Erreur lecture couches"
	msgMissingURL    = "Paramètre url manquant"
	msgInvalidURL    = "URL invalide"
	msgTileError     = "Impossible de charger la tuile WMS."
)

type errorBody struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, errorBody{Error: msg})
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := web.WriteIndex(w, s.frontend)
	if err != nil {
		s.log.Error("failed to render index", zap.Error(err))
	}
}

func (s *Server) handleFrontend(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.frontend)
}

func (s *Server) handleLayers(w http.ResponseWriter, r *http.Request) {
	groups, err := atlas.ListLayerGroups(s.root)
	if err != nil {
		s.log.Error("failed to list layer groups", zap.String("root", s.root), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgLayersError)
		return
	}
	writeJSON(w, http.StatusOK, groups)
}

// layerDataStatus maps library errors onto the HTTP status and message.
func layerDataStatus(err error) (int, string) {
	switch {
	case errors.Is(err, atlas.ErrInvalidPath):
		return http.StatusForbidden, msgInvalidPath
	case errors.Is(err, atlas.ErrInvalidExtension):
		return http.StatusForbidden, msgInvalidType
	case errors.Is(err, atlas.ErrNotFound):
		return http.StatusNotFound, msgFileNotFound
	case errors.Is(err, atlas.ErrInvalidGeoJSON):
		return http.StatusBadRequest, msgInvalidFormat
	default:
		return http.StatusInternalServerError, msgReadError
	}
}

func (s *Server) handleLayerData(w http.ResponseWriter, r *http.Request) {
	rel := r.URL.Query().Get("path")
	if rel == "" {
		writeError(w, http.StatusBadRequest, msgMissingPath)
		return
	}

	data, err := atlas.ReadGeoJSON(s.root, rel)
	if err != nil {
		status, msg := layerDataStatus(err)
		if status == http.StatusInternalServerError {
			s.log.Error("failed to read layer file", zap.String("path", rel), zap.Error(err))
		}
		writeError(w, status, msg)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleLayerTree(w http.ResponseWriter, r *http.Request) {
	groups, err := atlas.ListLayerGroups(s.root)
	if err != nil {
		s.log.Error("failed to list layer groups", zap.String("root", s.root), zap.Error(err))
		writeError(w, http.StatusInternalServerError, msgLayersError)
		return
	}

	state := sidebar.NewState(s.palette)
	state.Activate(r.URL.Query()["active"]...)

	tree := sidebar.Build(groups, state).Filter(r.URL.Query().Get("q"))
	writeJSON(w, http.StatusOK, tree)
}

// serviceURL reads and validates the url query parameter. It writes the
// error response itself and reports whether the caller may continue.
func serviceURL(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw := strings.TrimSpace(r.URL.Query().Get("url"))
	if raw == "" {
		writeError(w, http.StatusBadRequest, msgMissingURL)
		return "", false
	}
	if _, err := wms.ParseServiceURL(raw); err != nil {
		writeError(w, http.StatusBadRequest, msgInvalidURL)
		return "", false
	}
	return raw, true
}

func (s *Server) handleWMSProxy(w http.ResponseWriter, r *http.Request) {
	target, ok := serviceURL(w, r)
	if !ok {
		return
	}

	data, err := s.wms.GetCapabilitiesXML(r.Context(), target)
	if err != nil {
		s.log.Warn("capabilities request failed", zap.String("url", target), zap.Error(err))
		writeError(w, http.StatusBadGateway, wms.MsgUnreachable)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	_, _ = w.Write(data)
}

type layersBody struct {
	Layers []wms.LayerOption `json:"layers"`
}

func (s *Server) handleWMSLayers(w http.ResponseWriter, r *http.Request) {
	target, ok := serviceURL(w, r)
	if !ok {
		return
	}

	layers, err := s.wms.Layers(r.Context(), target)
	if err != nil {
		s.log.Warn("capabilities request failed", zap.String("url", target), zap.Error(err))
		writeError(w, http.StatusBadGateway, wms.MsgUnreachable)
		return
	}
	if len(layers) == 0 {
		writeError(w, http.StatusNotFound, wms.MsgNoLayers)
		return
	}

	writeJSON(w, http.StatusOK, layersBody{Layers: layers})
}

func (s *Server) handleWMSTiles(w http.ResponseWriter, r *http.Request) {
	target, ok := serviceURL(w, r)
	if !ok {
		return
	}

	resp, err := s.wms.GetTile(r.Context(), target)
	if err != nil {
		s.log.Warn("tile request failed", zap.String("url", target), zap.Error(err))
		writeError(w, http.StatusBadGateway, msgTileError)
		return
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/png"
	}
	w.Header().Set("Content-Type", contentType)
	if cc := resp.Header.Get("Cache-Control"); cc != "" {
		w.Header().Set("Cache-Control", cc)
	}
	w.WriteHeader(resp.StatusCode)

	if _, err := io.Copy(w, resp.Body); err != nil {
		s.log.Debug("tile stream interrupted", zap.String("url", target), zap.Error(err))
	}
}
