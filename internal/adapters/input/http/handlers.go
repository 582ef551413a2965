package http

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"gaggimate-dashboard/internal/domain/model"
	"gaggimate-dashboard/internal/domain/presentation"
	"gaggimate-dashboard/internal/domain/registry"
	"gaggimate-dashboard/internal/domain/service"
	"gaggimate-dashboard/internal/ports"

	"github.com/go-chi/chi/v5"
)

const maxBodySize = 64 << 10

type errorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

type valueRequest struct {
	Value interface{} `json:"value"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v != nil {
		json.NewEncoder(w).Encode(v)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Status: status, Message: message})
}

// statusFor maps domain errors to HTTP status codes. Anything unknown is a
// failure talking to Home Assistant.
func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrUnknownAction):
		return http.StatusNotFound
	case errors.Is(err, service.ErrUnknownField), errors.Is(err, model.ErrInvalidConfig):
		return http.StatusBadRequest
	case errors.Is(err, ports.ErrNotConfigured):
		return http.StatusServiceUnavailable
	case errors.Is(err, registry.ErrDuplicateCard):
		return http.StatusConflict
	}
	return http.StatusBadGateway
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCard(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := presentation.RenderHTML(w, s.card.View()); err != nil {
		s.logger.Error(err, "failed to render card")
	}
}

func (s *Server) handleView(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.card.View())
}

func (s *Server) handleText(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := presentation.RenderText(w, s.card.View()); err != nil {
		s.logger.Error(err, "failed to render text")
	}
}

func (s *Server) handleRoles(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.card.Roles())
}

func (s *Server) handleCards(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.catalog.List())
}

// readValue decodes an optional {"value": ...} body. An empty body is no value.
func readValue(w http.ResponseWriter, r *http.Request) (interface{}, error) {
	var req valueRequest
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	return req.Value, nil
}

func (s *Server) handleAction(w http.ResponseWriter, r *http.Request) {
	action := chi.URLParam(r, "action")
	value, err := readValue(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	var arg string
	switch v := value.(type) {
	case nil:
	case string:
		arg = v
	default:
		b, _ := json.Marshal(v)
		arg = string(b)
	}

	if err := s.card.Do(r.Context(), action, arg); err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.card.View())
}

func (s *Server) handleAdmin(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	io.WriteString(w, adminPage)
}

func (s *Server) handleGetConfig(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.Config())
}

func (s *Server) handleReplaceConfig(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	cfg, err := model.ParseCardConfig(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := s.editor.Replace(r.Context(), cfg); err != nil {
		s.logger.Error(err, "failed to replace config")
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.Broadcast()
	writeJSON(w, http.StatusOK, s.editor.Config())
}

func (s *Server) handleUpdateField(w http.ResponseWriter, r *http.Request) {
	field := chi.URLParam(r, "field")
	value, err := readValue(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	cfg, err := s.editor.Update(r.Context(), field, value)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusBadGateway {
			status = http.StatusInternalServerError
		}
		writeError(w, status, err.Error())
		return
	}
	s.Broadcast()
	writeJSON(w, http.StatusOK, cfg)
}

func (s *Server) handleDevices(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.Devices(r.Context()))
}

func (s *Server) handleEntities(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.editor.Entities(r.Context()))
}
