package http

import (
	"net/http"

	"budget/internal/log"
	"budget/internal/settings"
)

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.Theme(r.Context())
	if err != nil {
		s.themeFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]string{"theme": t.String()}).Write(w)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.badBody(w, r, err)
		return
	}

	t, err := settings.ParseTheme(p.Get("theme"))
	if err != nil {
		ValidationErrorResponse("theme", "theme must be light or dark").Write(w)
		return
	}
	if err := s.svc.SetTheme(r.Context(), t); err != nil {
		s.themeFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]string{"theme": t.String()}).Write(w)
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.ToggleTheme(r.Context())
	if err != nil {
		s.themeFailed(w, r, err)
		return
	}
	NewJSONResponse().Body(map[string]string{"theme": t.String()}).Write(w)
}

func (s *Server) themeFailed(w http.ResponseWriter, r *http.Request, err error) {
	s.requestLogger(r).ErrorContext(r.Context(), "Theme storage failed",
		log.FieldError, err,
		log.FieldErrorType, log.ErrorTypePersistence)
	ErrorResponse(http.StatusInternalServerError, CodePersistence, "could not access theme preference").Write(w)
}
