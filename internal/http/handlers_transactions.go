package http

import (
	"errors"
	"net/http"

	"budget/internal/filter"
	"budget/internal/ledger"
	"budget/internal/log"
)

// handleListTransactions returns the filtered ledger, newest date first.
// Both filters accept "all" or may be omitted.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	typeFilter, err := filter.ParseTypeFilter(q.Get("type"))
	if err != nil {
		BadRequestError("type must be all, income or expense").Write(w)
		return
	}
	categoryFilter := filter.ParseCategoryFilter(sanitizeInput(q.Get("category")))

	items := s.svc.List(typeFilter, categoryFilter)
	NewJSONResponse().Body(map[string]any{
		"transactions": toViews(items),
		"count":        len(items),
	}).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.svc.Get(r.PathValue("id"))
	if err != nil {
		FromError(err).Write(w)
		return
	}
	NewJSONResponse().Body(toView(tx)).Write(w)
}

// handleCreateTransaction accepts JSON or form bodies. A missing date is
// filled with today; every other field is required.
func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.badBody(w, r, err)
		return
	}

	in := p.Input()
	if !p.Has("date") {
		in.Date = s.svc.Today().String()
	}

	tx, err := s.svc.Create(r.Context(), in)
	if err != nil {
		s.mutationFailed(w, r, log.OpCreate, err)
		return
	}
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Body(toView(tx)).
		Write(w)
}

// handleUpdateTransaction replaces every editable field of the transaction.
func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.badBody(w, r, err)
		return
	}

	tx, err := s.svc.Update(r.Context(), r.PathValue("id"), p.Input())
	if err != nil {
		s.mutationFailed(w, r, log.OpUpdate, err)
		return
	}
	NewJSONResponse().Body(toView(tx)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Delete(r.Context(), r.PathValue("id")); err != nil {
		s.mutationFailed(w, r, log.OpDelete, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) badBody(w http.ResponseWriter, r *http.Request, err error) {
	s.requestLogger(r).WarnContext(r.Context(), "Unreadable request body",
		log.FieldError, err,
		log.FieldErrorType, log.ErrorTypeValidation)
	if errors.Is(err, ErrBodyTooLarge) {
		ErrorResponse(http.StatusRequestEntityTooLarge, CodeBadRequest, err.Error()).Write(w)
		return
	}
	BadRequestError("malformed request body").Write(w)
}

// mutationFailed logs at a level matching the error kind and writes the
// mapped response.
func (s *Server) mutationFailed(w http.ResponseWriter, r *http.Request, op string, err error) {
	logger := s.requestLogger(r)
	var (
		verr *ledger.ValidationError
		nerr *ledger.NotFoundError
	)
	switch {
	case errors.As(err, &verr):
		logger.DebugContext(r.Context(), "Transaction rejected",
			log.FieldOperation, op,
			log.FieldErrorType, log.ErrorTypeValidation,
			"field", verr.Field)
	case errors.As(err, &nerr):
		logger.InfoContext(r.Context(), "Transaction not found",
			log.FieldOperation, op,
			log.FieldTxID, nerr.ID)
	default:
		logger.ErrorContext(r.Context(), "Transaction mutation failed",
			log.FieldOperation, op,
			log.FieldError, err,
			log.FieldErrorType, log.ErrorTypePersistence)
	}
	FromError(err).Write(w)
}
