package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"budget/internal/core"
	"budget/internal/ledger"
)

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().
		Status(http.StatusCreated).
		Header("Location", "/x").
		Body(map[string]int{"n": 1}).
		Write(rr)

	if rr.Code != http.StatusCreated {
		t.Errorf("status = %d", rr.Code)
	}
	if rr.Header().Get("Content-Type") != "application/json; charset=utf-8" || rr.Header().Get("Location") != "/x" {
		t.Errorf("headers = %v", rr.Header())
	}
	if rr.Body.String() != "{\"n\":1}\n" {
		t.Errorf("body = %q", rr.Body.String())
	}

	rr = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Body("ignored").Write(rr)
	if rr.Code != http.StatusNoContent || rr.Body.Len() != 0 {
		t.Errorf("204 wrote %q", rr.Body.String())
	}
}

func TestFromError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		code   string
		field  string
	}{
		{"validation", &ledger.ValidationError{Field: "amount", Err: core.ErrNonPositiveAmount}, http.StatusUnprocessableEntity, CodeValidation, "amount"},
		{"not found", &ledger.NotFoundError{ID: "x"}, http.StatusNotFound, CodeNotFound, ""},
		{"persistence", &ledger.PersistenceError{Op: "create", Err: errors.New("disk full")}, http.StatusInternalServerError, CodePersistence, ""},
		{"other", errors.New("boom"), http.StatusInternalServerError, CodeInternal, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			FromError(tt.err).Write(rr)
			if rr.Code != tt.status {
				t.Fatalf("status = %d", rr.Code)
			}
			var body errorBody
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatal(err)
			}
			if body.Code != tt.code || body.Field != tt.field {
				t.Errorf("body = %+v", body)
			}
			if tt.code == CodePersistence && body.Error != "could not save changes" {
				t.Errorf("persistence cause leaked: %q", body.Error)
			}
		})
	}
}
