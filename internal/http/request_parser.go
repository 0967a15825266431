// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing request bodies and query
// parameters into ledger inputs and report references.

package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"budget/internal/core"
	"budget/internal/ledger"
)

const maxBodyBytes = 64 << 10

// maxAmountExponent bounds the exponent of a JSON number expanded to plain
// digits; larger ones stay as typed and fail amount parsing.
const maxAmountExponent = 32

var ErrBodyTooLarge = errors.New("request body too large")

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON objects and form-encoded data.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]any
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}
	if r.Body == nil {
		return p
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = ErrBodyTooLarge
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	trimmed := bytes.TrimSpace(p.body)
	if len(trimmed) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if trimmed[0] == '{' || strings.HasPrefix(p.contentType, "application/json") {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		p.jsonData = make(map[string]any)
		if err := dec.Decode(&p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("invalid JSON body: %w", err)
			return p.err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(trimmed))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

// Has reports whether key was present in the body.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		return p.formData.Has(key)
	}
	return false
}

// Input reads the transaction fields. Amounts keep the exact digits the
// client sent, whether as a JSON number or a string.
func (p *RequestBodyParser) Input() ledger.Input {
	return ledger.Input{
		Description: p.Get("description"),
		Amount:      p.Get("amount"),
		Type:        p.Get("type"),
		Category:    p.Get("category"),
		Date:        p.Get("date"),
	}
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case json.Number:
		// Exponent forms such as 1e2 are valid JSON numbers; hand them on
		// as plain decimals so amount parsing sees digits only.
		if strings.ContainsAny(val.String(), "eE") {
			if d, err := decimal.NewFromString(val.String()); err == nil && d.Exponent() > -maxAmountExponent && d.Exponent() < maxAmountExponent {
				return d.String()
			}
		}
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// ParseRefDate resolves the report reference date from the query string.
// "date" takes YYYY-MM-DD, "month" takes YYYY-MM and means its first day.
// With neither, today is used.
func ParseRefDate(query url.Values, today core.Date) (core.Date, error) {
	if v := strings.TrimSpace(query.Get("date")); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.Date{}, fmt.Errorf("invalid date %q", v)
		}
		return d, nil
	}
	if v := strings.TrimSpace(query.Get("month")); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			return core.Date{}, fmt.Errorf("invalid month %q", v)
		}
		return core.DateOf(t), nil
	}
	return today, nil
}
