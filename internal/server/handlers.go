package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/matzehuels/promocanvas/pkg/buildinfo"
	"github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/ledger"
	"github.com/matzehuels/promocanvas/pkg/pipeline"
)

// Response headers set on compositions.
const (
	HeaderMissing  = "X-Missing-Identifiers"
	HeaderRecordID = "X-Ledger-Record-ID"
	HeaderCanvas   = "X-Canvas-Size"
)

// composeRequest is the JSON body of POST /api/compose.
type composeRequest struct {
	pipeline.Options

	// Record appends the composition to the usage ledger.
	Record   bool   `json:"record,omitempty"`
	Feedback string `json:"feedback,omitempty"`
}

type errorResponse struct {
	Error string      `json:"error"`
	Code  errors.Code `json:"code,omitempty"`
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

type ledgerResponse struct {
	Records []ledger.Record `json:"records"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func (s *Server) handleCompose(w http.ResponseWriter, r *http.Request) {
	var req composeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return
	}

	opts := s.withDefaults(req.Options)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Record && s.ledger == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeConfiguration, "usage ledger is not configured"))
		return
	}

	result, err := s.runner.Compose(r.Context(), opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if req.Record {
		rec, err := s.ledger.AppendWithRetry(r.Context(), ledger.Entry{
			Identifiers: opts.Requested(),
			Feedback:    req.Feedback,
		}, 0)
		if err != nil {
			s.writeError(w, r, err)
			return
		}
		w.Header().Set(HeaderRecordID, strconv.Itoa(rec.ID))
	}

	a := result.Artifact
	if len(result.Missing) > 0 {
		w.Header().Set(HeaderMissing, strings.Join(result.Missing, ","))
	}
	w.Header().Set(HeaderCanvas, fmt.Sprintf("%dx%d", a.Width, a.Height))
	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(a.Data)))
	w.WriteHeader(http.StatusOK)
	w.Write(a.Data)
}

func (s *Server) handleLedger(w http.ResponseWriter, r *http.Request) {
	if s.ledger == nil {
		s.writeError(w, r, errors.New(errors.ErrCodeConfiguration, "usage ledger is not configured"))
		return
	}
	records, err := s.ledger.List(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if records == nil {
		records = []ledger.Record{}
	}
	writeJSON(w, http.StatusOK, ledgerResponse{Records: records})
}

// withDefaults fills canvas fields the request left unset from the server
// configuration.
func (s *Server) withDefaults(o pipeline.Options) pipeline.Options {
	d := s.defaults
	if o.Width == 0 {
		o.Width = d.Width
	}
	if o.Height == 0 {
		o.Height = d.Height
	}
	if o.Background == "" {
		o.Background = d.Background
	}
	if o.Quality == 0 {
		o.Quality = d.Quality
	}
	return o
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err,
			"request_id", RequestIDFromContext(r.Context()))
	}
	writeJSON(w, status, errorResponse{
		Error: errors.UserMessage(err),
		Code:  errors.GetCode(err),
	})
}

// statusFor maps error codes to HTTP status codes.
func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidIdentifier, errors.ErrCodeInvalidFraction:
		return http.StatusBadRequest
	case errors.ErrCodeLedgerConflict:
		return http.StatusConflict
	case errors.ErrCodeUnauthorized:
		return http.StatusUnauthorized
	case errors.ErrCodeForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
