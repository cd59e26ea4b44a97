package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/promocanvas/pkg/catalog"
	"github.com/matzehuels/promocanvas/pkg/errors"
	"github.com/matzehuels/promocanvas/pkg/ledger"
	"github.com/matzehuels/promocanvas/pkg/pipeline"
)

// newCatalog serves product pages for the given identifiers, each pointing
// at a 400x400 PNG.
func newCatalog(t *testing.T, ids ...string) *httptest.Server {
	t.Helper()
	known := make(map[string]bool, len(ids))
	for _, id := range ids {
		known[id] = true
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasPrefix(r.URL.Path, "/dp/"):
			id := strings.TrimPrefix(r.URL.Path, "/dp/")
			if !known[id] {
				http.NotFound(w, r)
				return
			}
			fmt.Fprintf(w, `<html><img id="landingImage" src="/img/%s.png"></html>`, id)
		case strings.HasPrefix(r.URL.Path, "/img/"):
			png.Encode(w, image.NewNRGBA(image.Rect(0, 0, 400, 400)))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestServer(t *testing.T, led *ledger.Ledger, ids ...string) http.Handler {
	t.Helper()
	cat := newCatalog(t, ids...)
	logger := log.New(io.Discard)
	fetcher := catalog.NewFetcher(catalog.Config{
		DetailURL:  cat.URL + "/dp/%s",
		Attempts:   1,
		RetryDelay: -1,
		HTTPClient: cat.Client(),
	}, nil, logger)
	return New(Config{
		Runner: pipeline.NewRunner(fetcher, logger),
		Ledger: led,
		Logger: logger,
	}).Handler()
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/compose", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	h := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body healthResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Status != "ok" || body.Build.Version == "" {
		t.Errorf("health = %+v", body)
	}
}

func TestRequestID(t *testing.T) {
	h := newTestServer(t, nil)

	t.Run("assigned", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if _, err := uuid.Parse(rec.Header().Get(RequestIDHeader)); err != nil {
			t.Errorf("request id %q is not a UUID", rec.Header().Get(RequestIDHeader))
		}
	})

	t.Run("propagated", func(t *testing.T) {
		id := uuid.NewString()
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, id)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got != id {
			t.Errorf("request id = %q, want %q", got, id)
		}
	})

	t.Run("garbage replaced", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.Header.Set(RequestIDHeader, "not-a-uuid")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get(RequestIDHeader); got == "not-a-uuid" {
			t.Error("invalid request id was echoed")
		}
	})
}

func TestCompose(t *testing.T) {
	h := newTestServer(t, nil, "A1", "A2")

	rec := post(t, h, `{"identifiers":["A1","A2"],"fractions":[0.25,0.25]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/jpeg" {
		t.Errorf("Content-Type = %q, want image/jpeg", ct)
	}
	if got := rec.Header().Get(HeaderCanvas); got != "634x300" {
		t.Errorf("%s = %q, want 634x300", HeaderCanvas, got)
	}
	if got := rec.Header().Get(HeaderMissing); got != "" {
		t.Errorf("%s = %q, want empty", HeaderMissing, got)
	}
	img, err := jpeg.Decode(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("decode JPEG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 634 || b.Dy() != 300 {
		t.Errorf("image size = %dx%d, want 634x300", b.Dx(), b.Dy())
	}
}

func TestComposeMissing(t *testing.T) {
	h := newTestServer(t, nil, "A1")

	rec := post(t, h, `{"identifiers":["A1","GONE1","GONE2"]}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get(HeaderMissing); got != "GONE1,GONE2" {
		t.Errorf("%s = %q, want GONE1,GONE2", HeaderMissing, got)
	}
}

func TestComposeErrors(t *testing.T) {
	h := newTestServer(t, nil, "A1")

	tests := []struct {
		name   string
		body   string
		status int
		code   errors.Code
	}{
		{"malformed json", `{"identifiers":`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"unknown field", `{"ids":["A1"]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"too many", `{"identifiers":["A","B","C","D"]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"fraction out of range", `{"identifiers":["A1"],"fractions":[0.9]}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"bad colour", `{"identifiers":["A1"],"background":"purple"}`, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"record without ledger", `{"identifiers":["A1"],"record":true}`, http.StatusInternalServerError, errors.ErrCodeConfiguration},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := post(t, h, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d (body %s)", rec.Code, tt.status, rec.Body.String())
			}
			var body errorResponse
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if body.Code != tt.code {
				t.Errorf("code = %q, want %q", body.Code, tt.code)
			}
			if body.Error == "" {
				t.Error("error message is empty")
			}
		})
	}
}

func TestComposeRecordsUsage(t *testing.T) {
	led := ledger.New(ledger.NewMemoryStore(), ledger.WithLogger(log.New(io.Discard)))
	h := newTestServer(t, led, "A1", "A2")

	for i, body := range []string{
		`{"identifiers":["A1"],"record":true,"feedback":"first"}`,
		`{"identifiers":[" A2 ",""],"record":true}`,
	} {
		rec := post(t, h, body)
		if rec.Code != http.StatusOK {
			t.Fatalf("compose %d: status = %d, body = %s", i, rec.Code, rec.Body.String())
		}
		if got, want := rec.Header().Get(HeaderRecordID), fmt.Sprint(i+1); got != want {
			t.Errorf("compose %d: record id = %q, want %q", i, got, want)
		}
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("ledger status = %d", rec.Code)
	}
	var body ledgerResponse
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Records) != 2 {
		t.Fatalf("records = %d, want 2", len(body.Records))
	}
	if body.Records[0].Feedback != "first" {
		t.Errorf("feedback = %q, want first", body.Records[0].Feedback)
	}
	if ids := body.Records[1].Identifiers; len(ids) != 1 || ids[0] != "A2" {
		t.Errorf("identifiers = %v, want [A2]", ids)
	}
}

func TestLedgerEmpty(t *testing.T) {
	led := ledger.New(ledger.NewMemoryStore())
	h := newTestServer(t, led)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if got := strings.TrimSpace(rec.Body.String()); got != `{"records":[]}` {
		t.Errorf("body = %s, want empty records array", got)
	}
}

func TestLedgerNotConfigured(t *testing.T) {
	h := newTestServer(t, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/ledger", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{errors.New(errors.ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{ledger.ErrConflict, http.StatusConflict},
		{errors.New(errors.ErrCodeConfiguration, "x"), http.StatusInternalServerError},
		{errors.New(errors.ErrCodeInternal, "x"), http.StatusInternalServerError},
		{io.EOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := statusFor(tt.err); got != tt.want {
			t.Errorf("statusFor(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s := New(Config{Logger: log.New(io.Discard)})
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe() error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
