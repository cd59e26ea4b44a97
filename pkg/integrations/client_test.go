package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/promocanvas/pkg/httputil"
)

func TestNewClient(t *testing.T) {
	headers := map[string]string{"User-Agent": "test-agent"}
	client := NewClient(time.Second, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Fatal("NewClient() http client is nil")
	}
	if client.http.Timeout != time.Second {
		t.Errorf("timeout = %v, want 1s", client.http.Timeout)
	}
	if client.headers["User-Agent"] != "test-agent" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientDefaultTimeout(t *testing.T) {
	client := NewClient(0, nil)
	if client.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v, want %v", client.http.Timeout, DefaultTimeout)
	}
	if client.headers != nil {
		t.Error("NewClient() should allow nil headers")
	}
}

func TestClientGet(t *testing.T) {
	type response struct {
		Message string `json:"message"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(time.Second, nil).WithHTTPClient(server.Client())

	var resp response
	if err := client.Get(context.Background(), server.URL, &resp); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if resp.Message != "hello" {
		t.Errorf("Get() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientGetBytesHeaders(t *testing.T) {
	var gotUA, gotLang, gotExtra string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotLang = r.Header.Get("Accept-Language")
		gotExtra = r.Header.Get("X-Extra")
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	client := NewClient(time.Second, BrowserHeaders("")).WithHTTPClient(server.Client())
	data, err := client.GetBytes(context.Background(), server.URL, map[string]string{"X-Extra": "1"})
	if err != nil {
		t.Fatalf("GetBytes() error: %v", err)
	}
	if string(data) != "payload" {
		t.Errorf("body = %q, want payload", data)
	}
	if gotUA != BrowserUserAgent {
		t.Errorf("User-Agent = %q", gotUA)
	}
	if gotLang == "" {
		t.Error("Accept-Language not sent")
	}
	if gotExtra != "1" {
		t.Error("request headers not applied")
	}
}

func TestClientStatusMapping(t *testing.T) {
	tests := []struct {
		status    int
		wantErr   error
		retryable bool
	}{
		{http.StatusNotFound, ErrNotFound, false},
		{http.StatusForbidden, ErrNetwork, false},
		{http.StatusTooManyRequests, ErrNetwork, true},
		{http.StatusServiceUnavailable, ErrNetwork, true},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			client := NewClient(time.Second, nil).WithHTTPClient(server.Client())
			_, err := client.GetBytes(context.Background(), server.URL, nil)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got := httputil.IsRetryable(err); got != tt.retryable {
				t.Errorf("IsRetryable = %v, want %v", got, tt.retryable)
			}
			if got := StatusCode(err); got != tt.status {
				t.Errorf("StatusCode = %d, want %d", got, tt.status)
			}
		})
	}
}

func TestClientConnectionError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	client := NewClient(time.Second, nil)
	_, err := client.GetBytes(context.Background(), url, nil)
	if !errors.Is(err, ErrNetwork) {
		t.Fatalf("err = %v, want ErrNetwork", err)
	}
	if !httputil.IsRetryable(err) {
		t.Error("connection errors should be retryable")
	}
}

func TestClientContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(time.Second, nil).WithHTTPClient(server.Client())
	if _, err := client.GetBytes(ctx, server.URL, nil); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
