package ingest

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/david/subsidy-finder/internal/config"
)

func fastSettings() config.FetchSettings {
	return config.FetchSettings{
		DelaySeconds:   0.01,
		TimeoutSeconds: 5,
		MaxRetries:     1,
		UserAgent:      "subsidy-finder-test",
	}
}

func TestClientFetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body>hello</body></html>")
	}))
	defer srv.Close()

	c := NewClient(fastSettings())
	defer c.Close()

	doc, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	defer doc.Body.Close()

	body, _ := io.ReadAll(doc.Body)
	if !strings.Contains(string(body), "hello") {
		t.Errorf("unexpected body %q", body)
	}
	if doc.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", doc.StatusCode)
	}
	if gotUA != "subsidy-finder-test" {
		t.Errorf("User-Agent = %q", gotUA)
	}
}

func TestClientFetchNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	c := NewClient(fastSettings())
	defer c.Close()

	if _, err := c.Fetch(context.Background(), srv.URL); err == nil {
		t.Fatal("expected error for 404 response")
	}
}

func TestClientFetchCertificateFallback(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "secure content")
	}))
	defer srv.Close()

	// The test server's certificate is self-signed, so the verifying client
	// fails and the insecure fallback must kick in.
	c := NewClient(fastSettings())
	defer c.Close()

	doc, err := c.Fetch(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("Fetch() error = %v, want certificate fallback to succeed", err)
	}
	defer doc.Body.Close()

	body, _ := io.ReadAll(doc.Body)
	if string(body) != "secure content" {
		t.Errorf("unexpected body %q", body)
	}
}

func TestClientFetchContextCancelled(t *testing.T) {
	c := NewClient(config.FetchSettings{DelaySeconds: 60, TimeoutSeconds: 5})
	defer c.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := c.Fetch(ctx, "http://example.invalid/"); err == nil {
		t.Fatal("expected context error while waiting on the rate limiter")
	}
}

func TestIsCertificateError(t *testing.T) {
	tests := []struct {
		msg  string
		want bool
	}{
		{"x509: certificate signed by unknown authority", true},
		{"tls: handshake failure", true},
		{"connection refused", false},
	}
	for _, tt := range tests {
		if got := isCertificateError(errors.New(tt.msg)); got != tt.want {
			t.Errorf("isCertificateError(%q) = %v, want %v", tt.msg, got, tt.want)
		}
	}
	if isCertificateError(nil) {
		t.Error("nil error should not be a certificate error")
	}
}
