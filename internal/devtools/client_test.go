package devtools

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestParseBaseURL_DefaultsAndNormalizes(t *testing.T) {
	u, err := parseBaseURL("")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.Scheme != "http" || u.Host != defaultAddr {
		t.Fatalf("url = %q, want http://%s", u.String(), defaultAddr)
	}

	u, err = parseBaseURL("ws://localhost:9333/devtools/browser/abc?x=1")
	if err != nil {
		t.Fatalf("parseBaseURL returned error: %v", err)
	}
	if u.String() != "http://localhost:9333" {
		t.Fatalf("url = %q, want http://localhost:9333", u.String())
	}

	if _, err := parseBaseURL("ftp://localhost"); err == nil {
		t.Fatalf("expected error for ftp scheme")
	}
}

func TestClient_Endpoints(t *testing.T) {
	t.Parallel()

	var newMethod, newQuery, activated, closed string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/json/version":
			_ = json.NewEncoder(w).Encode(Version{Browser: "Chrome/140", WebSocketDebuggerURL: "ws://x/devtools/browser/1"})
		case r.URL.Path == "/json/list":
			_ = json.NewEncoder(w).Encode([]Target{
				{ID: "A", Type: "page", Title: "Go", URL: "https://go.dev/"},
				{ID: "B", Type: "service_worker", URL: "https://go.dev/sw.js"},
			})
		case r.URL.Path == "/json/new":
			newMethod = r.Method
			newQuery = r.URL.RawQuery
			_ = json.NewEncoder(w).Encode(Target{ID: "C", Type: "page", URL: "https://example.com/?a=1&b=2"})
		case len(r.URL.Path) > len("/json/activate/") && r.URL.Path[:len("/json/activate/")] == "/json/activate/":
			activated = r.URL.Path[len("/json/activate/"):]
			_, _ = w.Write([]byte("Target activated"))
		case len(r.URL.Path) > len("/json/close/") && r.URL.Path[:len("/json/close/")] == "/json/close/":
			closed = r.URL.Path[len("/json/close/"):]
			_, _ = w.Write([]byte("Target is closing"))
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	t.Cleanup(cancel)

	v, err := c.Version(ctx)
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if v.WebSocketDebuggerURL != "ws://x/devtools/browser/1" {
		t.Fatalf("debugger url = %q", v.WebSocketDebuggerURL)
	}

	targets, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	if len(targets) != 2 || !targets[0].IsPage() || targets[1].IsPage() {
		t.Fatalf("targets = %#v", targets)
	}

	created, err := c.New(ctx, "https://example.com/?a=1&b=2")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if created.ID != "C" {
		t.Fatalf("created id = %q, want C", created.ID)
	}
	if newMethod != http.MethodPut {
		t.Fatalf("new method = %s, want PUT", newMethod)
	}
	if newQuery != "https%3A%2F%2Fexample.com%2F%3Fa%3D1%26b%3D2" {
		t.Fatalf("new query = %q", newQuery)
	}

	if err := c.Activate(ctx, "A"); err != nil {
		t.Fatalf("Activate returned error: %v", err)
	}
	if err := c.Close(ctx, "B"); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if activated != "A" || closed != "B" {
		t.Fatalf("activated=%q closed=%q", activated, closed)
	}

	if err := c.Close(ctx, " "); err == nil {
		t.Fatalf("expected error for empty id")
	}
}

func TestClient_StatusErrors(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/json/version" {
			_ = json.NewEncoder(w).Encode(Version{Browser: "Chrome/140"})
			return
		}
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(server.URL)
	if err != nil {
		t.Fatalf("NewClient returned error: %v", err)
	}
	ctx := context.Background()
	if _, err := c.List(ctx); err == nil {
		t.Fatalf("expected error for 500 response")
	}
	if _, err := c.Version(ctx); err == nil {
		t.Fatalf("expected error for missing debugger url")
	}
}
