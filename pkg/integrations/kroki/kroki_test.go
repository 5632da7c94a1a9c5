package kroki

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/matzehuels/ebdgraph/pkg/buildinfo"
	errs "github.com/matzehuels/ebdgraph/pkg/errors"
)

func TestRender(t *testing.T) {
	var got request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			t.Errorf("path = %q, want /", r.URL.Path)
		}
		if ua := r.Header.Get("User-Agent"); ua != buildinfo.UserAgent() {
			t.Errorf("User-Agent = %q, want %q", ua, buildinfo.UserAgent())
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode: %v", err)
		}
		w.Header().Set("Content-Type", "image/svg+xml")
		w.Write([]byte(`<svg width="10pt" height="10pt"></svg>`))
	}))
	defer server.Close()

	c := NewClient(WithURL(server.URL + "/"))
	out, err := c.Render(context.Background(), "@startuml\n@enduml", PlantUML, SVG)
	if err != nil {
		t.Fatalf("Render() error: %v", err)
	}
	if string(out) != `<svg width="10pt" height="10pt"></svg>` {
		t.Errorf("Render() = %q", out)
	}
	want := request{Source: "@startuml\n@enduml", Type: PlantUML, Format: SVG}
	if got != want {
		t.Errorf("request = %+v, want %+v", got, want)
	}
}

func TestRenderStatusError(t *testing.T) {
	calls := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte("Error 400: Syntax Error? (line 3)"))
	}))
	defer server.Close()

	c := NewClient(WithURL(server.URL), WithRetry(3, time.Millisecond))
	_, err := c.Render(context.Background(), "digraph {", Graphviz, PNG)

	if !errs.Is(err, errs.ErrCodeRenderService) {
		t.Fatalf("err = %v, want RENDER_SERVICE", err)
	}
	var se *errs.StatusError
	if !errors.As(err, &se) {
		t.Fatal("cause should be *StatusError")
	}
	if se.StatusCode != 400 || se.Body != "Error 400: Syntax Error? (line 3)" {
		t.Errorf("StatusError = %+v", se)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRenderRejectsBadArguments(t *testing.T) {
	c := NewClient(WithURL("http://127.0.0.1:0"))
	tests := []struct {
		name   string
		typ    DiagramType
		format Format
		code   errs.Code
	}{
		{"unknown type", DiagramType("mermaid"), SVG, errs.ErrCodeInvalidLanguage},
		{"unknown format", PlantUML, Format("gif"), errs.ErrCodeInvalidFormat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Render(context.Background(), "x", tt.typ, tt.format)
			if !errs.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"svg", SVG, false},
		{"PNG", PNG, false},
		{" pdf ", PDF, false},
		{"jpeg", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient()
	if c.URL() != DefaultURL {
		t.Errorf("URL = %q", c.URL())
	}
	if c.timeout != DefaultTimeout {
		t.Errorf("timeout = %v", c.timeout)
	}
}
