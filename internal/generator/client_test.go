package generator

import (
	"context"
	"errors"
	"math/rand/v2"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/erazemk/zbirka/internal/model"
)

const validBody = `{
	"imageBase64": "iVBORw0KGgo=",
	"metadata": {"id": "gen-001", "name": "Sparkit", "rarity": "S+"},
	"generatedAt": "2026-03-01T12:00:00Z"
}`

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	opts = append([]Option{WithRand(rand.New(rand.NewPCG(1, 2)))}, opts...)
	return New(server.URL+"/", "secret-token", opts...)
}

func respond(status int, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestGenerateSuccess(t *testing.T) {
	var gotAuth, gotPath, gotMethod string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotPath = r.URL.Path
		gotMethod = r.Method
		respond(http.StatusOK, validBody)(w, r)
	})

	p, err := client.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	if gotAuth != "Bearer secret-token" {
		t.Errorf("expected bearer header, got %q", gotAuth)
	}
	if gotMethod != http.MethodGet || gotPath != "/v1/generate" {
		t.Errorf("expected GET /v1/generate, got %s %s", gotMethod, gotPath)
	}

	if p.ID != "gen-001" || p.Name != "Sparkit" || p.Rarity != model.RaritySPlus {
		t.Errorf("unexpected metadata: %+v", p)
	}
	if p.ImageBase64 != "iVBORw0KGgo=" {
		t.Errorf("image payload altered: %q", p.ImageBase64)
	}
	if p.Status != model.StatusOwned {
		t.Errorf("expected OWNED, got %s", p.Status)
	}
	if !p.GeneratedAt.Equal(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected generatedAt %v", p.GeneratedAt)
	}
}

func TestGenerateSynthesizesStats(t *testing.T) {
	client := newTestClient(t, respond(http.StatusOK, validBody))

	for i := 0; i < 50; i++ {
		p, err := client.Generate(context.Background())
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		if p.Attack < model.MinAttack || p.Attack > model.MaxAttack {
			t.Errorf("attack %d out of range", p.Attack)
		}
		if p.PV < model.MinPV || p.PV > model.MaxPV {
			t.Errorf("pv %d out of range", p.PV)
		}
		if !contains(model.ElementTypes, p.Type) {
			t.Errorf("unknown type %q", p.Type)
		}
		if !contains(model.MoveNames, p.AttackName) {
			t.Errorf("unknown move %q", p.AttackName)
		}
	}
}

func TestGenerateRemoteError(t *testing.T) {
	body := `{"error": {"code": 429, "message": "slow down", "timestamp": "2026-03-01T12:00:00Z"}}`
	client := newTestClient(t, respond(http.StatusTooManyRequests, body))

	_, err := client.Generate(context.Background())
	var remote *RemoteError
	if !errors.As(err, &remote) {
		t.Fatalf("expected RemoteError, got %v", err)
	}
	if remote.Message != "slow down" || remote.Code != "429" {
		t.Errorf("unexpected remote error: %+v", remote)
	}
}

func TestGenerateUnknownError(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
	}{
		{"html body", http.StatusInternalServerError, "<html>oops</html>"},
		{"empty body", http.StatusUnauthorized, ""},
		{"json without error", http.StatusBadGateway, `{"detail": "upstream"}`},
		{"empty error object", http.StatusInternalServerError, `{"error": {}}`},
		{"blank message", http.StatusServiceUnavailable, `{"error": {"code": 503, "message": "  "}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(tt.status, tt.body))

			_, err := client.Generate(context.Background())
			var unknown *UnknownError
			if !errors.As(err, &unknown) {
				t.Fatalf("expected UnknownError, got %v", err)
			}
			if unknown.Status != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, unknown.Status)
			}
		})
	}
}

func TestGenerateMalformed(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `{"imageBase64":`},
		{"missing image", `{"metadata": {"id": "1", "name": "A", "rarity": "A"}, "generatedAt": "2026-03-01T12:00:00Z"}`},
		{"missing metadata", `{"imageBase64": "eA==", "generatedAt": "2026-03-01T12:00:00Z"}`},
		{"missing id", `{"imageBase64": "eA==", "metadata": {"name": "A", "rarity": "A"}, "generatedAt": "2026-03-01T12:00:00Z"}`},
		{"missing name", `{"imageBase64": "eA==", "metadata": {"id": "1", "rarity": "A"}, "generatedAt": "2026-03-01T12:00:00Z"}`},
		{"unknown rarity", `{"imageBase64": "eA==", "metadata": {"id": "1", "name": "A", "rarity": "SS"}, "generatedAt": "2026-03-01T12:00:00Z"}`},
		{"missing generatedAt", `{"imageBase64": "eA==", "metadata": {"id": "1", "name": "A", "rarity": "A"}}`},
		{"bad generatedAt", `{"imageBase64": "eA==", "metadata": {"id": "1", "name": "A", "rarity": "A"}, "generatedAt": "yesterday"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, respond(http.StatusOK, tt.body))

			_, err := client.Generate(context.Background())
			if !errors.Is(err, ErrMalformedResponse) {
				t.Errorf("expected ErrMalformedResponse, got %v", err)
			}
		})
	}
}

func TestGenerateTimeout(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}, WithTimeout(50*time.Millisecond))

	start := time.Now()
	_, err := client.Generate(context.Background())
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("timeout did not cancel the request, took %s", elapsed)
	}
}

func TestGenerateNetworkUnavailable(t *testing.T) {
	server := httptest.NewServer(respond(http.StatusOK, validBody))
	url := server.URL
	server.Close()

	client := New(url, "token")
	_, err := client.Generate(context.Background())
	if !errors.Is(err, ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable, got %v", err)
	}
	if errors.Is(err, ErrTimeout) {
		t.Error("network failure must not be reported as timeout")
	}
}

func TestGenerateOverTLS(t *testing.T) {
	server := httptest.NewTLSServer(respond(http.StatusOK, validBody))
	t.Cleanup(server.Close)

	// The default client does not trust the test certificate.
	_, err := New(server.URL, "token").Generate(context.Background())
	if !errors.Is(err, ErrNetworkUnavailable) {
		t.Fatalf("expected ErrNetworkUnavailable without the test CA, got %v", err)
	}

	client := New(server.URL, "token", WithHTTPClient(server.Client()))
	p, err := client.Generate(context.Background())
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if p.ID != "gen-001" {
		t.Errorf("expected id gen-001, got %q", p.ID)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
