package ocr

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func ocrServer(t *testing.T, status int, resp map[string]any) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(8 << 20); err != nil {
			t.Errorf("expected multipart upload: %v", err)
		}
		if _, _, err := r.FormFile("file"); err != nil {
			t.Errorf("expected file field: %v", err)
		}
		w.WriteHeader(status)
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestChainFirstProviderWins(t *testing.T) {
	first := ocrServer(t, http.StatusOK, map[string]any{
		"success": true,
		"text":    "Photosynthesis converts light into chemical energy.",
	})
	defer first.Close()

	secondCalled := false
	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		secondCalled = true
	}))
	defer second.Close()

	chain := NewChain([]Provider{
		{Name: "primary", URL: first.URL},
		{Name: "secondary", URL: second.URL},
	}, nil)

	got := chain.Recognize(context.Background(), "scan.pdf", []byte("%PDF-1.4"))
	if got != "Photosynthesis converts light into chemical energy." {
		t.Errorf("unexpected text: %q", got)
	}
	if secondCalled {
		t.Error("second provider should not be called when first succeeds")
	}
}

func TestChainFallsThroughOnFailure(t *testing.T) {
	failing := ocrServer(t, http.StatusInternalServerError, map[string]any{
		"success": false, "error": "model not loaded",
	})
	defer failing.Close()

	tooShort := ocrServer(t, http.StatusOK, map[string]any{
		"success": true, "text": "x = 1",
	})
	defer tooShort.Close()

	working := ocrServer(t, http.StatusOK, map[string]any{
		"success": true, "latex": `\frac{dy}{dx} = 2x + 3 \cdot \sin(x)`,
	})
	defer working.Close()

	chain := NewChain([]Provider{
		{Name: "down", URL: failing.URL},
		{Name: "terse", URL: tooShort.URL},
		{Name: "math", URL: working.URL},
	}, nil)

	got := chain.Recognize(context.Background(), "scan.png", []byte{0x89, 'P', 'N', 'G'})
	if got != `\frac{dy}{dx} = 2x + 3 \cdot \sin(x)` {
		t.Errorf("expected latex from third provider, got %q", got)
	}
}

func TestChainExhaustedReturnsEmpty(t *testing.T) {
	failing := ocrServer(t, http.StatusOK, map[string]any{
		"success": false, "error": "unreadable image",
	})
	defer failing.Close()

	chain := NewChain([]Provider{{Name: "only", URL: failing.URL}}, nil)
	if got := chain.Recognize(context.Background(), "scan.pdf", []byte("data")); got != "" {
		t.Errorf("expected empty text when all providers fail, got %q", got)
	}
}

func TestChainNoProviders(t *testing.T) {
	chain := NewChain(nil, nil)
	if chain.Configured() {
		t.Error("empty chain should not report configured")
	}
	if got := chain.Recognize(context.Background(), "scan.pdf", []byte("data")); got != "" {
		t.Errorf("expected empty text with no providers, got %q", got)
	}
}

func TestIsLikelyFormula(t *testing.T) {
	tests := []struct {
		name string
		text string
		want bool
	}{
		{"empty", "", false},
		{"latex fraction", `\frac{a}{b}`, true},
		{"equation", "E = mc^2", true},
		{"short symbol heavy", "(x+y)^2 = x^2 + 2xy + y^2", true},
		{"greek keyword", "the value of sigma squared", true},
		{"plain prose", "The quick brown fox jumps over the lazy dog today", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLikelyFormula(tt.text); got != tt.want {
				t.Errorf("IsLikelyFormula(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
