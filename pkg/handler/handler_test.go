package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kerem-kaynak/ja-analysis/pkg/config"
	"github.com/kerem-kaynak/ja-analysis/pkg/service"
)

const testLexicon = "東京\t名詞\n都\t名詞\n東京都\t名詞\t*\t*\t*\t東京/都\nに\t助詞\n行っ\t動詞\t*\t行く\t行く\nた\t助動詞\n。\t補助記号\n"

func newTestServer(t *testing.T) (*httptest.Server, *service.Service) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "core.tsv")
	if err := os.WriteFile(path, []byte(testLexicon), 0o644); err != nil {
		t.Fatalf("writing lexicon: %v", err)
	}
	cfg := &config.Config{
		Dictionaries: map[string]config.DictionaryConfig{
			"core": {Engine: config.EngineLexicon, Path: path},
		},
		Indexes: map[string]config.IndexConfig{
			"docs": {Dictionary: "core", SplitMode: "c"},
		},
	}
	svc, err := service.New(cfg)
	if err != nil {
		t.Fatalf("service.New failed: %v", err)
	}
	t.Cleanup(svc.Close)

	mux := http.NewServeMux()
	New(svc).Register(mux)
	srv := httptest.NewServer(RequestID(mux))
	t.Cleanup(srv.Close)
	return srv, svc
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func surfaces(resp AnalyzeResponse) string {
	parts := make([]string, len(resp.Tokens))
	for i, tok := range resp.Tokens {
		parts[i] = tok.Surface
	}
	return strings.Join(parts, "|")
}

func TestAnalyze(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name        string
		url         string
		contentType string
		body        string
		expected    string
		mode        string
	}{
		{"json default mode", "/v1/indexes/docs/analyze", "application/json", `{"text":"東京都に行った。"}`, "東京都|に|行っ|た", "C"},
		{"json mode A", "/v1/indexes/docs/analyze", "application/json; charset=utf-8", `{"text":"東京都に行った。","mode":"a"}`, "東京|都|に|行っ|た", "A"},
		{"raw body", "/v1/indexes/docs/analyze?mode=A", "text/plain", "東京都に行った。", "東京|都|に|行っ|た", "A"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := http.Post(srv.URL+tt.url, tt.contentType, strings.NewReader(tt.body))
			if err != nil {
				t.Fatalf("POST failed: %v", err)
			}
			if resp.StatusCode != http.StatusOK {
				t.Fatalf("status = %d, want 200", resp.StatusCode)
			}
			if resp.Header.Get("X-Request-ID") == "" {
				t.Error("Expected X-Request-ID header")
			}
			got := decode[AnalyzeResponse](t, resp)
			if s := surfaces(got); s != tt.expected {
				t.Errorf("tokens = %q, want %q", s, tt.expected)
			}
			if got.Mode != tt.mode || got.Length != 8 {
				t.Errorf("mode = %s, length = %d, want %s and 8", got.Mode, got.Length, tt.mode)
			}
		})
	}
}

func TestAnalyze_Errors(t *testing.T) {
	srv, _ := newTestServer(t)

	tests := []struct {
		name     string
		url      string
		body     string
		expected int
	}{
		{"unknown index", "/v1/indexes/missing/analyze", `{"text":"x"}`, http.StatusNotFound},
		{"bad json", "/v1/indexes/docs/analyze", `{"text":`, http.StatusBadRequest},
		{"bad mode", "/v1/indexes/docs/analyze", `{"text":"x","mode":"z"}`, http.StatusBadRequest},
	}
	for _, tt := range tests {
		resp, err := http.Post(srv.URL+tt.url, "application/json", strings.NewReader(tt.body))
		if err != nil {
			t.Fatalf("%s: POST failed: %v", tt.name, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tt.expected {
			t.Errorf("%s: status = %d, want %d", tt.name, resp.StatusCode, tt.expected)
		}
	}
}

func TestAnalyze_EmptyText(t *testing.T) {
	srv, _ := newTestServer(t)
	resp, err := http.Post(srv.URL+"/v1/indexes/docs/analyze", "application/json", strings.NewReader(`{"text":""}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	got := decode[AnalyzeResponse](t, resp)
	if got.Tokens == nil || len(got.Tokens) != 0 {
		t.Errorf("Tokens = %v, want empty list", got.Tokens)
	}
}

func TestReloadAndStats(t *testing.T) {
	srv, _ := newTestServer(t)

	for i := 0; i < 2; i++ {
		resp, err := http.Post(srv.URL+"/v1/indexes/docs/analyze", "application/json", strings.NewReader(`{"text":"東京都"}`))
		if err != nil {
			t.Fatalf("POST failed: %v", err)
		}
		resp.Body.Close()
	}

	resp, err := http.Post(srv.URL+"/v1/dictionaries/core/reload", "", nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	reloaded := decode[map[string]any](t, resp)
	if reloaded["version"] != float64(1) {
		t.Errorf("version = %v, want 1", reloaded["version"])
	}

	resp, err = http.Post(srv.URL+"/v1/dictionaries/other/reload", "", nil)
	if err != nil {
		t.Fatalf("reload failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown dictionary status = %d, want 404", resp.StatusCode)
	}

	resp, err = http.Get(srv.URL + "/v1/cache/stats")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	stats := decode[[]CacheStatsEntry](t, resp)
	if len(stats) != 1 {
		t.Fatalf("got %d cache entries, want 1", len(stats))
	}
	if stats[0].Index != "docs" || stats[0].Stats.Hits != 1 || stats[0].Stats.Misses != 1 {
		t.Errorf("stats = %+v, want one hit and one miss for docs", stats[0])
	}
	if stats[0].HitRate != 0.5 {
		t.Errorf("HitRate = %v, want 0.5", stats[0].HitRate)
	}

	resp, err = http.Get(srv.URL + "/v1/dictionaries")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	versions := decode[map[string]uint64](t, resp)
	if versions["core"] != 1 {
		t.Errorf("versions = %v, want core=1", versions)
	}
}
