// Package handler serves the analysis HTTP API.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/kerem-kaynak/ja-analysis/pkg/dictionary"
	"github.com/kerem-kaynak/ja-analysis/pkg/input"
	"github.com/kerem-kaynak/ja-analysis/pkg/logger"
	"github.com/kerem-kaynak/ja-analysis/pkg/morph"
	"github.com/kerem-kaynak/ja-analysis/pkg/service"
	"github.com/kerem-kaynak/ja-analysis/pkg/tokenizer"
)

// DefaultMaxBody bounds request bodies.
const DefaultMaxBody = 8 << 20

// Analyzer is the part of the service the API needs.
type Analyzer interface {
	Index(name string) (*service.Index, error)
	Indexes() []string
	Reload(name string) (uint64, error)
	CacheStats() []tokenizer.IndexStats
	DictionaryVersions() map[string]uint64
}

type Handler struct {
	analyzer Analyzer
	maxBody  int64
	logger   *slog.Logger
}

func New(analyzer Analyzer) *Handler {
	return &Handler{
		analyzer: analyzer,
		maxBody:  DefaultMaxBody,
		logger:   slog.Default().With("component", "analysis-handler"),
	}
}

// Register installs the API routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /v1/indexes/{index}/analyze", h.Analyze)
	mux.HandleFunc("GET /v1/indexes", h.ListIndexes)
	mux.HandleFunc("POST /v1/dictionaries/{name}/reload", h.Reload)
	mux.HandleFunc("GET /v1/dictionaries", h.Dictionaries)
	mux.HandleFunc("GET /v1/cache/stats", h.CacheStats)
	mux.HandleFunc("GET /health", h.Health)
}

// AnalyzeRequest is the JSON form of an analyze call.
type AnalyzeRequest struct {
	Text string `json:"text"`
	Mode string `json:"mode"`
}

// AnalyzeResponse lists tokens at rune offsets into the request text.
type AnalyzeResponse struct {
	Index  string            `json:"index"`
	Mode   string            `json:"mode"`
	Length int               `json:"length"`
	Tokens []tokenizer.Token `json:"tokens"`
}

// Analyze tokenizes the request. A JSON body carries the text and an
// optional mode; any other body is streamed as raw text with the mode taken
// from the "mode" query parameter.
func (h *Handler) Analyze(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	log := logger.FromContext(r.Context())

	name := r.PathValue("index")
	ix, err := h.analyzer.Index(name)
	if err != nil {
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	}

	body := http.MaxBytesReader(w, r.Body, h.maxBody)
	var (
		src      io.Reader
		modeName = r.URL.Query().Get("mode")
	)
	if isJSON(r) {
		var req AnalyzeRequest
		if err := json.NewDecoder(body).Decode(&req); err != nil {
			h.writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
		if req.Mode != "" {
			modeName = req.Mode
		}
		src = input.NewStringReader(req.Text)
	} else {
		src = body
	}

	mode := ix.Mode()
	if modeName != "" {
		if mode, err = morph.ParseSplitMode(modeName); err != nil {
			h.writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	tokens, length, err := ix.Analyze(src, mode)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.writeError(w, http.StatusRequestEntityTooLarge, "request body too large")
			return
		}
		stage, _ := morph.StageOf(err)
		log.Error("analysis failed", "index", name, "stage", stage, "error", err)
		h.writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}
	if tokens == nil {
		tokens = []tokenizer.Token{}
	}

	log.Debug("analysis completed",
		"index", name,
		"mode", mode.String(),
		"tokens", len(tokens),
		"length", length,
		"latency_ms", time.Since(start).Milliseconds(),
	)
	h.writeJSON(w, http.StatusOK, AnalyzeResponse{
		Index:  name,
		Mode:   mode.String(),
		Length: length,
		Tokens: tokens,
	})
}

func (h *Handler) ListIndexes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{"indexes": h.analyzer.Indexes()})
}

// Reload rebuilds the named dictionary.
func (h *Handler) Reload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	version, err := h.analyzer.Reload(name)
	switch {
	case errors.Is(err, dictionary.ErrNotLoaded):
		h.writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		h.logger.Error("dictionary reload failed", "dictionary", name, "error", err)
		h.writeError(w, http.StatusInternalServerError, "reload failed")
		return
	}
	h.logger.Info("dictionary reloaded", "dictionary", name, "version", version)
	h.writeJSON(w, http.StatusOK, map[string]any{"dictionary": name, "version": version})
}

func (h *Handler) Dictionaries(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, h.analyzer.DictionaryVersions())
}

// CacheStatsEntry is the JSON view of one index cache.
type CacheStatsEntry struct {
	Index    string          `json:"index"`
	Strategy string          `json:"strategy"`
	Capacity int             `json:"capacity"`
	MaxInput int             `json:"max_input"`
	HitRate  float64         `json:"hit_rate"`
	Stats    tokenizer.Stats `json:"stats"`
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	snapshot := h.analyzer.CacheStats()
	out := make([]CacheStatsEntry, 0, len(snapshot))
	for _, s := range snapshot {
		var hitRate float64
		if total := s.Stats.Hits + s.Stats.Misses; total > 0 {
			hitRate = float64(s.Stats.Hits) / float64(total)
		}
		out = append(out, CacheStatsEntry{
			Index:    s.Index,
			Strategy: s.Options.Strategy.String(),
			Capacity: s.Options.Capacity,
			MaxInput: s.Options.MaxInput,
			HitRate:  hitRate,
			Stats:    s.Stats,
		})
	}
	h.writeJSON(w, http.StatusOK, out)
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}

func isJSON(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mt, _, err := mime.ParseMediaType(ct)
	return err == nil && strings.EqualFold(mt, "application/json")
}
