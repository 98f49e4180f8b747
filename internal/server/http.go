package server

import (
	"crypto/subtle"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/spf13/viper"

	"github.com/mithrel/medic/internal/assistant"
	"github.com/mithrel/medic/internal/db"
	"github.com/mithrel/medic/internal/markdown"
	"github.com/mithrel/medic/internal/prompts"
	"github.com/mithrel/medic/internal/util"
	"github.com/mithrel/medic/pkg/api"
)

//go:embed web/index.html
var web embed.FS

const (
	msgChatFailed    = "Failed to get response from AI"
	msgAnalyzeFailed = "Failed to analyze encounter"
	msgBadBody       = "Invalid request body"
	msgNoMessages    = "Messages are required"
	msgNoTranscript  = "No transcript provided. Please record your encounter or enter text manually."
)

// Server serves the JSON API and the web page.
type Server struct {
	cfg       *viper.Viper
	assistant *assistant.Service
	store     db.Store
	log       *log.Logger
	policy    *bluemonday.Policy
}

func New(cfg *viper.Viper, a *assistant.Service, store db.Store, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{cfg: cfg, assistant: a, store: store, log: logger, policy: htmlPolicy()}
}

// htmlPolicy allows exactly what the markdown renderer emits.
func htmlPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowElements("div", "span", "p", "h1", "h2", "h3", "hr", "li", "strong", "code")
	p.AllowAttrs("class").Globally()
	p.AllowDataAttributes()
	return p
}

// Router returns an http.Handler with registered routes.
func (s *Server) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("/api/chat", s.auth(s.handleChat))
	mux.HandleFunc("/api/analyze-encounter", s.auth(s.handleAnalyze))
	mux.HandleFunc("/api/render", s.auth(s.handleRender))
	mux.HandleFunc("/api/suggestions", s.auth(s.handleSuggestions))
	mux.HandleFunc("/api/topics", s.auth(s.handleTopics))
	mux.HandleFunc("/api/history", s.auth(s.handleHistory))
	mux.HandleFunc("/api/history/{id}", s.auth(s.handleExchange))
	mux.HandleFunc("/{$}", s.handleIndex)
	return mux
}

// auth enforces a bearer token when auth.token is configured.
func (s *Server) auth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tok := strings.TrimSpace(s.cfg.GetString("auth.token"))
		if tok == "" {
			next.ServeHTTP(w, r)
			return
		}
		got, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer ")
		if !ok || subtle.ConstantTimeCompare([]byte(strings.TrimSpace(got)), []byte(tok)) != 1 {
			writeError(w, http.StatusUnauthorized, "unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	http.ServeFileFS(w, r, web, "web/index.html")
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req api.ChatRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	res, err := s.assistant.Chat(r.Context(), req.Messages)
	switch {
	case errors.Is(err, assistant.ErrNoMessages):
		writeError(w, http.StatusBadRequest, msgNoMessages)
		return
	case errors.Is(err, assistant.ErrBadRole):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		s.log.Printf("chat api error: %v", err)
		writeError(w, http.StatusInternalServerError, msgChatFailed)
		return
	}
	writeJSON(w, http.StatusOK, api.ChatResponse{
		Reply:  res.Reply,
		HTML:   s.html(res.Doc, ""),
		Blocks: res.Doc.Blocks,
	})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody())
	if err := r.ParseMultipartForm(s.maxBody()); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, msgBadBody)
			return
		}
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	transcript := r.FormValue("transcript")
	res, err := s.assistant.Analyze(r.Context(), transcript)
	switch {
	case errors.Is(err, assistant.ErrEmptyTranscript):
		writeError(w, http.StatusBadRequest, msgNoTranscript)
		return
	case err != nil:
		s.log.Printf("analyze encounter api error: %v", err)
		writeError(w, http.StatusInternalServerError, msgAnalyzeFailed)
		return
	}
	writeJSON(w, http.StatusOK, api.AnalyzeResponse{
		Analysis: res.Analysis,
		HTML:     s.html(res.Doc, ""),
		Blocks:   res.Doc.Blocks,
		Cached:   res.Cached,
	})
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodPost) {
		return
	}
	var req api.RenderRequest
	if err := s.decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, msgBadBody)
		return
	}
	doc := markdown.Render(req.Content)
	blocks := doc.Blocks
	if blocks == nil {
		blocks = []markdown.Block{}
	}
	writeJSON(w, http.StatusOK, api.RenderResponse{HTML: s.html(doc, req.Class), Blocks: blocks})
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, http.StatusOK, prompts.Suggestions())
}

func (s *Server) handleTopics(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	n := queryInt(r, "limit", 0)
	var out []api.Topic
	if q == "" {
		out = prompts.Topics()
		if n > 0 && len(out) > n {
			out = out[:n]
		}
	} else {
		out = prompts.SearchTopics(q, n)
	}
	if out == nil {
		out = []api.Topic{}
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if !allow(w, r, http.MethodGet) {
		return
	}
	q := r.URL.Query()
	since, until, err := util.TimeRange(q.Get("since"), q.Get("until"), time.Now())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	query := api.ListQuery{
		Kind:   api.Kind(strings.TrimSpace(q.Get("kind"))),
		Limit:  queryInt(r, "limit", 0),
		Cursor: q.Get("cursor"),
		Since:  since,
		Until:  until,
	}
	items, page, err := s.store.List(r.Context(), query)
	if err != nil {
		s.log.Printf("history list error: %v", err)
		writeError(w, http.StatusInternalServerError, "list failed")
		return
	}
	if items == nil {
		items = []api.Exchange{}
	}
	writeJSON(w, http.StatusOK, api.HistoryResponse{Exchanges: items, Page: page})
}

func (s *Server) handleExchange(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	switch r.Method {
	case http.MethodGet:
		e, err := s.store.Get(r.Context(), id)
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			s.log.Printf("history get id=%s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "get failed")
			return
		}
		writeJSON(w, http.StatusOK, e)
	case http.MethodDelete:
		err := s.store.Delete(r.Context(), id)
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		if err != nil {
			s.log.Printf("history delete id=%s: %v", id, err)
			writeError(w, http.StatusInternalServerError, "delete failed")
			return
		}
		s.log.Printf("history: deleted id=%s", id)
		w.WriteHeader(http.StatusNoContent)
	default:
		w.Header().Set("Allow", "GET, DELETE")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// html renders doc for the browser. The class falls back to render.class.
func (s *Server) html(doc markdown.Document, class string) string {
	if class == "" {
		class = s.cfg.GetString("render.class")
	}
	return s.policy.Sanitize(markdown.RenderHTML(doc, class))
}

func (s *Server) maxBody() int64 {
	if n := s.cfg.GetInt64("http.max_body_bytes"); n > 0 {
		return n
	}
	return 1 << 20
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBody())
	return json.NewDecoder(r.Body).Decode(v)
}

func allow(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func queryInt(r *http.Request, key string, def int) int {
	if s := strings.TrimSpace(r.URL.Query().Get(key)); s != "" {
		if n, err := strconv.Atoi(s); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, api.ErrorResponse{Error: msg})
}
