package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"

	"github.com/aretw0/lattice"
	"github.com/aretw0/lattice/internal/logging"
	"github.com/aretw0/lattice/pkg/checkout"
	"github.com/aretw0/lattice/pkg/domain"
	"github.com/aretw0/lattice/pkg/dragdrop"
	"github.com/aretw0/lattice/pkg/render"
	"github.com/aretw0/lattice/pkg/transfer"
	"github.com/aretw0/lattice/pkg/workspace"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// MaxImportBytes bounds the body of an import request.
const MaxImportBytes = 10 << 20

// VisitorCookie identifies a visitor for the checkout guard.
const VisitorCookie = "lattice_visitor"

// Server exposes a Builder over HTTP.
type Server struct {
	Builder *lattice.Builder
	Streams *StreamManager

	metrics http.Handler
	logger  *slog.Logger
}

// Option configures the HTTP handler.
type Option func(*Server)

// WithMetrics mounts h (typically promhttp) on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the builder.
func NewHandler(b *lattice.Builder, opts ...Option) http.Handler {
	s := &Server{
		Builder: b,
		Streams: NewStreamManager(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	b.Watch(s.broadcast)
	return enableCORS(s.Routes())
}

// Routes builds the chi router.
func (s *Server) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/types", s.ListTypes)
	r.Get("/templates", s.SearchTemplates)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}

	r.Route("/pages", func(r chi.Router) {
		r.Get("/", s.ListPages)
		r.Route("/{page}", func(r chi.Router) {
			r.Get("/", s.GetPage)
			r.Delete("/", s.DeletePage)
			r.Put("/theme", s.SetTheme)
			r.Post("/blocks", s.AddBlock)
			r.Patch("/blocks/{block}", s.UpdateBlock)
			r.Delete("/blocks/{block}", s.DeleteBlock)
			r.Post("/blocks/{block}/toggle", s.ToggleVisibility)
			r.Post("/blocks/{block}/duplicate", s.Duplicate)
			r.Post("/blocks/{block}/move", s.Move)
			r.Post("/blocks/{block}/keys", s.KeyboardReorder)
			r.Post("/blocks/{block}/preset", s.ApplyPreset)
			r.Get("/blocks/{block}/editor", s.GetEditor)
			r.Post("/reorder", s.Reorder)
			r.Post("/templates/{template}", s.ApplyTemplate)
			r.Get("/workspace", s.GetWorkspace)
			r.Get("/render", s.RenderPage)
			r.Get("/export", s.Export)
			r.Post("/import", s.Import)
			r.Post("/checkout/{block}", s.Checkout)
			r.Get("/events", s.SubscribeEvents)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Result is the body returned by mutation endpoints.
type Result struct {
	OK      bool     `json:"ok"`
	ID      string   `json:"id,omitempty"`
	IDs     []string `json:"ids,omitempty"`
	Message string   `json:"message,omitempty"`
}

type addBlockRequest struct {
	Type string `json:"type"`
}

type moveRequest struct {
	Direction string `json:"direction"`
}

type keysRequest struct {
	Keys []string `json:"keys"`
}

type presetRequest struct {
	Name string `json:"name"`
}

type reorderRequest struct {
	From *int `json:"from"`
	To   *int `json:"to"`
}

// -- Catalog --

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "lattice-http",
		"version": strings.TrimSpace(lattice.Version),
	})
}

// ListTypes handles GET /types.
func (s *Server) ListTypes(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.Builder.Types())
}

// SearchTemplates handles GET /templates?q=&category=.
func (s *Server) SearchTemplates(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	s.writeJSON(w, http.StatusOK, s.Builder.SearchTemplates(q.Get("q"), q.Get("category")))
}

// -- Pages --

// ListPages handles GET /pages.
func (s *Server) ListPages(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Builder.Pages(r.Context())
	if err != nil {
		s.fail(w, "ListPages", err)
		return
	}
	s.writeJSON(w, http.StatusOK, ids)
}

// GetPage handles GET /pages/{page}.
func (s *Server) GetPage(w http.ResponseWriter, r *http.Request) {
	page, err := s.Builder.Page(r.Context(), chi.URLParam(r, "page"))
	if err != nil {
		s.fail(w, "GetPage", err)
		return
	}
	s.writeJSON(w, http.StatusOK, page)
}

// DeletePage handles DELETE /pages/{page}.
func (s *Server) DeletePage(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")
	if err := s.Builder.DeletePage(r.Context(), pageID); err != nil {
		s.fail(w, "DeletePage", err)
		return
	}
	s.writeJSON(w, http.StatusOK, Result{OK: true})
}

// SetTheme handles PUT /pages/{page}/theme.
func (s *Server) SetTheme(w http.ResponseWriter, r *http.Request) {
	var theme domain.Theme
	if !s.decode(w, r, &theme) {
		return
	}
	s.mutation(w, r, "SetTheme", func(ctx context.Context, pageID string) (Result, error) {
		err := s.Builder.SetTheme(ctx, pageID, theme)
		return Result{OK: err == nil}, err
	})
}

// -- Blocks --

// AddBlock handles POST /pages/{page}/blocks.
func (s *Server) AddBlock(w http.ResponseWriter, r *http.Request) {
	var body addBlockRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Type == "" {
		s.writeError(w, http.StatusBadRequest, "type is required")
		return
	}
	s.mutation(w, r, "AddBlock", func(ctx context.Context, pageID string) (Result, error) {
		id, err := s.Builder.AddBlock(ctx, pageID, body.Type)
		return Result{OK: id != "", ID: id}, err
	})
}

// UpdateBlock handles PATCH /pages/{page}/blocks/{block}.
func (s *Server) UpdateBlock(w http.ResponseWriter, r *http.Request) {
	var patch domain.Patch
	if !s.decode(w, r, &patch) {
		return
	}
	blockID := chi.URLParam(r, "block")
	s.mutation(w, r, "UpdateBlock", func(ctx context.Context, pageID string) (Result, error) {
		ok, err := s.Builder.UpdateBlock(ctx, pageID, blockID, patch)
		return Result{OK: ok}, err
	})
}

// DeleteBlock handles DELETE /pages/{page}/blocks/{block}.
func (s *Server) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "block")
	s.mutation(w, r, "DeleteBlock", func(ctx context.Context, pageID string) (Result, error) {
		ok, err := s.Builder.DeleteBlock(ctx, pageID, blockID)
		return Result{OK: ok}, err
	})
}

// ToggleVisibility handles POST /pages/{page}/blocks/{block}/toggle.
func (s *Server) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "block")
	s.mutation(w, r, "ToggleVisibility", func(ctx context.Context, pageID string) (Result, error) {
		ok, err := s.Builder.ToggleVisibility(ctx, pageID, blockID)
		return Result{OK: ok}, err
	})
}

// Duplicate handles POST /pages/{page}/blocks/{block}/duplicate.
func (s *Server) Duplicate(w http.ResponseWriter, r *http.Request) {
	blockID := chi.URLParam(r, "block")
	s.mutation(w, r, "Duplicate", func(ctx context.Context, pageID string) (Result, error) {
		id, ok, err := s.Builder.Duplicate(ctx, pageID, blockID)
		return Result{OK: ok, ID: id}, err
	})
}

// Move handles POST /pages/{page}/blocks/{block}/move.
func (s *Server) Move(w http.ResponseWriter, r *http.Request) {
	var body moveRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.Direction != lattice.DirectionUp && body.Direction != lattice.DirectionDown {
		s.writeError(w, http.StatusBadRequest, "direction must be up or down")
		return
	}
	blockID := chi.URLParam(r, "block")
	s.mutation(w, r, "Move", func(ctx context.Context, pageID string) (Result, error) {
		ok, err := s.Builder.Move(ctx, pageID, blockID, body.Direction)
		return Result{OK: ok}, err
	})
}

// KeyboardReorder handles POST /pages/{page}/blocks/{block}/keys with a keyboard gesture
// such as {"keys": [" ", "ArrowUp", "Enter"]}. The message is the screen reader announcement.
func (s *Server) KeyboardReorder(w http.ResponseWriter, r *http.Request) {
	var body keysRequest
	if !s.decode(w, r, &body) {
		return
	}
	keys := make([]dragdrop.Key, 0, len(body.Keys))
	for _, name := range body.Keys {
		k, ok := dragdrop.ParseKey(name)
		if !ok {
			s.writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported key %q", name))
			return
		}
		keys = append(keys, k)
	}
	blockID := chi.URLParam(r, "block")
	s.mutation(w, r, "KeyboardReorder", func(ctx context.Context, pageID string) (Result, error) {
		ok, msg, err := s.Builder.KeyboardReorder(ctx, pageID, blockID, keys)
		return Result{OK: ok, Message: msg}, err
	})
}

// ApplyPreset handles POST /pages/{page}/blocks/{block}/preset.
func (s *Server) ApplyPreset(w http.ResponseWriter, r *http.Request) {
	var body presetRequest
	if !s.decode(w, r, &body) {
		return
	}
	blockID := chi.URLParam(r, "block")
	s.mutation(w, r, "ApplyPreset", func(ctx context.Context, pageID string) (Result, error) {
		ok, err := s.Builder.ApplyPreset(ctx, pageID, blockID, body.Name)
		return Result{OK: ok}, err
	})
}

// GetEditor handles GET /pages/{page}/blocks/{block}/editor.
func (s *Server) GetEditor(w http.ResponseWriter, r *http.Request) {
	form, err := s.Builder.Form(r.Context(), chi.URLParam(r, "page"), chi.URLParam(r, "block"))
	if err != nil {
		s.fail(w, "GetEditor", err)
		return
	}
	s.writeJSON(w, http.StatusOK, form)
}

// Reorder handles POST /pages/{page}/reorder.
func (s *Server) Reorder(w http.ResponseWriter, r *http.Request) {
	var body reorderRequest
	if !s.decode(w, r, &body) {
		return
	}
	if body.From == nil || body.To == nil {
		s.writeError(w, http.StatusBadRequest, "from and to are required")
		return
	}
	s.mutation(w, r, "Reorder", func(ctx context.Context, pageID string) (Result, error) {
		ok, err := s.Builder.Reorder(ctx, pageID, *body.From, *body.To)
		return Result{OK: ok}, err
	})
}

// ApplyTemplate handles POST /pages/{page}/templates/{template}.
func (s *Server) ApplyTemplate(w http.ResponseWriter, r *http.Request) {
	templateID := chi.URLParam(r, "template")
	s.mutation(w, r, "ApplyTemplate", func(ctx context.Context, pageID string) (Result, error) {
		ids, err := s.Builder.ApplyTemplate(ctx, pageID, templateID)
		return Result{OK: len(ids) > 0, IDs: ids}, err
	})
}

// GetWorkspace handles GET /pages/{page}/workspace?selected=&actions=.
func (s *Server) GetWorkspace(w http.ResponseWriter, r *http.Request) {
	var opts []workspace.Option
	if raw, ok := r.URL.Query()["actions"]; ok {
		actions := workspace.ActionSet{}
		for _, a := range strings.Split(strings.Join(raw, ","), ",") {
			if a = strings.TrimSpace(a); a != "" {
				actions = append(actions, workspace.Action(a))
			}
		}
		opts = append(opts, workspace.WithActions(actions))
	}

	view, err := s.Builder.Workspace(r.Context(), chi.URLParam(r, "page"), r.URL.Query().Get("selected"), opts...)
	if err != nil {
		s.fail(w, "GetWorkspace", err)
		return
	}
	s.writeJSON(w, http.StatusOK, view)
}

// RenderPage handles GET /pages/{page}/render?mode=view|edit.
func (s *Server) RenderPage(w http.ResponseWriter, r *http.Request) {
	mode, err := render.ParseMode(r.URL.Query().Get("mode"))
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	pageID := chi.URLParam(r, "page")

	var buf strings.Builder
	err = s.Builder.Render(r.Context(), &buf, pageID, mode, func(rc *render.Context) {
		rc.CheckoutPath = func(blockID string) string {
			return "/pages/" + pageID + "/checkout/" + blockID
		}
	})
	if err != nil {
		s.fail(w, "RenderPage", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = io.WriteString(w, buf.String())
}

// Export handles GET /pages/{page}/export.
func (s *Server) Export(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")
	data, err := s.Builder.Export(r.Context(), pageID)
	if err != nil {
		s.fail(w, "Export", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", pageID+".json"))
	_, _ = w.Write(data)
}

// Import handles POST /pages/{page}/import. The body is the exported JSON array.
func (s *Server) Import(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxImportBytes))
	if err != nil {
		s.writeError(w, http.StatusRequestEntityTooLarge, "import body too large")
		return
	}
	s.mutation(w, r, "Import", func(ctx context.Context, pageID string) (Result, error) {
		err := s.Builder.Import(ctx, pageID, data)
		return Result{OK: err == nil}, err
	})
}

// Checkout handles POST /pages/{page}/checkout/{block} with a 303 to the CTA target.
// Clicks are guarded per visitor, identified by the VisitorCookie (issued on first click).
func (s *Server) Checkout(w http.ResponseWriter, r *http.Request) {
	pageID := chi.URLParam(r, "page")
	blockID := chi.URLParam(r, "block")
	visitor := s.visitor(w, r)

	err := s.Builder.Checkout(r.Context(), pageID, blockID, visitor, func(_ context.Context, url string) error {
		http.Redirect(w, r, url, http.StatusSeeOther)
		return nil
	})
	switch {
	case err == nil:
	case errors.Is(err, checkout.ErrInFlight):
		s.writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, checkout.ErrNoURL):
		s.writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.fail(w, "Checkout", err)
	}
}

// -- Helpers --

// visitor returns the visitor id of the request, issuing a new cookie when absent.
func (s *Server) visitor(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(VisitorCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.NewString()
	http.SetCookie(w, &http.Cookie{
		Name:     VisitorCookie,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return id
}

// mutation runs fn and answers with its Result. Subscribers get the block diff through
// the Builder's change feed (see broadcast).
func (s *Server) mutation(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, string) (Result, error)) {
	pageID := chi.URLParam(r, "page")
	res, err := fn(r.Context(), pageID)
	if err != nil {
		s.fail(w, op, err)
		return
	}
	s.writeJSON(w, http.StatusOK, res)
}

// broadcast forwards a committed block diff to the SSE subscribers of the page.
func (s *Server) broadcast(_ context.Context, pageID string, diff *domain.ListDiff) {
	payload, err := json.Marshal(diff)
	if err != nil {
		s.logger.Warn("failed to encode diff", "page_id", pageID, "err", err)
		return
	}
	s.logger.Debug("broadcasting diff", "page_id", pageID)
	s.Streams.Broadcast(pageID, string(payload))
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// fail maps domain errors to status codes.
func (s *Server) fail(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrPageNotFound),
		errors.Is(err, domain.ErrBlockNotFound),
		errors.Is(err, domain.ErrTemplateNotFound):
		s.writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, transfer.ErrInvalidJSON),
		errors.Is(err, transfer.ErrNotArray),
		errors.Is(err, domain.ErrInvalidBlock):
		s.writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.logger.Error(op+" failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, fmt.Sprintf("%s error: %v", op, err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // PageID -> set of channels
}

func NewStreamManager() *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
	}
}

func (sm *StreamManager) Subscribe(pageID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[pageID]; !ok {
		sm.subscribers[pageID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[pageID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[pageID]; ok {
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, pageID)
			}
		}
	}
}

func (sm *StreamManager) Broadcast(pageID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[pageID] {
		select {
		case ch <- msg:
		default:
			// Drop message if channel is full (slow client)
			slog.Warn("SSE: Client buffer full, dropping message", "page_id", pageID)
		}
	}
}

// SubscribeEvents handles GET /pages/{page}/events (SSE). Each event carries a
// domain.ListDiff of the page's blocks.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.writeError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	pageID := chi.URLParam(r, "page")
	ch, cancel := s.Streams.Subscribe(pageID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
