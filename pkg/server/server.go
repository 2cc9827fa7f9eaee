// Package server exposes a reconciliation engine over HTTP.
//
// Routes:
//
//	POST /v1/reconcile   run a pass; optional body {"files": ["src/a.js"]}
//	GET  /v1/status      summary of the last pass
//	GET  /healthz        liveness and build information
//
// Passes are serialized by the engine, so concurrent POSTs queue.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/buildsync/pkg/buildinfo"
	bserrors "github.com/matzehuels/buildsync/pkg/errors"
	"github.com/matzehuels/buildsync/pkg/reconcile"
)

// maxBodySize bounds POST /v1/reconcile bodies.
const maxBodySize = 1 << 20

// Reconciler is the engine surface the server needs.
type Reconciler interface {
	Reconcile(ctx context.Context, filter []string) (*reconcile.Report, error)
	LastReport() *reconcile.Report
	FirstRun() bool
	Workspace() reconcile.Workspace
}

// ReconcileRequest is the body of POST /v1/reconcile.
type ReconcileRequest struct {
	Files []string `json:"files,omitempty"`
}

// ReportResponse describes one pass.
type ReportResponse struct {
	RunID      string   `json:"run_id"`
	Started    string   `json:"started"`
	DurationMS int64    `json:"duration_ms"`
	Files      int      `json:"files"`
	Deps       []string `json:"deps"`
	Installed  bool     `json:"installed"`
	Reason     string   `json:"reason"`
	Missing    []string `json:"missing,omitempty"`
	ExitCode   *int     `json:"exit_code,omitempty"`
	Added      []string `json:"added,omitempty"`
	Reflected  bool     `json:"reflected"`
	Transform  string   `json:"transform"`
}

// StatusResponse is the body of GET /v1/status.
type StatusResponse struct {
	BuildRoot  string          `json:"build_root"`
	SourceRoot string          `json:"source_root"`
	FirstRun   bool            `json:"first_run"`
	Last       *ReportResponse `json:"last,omitempty"`
}

// ErrorResponse is returned with every non-2xx status.
type ErrorResponse struct {
	Error  string          `json:"error"`
	Code   string          `json:"code,omitempty"`
	Report *ReportResponse `json:"report,omitempty"`
}

// NewHandler returns the HTTP handler for r.
func NewHandler(r Reconciler, logger *log.Logger) http.Handler {
	if logger == nil {
		logger = log.Default()
	}
	h := &handler{r: r, logger: logger.WithPrefix("http")}

	mux := chi.NewRouter()
	mux.Use(middleware.RequestID)
	mux.Use(middleware.Recoverer)
	mux.Use(h.logRequests)

	mux.Get("/healthz", h.health)
	mux.Route("/v1", func(v1 chi.Router) {
		v1.Post("/reconcile", h.reconcile)
		v1.Get("/status", h.status)
	})
	return mux
}

// Server runs the handler on a TCP address.
type Server struct {
	http   *http.Server
	logger *log.Logger
}

// New returns a Server for addr.
func New(addr string, r Reconciler, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{
		http: &http.Server{
			Addr:              addr,
			Handler:           NewHandler(r, logger),
			ReadHeaderTimeout: 10 * time.Second,
		},
		logger: logger,
	}
}

// Serve accepts connections on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	errc := make(chan error, 1)
	go func() { errc <- s.http.Serve(l) }()
	s.logger.Info("control API listening", "addr", l.Addr().String())

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := s.http.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

// ListenAndServe listens on the configured address and calls Serve.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, l)
}

type handler struct {
	r      Reconciler
	logger *log.Logger
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, struct {
		Status string         `json:"status"`
		Build  buildinfo.Info `json:"build"`
	}{"ok", buildinfo.Get()})
}

func (h *handler) status(w http.ResponseWriter, _ *http.Request) {
	ws := h.r.Workspace()
	writeJSON(w, http.StatusOK, StatusResponse{
		BuildRoot:  ws.BuildRoot,
		SourceRoot: ws.SourceRoot,
		FirstRun:   h.r.FirstRun(),
		Last:       toResponse(h.r.LastReport()),
	})
}

func (h *handler) reconcile(w http.ResponseWriter, req *http.Request) {
	var body ReconcileRequest
	data, err := io.ReadAll(io.LimitReader(req.Body, maxBodySize+1))
	if err != nil {
		writeError(w, bserrors.Wrap(bserrors.ErrCodeInvalidInput, err, "read body"), nil)
		return
	}
	if len(data) > maxBodySize {
		writeError(w, bserrors.New(bserrors.ErrCodeInvalidInput, "body too large"), nil)
		return
	}
	if len(strings.TrimSpace(string(data))) > 0 {
		if err := json.Unmarshal(data, &body); err != nil {
			writeError(w, bserrors.Wrap(bserrors.ErrCodeInvalidInput, err, "invalid JSON"), nil)
			return
		}
	}

	filter, err := resolveFiles(h.r.Workspace().BuildRoot, body.Files)
	if err != nil {
		writeError(w, err, nil)
		return
	}

	// A pass runs to completion even if the client goes away; the installer
	// is still bounded by its own timeout.
	rep, err := h.r.Reconcile(context.WithoutCancel(req.Context()), filter)
	if err != nil {
		writeError(w, err, toResponse(rep))
		return
	}
	writeJSON(w, http.StatusOK, toResponse(rep))
}

// resolveFiles turns request paths into absolute paths inside root.
func resolveFiles(root string, files []string) ([]string, error) {
	out := make([]string, 0, len(files))
	for _, f := range files {
		if strings.TrimSpace(f) == "" {
			return nil, bserrors.New(bserrors.ErrCodeInvalidPath, "empty file path")
		}
		p := filepath.FromSlash(f)
		if !filepath.IsAbs(p) {
			p = filepath.Join(root, p)
		}
		p = filepath.Clean(p)
		rel, err := filepath.Rel(root, p)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			return nil, bserrors.New(bserrors.ErrCodeInvalidPath, "%s is outside the build root", f)
		}
		out = append(out, p)
	}
	return out, nil
}

func (h *handler) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		h.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start).Round(time.Millisecond),
			"id", middleware.GetReqID(r.Context()))
	})
}

func toResponse(rep *reconcile.Report) *ReportResponse {
	if rep == nil {
		return nil
	}
	resp := &ReportResponse{
		RunID:      rep.RunID,
		Started:    rep.Started.UTC().Format(time.RFC3339),
		DurationMS: rep.Duration.Milliseconds(),
		Files:      rep.Files,
		Deps:       rep.Deps,
		Installed:  rep.Installed(),
		Reason:     rep.Decision.Reason,
		Missing:    rep.Decision.Missing,
		Added:      rep.Added,
		Reflected:  rep.Reflected,
		Transform:  rep.Transform.String(),
	}
	if resp.Deps == nil {
		resp.Deps = []string{}
	}
	if rep.Install != nil {
		code := rep.Install.ExitCode
		resp.ExitCode = &code
	}
	return resp
}

func statusFor(code bserrors.Code) int {
	switch code {
	case bserrors.ErrCodeInvalidInput, bserrors.ErrCodeInvalidPath, bserrors.ErrCodeInvalidPackage, bserrors.ErrCodeInvalidConfig:
		return http.StatusBadRequest
	case bserrors.ErrCodeInstall:
		return http.StatusBadGateway
	case bserrors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, err error, rep *ReportResponse) {
	code := bserrors.GetCode(err)
	status := statusFor(code)
	if errors.Is(err, context.Canceled) {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, ErrorResponse{Error: bserrors.UserMessage(err), Code: string(code), Report: rep})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
