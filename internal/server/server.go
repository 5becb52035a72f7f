package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Adps75/irrigation-editor/internal/config"
	"github.com/Adps75/irrigation-editor/internal/logging"
	"github.com/Adps75/irrigation-editor/pkg/plan"
	"github.com/Adps75/irrigation-editor/pkg/render"
	"github.com/Adps75/irrigation-editor/pkg/spec"
	"github.com/Adps75/irrigation-editor/pkg/validation"
)

// Server is the HTTP front end of the planner.
type Server struct {
	planner *plan.Planner
	metrics *Metrics
	logger  *slog.Logger
	cfg     config.Server
	handler http.Handler
}

// New creates a server. metrics may be nil.
func New(planner *plan.Planner, metrics *Metrics, logger *slog.Logger, cfg config.Server) *Server {
	if logger == nil {
		logger = logging.Discard()
	}
	s := &Server{
		planner: planner,
		metrics: metrics,
		logger:  logger,
		cfg:     cfg,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /generate_plan", s.handleGeneratePlan)
	mux.HandleFunc("POST /render_plan", s.handleRenderPlan)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /{$}", s.handleIndex)

	s.handler = s.withRequestLog(mux)
	return s
}

// Handler returns the root handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Run serves on the configured address until ctx is cancelled, then shuts
// down gracefully.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Addr())
	if err != nil {
		return fmt.Errorf("server: listen %s: %w", s.cfg.Addr(), err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{
		Handler:      s.handler,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.started", "addr", ln.Addr().String())
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	timeout := s.cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	s.logger.Info("server.stopping")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}

type errorBody struct {
	Kind    validation.Kind `json:"kind"`
	Message string          `json:"message"`
}

type errorResponse struct {
	Error       errorBody          `json:"error"`
	Diagnostics *validation.Report `json:"diagnostics,omitempty"`
	Plan        *plan.Plan         `json:"plan,omitempty"`
}

// statusFor maps an error kind onto an HTTP status.
func statusFor(kind validation.Kind) int {
	switch kind {
	case validation.KindMalformedRequest, "":
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// result is a plan with the request it was built from. partial is set when
// some zones could not be connected.
type result struct {
	req     *spec.Request
	plan    *plan.Plan
	partial error
}

// generate decodes the body and runs the planner. On failure it writes the
// error response itself and returns ok=false.
func (s *Server) generate(w http.ResponseWriter, r *http.Request) (result, bool) {
	start := time.Now()
	log := s.requestLogger(r)

	body := r.Body
	if s.cfg.MaxBodyBytes > 0 {
		body = http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes)
	}
	req, err := spec.Decode(body)
	if err != nil {
		s.metrics.Observe(OutcomeMalformed, 0, 0, 0)
		log.Warn("plan.malformed", "error", err)
		writeJSON(w, http.StatusBadRequest, errorResponse{
			Error: errorBody{Kind: validation.KindMalformedRequest, Message: err.Error()},
		})
		return result{}, false
	}

	out, err := s.planner.Generate(req)
	elapsed := time.Since(start)

	switch {
	case err == nil:
		s.metrics.Observe(OutcomeOK, elapsed.Seconds(), len(req.Zones), out.TotalPipeLengthM)
		log.Info("plan.generated",
			"zones", len(req.Zones),
			"sources", len(req.WaterSources),
			"pipes", len(out.Pipes),
			"length_m", out.TotalPipeLengthM,
			"duration", elapsed)
		return result{req: req, plan: out}, true

	case validation.IsKind(err, validation.KindDisconnectedZone) && out != nil:
		s.metrics.Observe(OutcomeDisconnected, elapsed.Seconds(), len(req.Zones), out.TotalPipeLengthM)
		log.Warn("plan.partial", "error", err, "zones", len(req.Zones))
		return result{req: req, plan: out, partial: err}, true

	default:
		kind := validation.KindOf(err)
		outcome := OutcomeRejected
		if kind == validation.KindMalformedRequest {
			outcome = OutcomeMalformed
		}
		s.metrics.Observe(outcome, elapsed.Seconds(), len(req.Zones), 0)
		log.Warn("plan.rejected", "kind", kind, "error", err)

		resp := errorResponse{Error: errorBody{Kind: kind, Message: err.Error()}}
		var ve *validation.Error
		if errors.As(err, &ve) {
			resp.Diagnostics = ve.Report
		}
		writeJSON(w, statusFor(kind), resp)
		return result{}, false
	}
}

func (s *Server) handleGeneratePlan(w http.ResponseWriter, r *http.Request) {
	res, ok := s.generate(w, r)
	if !ok {
		return
	}
	if res.partial != nil {
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error:       errorBody{Kind: validation.KindOf(res.partial), Message: res.partial.Error()},
			Diagnostics: res.plan.Diagnostics,
			Plan:        res.plan,
		})
		return
	}
	writeJSON(w, http.StatusOK, res.plan)
}

func (s *Server) handleRenderPlan(w http.ResponseWriter, r *http.Request) {
	opts := render.Options{}
	if v := r.URL.Query().Get("width"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, errorResponse{
				Error: errorBody{Kind: validation.KindMalformedRequest, Message: fmt.Sprintf("invalid width %q", v)},
			})
			return
		}
		opts.Width = n
	}

	res, ok := s.generate(w, r)
	if !ok {
		return
	}
	scene, err := render.Assemble(res.req, res.plan, s.planner.Projector(), opts)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, render.ErrEmptyPlan) {
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, errorResponse{
			Error: errorBody{Kind: validation.KindMalformedRequest, Message: err.Error()},
		})
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	if err := scene.WriteSVG(w); err != nil {
		s.requestLogger(r).Error("render.write", "error", err)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html")
	fmt.Fprint(w, `<!DOCTYPE html>
<html><head><title>Irrigation planner</title></head>
<body style="font-family:system-ui;margin:2em">
<h1>Irrigation planner</h1>
<ul>
<li><code>POST /generate_plan</code> plan as JSON</li>
<li><code>POST /render_plan</code> plan as SVG</li>
<li><code>GET /healthz</code></li>
<li><code>GET /metrics</code></li>
</ul>
</body></html>`)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
