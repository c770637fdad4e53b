package daemon

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"log/slog"

	"fileforge/internal/api"
	"fileforge/internal/audit"
	"fileforge/internal/config"
	"fileforge/internal/logging"
	"fileforge/internal/manager"
	"fileforge/internal/quality"
	"fileforge/internal/queue"
	"fileforge/internal/services"
)

const defaultEventLimit = 200

type apiServer struct {
	bind   string
	logger *slog.Logger
	daemon *Daemon

	listener net.Listener
	server   *http.Server
}

func newAPIServer(cfg *config.Config, d *Daemon, logger *slog.Logger) (*apiServer, error) {
	if cfg == nil || d == nil {
		return nil, nil
	}
	bind := strings.TrimSpace(cfg.Paths.APIBind)
	if bind == "" {
		return nil, nil
	}

	mux := http.NewServeMux()
	srv := &apiServer{
		bind:   bind,
		logger: logger,
		daemon: d,
	}

	mux.HandleFunc("/api/convert", srv.handleConvert)
	mux.HandleFunc("/api/jobs", srv.handleJobs)
	mux.HandleFunc("/api/jobs/", srv.handleJob)
	mux.HandleFunc("/api/download/", srv.handleDownload)
	mux.HandleFunc("/api/formats", srv.handleFormats)
	mux.HandleFunc("/api/quality", srv.handleQuality)
	mux.HandleFunc("/api/stats", srv.handleStats)
	mux.HandleFunc("/api/audit", srv.handleAudit)
	mux.HandleFunc("/api/events", srv.handleEvents)
	mux.HandleFunc("/api/status", srv.handleStatus)

	srv.server = &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       60 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv, nil
}

func (s *apiServer) start(ctx context.Context) error {
	if s == nil {
		return nil
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("api listen: %w", err)
	}
	s.listener = listener

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log().Error("api server error", logging.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}()

	s.log().Info("api server listening", logging.String("address", listener.Addr().String()))
	return nil
}

func (s *apiServer) stop() {
	if s == nil {
		return
	}
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
	if s.listener != nil {
		_ = s.listener.Close()
		s.listener = nil
	}
}

func (s *apiServer) addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *apiServer) handleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	maxBytes := int64(s.daemon.cfg.Security.MaxUploadMiB) << 20
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+1)
	file, header, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "multipart field \"file\" is required")
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "read upload: "+err.Error())
		return
	}

	handle, err := s.daemon.manager.Submit(r.Context(), manager.SubmitRequest{
		Data:         data,
		DeclaredName: header.Filename,
		ContentType:  header.Header.Get("Content-Type"),
		OutputFormat: r.FormValue("output_format"),
		QualityTier:  r.FormValue("quality_tier"),
	})
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusAccepted, api.FromHandle(handle))
}

func (s *apiServer) handleJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var statuses []queue.Status
	for _, value := range r.URL.Query()["status"] {
		parsed, ok := queue.ParseStatus(strings.TrimSpace(value))
		if !ok {
			s.writeError(w, http.StatusBadRequest, "unknown status "+value)
			return
		}
		statuses = append(statuses, parsed)
	}

	jobs, err := s.daemon.jobs.List(r.Context(), statuses...)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobListResponse{Jobs: jobs})
}

func (s *apiServer) handleJob(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	jobKey := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	if jobKey == "" || strings.Contains(jobKey, "/") {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	job, err := s.daemon.jobs.Describe(r.Context(), jobKey)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	if job == nil {
		s.writeError(w, http.StatusNotFound, "job not found")
		return
	}
	s.writeJSON(w, http.StatusOK, api.JobResponse{Job: *job})
}

func (s *apiServer) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	rest := strings.TrimPrefix(r.URL.Path, "/api/download/")
	jobKey, artifactName, found := strings.Cut(rest, "/")
	if !found || jobKey == "" || artifactName == "" {
		s.writeError(w, http.StatusNotFound, "artifact not found")
		return
	}

	path, err := s.daemon.jobs.ResolveDownload(r.Context(), s.daemon.cfg.Paths.OutputDir, jobKey, artifactName)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}

	s.daemon.recorder.Record(r.Context(), jobKey, audit.EventDownload,
		fmt.Sprintf(`{"artifact":%q,"remote":%q}`, artifactName, r.RemoteAddr))
	w.Header().Set("Content-Disposition", `attachment; filename="`+artifactName+`"`)
	http.ServeFile(w, r, path)
}

func (s *apiServer) handleFormats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.FormatsResponse{
		Categories: api.FromCategories(s.daemon.registry.Categories()),
	})
}

func (s *apiServer) handleQuality(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, api.QualityResponse{
		Tiers:   api.FromProfiles(quality.Profiles()),
		Default: quality.DefaultTier,
	})
}

func (s *apiServer) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	stats, err := s.daemon.jobs.Stats(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, stats)
}

func (s *apiServer) handleAudit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(query.Get("page_size"))
	if pageSize < 1 || pageSize > 500 {
		pageSize = 50
	}

	if jobKey := strings.TrimSpace(query.Get("job")); jobKey != "" {
		entries, err := s.daemon.recorder.ForJob(r.Context(), jobKey)
		if err != nil {
			s.writeServiceError(w, err)
			return
		}
		s.writeJSON(w, http.StatusOK, api.AuditPageResponse{
			Entries:  api.FromAuditEntries(entries),
			Page:     1,
			PageSize: len(entries),
			Total:    int64(len(entries)),
		})
		return
	}

	entries, err := s.daemon.recorder.Query(r.Context(), page, pageSize)
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	total, err := s.daemon.recorder.Count(r.Context())
	if err != nil {
		s.writeServiceError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, api.AuditPageResponse{
		Entries:  api.FromAuditEntries(entries),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	})
}

func (s *apiServer) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	query := r.URL.Query()
	since, _ := strconv.ParseUint(query.Get("since"), 10, 64)
	limit, _ := strconv.Atoi(query.Get("limit"))
	if limit <= 0 {
		limit = defaultEventLimit
	}
	wait := query.Get("wait") == "1" || strings.EqualFold(query.Get("wait"), "true")

	ctx := r.Context()
	if wait {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
	}

	events, next, err := s.daemon.Bus().Fetch(ctx, since, limit, wait)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		s.writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	s.writeJSON(w, http.StatusOK, api.EventStreamResponse{
		Events: api.FromJobEvents(events),
		Next:   next,
	})
}

func (s *apiServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	status := s.daemon.Status(r.Context())
	s.writeJSON(w, http.StatusOK, map[string]any{
		"running":      status.Running,
		"pid":          status.PID,
		"jobDbPath":    status.JobDBPath,
		"auditDbPath":  status.AuditDBPath,
		"lockFilePath": status.LockFilePath,
		"queue":        api.FromStats(status.Queue),
	})
}

// writeServiceError maps the error taxonomy onto HTTP statuses: malformed
// requests get 400, flagged uploads 422, missing things 404, and traversal
// attempts 403.
func (s *apiServer) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrUnknownFormat),
		errors.Is(err, services.ErrIncompatibleFormat),
		errors.Is(err, services.ErrUnknownTier):
		status = http.StatusBadRequest
	case errors.Is(err, services.ErrSecurityThreat):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrNotFound), errors.Is(err, audit.ErrDisabled):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrAccessDenied):
		status = http.StatusForbidden
	}
	s.writeError(w, status, err.Error())
}

func (s *apiServer) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.log().Error("failed to encode response", logging.Error(err))
	}
}

func (s *apiServer) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}

func (s *apiServer) log() *slog.Logger {
	if s.logger != nil {
		return s.logger.With(logging.String("component", "api-server"))
	}
	return logging.NewNop()
}
