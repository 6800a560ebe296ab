package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"

	"github.com/sells-group/residential-checks/internal/arbiter"
	"github.com/sells-group/residential-checks/internal/archive"
	"github.com/sells-group/residential-checks/internal/config"
	"github.com/sells-group/residential-checks/internal/model"
	"github.com/sells-group/residential-checks/internal/pipeline"
	"github.com/sells-group/residential-checks/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server for project ZIP uploads",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		if servePort != 0 {
			cfg.Server.Port = servePort
		}
		if err := cfg.Validate("serve"); err != nil {
			return err
		}

		env, err := initPipeline(cfg, envOptions{signatures: true})
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Server.Port),
			Handler:           buildRouter(env, cfg.Server),
			ReadHeaderTimeout: 10 * time.Second,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()

		zap.L().Info("starting server", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}

// buildRouter mounts the health, metrics and upload endpoints.
func buildRouter(env *checksEnv, sc config.ServerConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: corsOrigins(sc.CORSOrigins),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type"},
		ExposedHeaders: []string{"Content-Disposition", "X-Run-ID"},
		MaxAge:         300,
	}))
	r.Use(env.Metrics.Middleware)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Method(http.MethodGet, "/metrics", env.Metrics.Handler())

	h := &uploadHandler{
		env:      env,
		maxBytes: int64(sc.MaxUploadMB) << 20,
		runs:     semaphore.NewWeighted(int64(max(sc.MaxConcurrentRuns, 1))),
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/checks", h.checks)
		r.Post("/extract", h.extract)
	})

	return r
}

func corsOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}

// uploadHandler runs the pipeline over an uploaded project ZIP. runs caps the
// number of pipelines running at once.
type uploadHandler struct {
	env      *checksEnv
	maxBytes int64
	runs     *semaphore.Weighted
}

// httpError carries the status to answer with.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string { return e.err.Error() }

func badRequest(err error) error {
	return &httpError{status: http.StatusBadRequest, err: err}
}

// checks answers with the Checks workbook as an attachment.
func (h *uploadHandler) checks(w http.ResponseWriter, r *http.Request) {
	res, cleanup, err := h.run(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := h.env.Assembler.Write(r.Context(), &buf, res.Corpus, res.Decisions); err != nil {
		writeError(w, eris.Wrap(err, "write report"))
		return
	}

	filename := filepath.Base(report.DefaultOutputPath("", res.Project))
	w.Header().Set("Content-Type", xlsxContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
	w.Header().Set("X-Run-ID", res.RunID.String())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// extractResponse is the JSON body of /v1/extract. Paths are relative to
// the project folder.
type extractResponse struct {
	Summary   runSummary                `json:"summary"`
	Documents []model.ExtractedDocument `json:"documents"`
	Decisions arbiter.Result            `json:"decisions"`
}

// extract answers with the corpus and the decisions as JSON.
func (h *uploadHandler) extract(w http.ResponseWriter, r *http.Request) {
	res, cleanup, err := h.run(w, r)
	defer cleanup()
	if err != nil {
		writeError(w, err)
		return
	}

	docs := res.Corpus.Documents()
	for i := range docs {
		docs[i].Path = relativePath(res.Root, docs[i].Path)
	}
	summary := summarize(res, "")
	for i := range summary.Failures {
		summary.Failures[i].Path = relativePath(res.Root, summary.Failures[i].Path)
	}
	for i := range summary.Unknown {
		summary.Unknown[i] = relativePath(res.Root, summary.Unknown[i])
	}

	w.Header().Set("X-Run-ID", res.RunID.String())
	writeJSON(w, http.StatusOK, extractResponse{Summary: summary, Documents: docs, Decisions: res.Decisions})
}

// run saves the upload, unpacks it and runs the pipeline over the project
// folder. cleanup is always safe to call.
func (h *uploadHandler) run(w http.ResponseWriter, r *http.Request) (*pipeline.Result, func(), error) {
	tmp, err := os.MkdirTemp("", "checks-upload-*")
	if err != nil {
		return nil, func() {}, eris.Wrap(err, "create temp dir")
	}
	cleanup := func() {
		if err := os.RemoveAll(tmp); err != nil {
			zap.L().Warn("serve: remove temp dir", zap.String("dir", tmp), zap.Error(err))
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxBytes)
	zipPath := filepath.Join(tmp, "upload.zip")
	name, err := saveUpload(r, zipPath)
	if err != nil {
		return nil, cleanup, err
	}

	dest := filepath.Join(tmp, projectStem(name))
	if _, err := archive.ExtractZIP(zipPath, dest, 4*h.maxBytes); err != nil {
		if eris.Is(err, archive.ErrTooLarge) {
			return nil, cleanup, &httpError{status: http.StatusRequestEntityTooLarge, err: err}
		}
		return nil, cleanup, badRequest(err)
	}
	root, err := archive.ProjectRoot(dest)
	if err != nil {
		return nil, cleanup, err
	}

	zap.L().Info("serve: processing upload",
		zap.String("upload", name),
		zap.String("project", pipeline.ProjectName(root)),
	)
	if err := h.runs.Acquire(r.Context(), 1); err != nil {
		return nil, cleanup, &httpError{status: http.StatusServiceUnavailable, err: eris.Wrap(err, "wait for pipeline slot")}
	}
	defer h.runs.Release(1)

	res, err := h.env.Pipeline.Run(r.Context(), root)
	if err != nil {
		return nil, cleanup, err
	}
	return res, cleanup, nil
}

// saveUpload writes the uploaded archive to path and returns its original
// name. Multipart uploads use the "file" field; any other body is the
// archive itself, named by the "project" query parameter.
func saveUpload(r *http.Request, path string) (string, error) {
	var (
		src  io.Reader
		name string
	)

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType == "multipart/form-data" {
		file, header, err := r.FormFile("file")
		if err != nil {
			return "", uploadError(err, "read multipart file")
		}
		defer file.Close() //nolint:errcheck
		src, name = file, header.Filename
	} else {
		src, name = r.Body, r.URL.Query().Get("project")
	}

	out, err := os.Create(path)
	if err != nil {
		return "", eris.Wrap(err, "create upload file")
	}
	defer out.Close() //nolint:errcheck

	n, err := io.Copy(out, src)
	if err != nil {
		return "", uploadError(err, "read upload")
	}
	if n == 0 {
		return "", badRequest(eris.New("empty upload"))
	}
	return name, nil
}

func uploadError(err error, msg string) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return &httpError{status: http.StatusRequestEntityTooLarge, err: eris.Wrap(err, msg)}
	}
	return badRequest(eris.Wrap(err, msg))
}

// projectStem turns an upload name into a folder name.
func projectStem(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.TrimSpace(name)
	if name == "" || name == "." || name == ".." || name == "/" {
		return "project"
	}
	return name
}

func relativePath(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("serve: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	var he *httpError
	if errors.As(err, &he) {
		status = he.status
	}
	if status >= http.StatusInternalServerError {
		zap.L().Error("serve: request failed", zap.Error(err))
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
