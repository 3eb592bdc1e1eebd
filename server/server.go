// Package server exposes the detection pipeline over HTTP: single-file
// detection, batch detection and a health endpoint, plus an optional static
// frontend.
package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/natefinch/atomic"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/synthscan/synthscan/config"
	"github.com/synthscan/synthscan/constants"
	"github.com/synthscan/synthscan/detector"
	"github.com/synthscan/synthscan/version"
)

// batchConcurrency bounds how many batch items are analyzed at once.
const batchConcurrency = 4

// Server is the HTTP surface over a Detector.
type Server struct {
	cfg         *config.Config
	det         *detector.Detector
	frontendDir string
	router      *mux.Router
}

// New creates a server around the given configuration.
func New(cfg *config.Config) *Server {
	frontendDir := os.Getenv(constants.ENV_FRONTEND_DIR)
	if frontendDir == "" {
		frontendDir = "frontend"
	}
	s := &Server{
		cfg:         cfg,
		det:         detector.New(cfg),
		frontendDir: frontendDir,
	}
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/api/v1/detect", s.handleDetect).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/detect/batch", s.handleBatch).Methods(http.MethodPost)
	r.HandleFunc("/api/v1/health", s.handleHealth).Methods(http.MethodGet)
	if stat, err := os.Stat(frontendDir); err == nil && stat.IsDir() {
		r.PathPrefix("/static/").Handler(
			http.StripPrefix("/static/", http.FileServer(http.Dir(frontendDir))))
	}
	s.router = r
	return s
}

// Handler returns the HTTP handler of the server.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe runs the server on addr until it fails.
func (s *Server) ListenAndServe(addr string) error {
	log.Infof("listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Error("failed to write response")
	}
}

func httpError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	appFile := filepath.Join(s.frontendDir, "app.html")
	if _, err := os.Stat(appFile); err == nil {
		http.ServeFile(w, r, appFile)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "AI Detection API",
		"version": version.Version,
		"endpoints": map[string]string{
			"detect": "/api/v1/detect",
			"batch":  "/api/v1/detect/batch",
			"health": "/api/v1/health",
		},
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "healthy",
		"version": version.Version,
		"supported_formats": map[string]any{
			"images": constants.SUPPORTED_IMAGE_FORMATS,
			"videos": constants.SUPPORTED_VIDEO_FORMATS,
		},
	})
}

// analysisError pairs an HTTP status with its client-visible detail string.
type analysisError struct {
	status int
	detail string
}

func (e *analysisError) Error() string { return e.detail }

// analyzeUpload checks, persists and analyzes one uploaded file.
func (s *Server) analyzeUpload(r *http.Request, fh *multipart.FileHeader, fastMode bool) (*detector.Result, *analysisError) {
	start := time.Now()

	ext := strings.ToLower(filepath.Ext(fh.Filename))
	isVideo := slices.Contains(constants.SUPPORTED_VIDEO_FORMATS, ext)
	isImage := slices.Contains(constants.SUPPORTED_IMAGE_FORMATS, ext)
	if !isVideo && !isImage {
		return nil, &analysisError{http.StatusBadRequest, fmt.Sprintf(
			"Unsupported format. Supported: %v",
			append(append([]string{}, constants.SUPPORTED_IMAGE_FORMATS...), constants.SUPPORTED_VIDEO_FORMATS...))}
	}

	f, err := fh.Open()
	if err != nil {
		return nil, &analysisError{http.StatusInternalServerError, "Analysis failed: " + err.Error()}
	}
	defer f.Close()
	content, err := io.ReadAll(f)
	if err != nil {
		return nil, &analysisError{http.StatusInternalServerError, "Analysis failed: " + err.Error()}
	}

	if isImage && int64(len(content)) > s.cfg.MaxImageSize {
		return nil, &analysisError{http.StatusBadRequest, "Image too large (max 50MB)"}
	}
	if isVideo && int64(len(content)) > s.cfg.MaxVideoSize {
		return nil, &analysisError{http.StatusBadRequest, "Video too large (max 500MB)"}
	}

	tmp, err := os.CreateTemp("", "synthscan-*"+ext)
	if err != nil {
		return nil, &analysisError{http.StatusInternalServerError, "Analysis failed: " + err.Error()}
	}
	tmpPath := tmp.Name()
	tmp.Close()
	defer os.Remove(tmpPath)
	if err := atomic.WriteFile(tmpPath, bytes.NewReader(content)); err != nil {
		return nil, &analysisError{http.StatusInternalServerError, "Analysis failed: " + err.Error()}
	}

	var result *detector.Result
	if isVideo {
		result, err = s.det.AnalyzeVideo(r.Context(), tmpPath, fastMode)
	} else {
		result, err = s.det.AnalyzeImage(r.Context(), tmpPath, fastMode)
	}
	if err != nil {
		if errors.Is(err, detector.ErrNoFrames) {
			return nil, &analysisError{http.StatusBadRequest, "Could not extract frames from video"}
		}
		prefix := "Analysis failed: "
		if isVideo {
			prefix = "Video analysis failed: "
		}
		return nil, &analysisError{http.StatusInternalServerError, prefix + err.Error()}
	}

	result.ProcessingTimeMs = math.Round(float64(time.Since(start).Microseconds())/10) / 100
	result.Filename = fh.Filename
	log.WithField("filename", fh.Filename).Infof("verdict=%q confidence=%.3f score=%d",
		result.Verdict.Verdict, result.Confidence, result.TotalScore)
	return result, nil
}

func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["file"]
	if len(files) == 0 {
		httpError(w, http.StatusBadRequest, "Missing file field")
		return
	}
	fastMode := strings.EqualFold(r.FormValue("fast_mode"), "true")

	result, aerr := s.analyzeUpload(r, files[0], fastMode)
	if aerr != nil {
		httpError(w, aerr.status, aerr.detail)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httpError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["files"]
	if len(files) == 0 {
		files = r.MultipartForm.File["files[]"]
	}
	if len(files) > constants.MAX_BATCH_FILES {
		httpError(w, http.StatusBadRequest, "Maximum 10 files allowed")
		return
	}

	// Batch always runs in fast mode. Items are analyzed concurrently, each
	// with its own engine and temp file; results keep request order.
	results := make([]any, len(files))
	var g errgroup.Group
	g.SetLimit(batchConcurrency)
	for i, fh := range files {
		g.Go(func() error {
			result, aerr := s.analyzeUpload(r, fh, true)
			if aerr != nil {
				results[i] = map[string]any{
					"filename": fh.Filename,
					"error":    aerr.detail,
					"verdict":  "ERROR",
				}
				return nil
			}
			results[i] = result
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
		"total":   len(results),
	})
}
