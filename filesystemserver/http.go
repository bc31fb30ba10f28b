package filesystemserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/gstbrowser/connector/filesystemserver/handler"
	"github.com/gstbrowser/connector/internal/logging"
	"github.com/gstbrowser/connector/internal/metrics"
)

const multipartMemory = 32 << 20

// HTTPOptions tunes the HTTP transport.
type HTTPOptions struct {
	// MaxUploadSize caps the request body; zero disables the limit.
	MaxUploadSize int64
	CORSOrigins   []string
	Metrics       bool
}

// NewHTTPHandler serves the connector endpoint at /connector and /, plus
// /healthz and, when enabled, /metrics.
func NewHTTPHandler(profiles handler.Profiles, opts HTTPOptions) http.Handler {
	ch := &connectorHandler{
		dispatcher: NewDispatcher(profiles),
		maxUpload:  opts.MaxUploadSize,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", healthz)
	if opts.Metrics {
		mux.Handle("/metrics", metrics.Handler())
	}
	mux.Handle("/connector", ch)
	mux.Handle("/", ch)

	return logging.Middleware(corsMiddleware(opts.CORSOrigins, mux))
}

// ListenAndServe runs h on addr until ctx is cancelled, then shuts down
// gracefully.
func ListenAndServe(ctx context.Context, addr string, h http.Handler) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info("connector listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logging.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"healthy"}`))
}

type connectorHandler struct {
	dispatcher *Dispatcher
	maxUpload  int64
}

func (h *connectorHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.maxUpload > 0 {
		if r.ContentLength > h.maxUpload {
			writeResult(w, handler.Failure(handler.ErrUploadFileSize))
			return
		}
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	}

	if err := parseBody(r); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeResult(w, handler.Failure(handler.ErrUploadFileSize))
			return
		}
		logging.WithContext(r.Context()).Debug("parsing request body failed", zap.Error(err))
	}

	query := r.URL.Query()
	param := func(key string) string {
		if v := query.Get(key); v != "" {
			return v
		}
		return r.PostForm.Get(key)
	}

	req := Request{
		Config: param("config"),
		Action: param("action"),
		Path:   param("path"),
		Dir:    param("dir"),
		Old:    param("old"),
		New:    param("new"),
		Name:   param("name"),
	}
	if req.Config == "" {
		req.Config = handler.DefaultProfile
	}

	if req.Action == ActionUpload && r.MultipartForm != nil {
		if files := r.MultipartForm.File["file"]; len(files) > 0 {
			f, err := files[0].Open()
			if err != nil {
				logging.WithContext(r.Context()).Warn("opening upload failed", zap.Error(err))
			} else {
				defer f.Close()
				req.Upload = &Upload{Filename: files[0].Filename, Body: f}
			}
		}
	}

	writeResult(w, h.dispatcher.Dispatch(r.Context(), req))
}

// parseBody fills r.PostForm (and r.MultipartForm) from the request body.
func parseBody(r *http.Request) error {
	if strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data") {
		return r.ParseMultipartForm(multipartMemory)
	}
	return r.ParseForm()
}

func writeResult(w http.ResponseWriter, result handler.Result) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(result); err != nil {
		logging.Warn("writing response failed", zap.Error(err))
	}
}
