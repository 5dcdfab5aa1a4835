package httpserver

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/wallfeed/wall-service/internal/domain/models"
	"github.com/wallfeed/wall-service/internal/lib/logger/sl"
	"github.com/wallfeed/wall-service/internal/service/wall"
	"github.com/wallfeed/wall-service/internal/transport/ws"
	"github.com/wallfeed/wall-service/web"
)

// maxUploadBytes caps one image upload
const maxUploadBytes = 10 << 20

type WallService interface {
	// Create creates new post from content and an optional image url
	Create(ctx context.Context, content string, imageUrl string) (models.Post, error)

	// Recent returns the most recent feed window, newest first
	Recent(ctx context.Context) ([]models.Post, error)
}

type Uploader interface {
	// Upload stores one image and returns its key and public URL
	Upload(
		ctx context.Context,
		filename string,
		contentType string,
		r io.Reader,
		size int64,
	) (key string, url string, err error)
}

// Server is the HTTP surface of the wall: the page itself, the feed API,
// image uploads and the live subscription endpoint.
type Server struct {
	log        *slog.Logger
	srvc       WallService
	uploader   Uploader
	hub        *ws.Hub
	profile    models.Profile
	httpServer *http.Server
}

func New(
	log *slog.Logger,
	port int,
	srvc WallService,
	uploader Uploader,
	hub *ws.Hub,
	profile models.Profile,
	timeout time.Duration,
) *Server {
	s := &Server{
		log:      log,
		srvc:     srvc,
		uploader: uploader,
		hub:      hub,
		profile:  profile,
	}

	// no WriteTimeout: the /ws subscription is a long-lived connection
	s.httpServer = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           withRecovery(log, withLogging(log, s.routes())),
		ReadHeaderTimeout: timeout,
		IdleTimeout:       60 * time.Second,
	}

	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /api/posts", s.handleListPosts)
	mux.HandleFunc("POST /api/posts", s.handleCreatePost)
	mux.HandleFunc("POST /api/uploads", s.handleUpload)
	mux.HandleFunc("GET /api/profile", s.handleProfile)
	mux.HandleFunc("GET /ws", s.handleSubscribe)
	mux.HandleFunc("GET /health", s.handleHealth)

	return mux
}

func (s *Server) MustRun() {
	if err := s.Run(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		panic("failed to run http server: " + err.Error())
	}
}

// Run begins listening for requests. It blocks until the server is shut down
func (s *Server) Run() error {
	const op = "httpserver.Run"
	s.log.Info("starting http server", slog.String("op", op), slog.String("addr", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Stop() {
	const op = "httpserver.Stop"
	s.log.Info("stopping http server", slog.String("op", op))

	ctx, cncl := context.WithTimeout(context.Background(), 5*time.Second)
	defer cncl()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		s.log.Error("failed to shut down http server", slog.String("op", op), sl.Err(err))
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write(web.Index)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleProfile(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.profile)
}

// handleListPosts serves the initial feed window, newest first
func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.srvc.Recent(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load feed")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"posts": posts})
}

type createPostRequest struct {
	Content  string `json:"content"`
	ImageUrl string `json:"image_url,omitempty"`
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	var req createPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	post, err := s.srvc.Create(r.Context(), req.Content, req.ImageUrl)
	if err != nil {
		if errors.Is(err, wall.ErrInvalidContent) {
			writeError(w, http.StatusUnprocessableEntity, wall.ErrInvalidContent.Error())
			return
		}

		writeError(w, http.StatusInternalServerError, "failed to create post")
		return
	}

	writeJSON(w, http.StatusCreated, post)
}

// handleUpload stores exactly one image per request. Multi-file form input
// is reduced to the first file by the form field itself
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer file.Close()

	key, url, err := s.uploader.Upload(
		r.Context(),
		header.Filename,
		header.Header.Get("Content-Type"),
		file,
		header.Size,
	)
	if err != nil {
		s.log.Error("failed to upload image", sl.Err(err))
		writeError(w, http.StatusInternalServerError, "failed to upload image")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"key": key,
		"url": url,
	})
}

func (s *Server) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	if err := ws.Subscribe(s.hub, w, r); err != nil {
		s.log.Error("failed to subscribe viewer", sl.Err(err))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

func withLogging(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(wrapped, r)
		log.Info("http request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", wrapped.status),
			slog.Duration("duration", time.Since(start)),
		)
	})
}

func withRecovery(log *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				log.Error("recover panic", slog.Any("panic", p))
				writeError(w, http.StatusInternalServerError, "internal error")
			}
		}()

		next.ServeHTTP(w, r)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Hijack keeps the websocket upgrade working through the logging wrapper
func (w *statusWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := w.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}

	return hj.Hijack()
}
