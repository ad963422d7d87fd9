package httpserver

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tinytelemetry/starboard/internal/counter"
	"github.com/tinytelemetry/starboard/internal/model"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

// StateReader is the narrow store contract required by the HTTP surface.
type StateReader interface {
	Snapshot() counter.State
	ChangedAt() time.Time
}

// Options tunes the rendered page.
type Options struct {
	Repo         string
	Branding     model.Branding
	PollInterval time.Duration
}

// Server serves the counter page and its state over HTTP.
type Server struct {
	addr      string
	store     StateReader
	opts      Options
	server    *http.Server
	ctx       context.Context
	cancel    context.CancelFunc
	startTime time.Time
	stopOnce  sync.Once
	stopErr   error
}

// NewServer creates a new HTTP server.
func NewServer(addr string, store StateReader, opts Options) *Server {
	if addr == "" {
		addr = "127.0.0.1:3000"
	}
	if opts.Repo == "" {
		opts.Repo = model.DefaultRepo
	}
	if opts.Branding.Title == "" {
		opts.Branding = model.DefaultBranding()
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = model.DefaultPollInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		addr:      addr,
		store:     store,
		opts:      opts,
		ctx:       ctx,
		cancel:    cancel,
		startTime: time.Now(),
	}
}

// router builds the gin engine with every route registered.
func (s *Server) router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.tmpl")))

	r.GET("/", s.handleIndex)
	r.GET("/api/stars", s.handleStars)
	r.GET("/api/health", s.handleHealth)
	return r
}

// Start begins serving HTTP requests.
func (s *Server) Start() error {
	gin.SetMode(gin.ReleaseMode)

	s.server = &http.Server{
		Handler:           s.router(),
		BaseContext:       func(_ net.Listener) context.Context { return s.ctx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
	}

	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = listener.Addr().String()
	s.startTime = time.Now()

	go s.serve(listener)
	return nil
}

func (s *Server) serve(ln net.Listener) {
	if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("httpserver: serve: %v", err)
	}
}

// Addr returns the listen address, resolved once Start has bound it.
func (s *Server) Addr() string {
	return s.addr
}

// Stop gracefully shuts down the HTTP server. Later calls return the first
// call's result.
func (s *Server) Stop() error {
	s.stopOnce.Do(func() {
		s.cancel()
		if s.server == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		s.stopErr = s.server.Shutdown(ctx)
	})
	return s.stopErr
}

type digitJSON struct {
	Position  int               `json:"position"`
	Digit     string            `json:"digit"`
	Direction counter.Direction `json:"direction"`
	Changed   bool              `json:"changed"`
}

func digitsJSON(views []counter.DigitView) []digitJSON {
	out := make([]digitJSON, len(views))
	for i, v := range views {
		out[i] = digitJSON{
			Position:  v.Position,
			Digit:     string(v.Char),
			Direction: v.Direction,
			Changed:   v.Changed,
		}
	}
	return out
}

func (s *Server) handleStars(c *gin.Context) {
	st := s.store.Snapshot()
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{
		"repo":     s.opts.Repo,
		"current":  st.Current,
		"previous": st.Previous,
		"digits":   digitsJSON(counter.View(st)),
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"uptime": time.Since(s.startTime).String(),
	})
}

type indexData struct {
	Title          string
	LinkURL        string
	LinkText       string
	RefreshSeconds int
	Digits         []digitJSON
}

func (s *Server) handleIndex(c *gin.Context) {
	refresh := int(s.opts.PollInterval / time.Second)
	if refresh < 1 {
		refresh = 1
	}

	// Only animate on the first refresh after a change.
	digits := digitsJSON(counter.View(s.store.Snapshot()))
	if time.Since(s.store.ChangedAt()) > s.opts.PollInterval {
		for i := range digits {
			digits[i].Changed = false
		}
	}

	c.Header("Cache-Control", "no-store")
	c.HTML(http.StatusOK, "index.html.tmpl", indexData{
		Title:          s.opts.Branding.Title,
		LinkURL:        s.opts.Branding.LinkURL,
		LinkText:       s.opts.Branding.LinkText,
		RefreshSeconds: refresh,
		Digits:         digits,
	})
}
