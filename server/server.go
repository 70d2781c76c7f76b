package server

import (
	"context"
	"errors"
	"io/fs"
	"net/http"
	"path/filepath"
	"time"

	"github.com/b1naryth1ef/atlas"
	"github.com/b1naryth1ef/atlas/logging"
	"github.com/b1naryth1ef/atlas/web"
	"github.com/b1naryth1ef/atlas/wms"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

type Server struct {
	config   *atlas.Config
	root     string
	palette  atlas.Palette
	wms      *wms.Client
	frontend web.FrontendData
	log      *zap.Logger
}

func NewServer(config *atlas.Config) (*Server, error) {
	root, err := filepath.Abs(config.GeoJSON.Path)
	if err != nil {
		return nil, err
	}

	timeout, err := config.WMSTimeout()
	if err != nil {
		return nil, err
	}

	palette, err := atlas.NewPalette(config.GeoJSON.PaletteSize)
	if err != nil {
		return nil, err
	}

	return &Server{
		config:   config,
		root:     root,
		palette:  palette,
		wms:      wms.NewClient(timeout, config.WMS.UserAgent),
		frontend: web.NewFrontendData(config, palette),
		log:      logging.L().Named("server"),
	}, nil
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	// requestLogger wraps Recoverer so recovered panics are logged as 500s.
	r.Use(s.requestLogger)
	r.Use(middleware.Recoverer)

	r.Get("/", s.handleIndex)
	static, _ := fs.Sub(web.GetStaticContent(), "js")
	r.Handle("/static/js/*", http.StripPrefix("/static/js/", http.FileServer(http.FS(static))))

	r.Route("/api", func(r chi.Router) {
		r.Get("/frontend", s.handleFrontend)
		r.Get("/layers", s.handleLayers)
		r.Get("/layers/data", s.handleLayerData)
		r.Get("/layers/tree", s.handleLayerTree)
		r.Get("/wms-proxy", s.handleWMSProxy)
		r.Get("/wms-layers", s.handleWMSLayers)
		r.Get("/wms-tiles", s.handleWMSTiles)
	})

	return r
}

// Serve listens on the configured address until ctx is canceled, then
// shuts down gracefully.
func (s *Server) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.Server.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.log.Info("listening", zap.String("addr", srv.Addr), zap.String("geojson_root", s.root))
		err := srv.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		s.log.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
