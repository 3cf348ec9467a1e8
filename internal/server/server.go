// Package server exposes a PersistenceAPI and a DraftStore over HTTP so
// several operators can share one content store. The restapi package is the
// matching client.
package server

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/showcase/pkg/types"
)

// Options configures the HTTP handler.
type Options struct {
	Logger *zap.Logger

	// AllowedOrigins are host patterns accepted by CORS ("*.example.com").
	// Empty allows every origin.
	AllowedOrigins []string

	// AssetsDir, when set, is served read-only under AssetsURL.
	AssetsDir string
	AssetsURL string

	Debug bool
}

// Server routes HTTP requests to the stores.
type Server struct {
	slots  types.PersistenceAPI
	drafts types.DraftStore
	logger *zap.Logger
	router *gin.Engine
}

// New builds the router. drafts may be nil, in which case the draft routes
// are not registered.
func New(slots types.PersistenceAPI, drafts types.DraftStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	if opts.Debug {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.HandleMethodNotAllowed = true
	router.Use(gin.Recovery())
	router.Use(requestLogger(logger))

	corsConfig := cors.Config{
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}
	if len(opts.AllowedOrigins) > 0 {
		patterns := opts.AllowedOrigins
		corsConfig.AllowOriginFunc = func(origin string) bool {
			host := originHost(origin)
			for _, p := range patterns {
				if matchOrigin(p, host) {
					return true
				}
			}
			return false
		}
	} else {
		corsConfig.AllowOriginFunc = func(string) bool { return true }
	}
	router.Use(cors.New(corsConfig))

	s := &Server{slots: slots, drafts: drafts, logger: logger, router: router}
	s.registerRoutes(opts)
	return s
}

// Handler returns the HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) registerRoutes(opts Options) {
	s.router.GET("/healthz", func(c *gin.Context) {
		ok(c, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	api.GET("/sections/:section/slots", s.listSlots)
	api.POST("/slots", s.upsertSlot)
	api.DELETE("/slots/:id", s.deleteSlot)

	if s.drafts != nil {
		api.GET("/drafts/*key", s.getDraft)
		api.PUT("/drafts/*key", s.setDraft)
	}

	if opts.AssetsDir != "" {
		prefix := opts.AssetsURL
		if prefix == "" || strings.Contains(prefix, "://") {
			prefix = "/assets"
		}
		s.router.Static(prefix, opts.AssetsDir)
	}
}

// originHost strips the scheme and port from an Origin header value.
func originHost(origin string) string {
	host := origin
	if i := strings.Index(host, "://"); i >= 0 {
		host = host[i+3:]
	}
	if i := strings.IndexByte(host, '/'); i >= 0 {
		host = host[:i]
	}
	if i := strings.LastIndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.ToLower(host)
}

// matchOrigin reports whether host matches pattern. A leading "*." matches
// any subdomain but not the apex.
func matchOrigin(pattern, host string) bool {
	pattern = strings.ToLower(strings.TrimSpace(pattern))
	if pattern == "*" {
		return true
	}
	if suffix, found := strings.CutPrefix(pattern, "*."); found {
		return strings.HasSuffix(host, "."+suffix)
	}
	return pattern == host
}
