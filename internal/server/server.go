package server

import (
	"net/http"

	"github.com/pricewatch/pricewatch/pkg/alerts"
	"github.com/pricewatch/pricewatch/pkg/notify"
	"github.com/pricewatch/pricewatch/pkg/prices"
	"github.com/pricewatch/pricewatch/pkg/storage"
)

// Logger abstracts logging so callers can use logrus, stdlib log, or any
// other logger that satisfies this interface.
type Logger interface {
	Infof(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

type nopLogger struct{}

func (nopLogger) Infof(string, ...interface{})  {}
func (nopLogger) Warnf(string, ...interface{})  {}
func (nopLogger) Errorf(string, ...interface{}) {}
func (nopLogger) Debugf(string, ...interface{}) {}

type Server struct {
	DB       *storage.DB
	Prices   *prices.Service
	Alerts   *alerts.Engine
	Hub      *notify.Hub
	Username string
	Password string
	Log      Logger
}

type Config struct {
	DB       *storage.DB
	Prices   *prices.Service
	Alerts   *alerts.Engine
	Hub      *notify.Hub
	Username string
	Password string
	Log      Logger
}

func New(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = nopLogger{}
	}
	return &Server{
		DB:       cfg.DB,
		Prices:   cfg.Prices,
		Alerts:   cfg.Alerts,
		Hub:      cfg.Hub,
		Username: cfg.Username,
		Password: cfg.Password,
		Log:      log,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Products
	mux.HandleFunc("GET /api/products", s.basicAuth(s.handleListProducts))
	mux.HandleFunc("POST /api/products", s.basicAuth(s.handleAddProduct))
	mux.HandleFunc("DELETE /api/products/{id}", s.basicAuth(s.handleDeleteProduct))
	mux.HandleFunc("POST /api/products/{id}/check", s.basicAuth(s.handleCheckProduct))
	mux.HandleFunc("POST /api/products/check", s.basicAuth(s.handleCheckAll))
	mux.HandleFunc("GET /api/products/{id}/history", s.basicAuth(s.handleHistory))

	// Alerts
	mux.HandleFunc("GET /api/alerts", s.basicAuth(s.handleListAlerts))
	mux.HandleFunc("POST /api/alerts", s.basicAuth(s.handleCreateAlert))
	mux.HandleFunc("PUT /api/alerts/{id}", s.basicAuth(s.handleUpdateAlert))
	mux.HandleFunc("POST /api/alerts/{id}/reset", s.basicAuth(s.handleResetAlert))
	mux.HandleFunc("DELETE /api/alerts/{id}", s.basicAuth(s.handleDeleteAlert))

	// Real-time event stream
	mux.HandleFunc("GET /api/events", s.basicAuth(s.handleEvents))

	return mux
}

func (s *Server) Start(addr string) error {
	s.Log.Infof("starting server on %s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

func (s *Server) basicAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.Username == "" && s.Password == "" {
			next(w, r)
			return
		}
		user, pass, ok := r.BasicAuth()
		if !ok || user != s.Username || pass != s.Password {
			w.Header().Set("WWW-Authenticate", `Basic realm="Restricted"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next(w, r)
	}
}
