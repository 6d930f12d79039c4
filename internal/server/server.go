package server

import (
	"net/http"
	"time"

	"github.com/itmustbemimic/jenesis/internal/config"
	"github.com/itmustbemimic/jenesis/internal/db"
	"github.com/itmustbemimic/jenesis/internal/docstore"
)

// HistoryStore records per-player result rows.
type HistoryStore interface {
	InsertResults(records []db.UserGame) error
}

// GameDocStore records the aggregate document of one finished game.
type GameDocStore interface {
	PutGame(record docstore.GameRecord) error
}

type Server struct {
	registry *Registry
	history  HistoryStore
	docs     GameDocStore
	charger  Charger
	hub      *wsHub
	cfg      config.Config
	tick     time.Duration
}

func New(history HistoryStore, docs GameDocStore, charger Charger, cfg config.Config) *Server {
	return &Server{
		registry: NewRegistry(),
		history:  history,
		docs:     docs,
		charger:  charger,
		hub:      newWSHub(),
		cfg:      cfg,
		tick:     time.Second,
	}
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebsocket)
	return mux
}
