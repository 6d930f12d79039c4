package main

import (
	"log"
	"net/http"

	"github.com/itmustbemimic/jenesis/internal/config"
	"github.com/itmustbemimic/jenesis/internal/db"
	"github.com/itmustbemimic/jenesis/internal/docstore"
	"github.com/itmustbemimic/jenesis/internal/server"
)

func main() {
	if err := config.LoadDotEnv(".env"); err != nil {
		log.Printf("failed to load .env: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	var history server.HistoryStore
	if cfg.HistoryDSN != "" {
		conn, err := db.Open(cfg.HistoryDSN)
		if err != nil {
			log.Fatalf("history database: %v", err)
		}
		if err := db.Migrate(conn); err != nil {
			log.Fatalf("history migration: %v", err)
		}
		history = db.NewStore(conn)
	} else {
		log.Println("HISTORY_DSN not set; per-player results will not be recorded")
	}

	var docs server.GameDocStore
	if cfg.GameDocDSN != "" {
		conn, err := docstore.Open(cfg.GameDocDSN)
		if err != nil {
			log.Fatalf("game document store: %v", err)
		}
		if err := docstore.Migrate(conn); err != nil {
			log.Fatalf("game document migration: %v", err)
		}
		docs = docstore.NewStore(conn)
	} else {
		log.Println("GAMEDOC_DSN not set; aggregate game records will not be recorded")
	}

	var charger server.Charger
	if cfg.ChargeURL != "" {
		charger = server.NewHTTPCharger(cfg.ChargeURL)
	} else {
		log.Println("CHARGE_URL not set; seats will not be charged")
	}

	srv := server.New(history, docs, charger, cfg)
	log.Printf("jenesis coordinator listening on %s", cfg.Addr)
	if err := http.ListenAndServe(cfg.Addr, srv.Handler()); err != nil {
		log.Fatal(err)
	}
}
