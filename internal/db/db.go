package db

import (
	"errors"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// Open connects to the MySQL game-history database.
func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("history dsn is not set")
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

// Migrate runs GORM auto-migrations for the history table.
func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("db connection is nil")
	}
	if err := conn.AutoMigrate(&UserGame{}); err != nil {
		return err
	}
	log.Println("history database migration complete")
	return nil
}

// Store writes per-player result rows.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

// InsertResults writes one history row per participant of a finished game.
func (s *Store) InsertResults(records []UserGame) error {
	if len(records) == 0 {
		return nil
	}
	return s.conn.Create(&records).Error
}
