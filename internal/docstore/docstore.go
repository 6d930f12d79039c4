// Package docstore holds the aggregate one-record-per-game archive. It is a
// separate connection from the history database so the two result writes can
// succeed or fail independently.
package docstore

import (
	"errors"
	"log"

	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GameRecord is the full aggregate of one finished game: the podium plus the
// complete roster document (nickname -> uuid).
type GameRecord struct {
	GameID    string                                `gorm:"column:game_id;primaryKey;size:64"`
	GameDate  string                                `gorm:"size:40;not null"`
	User1st   string                                `gorm:"column:user_1st;size:64"`
	User2nd   string                                `gorm:"column:user_2nd;size:64"`
	User3rd   string                                `gorm:"column:user_3rd;size:64"`
	PrizeType string                                `gorm:"size:32"`
	UserList  datatypes.JSONType[map[string]string] `gorm:"column:user_list"`
}

func (GameRecord) TableName() string {
	return "game_records"
}

func Open(dsn string) (*gorm.DB, error) {
	if dsn == "" {
		return nil, errors.New("game document dsn is not set")
	}
	return gorm.Open(mysql.Open(dsn), &gorm.Config{})
}

func Migrate(conn *gorm.DB) error {
	if conn == nil {
		return errors.New("docstore connection is nil")
	}
	if err := conn.AutoMigrate(&GameRecord{}); err != nil {
		return err
	}
	log.Println("game document migration complete")
	return nil
}

// Store writes aggregate game records with put semantics.
type Store struct {
	conn *gorm.DB
}

func NewStore(conn *gorm.DB) *Store {
	return &Store{conn: conn}
}

func (s *Store) PutGame(record GameRecord) error {
	return s.conn.Clauses(clause.OnConflict{UpdateAll: true}).Create(&record).Error
}
