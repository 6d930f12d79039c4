package db

// UserGame is one row of per-player tournament history. The layout matches
// the ranking service's reader, so column names are fixed.
type UserGame struct {
	UserUUID    string `gorm:"column:user_uuid;primaryKey;size:64"`
	GameID      string `gorm:"column:game_id;primaryKey;size:64"`
	GameDate    string `gorm:"size:40;not null"`
	Place       int    `gorm:"not null"`
	Point       int    `gorm:"not null"`
	PrizeType   string `gorm:"size:32"`
	PrizeAmount int    `gorm:"not null;default:0"`
}

func (UserGame) TableName() string {
	return "user_game_history"
}
