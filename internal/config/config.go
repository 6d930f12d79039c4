package config

import (
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config carries everything the coordinator reads from the environment,
// including the scoring policy knobs that differ between venues.
type Config struct {
	Addr       string `env:"ADDR" envDefault:":8080"`
	HistoryDSN string `env:"HISTORY_DSN"`
	GameDocDSN string `env:"GAMEDOC_DSN"`
	ChargeURL  string `env:"CHARGE_URL"`
	JWTSecret  string `env:"JWT_SECRET"`

	// Roles allowed to hold a connection at all.
	PermittedRoles []string `env:"PERMITTED_ROLES" envSeparator:"," envDefault:"admin,dealer,player"`

	// Whether a dealer taking a chair consumes an entry slot.
	DealerSeatCounted bool `env:"DEALER_SEAT_COUNTED" envDefault:"false"`

	PointsFirst  int `env:"POINTS_1ST" envDefault:"3"`
	PointsSecond int `env:"POINTS_2ND" envDefault:"0"`
	PointsThird  int `env:"POINTS_3RD" envDefault:"0"`
	PrizeFirst   int `env:"PRIZE_1ST" envDefault:"4"`
	PrizeSecond  int `env:"PRIZE_2ND" envDefault:"2"`
	PrizeThird   int `env:"PRIZE_3RD" envDefault:"1"`
}

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

func Default() Config {
	return Config{
		Addr:           ":8080",
		PermittedRoles: []string{"admin", "dealer", "player"},
		PointsFirst:    3,
		PrizeFirst:     4,
		PrizeSecond:    2,
		PrizeThird:     1,
	}
}

func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
