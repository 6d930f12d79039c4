package server

const seatCount = 11

const (
	statusWaiting = "waiting"
	statusPlaying = "playing"
	statusBreak   = "break"
	statusClosed  = "closed"
)

const (
	roleAdmin = "admin"
)

// Occupant is a seated identity. Guests hold a chair but are never tracked
// in the playing/sitout rosters and never get a history row.
type Occupant struct {
	Nickname string
	UUID     string
	Guest    bool
}

// Room is the live state of one tournament table.
type Room struct {
	ID              string
	TableNo         int
	DealerID        string
	Name            string
	EntryLimit      int
	Entry           int
	TicketAmount    int
	TicketType      string
	DurationMinutes int
	Blind           string
	Ante            int
	Status          string
	Seats           [seatCount]*Occupant
	Playing         map[string]string
	Sitout          map[string]string
	Timer           TimerState
}

// TimerState is owned by its room. Remaining is -1 until the clock has run
// at least once; the task handle is non-nil only while the clock is running.
type TimerState struct {
	task      *levelTask
	Remaining int
	Level     int
}

// RoomSpec is the creation request for a room.
type RoomSpec struct {
	TableNo         int    `json:"table_no"`
	Name            string `json:"game_name"`
	EntryLimit      int    `json:"entry_limit"`
	TicketAmount    int    `json:"ticket_amount"`
	TicketType      string `json:"ticket_type"`
	DurationMinutes int    `json:"duration"`
	Blind           string `json:"blind"`
	Ante            int    `json:"ante"`
}

// RoomSummary is the read-only listing entry broadcast to the lobby.
type RoomSummary struct {
	ID           string `json:"game_id"`
	TableNo      int    `json:"table_no"`
	Name         string `json:"game_name"`
	DealerID     string `json:"dealer_id"`
	Entry        int    `json:"entry"`
	EntryLimit   int    `json:"entry_limit"`
	TicketAmount int    `json:"ticket_amount"`
	TicketType   string `json:"ticket_type"`
	Blind        string `json:"blind"`
	Ante         int    `json:"ante"`
	Status       string `json:"status"`
	Players      int    `json:"players"`
}

// Session is the per-connection identity, populated once from the decoded
// claims at connect time and mutated only by the owning connection's reader.
type Session struct {
	Nickname string
	UUID     string
	Roles    []string
	RoomID   string
}

// Placements identifies the podium by player uuid.
type Placements struct {
	First     string `json:"user_1st"`
	Second    string `json:"user_2nd"`
	Third     string `json:"user_3rd"`
	PrizeType string `json:"prize_type"`
}
