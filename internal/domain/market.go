package domain

import "time"

// SportMarket is the metadata for one tradable game market, as served by the
// markets API.
type SportMarket struct {
	GameID    string    `json:"gameId"`
	SportID   uint16    `json:"sportId"`
	LeagueID  uint16    `json:"leagueId"`
	TypeID    uint16    `json:"typeId"`
	Type      string    `json:"type"`
	Maturity  time.Time `json:"maturityDate"`
	HomeTeam  string    `json:"homeTeam"`
	AwayTeam  string    `json:"awayTeam"`
	Status    int       `json:"status"`
	IsOpen    bool      `json:"isOpen"`
	IsLive    bool      `json:"isLive"`
	Line      float64   `json:"line"`
	Odds      []float64 `json:"odds"`
	FetchedAt time.Time `json:"fetchedAt,omitempty"`
}
