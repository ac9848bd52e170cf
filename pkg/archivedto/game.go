package archivedto

type Game struct {
	ID           int64  `json:"id"`
	Round        string `json:"round"`
	Result       string `json:"result"`
	Moves        string `json:"moves,omitempty"`
	EventName    string `json:"event"`
	EventSite    string `json:"site"`
	EventDate    string `json:"date"`
	WhiteName    string `json:"white"`
	WhiteElo     int    `json:"white_elo"`
	BlackName    string `json:"black"`
	BlackElo     int    `json:"black_elo"`
	OpeningCode  string `json:"eco,omitempty"`
	OpeningTitle string `json:"opening,omitempty"`
}

type GameList struct {
	Count int     `json:"count"`
	Games []*Game `json:"games"`
}
