package domain

type Game struct {
	ID           int32  `json:"id"`
	Title        string `json:"title"`
	Description  string `json:"description"`
	GamemasterID int32  `json:"gamemaster_id"`
	ScheduledOn  string `json:"scheduled_on"`
	MaxPlayers   int32  `json:"max_players"`
	CreatedOn    string `json:"created_on"`
}
