package domain

type Notification struct {
	ID         int32             `json:"id"`
	MemberID   int32             `json:"member_id"`
	GameID     int32             `json:"game_id"`
	Title      string            `json:"title"`
	Message    string            `json:"message"`
	IsRead     bool              `json:"is_read"`
	Attributes map[string]string `json:"attributes"`
	CreatedOn  string            `json:"created_on"`
}
