package domain

import "time"

type RegistrationStatus string

const (
	RegistrationStatusPending  RegistrationStatus = "PENDING"
	RegistrationStatusApproved RegistrationStatus = "APPROVED"
	RegistrationStatusRejected RegistrationStatus = "REJECTED"
	RegistrationStatusBanned   RegistrationStatus = "BANNED"
)

// Registration is a member's durable relationship to a game. The pair
// (game_id, member_id) is unique; rows are status-transitioned, never deleted.
type Registration struct {
	GameID    int32              `json:"game_id"`
	MemberID  int32              `json:"member_id"`
	Status    RegistrationStatus `json:"status"`
	Note      string             `json:"note"`
	UpdatedBy int32              `json:"updated_by"`
	CreatedOn time.Time          `json:"created_on"`
	UpdatedOn time.Time          `json:"updated_on"`
}
