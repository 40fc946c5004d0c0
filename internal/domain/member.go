package domain

type MemberRole string

const (
	MemberRoleAdmin  MemberRole = "ADMIN"
	MemberRoleMember MemberRole = "MEMBER"
)

type Member struct {
	ID          int32      `json:"id"`
	Email       string     `json:"email"`
	Phone       string     `json:"phone"`
	GivenName   string     `json:"given_name"`
	FamilyName  string     `json:"family_name"`
	DisplayName string     `json:"display_name"`
	// ContactConsent gates whether the club may reach this member by
	// email or SMS directly. Without it, only in-app messages are allowed.
	ContactConsent bool       `json:"contact_consent"`
	Role           MemberRole `json:"role"`
	CreatedOn      string     `json:"created_on"`
	UpdatedOn      string     `json:"updated_on"`
}
