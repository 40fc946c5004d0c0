package domain

import (
	"errors"
	"time"
)

var ErrNoContact = errors.New("invitee needs an email or a phone number")

type InviteeKind string

const (
	// InviteeKindMember links the invitation to an existing member account.
	InviteeKindMember InviteeKind = "MEMBER"
	// InviteeKindExternal carries raw contact details until the invitee
	// signs up and claims the invitation.
	InviteeKindExternal InviteeKind = "EXTERNAL"
)

// Invitee identifies who an invitation is addressed to. The constructors keep
// the two shapes mutually exclusive: a member reference never carries contact
// details, and an external reference always has at least one channel.
type Invitee struct {
	kind     InviteeKind
	memberID int32
	email    string
	phone    string
}

func MemberInvitee(memberID int32) Invitee {
	return Invitee{kind: InviteeKindMember, memberID: memberID}
}

func ExternalInvitee(email, phone string) (Invitee, error) {
	if email == "" && phone == "" {
		return Invitee{}, ErrNoContact
	}
	return Invitee{kind: InviteeKindExternal, email: email, phone: phone}, nil
}

func (i Invitee) Kind() InviteeKind { return i.kind }

// MemberID returns the linked account id, if the invitee is a member.
func (i Invitee) MemberID() (int32, bool) {
	return i.memberID, i.kind == InviteeKindMember
}

// Email returns the external contact email; empty for member invitees.
func (i Invitee) Email() string { return i.email }

// Phone returns the external contact phone; empty for member invitees.
func (i Invitee) Phone() string { return i.phone }

// Invitation represents an offer to join one game. Rows are retained after
// acceptance as an audit artifact; the acceptance flow only mutates them.
type Invitation struct {
	ID           string
	GameID       int32
	GamemasterID int32
	Invitee      Invitee
	DisplayName  string
	ExpiresOn    time.Time
	Notified     bool
	Accepted     bool
	AcceptedAt   *time.Time
	CreatedOn    time.Time
}

// Expired reports whether the invitation can no longer be accepted.
func (inv *Invitation) Expired(now time.Time) bool {
	return !inv.ExpiresOn.IsZero() && inv.ExpiresOn.Before(now)
}
