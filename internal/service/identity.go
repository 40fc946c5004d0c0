package service

import (
	"context"

	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/repository"
)

// contactTuple holds the normalized channels of one invitee.
type contactTuple struct {
	email string
	phone string
}

type identityResolver struct {
	members repository.MemberRepository
}

func newIdentityResolver(members repository.MemberRepository) *identityResolver {
	return &identityResolver{members: members}
}

// Resolve maps each contact tuple to its matching member account, or nil when
// no account matches. The candidate snapshot is fetched with a single batched
// query for the whole request; matching itself is pure.
func (r *identityResolver) Resolve(ctx context.Context, tuples []contactTuple) ([]*domain.Member, error) {
	matches := make([]*domain.Member, len(tuples))

	var emails, phones []string
	seenEmail := make(map[string]bool)
	seenPhone := make(map[string]bool)
	for _, t := range tuples {
		if t.email != "" && !seenEmail[t.email] {
			seenEmail[t.email] = true
			emails = append(emails, t.email)
		}
		if t.phone != "" && !seenPhone[t.phone] {
			seenPhone[t.phone] = true
			phones = append(phones, t.phone)
		}
	}
	if len(emails) == 0 && len(phones) == 0 {
		return matches, nil
	}

	candidates, err := r.members.FindByContacts(ctx, emails, phones)
	if err != nil {
		return nil, err
	}

	for i, t := range tuples {
		matches[i] = matchMember(candidates, t.email, t.phone)
	}
	return matches, nil
}

// matchMember picks the account a contact tuple belongs to. Either channel
// suffices. When the email and the phone each match a different account, the
// email match wins.
func matchMember(candidates []domain.Member, email, phone string) *domain.Member {
	var phoneMatch *domain.Member
	for i := range candidates {
		c := &candidates[i]
		if email != "" && c.Email == email {
			return c
		}
		if phone != "" && phoneMatch == nil && c.Phone == phone {
			phoneMatch = c
		}
	}
	return phoneMatch
}
