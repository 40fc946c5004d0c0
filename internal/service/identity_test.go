package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gamenight-backend/internal/domain"
)

func TestMatchMember(t *testing.T) {
	candidates := []domain.Member{
		{ID: 1, Email: "alice@club.org", Phone: "+14155550001"},
		{ID: 2, Email: "bob@club.org", Phone: "+14155550002"},
	}

	t.Run("matches by email", func(t *testing.T) {
		m := matchMember(candidates, "alice@club.org", "")
		require.NotNil(t, m)
		assert.Equal(t, int32(1), m.ID)
	})

	t.Run("matches by phone", func(t *testing.T) {
		m := matchMember(candidates, "", "+14155550002")
		require.NotNil(t, m)
		assert.Equal(t, int32(2), m.ID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Nil(t, matchMember(candidates, "carol@club.org", "+14155550099"))
	})

	t.Run("email wins over phone when they point at different accounts", func(t *testing.T) {
		m := matchMember(candidates, "alice@club.org", "+14155550002")
		require.NotNil(t, m)
		assert.Equal(t, int32(1), m.ID)
	})

	t.Run("email match found after earlier phone match", func(t *testing.T) {
		// Phone matches the first candidate, email the second; the email
		// match must still win regardless of candidate order.
		m := matchMember(candidates, "bob@club.org", "+14155550001")
		require.NotNil(t, m)
		assert.Equal(t, int32(2), m.ID)
	})
}

func TestIdentityResolver_Resolve(t *testing.T) {
	ctx := context.Background()

	t.Run("one batched lookup for the whole request", func(t *testing.T) {
		members := new(MockMemberRepo)
		resolver := newIdentityResolver(members)

		tuples := []contactTuple{
			{email: "alice@club.org"},
			{phone: "+14155550002"},
			{email: "nobody@club.org"},
		}
		members.On("FindByContacts", ctx,
			[]string{"alice@club.org", "nobody@club.org"},
			[]string{"+14155550002"},
		).Return([]domain.Member{
			{ID: 1, Email: "alice@club.org"},
			{ID: 2, Phone: "+14155550002"},
		}, nil).Once()

		matches, err := resolver.Resolve(ctx, tuples)
		require.NoError(t, err)
		require.Len(t, matches, 3)
		assert.Equal(t, int32(1), matches[0].ID)
		assert.Equal(t, int32(2), matches[1].ID)
		assert.Nil(t, matches[2])
		members.AssertExpectations(t)
		members.AssertNumberOfCalls(t, "FindByContacts", 1)
	})

	t.Run("duplicate contacts are deduplicated in the lookup", func(t *testing.T) {
		members := new(MockMemberRepo)
		resolver := newIdentityResolver(members)

		tuples := []contactTuple{
			{email: "alice@club.org"},
			{email: "alice@club.org"},
		}
		members.On("FindByContacts", ctx, []string{"alice@club.org"}, []string(nil)).
			Return([]domain.Member{{ID: 1, Email: "alice@club.org"}}, nil).Once()

		matches, err := resolver.Resolve(ctx, tuples)
		require.NoError(t, err)
		require.Len(t, matches, 2)
		assert.Equal(t, int32(1), matches[0].ID)
		assert.Equal(t, int32(1), matches[1].ID)
		members.AssertExpectations(t)
	})

	t.Run("no contacts short-circuits without a query", func(t *testing.T) {
		members := new(MockMemberRepo)
		resolver := newIdentityResolver(members)

		matches, err := resolver.Resolve(ctx, []contactTuple{})
		require.NoError(t, err)
		assert.Empty(t, matches)
		members.AssertNotCalled(t, "FindByContacts")
	})
}
