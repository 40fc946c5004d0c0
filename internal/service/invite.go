package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"time"

	"gamenight-backend/internal/contact"
	"gamenight-backend/internal/domain"
	"gamenight-backend/internal/logger"
	"gamenight-backend/internal/repository"

	"github.com/google/uuid"
)

var (
	ErrNoInvitees     = errors.New("at least one invitee is required")
	ErrMissingContact = errors.New("invitee needs an email or a phone number")
	ErrGameNotFound   = errors.New("game not found")
	ErrNotGamemaster  = errors.New("only the game's gamemaster or a club admin can manage invitations")
	ErrInviteNotFound = errors.New("invitation not found")
	ErrInviteExpired  = errors.New("invitation has expired")
	ErrInviteClaimed  = errors.New("invitation belongs to another member")
)

const skipReasonAlreadyRegistered = "already registered"

type inviteService struct {
	games    repository.GameRepository
	members  repository.MemberRepository
	invites  repository.InvitationRepository
	regs     repository.RegistrationRepository
	notes    repository.NotificationRepository
	audit    repository.AuditRepository
	resolver *identityResolver
	dispatch *inviteDispatcher

	defaultExpiryDays  int32
	defaultCountryCode string
}

func NewInviteService(
	games repository.GameRepository,
	members repository.MemberRepository,
	invites repository.InvitationRepository,
	regs repository.RegistrationRepository,
	notes repository.NotificationRepository,
	audit repository.AuditRepository,
	email EmailService,
	sms SMSService,
	baseURL string,
	defaultExpiryDays int32,
	defaultCountryCode string,
) InviteService {
	return &inviteService{
		games:              games,
		members:            members,
		invites:            invites,
		regs:               regs,
		notes:              notes,
		audit:              audit,
		resolver:           newIdentityResolver(members),
		dispatch:           newInviteDispatcher(email, sms, baseURL),
		defaultExpiryDays:  defaultExpiryDays,
		defaultCountryCode: defaultCountryCode,
	}
}

// pendingInvitee is one issuance entry after normalization.
type pendingInvitee struct {
	input     InviteeInput
	email     string
	phone     string
	expiresOn time.Time
}

func (s *inviteService) IssueInvitations(ctx context.Context, gameID, gamemasterID, actorID int32, invitees []InviteeInput) (*IssueResult, error) {
	logger.EnterMethod("inviteService.IssueInvitations", "game_id", gameID, "actor_id", actorID, "invitees", len(invitees))

	if len(invitees) == 0 {
		return nil, ErrNoInvitees
	}

	game, err := s.authorizeGameAccess(ctx, gameID, actorID)
	if err != nil {
		return nil, err
	}
	if gamemasterID != 0 && gamemasterID != game.GamemasterID {
		return nil, ErrNotGamemaster
	}

	now := time.Now()
	pending := make([]pendingInvitee, 0, len(invitees))
	tuples := make([]contactTuple, 0, len(invitees))
	for _, in := range invitees {
		email := contact.NormalizeEmail(in.Email)
		phone := contact.NormalizePhone(in.Phone, s.defaultCountryCode)
		if email == "" && phone == "" {
			return nil, fmt.Errorf("%w: %q", ErrMissingContact, in.DisplayName)
		}
		days := in.ExpiresInDays
		if days <= 0 {
			days = s.defaultExpiryDays
		}
		pending = append(pending, pendingInvitee{
			input:     in,
			email:     email,
			phone:     phone,
			expiresOn: now.AddDate(0, 0, int(days)),
		})
		tuples = append(tuples, contactTuple{email: email, phone: phone})
	}

	// One batched lookup each for identity resolution and the registration
	// guard, regardless of how many invitees the request carries.
	matches, err := s.resolver.Resolve(ctx, tuples)
	if err != nil {
		return nil, fmt.Errorf("resolving invitee identities: %w", err)
	}
	registered, err := s.registeredMembers(ctx, gameID, matches)
	if err != nil {
		return nil, fmt.Errorf("checking existing registrations: %w", err)
	}

	result := &IssueResult{}
	var rows []*domain.Invitation
	for i, p := range pending {
		member := matches[i]
		if member != nil && registered[member.ID] {
			result.Skipped = append(result.Skipped, SkippedInvitee{
				DisplayName: p.input.DisplayName,
				MemberID:    member.ID,
				Reason:      skipReasonAlreadyRegistered,
			})
			continue
		}

		var inv *domain.Invitation
		if member != nil {
			inv = s.buildMemberInvite(ctx, game, member, p, now)
		} else {
			inv = s.buildExternalInvite(ctx, game, p, now)
		}
		rows = append(rows, inv)
		if inv.Invitee.Kind() == domain.InviteeKindMember {
			result.Created = append(result.Created, inv)
		} else {
			result.External = append(result.External, inv)
		}
	}

	if err := s.invites.CreateBatch(ctx, rows); err != nil {
		logger.ExitMethodWithError("inviteService.IssueInvitations", err)
		return nil, fmt.Errorf("persisting invitations: %w", err)
	}

	s.recordAudit(ctx, "invitations.issued", actorID, "game", strconv.Itoa(int(gameID)),
		fmt.Sprintf("issued %d invitations for %q", len(rows), game.Title),
		map[string]string{
			"member_invites":   strconv.Itoa(len(result.Created)),
			"external_invites": strconv.Itoa(len(result.External)),
			"skipped":          strconv.Itoa(len(result.Skipped)),
		})

	logger.ExitMethod("inviteService.IssueInvitations", "created", len(result.Created), "external", len(result.External), "skipped", len(result.Skipped))
	return result, nil
}

// buildMemberInvite creates the invitation row for a resolved account and
// handles the consent gate: consenting members are contacted directly, the
// rest get an in-app message and the row stays unnotified.
func (s *inviteService) buildMemberInvite(ctx context.Context, game *domain.Game, member *domain.Member, p pendingInvitee, now time.Time) *domain.Invitation {
	inv := &domain.Invitation{
		ID:           uuid.NewString(),
		GameID:       game.ID,
		GamemasterID: game.GamemasterID,
		Invitee:      domain.MemberInvitee(member.ID),
		DisplayName:  inviteeDisplayName(p.input, member),
		ExpiresOn:    p.expiresOn,
		CreatedOn:    now,
	}

	if !member.ContactConsent {
		note := &domain.Notification{
			MemberID: member.ID,
			GameID:   game.ID,
			Title:    "Game invitation pending",
			Message:  fmt.Sprintf("You have been invited to join %q. Open your invitations to respond.", game.Title),
			Attributes: map[string]string{
				"invitation_id": inv.ID,
			},
		}
		if err := s.notes.Create(ctx, note); err != nil {
			logger.Warn("In-app invite notification failed", "invitation_id", inv.ID, "member_id", member.ID, "error", err)
		}
		return inv
	}

	inv.Notified = s.dispatch.Dispatch(ctx, inv, game, member.Email, member.Phone, false)
	return inv
}

func (s *inviteService) buildExternalInvite(ctx context.Context, game *domain.Game, p pendingInvitee, now time.Time) *domain.Invitation {
	// Cannot fail: issuance rejects invitees without any contact channel.
	invitee, _ := domain.ExternalInvitee(p.email, p.phone)
	inv := &domain.Invitation{
		ID:           uuid.NewString(),
		GameID:       game.ID,
		GamemasterID: game.GamemasterID,
		Invitee:      invitee,
		DisplayName:  inviteeDisplayName(p.input, nil),
		ExpiresOn:    p.expiresOn,
		CreatedOn:    now,
	}
	inv.Notified = s.dispatch.Dispatch(ctx, inv, game, p.email, p.phone, true)
	return inv
}

func (s *inviteService) AcceptInvitation(ctx context.Context, inviteID string, memberID int32) (*AcceptResult, error) {
	logger.EnterMethod("inviteService.AcceptInvitation", "invitation_id", inviteID, "member_id", memberID)

	inv, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInviteNotFound
		}
		return nil, fmt.Errorf("loading invitation: %w", err)
	}

	// Expiry is checked before any mutation, on every attempt.
	now := time.Now()
	if inv.Expired(now) {
		return nil, ErrInviteExpired
	}

	if owner, ok := inv.Invitee.MemberID(); ok {
		if owner != memberID {
			return nil, ErrInviteClaimed
		}
	} else {
		// One-time identity claim for external invitations.
		claimed, err := s.invites.Claim(ctx, inviteID, memberID)
		if err != nil {
			return nil, fmt.Errorf("claiming invitation: %w", err)
		}
		if !claimed {
			// Lost the race; reload to see who holds the link now.
			inv, err = s.invites.GetByID(ctx, inviteID)
			if err != nil {
				return nil, fmt.Errorf("reloading invitation: %w", err)
			}
			if owner, ok := inv.Invitee.MemberID(); !ok || owner != memberID {
				return nil, ErrInviteClaimed
			}
		} else {
			inv.Invitee = domain.MemberInvitee(memberID)
		}
	}

	if inv.Accepted {
		// An earlier attempt can fail after marking the row accepted but
		// before inserting the registration. The insert is idempotent, so
		// replaying it here closes that gap.
		if _, err := s.regs.CreateIfAbsent(ctx, inviteRegistration(inv.GameID, memberID, now)); err != nil {
			return nil, fmt.Errorf("creating registration: %w", err)
		}
		return &AcceptResult{GameID: inv.GameID, Message: "invitation already accepted"}, nil
	}

	if err := s.invites.MarkAccepted(ctx, inviteID, now); err != nil {
		return nil, fmt.Errorf("marking invitation accepted: %w", err)
	}

	created, err := s.regs.CreateIfAbsent(ctx, inviteRegistration(inv.GameID, memberID, now))
	if err != nil {
		return nil, fmt.Errorf("creating registration: %w", err)
	}

	s.recordAudit(ctx, "invitation.accepted", memberID, "invitation", inv.ID,
		fmt.Sprintf("member %d accepted invitation to game %d", memberID, inv.GameID),
		map[string]string{
			"game_id":       strconv.Itoa(int(inv.GameID)),
			"gamemaster_id": strconv.Itoa(int(inv.GamemasterID)),
			"invitee":       inv.DisplayName,
		})

	msg := "registration created"
	if !created {
		msg = "already registered for this game"
	}
	logger.ExitMethod("inviteService.AcceptInvitation", "invitation_id", inviteID, "registration_created", created)
	return &AcceptResult{GameID: inv.GameID, Message: msg}, nil
}

func (s *inviteService) ListGameInvitations(ctx context.Context, gameID, actorID int32) ([]domain.Invitation, error) {
	if _, err := s.authorizeGameAccess(ctx, gameID, actorID); err != nil {
		return nil, err
	}
	return s.invites.ListByGame(ctx, gameID)
}

// authorizeGameAccess loads the game and verifies the actor is its gamemaster
// or holds the club admin role.
func (s *inviteService) authorizeGameAccess(ctx context.Context, gameID, actorID int32) (*domain.Game, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("loading game: %w", err)
	}

	if game.GamemasterID == actorID {
		return game, nil
	}
	actor, err := s.members.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotGamemaster
		}
		return nil, fmt.Errorf("loading acting member: %w", err)
	}
	if actor.Role != domain.MemberRoleAdmin {
		return nil, ErrNotGamemaster
	}
	return game, nil
}

// registeredMembers builds the set of resolved accounts that already hold a
// registration for the game, via a single batched query.
func (s *inviteService) registeredMembers(ctx context.Context, gameID int32, matches []*domain.Member) (map[int32]bool, error) {
	var ids []int32
	seen := make(map[int32]bool)
	for _, m := range matches {
		if m != nil && !seen[m.ID] {
			seen[m.ID] = true
			ids = append(ids, m.ID)
		}
	}
	registered := make(map[int32]bool)
	if len(ids) == 0 {
		return registered, nil
	}
	found, err := s.regs.FilterRegistered(ctx, gameID, ids)
	if err != nil {
		return nil, err
	}
	for _, id := range found {
		registered[id] = true
	}
	return registered, nil
}

// recordAudit persists an audit event; failures are logged, not propagated.
func (s *inviteService) recordAudit(ctx context.Context, action string, actorID int32, targetType, targetID, summary string, metadata map[string]string) {
	event := &domain.AuditEvent{
		Action:     action,
		ActorID:    actorID,
		TargetType: targetType,
		TargetID:   targetID,
		Summary:    summary,
		Metadata:   metadata,
	}
	if err := s.audit.Record(ctx, event); err != nil {
		logger.Warn("Audit event not recorded", "action", action, "target_id", targetID, "error", err)
	}
}

// inviteRegistration builds the registration row an acceptance produces.
func inviteRegistration(gameID, memberID int32, now time.Time) *domain.Registration {
	return &domain.Registration{
		GameID:    gameID,
		MemberID:  memberID,
		Status:    domain.RegistrationStatusApproved,
		Note:      "joined via gamemaster invitation",
		UpdatedBy: memberID,
		CreatedOn: now,
		UpdatedOn: now,
	}
}

func inviteeDisplayName(in InviteeInput, member *domain.Member) string {
	if in.DisplayName != "" {
		return in.DisplayName
	}
	if in.GivenName != "" {
		return in.GivenName
	}
	if member != nil && member.DisplayName != "" {
		return member.DisplayName
	}
	return "there"
}
