// Package reconcile keeps the application's user rows consistent with the
// identity provider, via verified webhook events and an on-demand manual
// sync. This is the only stateful logic in the service; everything around
// it is transport and persistence glue.
package reconcile

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"devhub/internal/domain"
	"devhub/internal/identity"
	"devhub/internal/webhook"
)

// Event types the workflow cares about. Anything else is acknowledged and
// ignored.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

type Service struct {
	users domain.UserRepository
	log   *zap.Logger
}

func NewService(users domain.UserRepository, log *zap.Logger) *Service {
	return &Service{users: users, log: log}
}

// eventUser mirrors the provider's webhook user payload.
type eventUser struct {
	ID                    string  `json:"id"`
	Username              *string `json:"username"`
	FirstName             *string `json:"first_name"`
	LastName              *string `json:"last_name"`
	ImageURL              string  `json:"image_url"`
	PrimaryEmailAddressID string  `json:"primary_email_address_id"`
	EmailAddresses        []struct {
		ID           string `json:"id"`
		EmailAddress string `json:"email_address"`
	} `json:"email_addresses"`
	PublicMetadata map[string]any `json:"public_metadata"`
}

func (e *eventUser) email() (string, bool) {
	if len(e.EmailAddresses) == 0 {
		return "", false
	}
	for _, a := range e.EmailAddresses {
		if e.PrimaryEmailAddressID != "" && a.ID == e.PrimaryEmailAddressID {
			return a.EmailAddress, true
		}
	}
	return e.EmailAddresses[0].EmailAddress, true
}

func (e *eventUser) roleHint() (string, bool) {
	hint, ok := e.PublicMetadata["role"].(string)
	return hint, ok && hint != ""
}

// HandleEvent dispatches a verified webhook event. Returned errors are
// processing failures: the event was authentic but the store mutation did
// not go through. The handler surfaces them as 500s and relies on the
// provider's own retry policy.
func (s *Service) HandleEvent(ctx context.Context, evt *webhook.Event) error {
	switch evt.Type {
	case EventUserCreated:
		return s.applyCreated(ctx, evt.Data)
	case EventUserUpdated:
		return s.applyUpdated(ctx, evt.Data)
	case EventUserDeleted:
		return s.applyDeleted(ctx, evt.Data)
	default:
		// Verified but out of interest.
		s.log.Info("webhook event ignored", zap.String("type", evt.Type))
		return nil
	}
}

// applyCreated is deliberately insert-only: the provider guarantees id
// uniqueness on its side, so a duplicate delivery surfaces as a store
// failure instead of being silently absorbed. Manual sync is the repair
// path for drift.
func (s *Service) applyCreated(ctx context.Context, data json.RawMessage) error {
	var in eventUser
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("reconcile: parse created event: %w", err)
	}
	if in.ID == "" {
		// The id is the provider's identifier; a row keyed by the empty
		// string would shadow every future id-less delivery.
		return fmt.Errorf("reconcile: created event without user id")
	}

	email, _ := in.email()
	var candidate string
	if in.Username != nil {
		candidate = *in.Username
	}

	u := &domain.User{
		ID:          in.ID,
		Email:       email,
		Username:    GenerateUsername(candidate, email, in.ID),
		DisplayName: FormatDisplayName(deref(in.FirstName), deref(in.LastName)),
		Role:        domain.RoleMember,
	}
	if hint, ok := in.roleHint(); ok {
		u.Role = MapRole(hint)
	}
	if in.ImageURL != "" {
		u.AvatarURL = &in.ImageURL
	}

	if err := s.users.Create(ctx, u); err != nil {
		return fmt.Errorf("reconcile: create user %s: %w", in.ID, err)
	}
	s.log.Info("user created from webhook",
		zap.String("id", u.ID), zap.String("username", u.Username))
	return nil
}

// applyUpdated touches only the fields the provider actually supplied.
// An absent role hint leaves the stored role alone rather than resetting
// it to MEMBER.
func (s *Service) applyUpdated(ctx context.Context, data json.RawMessage) error {
	var in eventUser
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("reconcile: parse updated event: %w", err)
	}
	if in.ID == "" {
		return fmt.Errorf("reconcile: updated event without user id")
	}

	var changes domain.UserChanges
	if email, ok := in.email(); ok {
		changes.Email = &email
	}
	if in.Username != nil && *in.Username != "" {
		changes.Username = in.Username
	}
	if deref(in.FirstName) != "" || deref(in.LastName) != "" {
		name := FormatDisplayName(deref(in.FirstName), deref(in.LastName))
		changes.DisplayName = &name
	}
	if in.ImageURL != "" {
		changes.AvatarURL = &in.ImageURL
	}
	if hint, ok := in.roleHint(); ok {
		role := MapRole(hint)
		changes.Role = &role
	}

	if err := s.users.Update(ctx, in.ID, changes); err != nil {
		return fmt.Errorf("reconcile: update user %s: %w", in.ID, err)
	}
	s.log.Info("user updated from webhook", zap.String("id", in.ID))
	return nil
}

func (s *Service) applyDeleted(ctx context.Context, data json.RawMessage) error {
	var in struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &in); err != nil {
		return fmt.Errorf("reconcile: parse deleted event: %w", err)
	}
	if in.ID == "" {
		// The provider sends deletions without an id for users it never
		// fully materialized. Nothing to do.
		s.log.Info("delete event without id, skipping")
		return nil
	}
	if err := s.users.Delete(ctx, in.ID); err != nil {
		return fmt.Errorf("reconcile: delete user %s: %w", in.ID, err)
	}
	s.log.Info("user deleted from webhook", zap.String("id", in.ID))
	return nil
}

// Sync outcome messages, also surfaced to the caller.
const (
	MsgAlreadyExists = "User already exists in database"
	MsgIDRepaired    = "User ID updated to match current session"
	MsgSynced        = "User synced successfully"
)

// SyncUser is the manual reconciliation path for an authenticated session.
// It guarantees a row exists for the session's provider id:
//
//  1. row found by id          -> no-op (stale fields are not refreshed)
//  2. row found by email only  -> rewrite that row's id to the session id
//  3. no row                   -> upsert with derived fields
//
// The upsert in step 3 makes concurrent first-time syncs race-safe.
func (s *Service) SyncUser(ctx context.Context, userID string, p *identity.Profile) (*domain.User, string, error) {
	existing, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, "", fmt.Errorf("reconcile: lookup user %s: %w", userID, err)
	}
	if existing != nil {
		return existing, MsgAlreadyExists, nil
	}

	if p.Email != "" {
		byEmail, err := s.users.FindByEmail(ctx, p.Email)
		if err != nil {
			return nil, "", fmt.Errorf("reconcile: lookup user by email: %w", err)
		}
		if byEmail != nil {
			// Same mailbox, different provider id: the provider id changed
			// across re-auth. Repair the key, keep everything else.
			repaired, err := s.users.ReassignID(ctx, byEmail.ID, userID)
			if err != nil {
				return nil, "", fmt.Errorf("reconcile: reassign user id %s -> %s: %w", byEmail.ID, userID, err)
			}
			s.log.Info("user id repaired",
				zap.String("old_id", byEmail.ID), zap.String("new_id", userID))
			return repaired, MsgIDRepaired, nil
		}
	}

	u := &domain.User{
		ID:          userID,
		Email:       p.Email,
		Username:    GenerateUsername(p.Username, p.Email, userID),
		DisplayName: FormatDisplayName(p.FirstName, p.LastName),
		Role:        MapRole(p.RoleHint),
	}
	if p.AvatarURL != "" {
		avatar := p.AvatarURL
		u.AvatarURL = &avatar
	}

	if err := s.users.Upsert(ctx, u, p.RoleHint != ""); err != nil {
		return nil, "", fmt.Errorf("reconcile: upsert user %s: %w", userID, err)
	}
	s.log.Info("user synced", zap.String("id", u.ID), zap.String("username", u.Username))
	return u, MsgSynced, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
