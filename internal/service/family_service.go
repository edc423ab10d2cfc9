package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"merocare/internal/database"
	"merocare/internal/kinship"
	"merocare/internal/models"
	"merocare/internal/notify"
	"merocare/internal/repository"
	"merocare/internal/validation"
)

// FamilyService handles invites between users and the family listing
type FamilyService struct {
	db            *database.DB
	userRepo      *repository.UserRepository
	familyRepo    *repository.FamilyRepository
	diagnosisRepo *repository.DiagnosisRepository
	notifier      notify.Publisher
	mailer        InviteMailer
}

// NewFamilyService creates a new family service. notifier and mailer may be nil.
func NewFamilyService(
	db *database.DB,
	userRepo *repository.UserRepository,
	familyRepo *repository.FamilyRepository,
	diagnosisRepo *repository.DiagnosisRepository,
	notifier notify.Publisher,
	mailer InviteMailer,
) *FamilyService {
	return &FamilyService{
		db:            db,
		userRepo:      userRepo,
		familyRepo:    familyRepo,
		diagnosisRepo: diagnosisRepo,
		notifier:      notifier,
		mailer:        mailer,
	}
}

// Invite proposes a connection from sender to the user with receiverEmail.
// A sender without a family group gets one named after them first.
func (s *FamilyService) Invite(ctx context.Context, senderID int64, receiverEmail, role string) (*models.FamilyConnection, error) {
	if err := validation.ValidateRole(role); err != nil {
		return nil, err
	}
	parsed := kinship.ParseRole(role)
	if parsed == kinship.Self || parsed.IsGeneric() {
		return nil, validation.ValidationError{Field: "role_for_receiver", Message: "role cannot be assigned to another user"}
	}
	label := parsed.String()

	sender, err := s.userRepo.GetUserByID(ctx, senderID)
	if err != nil {
		return nil, err
	}
	if sender == nil {
		return nil, ErrUserNotFound
	}

	receiver, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(receiverEmail))
	if err != nil {
		return nil, err
	}
	if receiver == nil {
		return nil, ErrUserNotFound
	}
	if receiver.ID == sender.ID {
		return nil, ErrSelfInvite
	}

	var conn *models.FamilyConnection
	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		users := s.userRepo.WithTx(tx)
		families := s.familyRepo.WithTx(tx)

		familyID, err := s.ensureFamily(ctx, users, families, sender)
		if err != nil {
			return err
		}

		exists, err := families.ConnectionExists(ctx, sender.ID, receiver.ID, familyID)
		if err != nil {
			return err
		}
		if exists {
			return ErrDuplicateInvite
		}

		conn, err = families.CreateConnection(ctx, sender.ID, receiver.ID, familyID, label)
		if errors.Is(err, repository.ErrDuplicate) {
			return ErrDuplicateInvite
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	slog.Info("Family invite sent", "invite_id", conn.ID, "sender_id", sender.ID, "receiver_id", receiver.ID, "family_id", conn.TargetFamilyID)

	s.publish(receiver.ID, notify.Event{
		Type:     notify.EventInviteReceived,
		InviteID: conn.ID,
		FromName: sender.FullName,
		Role:     conn.ReceiverRole,
	})
	if s.mailer != nil {
		if err := s.mailer.SendFamilyInviteEmail(ctx, receiver.Email, receiver.FullName, sender.FullName, conn.ReceiverRole); err != nil {
			slog.Warn("Failed to send invite email", "invite_id", conn.ID, "error", err)
		}
	}

	return conn, nil
}

// ensureFamily returns the sender's family id, creating the group if needed
func (s *FamilyService) ensureFamily(ctx context.Context, users *repository.UserRepository, families *repository.FamilyRepository, sender *models.User) (int64, error) {
	if sender.FamilyID != nil {
		return *sender.FamilyID, nil
	}

	family, err := families.CreateFamily(ctx, sender.FullName+"'s Family")
	if err != nil {
		return 0, err
	}
	assigned, err := users.SetFamilyIfEmpty(ctx, sender.ID, family.ID)
	if err != nil {
		return 0, err
	}
	if assigned {
		sender.FamilyID = &family.ID
		return family.ID, nil
	}

	// Another request assigned a family first
	current, err := users.GetUserByID(ctx, sender.ID)
	if err != nil {
		return 0, err
	}
	if current == nil || current.FamilyID == nil {
		return 0, fmt.Errorf("failed to assign family to user %d", sender.ID)
	}
	sender.FamilyID = current.FamilyID
	return *current.FamilyID, nil
}

// PendingRequests lists invites waiting on the user
func (s *FamilyService) PendingRequests(ctx context.Context, userID int64) ([]models.FamilyConnection, error) {
	return s.familyRepo.ListPendingForReceiver(ctx, userID)
}

// SentInvites lists every invite the user sent
func (s *FamilyService) SentInvites(ctx context.Context, userID int64) ([]models.FamilyConnection, error) {
	return s.familyRepo.ListSentBy(ctx, userID)
}

// Accept confirms an invite. The receiver joins the invite's family group
// only if they are not in one already.
func (s *FamilyService) Accept(ctx context.Context, userID, inviteID int64) (*models.FamilyConnection, error) {
	conn, err := s.familyRepo.GetConnection(ctx, inviteID)
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, ErrInviteNotFound
	}
	if conn.ReceiverID != userID {
		return nil, ErrNotInviteReceiver
	}
	if conn.IsAccepted() {
		return conn, nil
	}

	err = s.db.WithTx(ctx, func(tx *database.Tx) error {
		if _, err := s.userRepo.WithTx(tx).SetFamilyIfEmpty(ctx, conn.ReceiverID, conn.TargetFamilyID); err != nil {
			return err
		}
		return s.familyRepo.WithTx(tx).UpdateConnectionStatus(ctx, conn.ID, models.ConnectionAccepted)
	})
	if err != nil {
		return nil, err
	}
	conn.Status = models.ConnectionAccepted

	slog.Info("Family invite accepted", "invite_id", conn.ID, "receiver_id", conn.ReceiverID, "family_id", conn.TargetFamilyID)
	s.publish(conn.SenderID, notify.Event{
		Type:     notify.EventInviteAccepted,
		InviteID: conn.ID,
		FromName: conn.ReceiverName,
		Role:     conn.ReceiverRole,
	})
	return conn, nil
}

// Reject deletes an invite. The receiver may decline it and the sender may
// withdraw it.
func (s *FamilyService) Reject(ctx context.Context, userID, inviteID int64) error {
	conn, err := s.familyRepo.GetConnection(ctx, inviteID)
	if err != nil {
		return err
	}
	if conn == nil {
		return ErrInviteNotFound
	}
	if conn.ReceiverID != userID && conn.SenderID != userID {
		return ErrNotInviteReceiver
	}

	if err := s.familyRepo.DeleteConnection(ctx, conn.ID); err != nil {
		return err
	}

	other, actor := conn.SenderID, conn.ReceiverName
	if userID == conn.SenderID {
		other, actor = conn.ReceiverID, conn.SenderName
	}
	slog.Info("Family invite rejected", "invite_id", conn.ID, "by_user_id", userID)
	s.publish(other, notify.Event{Type: notify.EventInviteRejected, InviteID: conn.ID, FromName: actor})
	return nil
}

// ListFamily returns every member of the user's family group, each with
// the role the user has for them. A user without a group gets only
// themself as Self.
func (s *FamilyService) ListFamily(ctx context.Context, userID int64) ([]models.FamilyMember, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	if !user.HasFamily() {
		return []models.FamilyMember{{User: *user, Role: kinship.Self.String()}}, nil
	}

	users, err := s.userRepo.ListUsersInFamily(ctx, *user.FamilyID)
	if err != nil {
		return nil, err
	}
	conns, err := s.familyRepo.ListAcceptedConnections(ctx, *user.FamilyID)
	if err != nil {
		return nil, err
	}

	members := make([]kinship.Member, len(users))
	inGroup := make(map[int64]bool, len(users))
	for i, u := range users {
		members[i] = kinship.Member{ID: u.ID, Gender: u.Gender}
		inGroup[u.ID] = true
	}

	// A receiver who already had a family keeps it on accept, so only
	// edges between current members may serve as pivots.
	edges := make([]kinship.Connection, 0, len(conns))
	for _, c := range conns {
		if !inGroup[c.SenderID] || !inGroup[c.ReceiverID] {
			continue
		}
		edges = append(edges, kinship.Connection{
			SenderID:   c.SenderID,
			ReceiverID: c.ReceiverID,
			Role:       kinship.ParseRole(c.ReceiverRole),
		})
	}

	roles := kinship.ResolveFamily(user.ID, members, edges)
	out := make([]models.FamilyMember, len(users))
	for i, u := range users {
		out[i] = models.FamilyMember{User: u, Role: roles[i].String()}
	}
	return out, nil
}

// MemberHistory returns target's diagnoses as seen by requester. Members
// of the same family group see the public ones; a user sees all of their own.
func (s *FamilyService) MemberHistory(ctx context.Context, requesterID, targetID int64) (*models.User, []models.Diagnosis, error) {
	requester, err := s.userRepo.GetUserByID(ctx, requesterID)
	if err != nil {
		return nil, nil, err
	}
	target, err := s.userRepo.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, nil, err
	}
	if requester == nil || target == nil {
		return nil, nil, ErrUserNotFound
	}

	if requester.ID == target.ID {
		history, err := s.diagnosisRepo.ListByUser(ctx, target.ID)
		return target, history, err
	}
	if !requester.SameFamily(target) {
		return nil, nil, ErrNotSameFamily
	}

	history, err := s.diagnosisRepo.ListPublicByUser(ctx, target.ID)
	return target, history, err
}

func (s *FamilyService) publish(userID int64, ev notify.Event) {
	if s.notifier != nil {
		s.notifier.Publish(userID, ev)
	}
}
