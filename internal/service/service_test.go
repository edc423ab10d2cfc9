package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"merocare/internal/database"
	"merocare/internal/models"
	"merocare/internal/notify"
	"merocare/internal/repository"
	"merocare/internal/security"
)

func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "service.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, db.RunMigrations("../../migrations"))
	return db
}

func newTestAuthService(db *database.DB) *AuthService {
	return NewAuthService(repository.NewUserRepository(db), security.NewTokenIssuer("test-secret", time.Hour))
}

func signup(t *testing.T, auth *AuthService, email, name, gender string) *models.User {
	t.Helper()
	user, err := auth.Signup(context.Background(), SignupInput{
		Email:    email,
		FullName: name,
		Password: "password123",
		Gender:   gender,
	})
	require.NoError(t, err)
	return user
}

type publishedEvent struct {
	userID int64
	event  notify.Event
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) Publish(userID int64, ev notify.Event) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{userID: userID, event: ev})
}

func (p *recordingPublisher) all() []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]publishedEvent(nil), p.events...)
}

type sentInvite struct {
	toEmail, toName, fromName, role string
}

type recordingMailer struct {
	mu   sync.Mutex
	sent []sentInvite
	err  error
}

func (m *recordingMailer) SendFamilyInviteEmail(_ context.Context, toEmail, toName, fromName, role string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, sentInvite{toEmail, toName, fromName, role})
	return m.err
}

type fakeGenerator struct {
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) Complete(_ context.Context, _, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *fakeGenerator) GetModel() string { return "fake-model" }
