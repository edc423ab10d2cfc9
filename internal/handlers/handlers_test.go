package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"merocare/internal/database"
	"merocare/internal/notify"
	"merocare/internal/repository"
	"merocare/internal/security"
	"merocare/internal/service"
)

type stubGenerator struct {
	reply string
	err   error
}

func (g *stubGenerator) Complete(context.Context, string, string) (string, error) {
	return g.reply, g.err
}

func (g *stubGenerator) GetModel() string { return "stub" }

type testAPI struct {
	t       *testing.T
	server  *httptest.Server
	hub     *notify.Hub
	gen     *stubGenerator
	startup *StartupStatus
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "api.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, db.RunMigrations("../../migrations"))

	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	diagnosisRepo := repository.NewDiagnosisRepository(db)

	hub := notify.NewHub()
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)
	t.Cleanup(cancel)

	gen := &stubGenerator{reply: `{"possible_diseases": ["Influenza"], "first_aid": ["Rest"], "urgency": "ROUTINE"}`}
	authService := service.NewAuthService(userRepo, security.NewTokenIssuer("test-secret", time.Hour))
	tipService := service.NewHealthTipService(repository.NewHealthTipRepository(db))
	_, err = tipService.Seed(context.Background(), "")
	require.NoError(t, err)

	startup := NewStartupStatus(StepDatabase)
	router := &Router{
		Middleware: NewMiddleware(authService, nil),
		Startup:    startup,
		Auth:       NewAuthHandler(authService, nil, "", security.NewStateSigner("test-secret")),
		Users:      NewUserHandler(service.NewUserService(userRepo)),
		Family: NewFamilyHandler(
			service.NewFamilyService(db, userRepo, familyRepo, diagnosisRepo, hub, nil),
			hub, []string{"*"},
		),
		Diagnosis:      NewDiagnosisHandler(service.NewDiagnosisService(gen, diagnosisRepo, userRepo)),
		Records:        NewMedicalRecordHandler(service.NewMedicalRecordService(repository.NewMedicalRecordRepository(db))),
		HealthTips:     NewHealthTipHandler(tipService),
		AllowedOrigins: []string{"http://localhost:3000"},
	}

	server := httptest.NewServer(router.Handler())
	t.Cleanup(server.Close)
	return &testAPI{t: t, server: server, hub: hub, gen: gen, startup: startup}
}

// do sends a JSON request and decodes the JSON response into out when non-nil
func (a *testAPI) do(method, path, token string, body interface{}, out interface{}) *http.Response {
	a.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(a.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, a.server.URL+path, reader)
	require.NoError(a.t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	require.NoError(a.t, err)
	defer resp.Body.Close()

	if out != nil {
		require.NoError(a.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

// register signs up and logs in a user, returning the token and user id
func (a *testAPI) register(email, name, gender string) (string, int64) {
	a.t.Helper()

	resp := a.do(http.MethodPost, "/signup", "", map[string]string{
		"email": email, "full_name": name, "password": "password123", "gender": gender,
	}, nil)
	require.Equal(a.t, http.StatusOK, resp.StatusCode)

	var tok tokenResponse
	resp = a.do(http.MethodPost, "/login", "", map[string]string{"email": email, "password": "password123"}, &tok)
	require.Equal(a.t, http.StatusOK, resp.StatusCode)
	assert.Equal(a.t, "bearer", tok.TokenType)
	return tok.AccessToken, tok.UserID
}

type detailBody struct {
	Detail string `json:"detail"`
}
