package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"nhooyr.io/websocket"

	"merocare/internal/notify"
)

func TestHomeAndHealthz(t *testing.T) {
	api := newTestAPI(t)

	var home map[string]string
	resp := api.do(http.MethodGet, "/", "", nil, &home)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Connected Successfully", home["message"])

	var status startupResponse
	resp = api.do(http.MethodGet, "/healthz", "", nil, &status)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.False(t, status.Ready)

	api.startup.MarkReady()
	resp = api.do(http.MethodGet, "/healthz", "", nil, &status)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, status.Ready)

	resp = api.do(http.MethodGet, "/nope", "", nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSignupAndLoginErrors(t *testing.T) {
	api := newTestAPI(t)
	api.register("asha@example.com", "Asha Rai", "female")

	var body detailBody
	resp := api.do(http.MethodPost, "/signup", "", map[string]string{
		"email": "asha@example.com", "full_name": "Asha Again", "password": "password123",
	}, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Email already registered", body.Detail)

	resp = api.do(http.MethodPost, "/login", "", map[string]string{
		"email": "asha@example.com", "password": "wrong-password",
	}, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Invalid Credentials", body.Detail)

	resp = api.do(http.MethodPost, "/signup", "", map[string]string{
		"email": "not-an-email", "full_name": "Nobody", "password": "password123",
	}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Contains(t, body.Detail, "email")
}

func TestUsersEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token, id := api.register("asha@example.com", "Asha Rai", "female")

	var me userResponse
	resp := api.do(http.MethodGet, "/users/me", token, nil, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, id, me.ID)
	assert.Nil(t, me.Age)

	resp = api.do(http.MethodPatch, "/users/me", token, map[string]string{"dob": "2000-01-01", "blood_group": "ab+"}, &me)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotNil(t, me.DOB)
	assert.Equal(t, "2000-01-01", *me.DOB)
	assert.NotNil(t, me.Age)
	assert.Equal(t, "AB+", me.BloodGroup)

	var list []userResponse
	resp = api.do(http.MethodGet, "/users?skip=0&limit=10", token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 1)

	var body detailBody
	resp = api.do(http.MethodGet, "/users/999", token, nil, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "User not found", body.Detail)

	resp = api.do(http.MethodGet, "/users/abc", token, nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFamilyFlow(t *testing.T) {
	api := newTestAPI(t)
	ashaToken, ashaID := api.register("asha@example.com", "Asha Rai", "female")
	ramToken, ramID := api.register("ram@example.com", "Ram Rai", "male")

	var body detailBody
	resp := api.do(http.MethodPost, "/family/invite", ashaToken, map[string]string{
		"receiver_email": "nobody@example.com", "role_for_receiver": "Father",
	}, &body)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(http.MethodPost, "/family/invite", ashaToken, map[string]string{
		"receiver_email": "asha@example.com", "role_for_receiver": "Father",
	}, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var sent map[string]interface{}
	resp = api.do(http.MethodPost, "/family/invite", ashaToken, map[string]string{
		"receiver_email": "ram@example.com", "role_for_receiver": "Father",
	}, &sent)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Invitation Sent", sent["message"])

	resp = api.do(http.MethodPost, "/family/invite", ashaToken, map[string]string{
		"receiver_email": "ram@example.com", "role_for_receiver": "Father",
	}, &body)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	var pending []pendingInviteResponse
	resp = api.do(http.MethodGet, "/family/pending-requests", ramToken, nil, &pending)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, pending, 1)
	assert.Equal(t, "Asha Rai", pending[0].FromName)
	assert.Equal(t, "Father", pending[0].AssignedRole)

	// Only the receiver may accept
	resp = api.do(http.MethodPost, fmt.Sprintf("/family/accept/%d", pending[0].InviteID), ashaToken, nil, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = api.do(http.MethodPost, fmt.Sprintf("/family/accept/%d", pending[0].InviteID), ramToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var invites []sentInviteResponse
	resp = api.do(http.MethodGet, "/family/sent-invites", ashaToken, nil, &invites)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, invites, 1)
	assert.Equal(t, "accepted", invites[0].Status)
	assert.Equal(t, "Ram Rai", invites[0].ToName)

	var members []familyMemberResponse
	resp = api.do(http.MethodGet, "/family/list", ramToken, nil, &members)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	roles := map[int64]string{}
	for _, m := range members {
		roles[m.ID] = m.Role
	}
	assert.Equal(t, map[int64]string{ashaID: "Daughter", ramID: "Self"}, roles)

	// Ram shares one diagnosis with the family
	var check checkResponse
	resp = api.do(http.MethodPost, "/diagnosis/check", ramToken, map[string]interface{}{"symptoms": "fever, cough"}, &check)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var history struct {
		FullName string              `json:"full_name"`
		History  []diagnosisResponse `json:"history"`
	}
	resp = api.do(http.MethodGet, fmt.Sprintf("/family/member-history/%d", ramID), ashaToken, nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Ram Rai", history.FullName)
	assert.Empty(t, history.History)

	resp = api.do(http.MethodPatch, fmt.Sprintf("/diagnosis/update-visibility/%d?visibility=public", check.ID), ramToken, nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = api.do(http.MethodGet, fmt.Sprintf("/family/member-history/%d", ramID), ashaToken, nil, &history)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, history.History, 1)
	assert.Equal(t, "fever, cough", history.History[0].Symptoms)

	// Outsiders are refused
	outsiderToken, _ := api.register("out@example.com", "Outsider", "")
	resp = api.do(http.MethodGet, fmt.Sprintf("/family/member-history/%d", ramID), outsiderToken, nil, &body)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestRejectInvite(t *testing.T) {
	api := newTestAPI(t)
	ashaToken, _ := api.register("asha@example.com", "Asha Rai", "female")
	ramToken, _ := api.register("ram@example.com", "Ram Rai", "male")

	var sent struct {
		InviteID int64 `json:"invite_id"`
	}
	resp := api.do(http.MethodPost, "/family/invite", ashaToken, map[string]string{
		"receiver_email": "ram@example.com", "role_for_receiver": "Brother",
	}, &sent)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var msg map[string]string
	resp = api.do(http.MethodPost, fmt.Sprintf("/family/reject/%d", sent.InviteID), ramToken, nil, &msg)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Invitation rejected and removed", msg["message"])

	resp = api.do(http.MethodPost, fmt.Sprintf("/family/reject/%d", sent.InviteID), ramToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestDiagnosisEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("asha@example.com", "Asha Rai", "female")

	var check checkResponse
	resp := api.do(http.MethodPost, "/diagnosis/check", token, map[string]interface{}{
		"symptoms": []string{"fever"}, "age": 30,
	}, &check)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, []string{"Influenza"}, check.PossibleDiseases)
	assert.Equal(t, []string{"Rest"}, check.FirstAid)
	assert.Equal(t, "ROUTINE", check.Urgency)
	assert.Equal(t, "private", check.Visibility)

	var mine []diagnosisResponse
	resp = api.do(http.MethodGet, "/diagnosis/my", token, nil, &mine)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, mine, 1)
	assert.Equal(t, "Influenza", mine[0].PredictedDisease)

	var body detailBody
	resp = api.do(http.MethodPatch, fmt.Sprintf("/diagnosis/update-visibility/%d?visibility=friends", check.ID), token, nil, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = api.do(http.MethodPost, "/diagnosis/check", token, map[string]interface{}{"symptoms": []string{}}, &body)
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	api.gen.err = errors.New("groq down")
	resp = api.do(http.MethodPost, "/diagnosis/check", token, map[string]interface{}{"symptoms": "fever"}, &body)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestMedicalRecordEndpoints(t *testing.T) {
	api := newTestAPI(t)
	token, _ := api.register("asha@example.com", "Asha Rai", "female")
	otherToken, _ := api.register("ram@example.com", "Ram Rai", "male")

	var rec medicalRecordResponse
	resp := api.do(http.MethodPost, "/medical-records", token, map[string]string{
		"illness": "Asthma", "doctor_name": "Dr. Shrestha", "appointment_date": "2026-05-01",
	}, &rec)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotNil(t, rec.AppointmentDate)
	assert.Equal(t, "2026-05-01", *rec.AppointmentDate)

	var list []medicalRecordResponse
	resp = api.do(http.MethodGet, "/medical-records", token, nil, &list)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, list, 1)

	resp = api.do(http.MethodDelete, fmt.Sprintf("/medical-records/%d", rec.ID), otherToken, nil, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = api.do(http.MethodDelete, fmt.Sprintf("/medical-records/%d", rec.ID), token, nil, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}

func TestHealthTipsEndpoint(t *testing.T) {
	api := newTestAPI(t)

	var tips []healthTipResponse
	resp := api.do(http.MethodGet, "/health-tips", "", nil, &tips)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, tips)
	assert.NotEmpty(t, tips[0].Title)
}

func TestNotificationStream(t *testing.T) {
	api := newTestAPI(t)
	ashaToken, _ := api.register("asha@example.com", "Asha Rai", "female")
	ramToken, _ := api.register("ram@example.com", "Ram Rai", "male")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := "ws" + strings.TrimPrefix(api.server.URL, "http") + "/family/notifications/ws?token=" + ramToken
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	require.NoError(t, err)
	defer conn.Close(websocket.StatusNormalClosure, "")

	require.Eventually(t, func() bool { return api.hub.Connected() == 1 }, 2*time.Second, 10*time.Millisecond)

	resp := api.do(http.MethodPost, "/family/invite", ashaToken, map[string]string{
		"receiver_email": "ram@example.com", "role_for_receiver": "Father",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	_, data, err := conn.Read(ctx)
	require.NoError(t, err)

	var ev notify.Event
	require.NoError(t, json.Unmarshal(data, &ev))
	assert.Equal(t, notify.EventInviteReceived, ev.Type)
	assert.Equal(t, "Asha Rai", ev.FromName)
	assert.Equal(t, "Father", ev.Role)
}
