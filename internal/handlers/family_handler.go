package handlers

import (
	"net/http"
	"time"

	"merocare/internal/notify"
	"merocare/internal/service"
)

// FamilyHandler serves invites, the family listing and shared history
type FamilyHandler struct {
	familyService  *service.FamilyService
	hub            *notify.Hub
	originPatterns []string
	now            func() time.Time
}

// NewFamilyHandler creates a new family handler. hub may be nil, which
// disables the notification stream.
func NewFamilyHandler(familyService *service.FamilyService, hub *notify.Hub, originPatterns []string) *FamilyHandler {
	return &FamilyHandler{
		familyService:  familyService,
		hub:            hub,
		originPatterns: originPatterns,
		now:            time.Now,
	}
}

type inviteRequest struct {
	ReceiverEmail   string `json:"receiver_email"`
	RoleForReceiver string `json:"role_for_receiver"`
}

// Invite proposes a family connection to another user
func (h *FamilyHandler) Invite(w http.ResponseWriter, r *http.Request) {
	var req inviteRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := GetUserFromContext(r.Context())
	conn, err := h.familyService.Invite(r.Context(), user.ID, req.ReceiverEmail, req.RoleForReceiver)
	if err != nil {
		respondWithServiceError(w, "Failed to send invite", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"message":   "Invitation Sent",
		"invite_id": conn.ID,
	})
}

// PendingRequests lists invites waiting on the caller
func (h *FamilyHandler) PendingRequests(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	invites, err := h.familyService.PendingRequests(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list pending invites", err)
		return
	}

	out := make([]pendingInviteResponse, len(invites))
	for i, inv := range invites {
		out[i] = pendingInviteResponse{
			InviteID:     inv.ID,
			FromName:     inv.SenderName,
			AssignedRole: inv.ReceiverRole,
			SentAt:       inv.CreatedAt,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// SentInvites lists invites the caller sent
func (h *FamilyHandler) SentInvites(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	invites, err := h.familyService.SentInvites(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list sent invites", err)
		return
	}

	out := make([]sentInviteResponse, len(invites))
	for i, inv := range invites {
		out[i] = sentInviteResponse{
			InviteID:     inv.ID,
			ToName:       inv.ReceiverName,
			Status:       inv.Status,
			AssignedRole: inv.ReceiverRole,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// Accept confirms an invite addressed to the caller
func (h *FamilyHandler) Accept(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user := GetUserFromContext(r.Context())
	if _, err := h.familyService.Accept(r.Context(), user.ID, id); err != nil {
		respondWithServiceError(w, "Failed to accept invite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Joined Family"})
}

// Reject declines or withdraws an invite
func (h *FamilyHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user := GetUserFromContext(r.Context())
	if err := h.familyService.Reject(r.Context(), user.ID, id); err != nil {
		respondWithServiceError(w, "Failed to reject invite", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Invitation rejected and removed"})
}

// List returns the caller's family group with each member's role
func (h *FamilyHandler) List(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	members, err := h.familyService.ListFamily(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Failed to list family", err)
		return
	}

	now := h.now()
	out := make([]familyMemberResponse, len(members))
	for i := range members {
		out[i] = familyMemberResponse{
			userResponse: newUserResponse(&members[i].User, now),
			Role:         members[i].Role,
		}
	}
	writeJSON(w, http.StatusOK, out)
}

// MemberHistory returns the diagnoses a family member shares
func (h *FamilyHandler) MemberHistory(w http.ResponseWriter, r *http.Request) {
	targetID, ok := pathID(w, r, "target_user_id")
	if !ok {
		return
	}

	user := GetUserFromContext(r.Context())
	target, history, err := h.familyService.MemberHistory(r.Context(), user.ID, targetID)
	if err != nil {
		respondWithServiceError(w, "Failed to load member history", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"full_name": target.FullName,
		"history":   newDiagnosisList(history),
	})
}

// Notifications streams invite events to the caller over a websocket
func (h *FamilyHandler) Notifications(w http.ResponseWriter, r *http.Request) {
	if h.hub == nil {
		respondWithError(w, http.StatusServiceUnavailable, "Notifications are disabled", "", nil)
		return
	}
	user := GetUserFromContext(r.Context())
	h.hub.Serve(w, r, user.ID, h.originPatterns)
}
