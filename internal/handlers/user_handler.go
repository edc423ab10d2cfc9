package handlers

import (
	"net/http"
	"strconv"
	"time"

	"merocare/internal/service"
)

// UserHandler serves user profiles
type UserHandler struct {
	userService *service.UserService
	now         func() time.Time
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{userService: userService, now: time.Now}
}

// ListUsers returns a page of profiles
func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	skip := queryInt(r, "skip", 0)
	limit := queryInt(r, "limit", 100)

	users, err := h.userService.ListUsers(r.Context(), skip, limit)
	if err != nil {
		respondWithServiceError(w, "Failed to list users", err)
		return
	}

	now := h.now()
	out := make([]userResponse, len(users))
	for i := range users {
		out[i] = newUserResponse(&users[i], now)
	}
	writeJSON(w, http.StatusOK, out)
}

// GetUser returns one profile
func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetUser(r.Context(), id)
	if err != nil {
		respondWithServiceError(w, "Failed to get user", err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(user, h.now()))
}

// Me returns the caller's profile
func (h *UserHandler) Me(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	writeJSON(w, http.StatusOK, newUserResponse(user, h.now()))
}

type profileRequest struct {
	FullName   *string `json:"full_name"`
	Gender     *string `json:"gender"`
	DOB        *string `json:"dob"`
	BloodGroup *string `json:"blood_group"`
}

// UpdateMe applies a partial update to the caller's profile
func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user := GetUserFromContext(r.Context())
	updated, err := h.userService.UpdateProfile(r.Context(), user.ID, service.ProfileInput{
		FullName:   req.FullName,
		Gender:     req.Gender,
		DOB:        req.DOB,
		BloodGroup: req.BloodGroup,
	})
	if err != nil {
		respondWithServiceError(w, "Failed to update profile", err)
		return
	}
	writeJSON(w, http.StatusOK, newUserResponse(updated, h.now()))
}

// pathID parses a positive integer path value, writing a 400 on failure
func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue(name), 10, 64)
	if err != nil || id <= 0 {
		respondWithError(w, http.StatusBadRequest, ErrInvalidID, "", nil)
		return 0, false
	}
	return id, true
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
