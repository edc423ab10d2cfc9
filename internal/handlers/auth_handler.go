package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"merocare/internal/security"
	"merocare/internal/service"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService          *service.AuthService
	oauthProviders       map[string]OAuthProvider
	oauthRedirectBaseURL string
	signer               *security.StateSigner
	now                  func() time.Time
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService, oauthProviders map[string]OAuthProvider, oauthRedirectBaseURL string, signer *security.StateSigner) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		oauthProviders:       oauthProviders,
		oauthRedirectBaseURL: oauthRedirectBaseURL,
		signer:               signer,
		now:                  time.Now,
	}
}

type signupRequest struct {
	Email      string `json:"email"`
	FullName   string `json:"full_name"`
	Password   string `json:"password"`
	Gender     string `json:"gender"`
	DOB        string `json:"dob"`
	BloodGroup string `json:"blood_group"`
}

// Signup creates an account
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := h.authService.Signup(r.Context(), service.SignupInput{
		Email:      req.Email,
		FullName:   req.FullName,
		Password:   req.Password,
		Gender:     req.Gender,
		DOB:        req.DOB,
		BloodGroup: req.BloodGroup,
	})
	if err != nil {
		respondWithServiceError(w, "Signup failed", err)
		return
	}

	writeJSON(w, http.StatusOK, newUserResponse(user, h.now()))
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	token, user, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Login failed", err)
		return
	}

	writeJSON(w, http.StatusOK, tokenResponse{AccessToken: token, TokenType: "bearer", UserID: user.ID})
}

// Home confirms the API is reachable
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Connected Successfully"})
}

// decodeJSON reads a JSON request body into v, writing a 400 on failure
func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrInvalidJSON, "", nil)
		return false
	}
	return true
}
