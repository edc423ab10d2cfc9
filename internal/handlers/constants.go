package handlers

const (
	OAuthStateCookieName    = "oauth_state"
	OAuthProviderCookieName = "oauth_provider"

	ErrInvalidJSON         = "Invalid JSON body"
	ErrInvalidID           = "Invalid id"
	ErrUnauthorized        = "Failed to validate credentials"
	ErrInvalidCredentials  = "Invalid Credentials"
	ErrInternalServerError = "Internal server error"
	ErrTooManyRequests     = "Too many requests. Please try again later."
)
