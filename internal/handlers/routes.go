package handlers

import "net/http"

// Router bundles the handlers served by the API
type Router struct {
	Middleware     *Middleware
	Startup        *StartupStatus
	Auth           *AuthHandler
	Users          *UserHandler
	Family         *FamilyHandler
	Diagnosis      *DiagnosisHandler
	Records        *MedicalRecordHandler
	HealthTips     *HealthTipHandler
	AllowedOrigins []string
}

// Handler registers every route and wraps the mux in the shared middleware
func (rt *Router) Handler() http.Handler {
	m := rt.Middleware
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /{$}", rt.Auth.Home)
	mux.HandleFunc("GET /healthz", rt.Startup.Healthz)
	mux.HandleFunc("POST /signup", m.RateLimit(rt.Auth.Signup))
	mux.HandleFunc("POST /login", m.RateLimit(rt.Auth.Login))
	mux.HandleFunc("GET /auth/{provider}/start", rt.Auth.StartOAuth)
	mux.HandleFunc("GET /auth/{provider}/callback", rt.Auth.OAuthCallback)
	mux.HandleFunc("GET /health-tips", rt.HealthTips.List)

	// Users
	mux.HandleFunc("GET /users", m.RequireAuth(rt.Users.ListUsers))
	mux.HandleFunc("GET /users/me", m.RequireAuth(rt.Users.Me))
	mux.HandleFunc("PATCH /users/me", m.RequireAuth(rt.Users.UpdateMe))
	mux.HandleFunc("GET /users/{id}", m.RequireAuth(rt.Users.GetUser))

	// Family
	mux.HandleFunc("POST /family/invite", m.RequireAuth(m.RateLimit(rt.Family.Invite)))
	mux.HandleFunc("GET /family/pending-requests", m.RequireAuth(rt.Family.PendingRequests))
	mux.HandleFunc("GET /family/sent-invites", m.RequireAuth(rt.Family.SentInvites))
	mux.HandleFunc("POST /family/accept/{id}", m.RequireAuth(rt.Family.Accept))
	mux.HandleFunc("POST /family/reject/{id}", m.RequireAuth(rt.Family.Reject))
	mux.HandleFunc("GET /family/list", m.RequireAuth(rt.Family.List))
	mux.HandleFunc("GET /family/member-history/{target_user_id}", m.RequireAuth(rt.Family.MemberHistory))
	mux.HandleFunc("GET /family/notifications/ws", m.RequireAuth(rt.Family.Notifications))

	// Diagnosis
	mux.HandleFunc("POST /diagnosis/check", m.RequireAuth(m.RateLimit(rt.Diagnosis.Check)))
	mux.HandleFunc("GET /diagnosis/my", m.RequireAuth(rt.Diagnosis.MyDiagnoses))
	mux.HandleFunc("PATCH /diagnosis/update-visibility/{id}", m.RequireAuth(rt.Diagnosis.UpdateVisibility))

	// Medical records
	mux.HandleFunc("POST /medical-records", m.RequireAuth(rt.Records.Create))
	mux.HandleFunc("GET /medical-records", m.RequireAuth(rt.Records.List))
	mux.HandleFunc("DELETE /medical-records/{id}", m.RequireAuth(rt.Records.Delete))

	return RequestID(Logging(CORS(rt.AllowedOrigins)(mux)))
}
