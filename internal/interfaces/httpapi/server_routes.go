package httpapi

import "net/http"

func registerSystemRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /healthz", handler.Healthz)
}

func registerPublicRoutes(mux *http.ServeMux, handler *Handler) {
	mux.HandleFunc("GET /v1/word-wars/{warID}/scoreboard", handler.GetScoreboard)
	mux.HandleFunc("GET /v1/events/{eventID}/recap", handler.GetEventRecap)
}

func registerAuthorizedRoutes(mux *http.ServeMux, handler *Handler, verifier TokenVerifier) {
	mux.Handle("POST /v1/events/{eventID}/word-wars", RequireAuth(verifier, http.HandlerFunc(handler.CreateWordWar)))
	mux.Handle("POST /v1/word-wars/{warID}/join", RequireAuth(verifier, http.HandlerFunc(handler.JoinWordWar)))
	mux.Handle("POST /v1/word-wars/{warID}/leave", RequireAuth(verifier, http.HandlerFunc(handler.LeaveWordWar)))
	mux.Handle("POST /v1/word-wars/{warID}/start", RequireAuth(verifier, http.HandlerFunc(handler.StartWordWar)))
	mux.Handle("POST /v1/word-wars/{warID}/checkpoint", RequireAuth(verifier, http.HandlerFunc(handler.CheckpointWordWar)))
	mux.Handle("POST /v1/word-wars/{warID}/finish", RequireAuth(verifier, http.HandlerFunc(handler.FinishWordWar)))
}
