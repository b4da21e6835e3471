package server

import "net/http"

// NewRouter wires the emulator's HTTP surface
func NewRouter(h *AuthHandlers) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /.auth/login/{provider}", h.LoginHandler)
	mux.HandleFunc("GET /.auth/login/{provider}/callback", h.CallbackHandler)
	mux.HandleFunc("GET /.auth/me", h.MeHandler)
	mux.HandleFunc("GET /.auth/logout", h.LogoutHandler)
	mux.Handle("GET /healthz", NewHealthHandler())
	return mux
}
