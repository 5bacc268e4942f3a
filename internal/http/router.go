package httpserver

import "net/http"

// Routes groups handlers.
type Routes struct {
	Resolve           http.HandlerFunc
	CloseConversation http.HandlerFunc
	ChatSocket        http.HandlerFunc
	Token             http.HandlerFunc
	Health            http.HandlerFunc
}

// NewRouter registers endpoints.
func NewRouter(routes Routes) http.Handler {
	mux := http.NewServeMux()
	if routes.Resolve != nil {
		mux.Handle("/api/resolve", method(http.MethodPost, routes.Resolve))
	}
	if routes.CloseConversation != nil {
		mux.Handle("/api/conversation/close", method(http.MethodPost, routes.CloseConversation))
	}
	if routes.ChatSocket != nil {
		mux.Handle("/ws/chat", method(http.MethodGet, routes.ChatSocket))
	}
	if routes.Token != nil {
		mux.Handle("/api/auth/token", method(http.MethodPost, routes.Token))
	}
	if routes.Health != nil {
		mux.Handle("/health", method(http.MethodGet, routes.Health))
	}
	return mux
}

func method(expected string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != expected {
			w.Header().Set("Allow", expected)
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handler(w, r)
	}
}
