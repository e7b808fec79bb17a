package handlers

import (
	"net/http"
)

// chain applies middlewares in the given order: m1(m2(...(h)))
func chain(h http.Handler, mds ...func(next http.Handler) http.Handler) http.Handler {
	for i := len(mds) - 1; i >= 0; i-- {
		h = mds[i](h)
	}
	return h
}

func NewRouter(
	auth *AuthHandler,
	users *UserHandler,
	authMiddleware func(http.Handler) http.Handler,
	mds ...func(next http.Handler) http.Handler,
) http.Handler {
	withAuth := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(h)
	}

	apiauth := http.NewServeMux()
	apiauth.HandleFunc("POST /register", auth.register)
	apiauth.HandleFunc("POST /login", auth.login)
	apiauth.HandleFunc("POST /refresh", auth.refresh)
	apiauth.Handle("POST /logout", withAuth(auth.logout))

	apiusers := http.NewServeMux()
	apiusers.Handle("GET /me", withAuth(users.me))
	apiusers.Handle("PUT /me", withAuth(users.updateMe))
	apiusers.Handle("GET /{id}", withAuth(users.getUser))
	apiusers.Handle("POST /{id}/revoke", withAuth(users.revokeAll))

	root := http.NewServeMux()
	root.Handle("/api/auth/", http.StripPrefix("/api/auth", apiauth))
	root.Handle("/api/users/", http.StripPrefix("/api/users", apiusers))

	return chain(root, mds...)
}
