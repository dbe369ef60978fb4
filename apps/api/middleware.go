package main

import (
	"net/http"

	"github.com/DairyFarmers/dfi-chat/pkg/auth"
)

// CORSMiddleware mirrors the headers the platform's web frontend expects.
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "POST, GET, OPTIONS, PUT, DELETE")
		w.Header().Set("Access-Control-Allow-Headers", "Accept, Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization")

		if r.Method == http.MethodOptions {
			return
		}

		next.ServeHTTP(w, r)
	})
}

// AuthMiddleware verifies the presented credential and puts the resulting
// identity on the request context for handlers to read.
func AuthMiddleware(verifier auth.Verifier, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		credential := auth.CredentialFromRequest(r)
		if credential == "" {
			writeError(w, http.StatusUnauthorized, "credential required")
			return
		}

		identity, err := verifier.Verify(credential)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid credential")
			return
		}

		next.ServeHTTP(w, r.WithContext(auth.WithIdentity(r.Context(), identity)))
	})
}
