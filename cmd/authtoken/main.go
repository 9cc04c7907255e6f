// This is a **mock authentication service**, designed to provide JWT tokens
// for the leasing service, simulating an operator logging in with a role.
package main

import (
	"encoding/json"
	"log"
	"net/http"
	"os"

	"github.com/novapark/officelease/internal/lease/auth"
)

const (
	defaultPort   = "8081"       // Default port for the authentication service
	defaultSecret = "jwt_secret" // Secret for signing JWT
)

// TokenResponse represents the response structure
type TokenResponse struct {
	Token string `json:"token"`
}

// tokenHandler generates a JWT and returns it in JSON response. The role
// claim defaults to admin and can be overridden with ?role=.
func tokenHandler(w http.ResponseWriter, r *http.Request) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = defaultSecret
	}

	username := r.URL.Query().Get("username")
	if username == "" {
		username = "operator"
	}
	role := r.URL.Query().Get("role")
	if role == "" {
		role = auth.RoleAdmin
	}

	token, err := auth.GenerateToken(username, role, secret)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	resp := TokenResponse{Token: token}
	w.Header().Set("Content-Type", "application/json")
	err = json.NewEncoder(w).Encode(resp)
	if err != nil {
		http.Error(w, "Failed to encode token", http.StatusInternalServerError)
	}
}

func main() {
	port := os.Getenv("AUTH_PORT")
	if port == "" {
		port = defaultPort
	}
	http.HandleFunc("/token", tokenHandler)

	log.Printf("Authentication service running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, nil))
}
