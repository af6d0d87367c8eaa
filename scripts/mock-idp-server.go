//go:build ignore

// mock-idp-server.go - Simple identity-provider mock for local testing
//
// Usage:
//   go run scripts/mock-idp-server.go
//
// Serves a JWKS document and issues RS256-signed JWTs so the connector's
// bearer-token validation can be exercised locally. Point the connector at
// it with:
//
//   jwks:
//     url: "http://localhost:8088/.well-known/jwks.json"
//     issuer: "http://localhost:8088"
//
// The signing key is generated at startup (not for production use).

package main

import (
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log"
	"math/big"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const (
	port   = 8088
	issuer = "http://localhost:8088"
	keyID  = "local-dev-key"
)

var signingKey *rsa.PrivateKey

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

func main() {
	var err error
	signingKey, err = rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		log.Fatalf("generate signing key: %v", err)
	}

	http.HandleFunc("/.well-known/jwks.json", handleJWKS)
	http.HandleFunc("/oauth/token", handleToken)
	http.HandleFunc("/health", handleHealth)

	addr := fmt.Sprintf(":%d", port)
	log.Printf("Mock IdP starting on http://localhost%s", addr)
	log.Printf("GET  /.well-known/jwks.json - JWKS document")
	log.Printf("POST /oauth/token           - Returns JWT signed with RS256")
	log.Printf("GET  /health                - Health check")
	log.Fatal(http.ListenAndServe(addr, nil))
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

func handleJWKS(w http.ResponseWriter, r *http.Request) {
	pub := &signingKey.PublicKey
	jwks := map[string]any{
		"keys": []map[string]string{{
			"kid": keyID,
			"kty": "RSA",
			"alg": "RS256",
			"use": "sig",
			"n":   base64.RawURLEncoding.EncodeToString(pub.N.Bytes()),
			"e":   base64.RawURLEncoding.EncodeToString(big.NewInt(int64(pub.E)).Bytes()),
		}},
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(jwks)
}

func handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Failed to parse form", http.StatusBadRequest)
		return
	}
	subject := r.FormValue("client_id")
	if subject == "" {
		subject = "local-user"
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, jwt.MapClaims{
		"iss": issuer,
		"sub": subject,
		"iat": now.Unix(),
		"exp": now.Add(24 * time.Hour).Unix(),
	})
	token.Header["kid"] = keyID

	signed, err := token.SignedString(signingKey)
	if err != nil {
		http.Error(w, "Failed to sign token", http.StatusInternalServerError)
		return
	}

	resp := tokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   86400,
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)

	log.Printf("Issued token for sub=%s", subject)
}
