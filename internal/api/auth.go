package api

import (
	"net/http"
	"time"

	"github.com/nerrad567/emotionalsongs-core/internal/catalog"
)

// registerRequest is the request body for POST /accounts.
type registerRequest struct {
	Account   catalog.Registration `json:"account"`
	Residence catalog.Residence    `json:"residence"`
}

// loginRequest is the request body for POST /auth/login.
type loginRequest struct {
	Nickname string `json:"nickname"`
	Password string `json:"password"`
}

// loginResponse is the response body for POST /auth/login.
type loginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	AccountID   string `json:"account_id"`
}

// handleRegister creates an account together with its residence.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	acc, err := s.store.RegisterAccount(r.Context(), req.Account, req.Residence)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, acc)
}

// handleLogin authenticates by nickname and password and returns a JWT.
func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Nickname == "" || req.Password == "" {
		writeBadRequest(w, "nickname and password are required")
		return
	}

	acc, err := s.store.Authenticate(r.Context(), req.Nickname, req.Password)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}

	token, expires, err := s.tokens.Issue(acc.ID, acc.Nickname)
	if err != nil {
		s.logger.Error("issuing access token", "error", err, "account_id", acc.ID)
		writeInternalError(w, "failed to generate token")
		return
	}

	writeJSON(w, http.StatusOK, loginResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresIn:   int(time.Until(expires).Seconds()),
		AccountID:   acc.ID,
	})
}

// handleMe returns the authenticated account with its residence.
func (s *Server) handleMe(w http.ResponseWriter, r *http.Request) {
	claims, ok := claimsFrom(r.Context())
	if !ok {
		writeUnauthorized(w, "missing claims")
		return
	}

	acc, err := s.store.AccountByID(r.Context(), claims.Subject)
	if err != nil {
		s.writeStoreError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acc)
}
