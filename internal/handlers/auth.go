// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package handlers

import (
	"encoding/base64"
	"log/slog"
	"net/http"

	"github.com/pquerna/otp/totp"
	qrcode "github.com/skip2/go-qrcode"

	"lexipedia/internal/middleware"
	"lexipedia/internal/models"
	"lexipedia/internal/session"
	"lexipedia/internal/store"
)

// totpIssuer is the issuer name shown in authenticator apps.
const totpIssuer = "Lexipedia"

// Auth groups all authentication-related HTTP handlers. Registration and
// login are open to everyone; the TOTP endpoints serve the admin 2FA
// requirement.
type Auth struct {
	sessions  *session.Store
	userStore *store.UserStore
}

// NewAuth creates a new Auth handler group.
func NewAuth(sessions *session.Store, userStore *store.UserStore) *Auth {
	return &Auth{
		sessions:  sessions,
		userStore: userStore,
	}
}

type credentialsRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	DisplayName string `json:"display_name"`
}

// loginResponse tells the client who they are and, for admins, whether a
// 2FA step is still pending: "setup" (no secret yet), "verify" (secret
// enrolled, code needed), or "done".
type loginResponse struct {
	User  *models.User `json:"user"`
	TwoFA string       `json:"two_fa"`
}

// Register creates a regular (non-admin) account and logs it in.
func (a *Auth) Register(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.userStore.Create(req.Email, req.Password, req.DisplayName, false)
	if err != nil {
		respondStoreError(w, err)
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     false,
		TwoFADone:   false,
	}); err != nil {
		slog.Error("session create failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	respondJSON(w, http.StatusCreated, loginResponse{User: user, TwoFA: "done"})
}

// Login verifies credentials and opens a session. Admin sessions start
// with 2FA incomplete and are told which step comes next.
func (a *Auth) Login(w http.ResponseWriter, r *http.Request) {
	var req credentialsRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.userStore.FindByEmail(req.Email)
	if err != nil {
		slog.Error("login lookup failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	// One message for both unknown email and wrong password.
	if user == nil || !a.userStore.CheckPassword(user, req.Password) {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid email or password"})
		return
	}

	if _, err := a.sessions.Create(r.Context(), w, &session.Data{
		UserID:      user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		TwoFADone:   false,
	}); err != nil {
		slog.Error("session create failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	next := "done"
	if user.IsAdmin {
		if user.Needs2FASetup() {
			next = "setup"
		} else {
			next = "verify"
		}
	}
	respondJSON(w, http.StatusOK, loginResponse{User: user, TwoFA: next})
}

// Logout destroys the session.
func (a *Auth) Logout(w http.ResponseWriter, r *http.Request) {
	a.sessions.Destroy(r.Context(), w, r)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// Me returns the authenticated user.
func (a *Auth) Me(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())
	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil {
		respondStoreError(w, err)
		return
	}
	if user == nil {
		respondNotFound(w)
		return
	}
	respondJSON(w, http.StatusOK, user)
}

// twoFASetupResponse carries everything an authenticator app needs. The
// QR code is a base64 PNG of the otpauth URL.
type twoFASetupResponse struct {
	Secret string `json:"secret"`
	URL    string `json:"url"`
	QRCode string `json:"qr_code"`
}

// TwoFASetup generates a fresh TOTP secret for the admin and returns it
// with a QR code. Enrollment completes on the first valid TwoFAVerify.
func (a *Auth) TwoFASetup(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      totpIssuer,
		AccountName: sess.Email,
	})
	if err != nil {
		slog.Error("totp generate failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	if err := a.userStore.SetTOTPSecret(sess.UserID, key.Secret()); err != nil {
		slog.Error("save totp secret failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	qrPNG, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		slog.Error("qr code generation failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	respondJSON(w, http.StatusOK, twoFASetupResponse{
		Secret: key.Secret(),
		URL:    key.URL(),
		QRCode: base64.StdEncoding.EncodeToString(qrPNG),
	})
}

// TwoFAVerify validates a TOTP code and marks the session 2FA-complete.
// A valid code during first-time setup also finishes enrollment.
func (a *Auth) TwoFAVerify(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromCtx(r.Context())

	var req struct {
		Code string `json:"code"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}

	user, err := a.userStore.FindByID(sess.UserID)
	if err != nil || user == nil {
		slog.Error("user lookup for 2fa failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	if user.TOTPSecret == nil {
		respondJSON(w, http.StatusConflict, errorResponse{Error: "two-factor setup required first"})
		return
	}

	if !totp.Validate(req.Code, *user.TOTPSecret) {
		respondJSON(w, http.StatusUnauthorized, errorResponse{Error: "invalid code"})
		return
	}

	// First valid code completes enrollment.
	if !user.TOTPEnabled {
		if err := a.userStore.EnableTOTP(user.ID); err != nil {
			slog.Error("enable totp failed", "error", err)
			respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
			return
		}
	}

	sess.TwoFADone = true
	if err := a.sessions.Update(r.Context(), r, sess); err != nil {
		slog.Error("session update failed", "error", err)
		respondJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal server error"})
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "verified"})
}
