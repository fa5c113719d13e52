package authapi

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"vidcore/cmd/identity"
	"vidcore/cmd/internal/auth/session"
	"vidcore/cmd/internal/media"
)

// Handler wires the account and session HTTP endpoints to the identity store,
// the session service, and the media uploader.
type Handler struct {
	log *slog.Logger
	cfg Config

	accounts identity.Store
	sessions *session.Service
	uploads  media.Uploader
	metrics  *Metrics
}

// NewHandler constructs the auth handler. metrics may be nil.
func NewHandler(log *slog.Logger, cfg Config, accounts identity.Store, sessions *session.Service, uploads media.Uploader, metrics *Metrics) *Handler {
	if log == nil {
		log = slog.Default()
	}
	return &Handler{
		log:      log,
		cfg:      cfg,
		accounts: accounts,
		sessions: sessions,
		uploads:  uploads,
		metrics:  metrics,
	}
}

// Register wires the account routes onto the provided mux.
func (h *Handler) Register(mux *http.ServeMux) {
	if h == nil || mux == nil {
		return
	}
	mux.HandleFunc("/api/users/register", h.handleRegister)
	mux.HandleFunc("/api/users/login", h.handleLogin)
	mux.HandleFunc("/api/users/refresh", h.handleRefresh)
	mux.HandleFunc("/api/users/logout", h.handleLogout)
	mux.HandleFunc("/api/users/change-password", h.handleChangePassword)
	mux.HandleFunc("/api/users/me", h.handleMe)
	mux.HandleFunc("/api/users/profile", h.handleProfile)
	mux.HandleFunc("/api/users/avatar", h.handleAvatar)
	mux.HandleFunc("/api/users/cover-image", h.handleCoverImage)
}

// ---- handlers ----

func (h *Handler) handleRegister(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "multipart form expected")
		return
	}

	fullName := strings.TrimSpace(r.FormValue("fullName"))
	username := strings.TrimSpace(r.FormValue("username"))
	email := strings.TrimSpace(r.FormValue("email"))
	password := r.FormValue("password")
	if fullName == "" || username == "" || email == "" || strings.TrimSpace(password) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "fullName, username, email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	avatarURL, ok, err := h.uploadImagePart(r, "avatar", media.KindAvatar)
	if err != nil {
		h.writeUploadError(w, "avatar", err)
		return
	}
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid_request", "avatar file is required")
		return
	}

	coverURL, _, err := h.uploadImagePart(r, "coverImage", media.KindCover)
	if err != nil {
		h.writeUploadError(w, "coverImage", err)
		return
	}

	acct, err := h.accounts.CreateAccount(ctx, identity.CreateAccountInput{
		FullName:      fullName,
		Username:      username,
		Email:         email,
		Password:      password,
		AvatarURL:     avatarURL,
		CoverImageURL: coverURL,
		Now:           now,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "conflict", "username or email already exists")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("auth.register.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.metrics.IncRegistrations()
	h.log.Info("auth.register.ok", "account_id", acct.ID)
	writeJSON(w, http.StatusCreated, registerResponse{Account: toAccountResponse(acct)})
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req loginRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}

	identifier := strings.TrimSpace(req.Username)
	if identifier == "" {
		identifier = strings.TrimSpace(req.Email)
	}
	if identifier == "" || strings.TrimSpace(req.Password) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "username or email and password are required")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	acct, pair, err := h.sessions.Login(ctx, now, identifier, req.Password)
	if err != nil {
		switch {
		case identity.IsNotFound(err):
			writeError(w, http.StatusNotFound, "not_found", "account does not exist")
		case errors.Is(err, session.ErrBadCredentials):
			h.metrics.IncFailedAttempts()
			writeError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("auth.login.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.metrics.IncLogins()
	h.log.Info("auth.login.ok", "account_id", acct.ID, "ip", clientIP(r, h.cfg.TrustProxy))

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, loginResponse{
		Account: toAccountResponse(acct),
		Tokens:  toTokensResponse(pair),
	})
}

func (h *Handler) handleRefresh(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	refreshToken, fromCookie := h.refreshTokenFromCookie(r)
	if !fromCookie && r.ContentLength != 0 {
		var req refreshRequest
		if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
			return
		}
		refreshToken = strings.TrimSpace(req.RefreshToken)
	}
	if refreshToken == "" {
		writeError(w, http.StatusUnauthorized, "invalid_token", "unauthorized request")
		return
	}

	ctx := r.Context()
	now := time.Now().UTC()

	pair, err := h.sessions.Refresh(ctx, now, refreshToken)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrRefreshReused):
			h.metrics.IncRefreshReuses()
			h.log.Warn("auth.refresh.reuse", "ip", clientIP(r, h.cfg.TrustProxy))
			writeError(w, http.StatusUnauthorized, "refresh_reused", "refresh token expired or used")
		case errors.Is(err, session.ErrInvalidToken):
			writeError(w, http.StatusUnauthorized, "invalid_token", "invalid refresh token")
		default:
			h.log.Error("auth.refresh.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.metrics.IncRefreshes()

	h.setSessionCookies(w, pair)
	writeJSON(w, http.StatusOK, refreshResponse{Tokens: toTokensResponse(pair)})
}

func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	acct, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	if err := h.sessions.Logout(r.Context(), time.Now().UTC(), acct.ID); err != nil {
		h.log.Error("auth.logout.fail", "err", err)
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	h.log.Info("auth.logout.ok", "account_id", acct.ID)
	h.clearSessionCookies(w)
	writeJSON(w, http.StatusOK, messageResponse{Message: "logged out"})
}

func (h *Handler) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	acct, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	var req changePasswordRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if strings.TrimSpace(req.OldPassword) == "" || strings.TrimSpace(req.NewPassword) == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "oldPassword and newPassword are required")
		return
	}

	err := h.sessions.ChangePassword(r.Context(), time.Now().UTC(), acct.ID, req.OldPassword, req.NewPassword)
	if err != nil {
		switch {
		case errors.Is(err, session.ErrBadCredentials):
			h.metrics.IncFailedAttempts()
			writeError(w, http.StatusBadRequest, "invalid_old_password", "invalid old password")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid new password")
		default:
			h.log.Error("auth.change_password.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	h.log.Info("auth.change_password.ok", "account_id", acct.ID)
	writeJSON(w, http.StatusOK, messageResponse{Message: "password changed"})
}

func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	acct, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, accountEnvelope{Account: toAccountResponse(acct)})
}

func (h *Handler) handleProfile(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPatch {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	acct, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, h.cfg.MaxBodyBytes, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_json", "invalid request body")
		return
	}
	if req.FullName == nil && req.Email == nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "fullName or email is required")
		return
	}

	updated, err := h.accounts.UpdateProfile(r.Context(), time.Now().UTC(), acct.ID, identity.UpdateProfileInput{
		FullName: req.FullName,
		Email:    req.Email,
	})
	if err != nil {
		switch {
		case identity.IsConflict(err):
			writeError(w, http.StatusConflict, "conflict", "email already exists")
		case identity.IsInvalidInput(err):
			writeError(w, http.StatusBadRequest, "invalid_request", "invalid input")
		default:
			h.log.Error("auth.profile.fail", "err", err)
			writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		}
		return
	}

	writeJSON(w, http.StatusOK, accountEnvelope{Account: toAccountResponse(updated)})
}

func (h *Handler) handleAvatar(w http.ResponseWriter, r *http.Request) {
	h.handleImageUpdate(w, r, "avatar", media.KindAvatar, identity.ImageAvatar)
}

func (h *Handler) handleCoverImage(w http.ResponseWriter, r *http.Request) {
	h.handleImageUpdate(w, r, "coverImage", media.KindCover, identity.ImageCover)
}

func (h *Handler) handleImageUpdate(w http.ResponseWriter, r *http.Request, field string, kind media.Kind, imageKind identity.ImageKind) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	acct, ok := h.requireAuth(w, r)
	if !ok {
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxUploadBytes)
	if err := r.ParseMultipartForm(4 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "multipart form expected")
		return
	}

	url, present, err := h.uploadImagePart(r, field, kind)
	if err != nil {
		h.writeUploadError(w, field, err)
		return
	}
	if !present {
		writeError(w, http.StatusBadRequest, "invalid_request", field+" file is required")
		return
	}

	updated, err := h.accounts.UpdateImage(r.Context(), time.Now().UTC(), acct.ID, imageKind, url)
	if err != nil {
		h.log.Error("auth.image_update.fail", "err", err, "kind", string(kind))
		writeError(w, http.StatusInternalServerError, "server_error", "internal error")
		return
	}

	writeJSON(w, http.StatusOK, accountEnvelope{Account: toAccountResponse(updated)})
}

// ---- helpers ----

func (h *Handler) requireAuth(w http.ResponseWriter, r *http.Request) (identity.Account, bool) {
	token := h.accessTokenFromRequest(r)
	if token == "" {
		writeError(w, http.StatusUnauthorized, "unauthorized", "missing access token")
		return identity.Account{}, false
	}
	acct, err := h.sessions.Authenticate(r.Context(), time.Now().UTC(), token)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "unauthorized", "invalid token")
		return identity.Account{}, false
	}
	return acct, true
}

// uploadImagePart stores a multipart image part and returns its public URL.
// present is false when the field was not sent at all.
func (h *Handler) uploadImagePart(r *http.Request, field string, kind media.Kind) (url string, present bool, err error) {
	f, fh, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return "", false, nil
		}
		return "", false, err
	}
	defer func() { _ = f.Close() }()

	contentType := fh.Header.Get("Content-Type")
	if contentType == "" || contentType == "application/octet-stream" {
		// Sniff from the first bytes; multipart files are seekable.
		buf := make([]byte, 512)
		n, _ := io.ReadFull(f, buf)
		contentType = http.DetectContentType(buf[:n])
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return "", true, err
		}
	}

	u, err := h.uploads.Upload(r.Context(), kind, contentType, f)
	if err != nil {
		return "", true, err
	}
	return u, true, nil
}

func (h *Handler) writeUploadError(w http.ResponseWriter, field string, err error) {
	if errors.Is(err, media.ErrUnsupportedType) {
		writeError(w, http.StatusBadRequest, "unsupported_image_type", field+" must be a jpeg, png, webp or gif image")
		return
	}
	h.log.Error("auth.upload.fail", "field", field, "err", err)
	writeError(w, http.StatusInternalServerError, "server_error", "upload failed")
}

func toTokensResponse(pair session.Pair) tokensResponse {
	return tokensResponse{
		AccessToken:      pair.AccessToken,
		AccessExpiresAt:  pair.AccessExp,
		RefreshToken:     pair.RefreshToken,
		RefreshExpiresAt: pair.RefreshExp,
	}
}
