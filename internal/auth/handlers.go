package auth

import (
	"Launchpad-Backend/internal/config"
	"Launchpad-Backend/internal/domain"
	"Launchpad-Backend/internal/repository"
	"Launchpad-Backend/pkg/random"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

const (
	googleUserInfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

	stateCookie   = "oauth_state"
	stateLength   = 32
	stateLifetime = 10 * time.Minute

	maxNameLength = 100
)

// AuthHandlers обработчики аутентификации
type AuthHandlers struct {
	storage         repository.Storage
	jwtService      *JWTService
	passwordService *PasswordService
	google          *oauth2.Config
	userInfoURL     string
	frontendURL     string
	secureCookies   bool
	log             *zap.Logger
}

// NewAuthHandlers создает новые обработчики аутентификации. Вход через Google
// включается, только если задан client id.
func NewAuthHandlers(storage repository.Storage, jwtService *JWTService, passwordService *PasswordService, cfg *config.Auth, secureCookies bool, log *zap.Logger) *AuthHandlers {
	h := &AuthHandlers{
		storage:         storage,
		jwtService:      jwtService,
		passwordService: passwordService,
		userInfoURL:     googleUserInfoURL,
		frontendURL:     cfg.Google.FrontendURL,
		secureCookies:   secureCookies,
		log:             log,
	}

	if cfg.Google.ClientID != "" {
		h.google = &oauth2.Config{
			ClientID:     cfg.Google.ClientID,
			ClientSecret: cfg.Google.ClientSecret,
			RedirectURL:  cfg.Google.RedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		}
	}

	return h
}

// RegisterRequest структура запроса регистрации
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

// LoginRequest структура запроса входа
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// RefreshRequest структура запроса обновления токенов
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// AuthResponse структура ответа аутентификации
type AuthResponse struct {
	AccessToken  string          `json:"access_token"`
	RefreshToken string          `json:"refresh_token"`
	User         domain.Identity `json:"user"`
}

// googleUser ответ userinfo эндпоинта Google
type googleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// Register обработчик регистрации
//
//	@Summary		Register a new user
//	@Description	Create a new user account with email and password
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RegisterRequest	true	"Registration request"
//	@Success		201		{object}	AuthResponse	"User registered successfully"
//	@Failure		400		{object}	Response		"Invalid request data"
//	@Failure		409		{object}	Response		"User already exists"
//	@Router			/api/auth/register [post]
func (h *AuthHandlers) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid registration request", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Email = normalizeEmail(req.Email)
	if !isValidEmail(req.Email) {
		writeError(w, "Invalid email format", http.StatusBadRequest)
		return
	}

	if err := IsValidPassword(req.Password); err != nil {
		writeError(w, err.Error(), http.StatusBadRequest)
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		req.Name = strings.SplitN(req.Email, "@", 2)[0]
	}
	if len([]rune(req.Name)) > maxNameLength {
		writeError(w, fmt.Sprintf("name must be at most %d characters", maxNameLength), http.StatusBadRequest)
		return
	}

	hashedPassword, err := h.passwordService.HashPassword(req.Password)
	if err != nil {
		h.log.Error("failed to hash password", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	user := &domain.User{
		Email:              req.Email,
		Name:               req.Name,
		PasswordHash:       &hashedPassword,
		RegistrationSource: "email",
		IsActive:           true,
	}
	if err := h.storage.CreateUser(r.Context(), user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			writeError(w, "User with this email already exists", http.StatusConflict)
			return
		}
		h.log.Error("failed to create user", zap.String("email", req.Email), zap.Error(err))
		writeError(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	response, err := h.issueTokens(w, user)
	if err != nil {
		h.log.Error("failed to issue tokens", zap.Int64("user_id", user.ID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user registered successfully", zap.Int64("user_id", user.ID), zap.String("email", req.Email))
	writeJSON(w, response, http.StatusCreated)
}

// Login обработчик входа
//
//	@Summary		Login user
//	@Description	Authenticate user and receive JWT tokens
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		LoginRequest	true	"Login request"
//	@Success		200		{object}	AuthResponse	"Login successful"
//	@Failure		400		{object}	Response		"Invalid request data"
//	@Failure		401		{object}	Response		"Invalid credentials"
//	@Router			/api/auth/login [post]
func (h *AuthHandlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log.Debug("invalid login request", zap.Error(err))
		writeError(w, "Invalid request format", http.StatusBadRequest)
		return
	}

	req.Email = normalizeEmail(req.Email)

	user, err := h.storage.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		if !errors.Is(err, repository.ErrUserNotFound) {
			h.log.Error("failed to load user for login", zap.Error(err))
			writeError(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		h.log.Debug("user not found for login", zap.String("email", req.Email))
		writeError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	// Пользователи Google не имеют пароля
	if user.PasswordHash == nil || !user.IsActive {
		writeError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if err := h.passwordService.VerifyPassword(*user.PasswordHash, req.Password); err != nil {
		h.log.Debug("invalid password for user", zap.String("email", req.Email))
		writeError(w, "Invalid email or password", http.StatusUnauthorized)
		return
	}

	if h.passwordService.NeedsRehash(*user.PasswordHash) {
		if hash, err := h.passwordService.HashPassword(req.Password); err == nil {
			user.PasswordHash = &hash
		} else {
			h.log.Warn("failed to rehash password", zap.Int64("user_id", user.ID), zap.Error(err))
		}
	}

	h.touchLastLogin(r.Context(), user)

	response, err := h.issueTokens(w, user)
	if err != nil {
		h.log.Error("failed to issue tokens", zap.Int64("user_id", user.ID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("user logged in successfully", zap.Int64("user_id", user.ID), zap.String("email", req.Email))
	writeJSON(w, response, http.StatusOK)
}

// Refresh обработчик обновления токенов
//
//	@Summary		Refresh tokens
//	@Description	Exchange a refresh token for a new token pair
//	@Tags			Authentication
//	@Accept			json
//	@Produce		json
//	@Param			request	body		RefreshRequest	true	"Refresh request"
//	@Success		200		{object}	AuthResponse	"Tokens refreshed"
//	@Failure		401		{object}	Response		"Invalid refresh token"
//	@Router			/api/auth/refresh [post]
func (h *AuthHandlers) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.RefreshToken == "" {
		writeError(w, "refresh_token is required", http.StatusBadRequest)
		return
	}

	claims, err := h.jwtService.ValidateRefreshToken(req.RefreshToken)
	if err != nil {
		h.log.Debug("invalid refresh token", zap.Error(err))
		writeError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	user, err := h.storage.GetUserByID(r.Context(), claims.UserID)
	if err != nil || !user.IsActive {
		writeError(w, "Invalid refresh token", http.StatusUnauthorized)
		return
	}

	response, err := h.issueTokens(w, user)
	if err != nil {
		h.log.Error("failed to issue tokens", zap.Int64("user_id", user.ID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, response, http.StatusOK)
}

// Logout обработчик выхода
//
//	@Summary		Logout
//	@Description	Clear the session cookie
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	Response
//	@Router			/api/auth/logout [post]
func (h *AuthHandlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.setCookie(w, TokenCookie, "", -1)
	writeJSON(w, nil, http.StatusOK)
}

// Session обработчик текущей сессии
//
//	@Summary		Current session
//	@Description	Return the signed-in user or nothing
//	@Tags			Authentication
//	@Produce		json
//	@Success		200	{object}	Response
//	@Router			/api/auth/session [get]
func (h *AuthHandlers) Session(w http.ResponseWriter, r *http.Request) {
	identity, ok := GetIdentityFromContext(r.Context())
	if !ok {
		writeJSON(w, nil, http.StatusOK)
		return
	}
	writeJSON(w, identity, http.StatusOK)
}

// GoogleLogin перенаправляет на страницу согласия Google
//
//	@Summary		Google sign-in
//	@Description	Redirect to Google consent screen
//	@Tags			Authentication
//	@Success		307
//	@Failure		404	{object}	Response	"Google sign-in disabled"
//	@Router			/api/auth/google/login [get]
func (h *AuthHandlers) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, "Google sign-in is not configured", http.StatusNotFound)
		return
	}

	state, err := random.NewRandomString(stateLength)
	if err != nil {
		h.log.Error("failed to generate oauth state", zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	h.setCookie(w, stateCookie, state, int(stateLifetime.Seconds()))

	http.Redirect(w, r, h.google.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback завершает вход через Google
//
//	@Summary		Google sign-in callback
//	@Description	Exchange the authorization code, find or create the user and set the session cookie
//	@Tags			Authentication
//	@Param			state	query	string	true	"OAuth state"
//	@Param			code	query	string	true	"Authorization code"
//	@Success		307
//	@Failure		400	{object}	Response	"Invalid state"
//	@Failure		502	{object}	Response	"Google unavailable"
//	@Router			/api/auth/google/callback [get]
func (h *AuthHandlers) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	if h.google == nil {
		writeError(w, "Google sign-in is not configured", http.StatusNotFound)
		return
	}

	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" || r.FormValue("state") != cookie.Value {
		h.log.Debug("oauth state mismatch")
		writeError(w, "Invalid OAuth state", http.StatusBadRequest)
		return
	}
	h.setCookie(w, stateCookie, "", -1)

	code := r.FormValue("code")
	if code == "" {
		writeError(w, "Missing authorization code", http.StatusBadRequest)
		return
	}

	profile, err := h.fetchGoogleUser(r.Context(), code)
	if err != nil {
		h.log.Error("google sign-in failed", zap.Error(err))
		writeError(w, "Google sign-in failed", http.StatusBadGateway)
		return
	}
	if profile.Email == "" || !profile.VerifiedEmail {
		writeError(w, "Google account has no verified email", http.StatusForbidden)
		return
	}

	user, err := h.findOrCreateGoogleUser(r.Context(), profile)
	if err != nil {
		h.log.Error("failed to save google user", zap.String("email", profile.Email), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if !user.IsActive {
		writeError(w, "Account is disabled", http.StatusForbidden)
		return
	}

	if _, err := h.issueTokens(w, user); err != nil {
		h.log.Error("failed to issue tokens", zap.Int64("user_id", user.ID), zap.Error(err))
		writeError(w, "Internal server error", http.StatusInternalServerError)
		return
	}

	h.log.Info("google sign-in successful", zap.Int64("user_id", user.ID))
	http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
}

func (h *AuthHandlers) fetchGoogleUser(ctx context.Context, code string) (*googleUser, error) {
	token, err := h.google.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("code exchange failed: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, h.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := h.google.Client(ctx, token).Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed getting user info: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("user info returned status %d", resp.StatusCode)
	}

	var profile googleUser
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("failed decoding user info: %w", err)
	}
	profile.Email = normalizeEmail(profile.Email)
	return &profile, nil
}

func (h *AuthHandlers) findOrCreateGoogleUser(ctx context.Context, profile *googleUser) (*domain.User, error) {
	user, err := h.storage.GetUserByEmail(ctx, profile.Email)
	switch {
	case err == nil:
		// Аккаунт с паролем привязывается к Google по подтвержденному email
		if user.GoogleID == nil {
			user.GoogleID = &profile.ID
		}
		if user.Image == "" && profile.Picture != "" {
			user.Image = profile.Picture
		}
		now := time.Now()
		user.LastLoginAt = &now
		if err := h.storage.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil

	case errors.Is(err, repository.ErrUserNotFound):
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			name = strings.SplitN(profile.Email, "@", 2)[0]
		}
		now := time.Now()
		user = &domain.User{
			Email:              profile.Email,
			Name:               name,
			Image:              profile.Picture,
			GoogleID:           &profile.ID,
			RegistrationSource: "google",
			LastLoginAt:        &now,
			IsActive:           true,
		}
		if err := h.storage.CreateUser(ctx, user); err != nil {
			return nil, err
		}
		return user, nil

	default:
		return nil, err
	}
}

// issueTokens выпускает пару токенов и ставит cookie с access токеном
func (h *AuthHandlers) issueTokens(w http.ResponseWriter, user *domain.User) (*AuthResponse, error) {
	accessToken, err := h.jwtService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := h.jwtService.GenerateRefreshToken(user)
	if err != nil {
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	h.setCookie(w, TokenCookie, accessToken, int(h.jwtService.config.AccessTokenDuration.Seconds()))

	return &AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         user.Identity(),
	}, nil
}

func (h *AuthHandlers) touchLastLogin(ctx context.Context, user *domain.User) {
	now := time.Now()
	user.LastLoginAt = &now
	if err := h.storage.UpdateUser(ctx, user); err != nil {
		h.log.Warn("failed to update last login time", zap.Int64("user_id", user.ID), zap.Error(err))
	}
}

func (h *AuthHandlers) setCookie(w http.ResponseWriter, name, value string, maxAge int) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	at := strings.LastIndex(email, "@")
	return at > 0 && at < len(email)-1 && len(email) > 3 && len(email) < 255
}
