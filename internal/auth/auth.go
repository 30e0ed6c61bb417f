package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/trekkingar/trekkingar-api/internal/config"
	"github.com/trekkingar/trekkingar-api/internal/models"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"
	"gorm.io/gorm"
)

const (
	GoogleAuthorizeEndpoint = "https://accounts.google.com/o/oauth2/auth"
	GoogleTokenEndpoint     = "https://oauth2.googleapis.com/token"
	GoogleUserInfoAPI       = "https://www.googleapis.com/oauth2/v2/userinfo"

	TokenDuration = 24 * time.Hour
	cookieName    = "auth_token"
)

// AuthInput is embedded in every authenticated request so huma passes
// the raw Cookie header through to Authorize.
type AuthInput struct {
	Cookie string `header:"Cookie" doc:"Session cookie" required:"false"`
}

type AuthHandler struct {
	oauthConfig *oauth2.Config
	db          *gorm.DB
	cfg         *config.Config
}

func NewAuthHandler(cfg *config.Config, db *gorm.DB) *AuthHandler {
	return &AuthHandler{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint: oauth2.Endpoint{
				AuthURL:  GoogleAuthorizeEndpoint,
				TokenURL: GoogleTokenEndpoint,
			},
		},
		db:  db,
		cfg: cfg,
	}
}

func (h *AuthHandler) GenerateToken(userID uint) (string, error) {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     time.Now().Add(TokenDuration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.cfg.JWTSecret))
}

// Authorize extracts and validates the auth_token cookie from a raw
// Cookie header and returns the authenticated user ID.
func (h *AuthHandler) Authorize(ctx context.Context, cookieHeader string) (uint, error) {
	tokenString := readAuthToken(cookieHeader)
	if tokenString == "" {
		return 0, huma.Error401Unauthorized("No token found")
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(h.cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, huma.Error401Unauthorized("Invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, huma.Error401Unauthorized("Invalid token claims")
	}
	userIDFloat, ok := claims["user_id"].(float64)
	if !ok {
		return 0, huma.Error401Unauthorized("Invalid token claims")
	}
	return uint(userIDFloat), nil
}

// RequireAdmin authorizes the request and checks the admin role.
func (h *AuthHandler) RequireAdmin(ctx context.Context, cookieHeader string) (*models.User, error) {
	userID, err := h.Authorize(ctx, cookieHeader)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return nil, huma.Error401Unauthorized("User not found")
	}
	if user.Role != models.RoleAdmin {
		return nil, huma.Error403Forbidden("Admin access required")
	}
	return &user, nil
}

func readAuthToken(cookieHeader string) string {
	for _, part := range strings.Split(cookieHeader, ";") {
		name, value, found := strings.Cut(strings.TrimSpace(part), "=")
		if found && name == cookieName {
			return value
		}
	}
	return ""
}

func authCookie(token string) string {
	cookie := http.Cookie{
		Name:     cookieName,
		Value:    token,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	}
	return cookie.String()
}

type RegisterRequest struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Account email" required:"true"`
		Password string `json:"password" minLength:"8" doc:"Account password" required:"true"`
		Name     string `json:"name" doc:"Full name" required:"true"`
		Phone    string `json:"phone" doc:"Contact phone"`
	}
}

type SessionResponse struct {
	SetCookie string `header:"Set-Cookie"`
	Body      struct {
		ID    uint   `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
		Role  string `json:"role"`
	}
}

func (h *AuthHandler) HandleRegister(ctx context.Context, input *RegisterRequest) (*SessionResponse, error) {
	var existing models.User
	if err := h.db.Where("email = ?", input.Body.Email).First(&existing).Error; err == nil {
		return nil, huma.Error409Conflict("Email already registered")
	} else if err != gorm.ErrRecordNotFound {
		return nil, huma.Error500InternalServerError("Database error: " + err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Body.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to hash password")
	}

	user := models.User{
		Email:        input.Body.Email,
		PasswordHash: string(hash),
		Name:         input.Body.Name,
		Phone:        input.Body.Phone,
		Role:         models.RoleUser,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return nil, huma.Error500InternalServerError("Failed to create user")
	}

	return h.sessionResponse(&user)
}

type LoginRequest struct {
	Body struct {
		Email    string `json:"email" format:"email" required:"true"`
		Password string `json:"password" required:"true"`
	}
}

func (h *AuthHandler) HandleLogin(ctx context.Context, input *LoginRequest) (*SessionResponse, error) {
	var user models.User
	if err := h.db.Where("email = ?", input.Body.Email).First(&user).Error; err != nil {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Body.Password)) != nil {
		return nil, huma.Error401Unauthorized("Invalid email or password")
	}
	return h.sessionResponse(&user)
}

func (h *AuthHandler) sessionResponse(user *models.User) (*SessionResponse, error) {
	token, err := h.GenerateToken(user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to generate token")
	}
	res := &SessionResponse{SetCookie: authCookie(token)}
	res.Body.ID = user.ID
	res.Body.Email = user.Email
	res.Body.Name = user.Name
	res.Body.Role = user.Role
	return res, nil
}

type MeRequest struct {
	AuthInput
}

type MeResponse struct {
	Body struct {
		ID         uint   `json:"id"`
		Email      string `json:"email"`
		Name       string `json:"name"`
		Phone      string `json:"phone"`
		Role       string `json:"role"`
		Newsletter bool   `json:"newsletter"`
	}
}

func (h *AuthHandler) HandleMe(ctx context.Context, input *MeRequest) (*MeResponse, error) {
	userID, err := h.Authorize(ctx, input.Cookie)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return nil, huma.Error404NotFound("User not found")
	}
	res := &MeResponse{}
	res.Body.ID = user.ID
	res.Body.Email = user.Email
	res.Body.Name = user.Name
	res.Body.Phone = user.Phone
	res.Body.Role = user.Role
	res.Body.Newsletter = user.Newsletter
	return res, nil
}

func (h *AuthHandler) HandleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	url := h.oauthConfig.AuthCodeURL("state", oauth2.AccessTypeOnline)
	http.Redirect(w, r, url, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) HandleGoogleCallback(w http.ResponseWriter, r *http.Request) {
	code := r.URL.Query().Get("code")
	if code == "" {
		http.Error(w, "Code not found", http.StatusBadRequest)
		return
	}

	token, err := h.oauthConfig.Exchange(r.Context(), code)
	if err != nil {
		http.Error(w, "Failed to exchange token", http.StatusInternalServerError)
		return
	}

	client := h.oauthConfig.Client(r.Context(), token)
	resp, err := client.Get(GoogleUserInfoAPI)
	if err != nil {
		http.Error(w, "Failed to get user info", http.StatusInternalServerError)
		return
	}
	defer resp.Body.Close()

	var googleUser struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&googleUser); err != nil {
		http.Error(w, "Failed to decode user info", http.StatusInternalServerError)
		return
	}

	var user models.User
	if err := h.db.Where("google_id = ? OR email = ?", googleUser.ID, googleUser.Email).FirstOrInit(&user).Error; err != nil {
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	}
	user.GoogleID = googleUser.ID
	user.Email = googleUser.Email
	if user.Name == "" {
		user.Name = googleUser.Name
	}
	if user.Role == "" {
		user.Role = models.RoleUser
	}
	if err := h.db.Save(&user).Error; err != nil {
		http.Error(w, "Failed to save user", http.StatusInternalServerError)
		return
	}

	jwtToken, err := h.GenerateToken(user.ID)
	if err != nil {
		http.Error(w, "Failed to generate token", http.StatusInternalServerError)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     cookieName,
		Value:    jwtToken,
		Expires:  time.Now().Add(TokenDuration),
		HttpOnly: true,
		Path:     "/",
	})

	http.Redirect(w, r, h.cfg.FrontendURL, http.StatusTemporaryRedirect)
}
