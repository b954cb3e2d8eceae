package handlers

import (
	"net/http"

	"ClinicDesk/middlewares"
	"ClinicDesk/services"
	"ClinicDesk/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

type AuthHandler struct {
	UserService services.UserService
	sealer      *utils.SessionSealer
	secure      bool
	log         zerolog.Logger
}

// NewAuthHandler builds the /auth handlers. secure marks the session cookie
// Secure and is off only in development.
func NewAuthHandler(userService services.UserService, sealer *utils.SessionSealer, secure bool, log zerolog.Logger) *AuthHandler {
	return &AuthHandler{
		UserService: userService,
		sealer:      sealer,
		secure:      secure,
		log:         log,
	}
}

// currentSID is the session the request arrived with, "" when anonymous.
func currentSID(c *gin.Context) string {
	if p := middlewares.CurrentPrincipal(c); p != nil {
		return p.SID
	}
	return ""
}

// issueCookie seals the principal's session into the response cookie.
func (h *AuthHandler) issueCookie(c *gin.Context, p *services.Principal) bool {
	ttl := h.UserService.SessionTTL()
	token, err := h.sealer.Seal(p.SID, ttl)
	if err != nil {
		middlewares.HTTPError(c, err)
		return false
	}
	utils.SetSessionCookie(c, token, ttl, h.secure)
	return true
}

// Guest starts a guest session.
func (h *AuthHandler) Guest(c *gin.Context) {
	p, err := h.UserService.StartGuest(c.Request.Context(), currentSID(c))
	if err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	if !h.issueCookie(c, p) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Guest session created", "user": p.View()})
}

// UpgradeGuest registers the current guest as a customer account.
func (h *AuthHandler) UpgradeGuest(c *gin.Context) {
	var creds utils.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	p, err := h.UserService.UpgradeGuest(c.Request.Context(), middlewares.CurrentPrincipal(c), creds)
	if err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	if !h.issueCookie(c, p) {
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Guest upgraded to user", "user": p.View()})
}

// Signup registers a staff account.
func (h *AuthHandler) Signup(c *gin.Context) {
	var creds utils.Credentials
	if err := c.ShouldBindJSON(&creds); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	user, err := h.UserService.Signup(c.Request.Context(), creds)
	if err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "User registered", "user": user.Safe()})
}

// Login authenticates with email and password and starts a session.
func (h *AuthHandler) Login(c *gin.Context) {
	var credentials struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.ShouldBindJSON(&credentials); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	p, err := h.UserService.Login(c.Request.Context(), currentSID(c), credentials.Email, credentials.Password)
	if err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	if !h.issueCookie(c, p) {
		return
	}
	c.JSON(http.StatusOK, p.View())
}

// Logout destroys the session and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if err := h.UserService.Logout(c.Request.Context(), currentSID(c)); err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	utils.ClearSessionCookie(c, h.secure)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the identity of the session, or null.
func (h *AuthHandler) Me(c *gin.Context) {
	p := middlewares.CurrentPrincipal(c)
	if p == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": p.View()})
}

// ListUsers returns every account without password hashes.
func (h *AuthHandler) ListUsers(c *gin.Context) {
	users, err := h.UserService.ListUsers(c.Request.Context())
	if err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	if p := middlewares.CurrentPrincipal(c); p != nil {
		h.log.Info().Str("role", p.Role).Int("count", len(users)).Msg("accounts listed")
	}
	c.JSON(http.StatusOK, users)
}

// SendResetCode mails a password reset code.
func (h *AuthHandler) SendResetCode(c *gin.Context) {
	var data struct {
		Email string `json:"email"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.UserService.SendResetCode(c.Request.Context(), data.Email); err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Reset code sent"})
}

// ChangePassword sets a new password using a mailed reset code.
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	var data struct {
		Email       string `json:"email"`
		Code        string `json:"code"`
		NewPassword string `json:"new_password"`
	}
	if err := c.ShouldBindJSON(&data); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if err := h.UserService.ChangePassword(c.Request.Context(), data.Email, data.Code, data.NewPassword); err != nil {
		middlewares.HTTPError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
