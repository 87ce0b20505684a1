// Package local implements credential-based sign-in endpoints.
package local

import (
	"errors"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/smallbiznis/billfold/internal/auth/domain"
	"github.com/smallbiznis/billfold/internal/auth/session"
	"go.uber.org/zap"
)

// Messages shown by the sign-in form.
const (
	MsgInvalidCredentials = "Invalid credentials."
	MsgSomethingWentWrong = "Something went wrong."
)

// Handler manages local auth endpoints.
type Handler struct {
	authsvc  authdomain.Service
	sessions *session.Manager
	log      *zap.Logger
}

func NewHandler(authsvc authdomain.Service, sessions *session.Manager, log *zap.Logger) *Handler {
	return &Handler{
		authsvc:  authsvc,
		sessions: sessions,
		log:      log.Named("auth.local.handler"),
	}
}

type loginRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name,omitempty"`
}

// Authenticate resolves the session cookie to a user.
func (h *Handler) Authenticate(c *gin.Context) (*authdomain.User, error) {
	token, ok := h.sessions.ReadToken(c)
	if !ok {
		return nil, authdomain.ErrInvalidSession
	}
	return h.authsvc.Authenticate(c.Request.Context(), token)
}

// Login authenticates submitted credentials. Auth-family failures are
// reduced to one of two display messages; anything else escapes to the
// server's error middleware untouched.
func (h *Handler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": MsgInvalidCredentials})
		return
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"message": MsgInvalidCredentials})
		return
	}

	result, err := h.authsvc.Login(c.Request.Context(), authdomain.LoginRequest{
		Email:     email,
		Password:  req.Password,
		UserAgent: c.Request.UserAgent(),
		IPAddress: c.ClientIP(),
	})
	if err != nil {
		message, classified := ClassifySignInError(err)
		if !classified {
			_ = c.Error(err)
			c.Abort()
			return
		}
		status := http.StatusUnauthorized
		if message == MsgSomethingWentWrong {
			status = http.StatusInternalServerError
		}
		c.JSON(status, gin.H{"message": message})
		return
	}

	h.sessions.Set(c, result.RawToken, result.ExpiresAt)
	h.log.Info("local login created session", zap.String("user_id", result.User.ID.String()))

	c.JSON(http.StatusOK, userResponse{
		ID:          result.User.ID.String(),
		Email:       result.User.Email,
		DisplayName: result.User.DisplayName,
	})
}

func (h *Handler) Logout(c *gin.Context) {
	token, ok := h.sessions.ReadToken(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_session"})
		return
	}
	if err := h.authsvc.Logout(c.Request.Context(), token); err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_session"})
		return
	}

	h.sessions.Clear(c)
	c.Status(http.StatusNoContent)
}

func (h *Handler) Me(c *gin.Context) {
	user, err := h.Authenticate(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, userResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
	})
}

// ClassifySignInError maps an auth-family error to its display message.
// The second return is false for errors outside the family, which the
// caller must re-raise instead of swallowing.
func ClassifySignInError(err error) (string, bool) {
	if err == nil {
		return "", false
	}
	switch {
	case isCredentialFailure(err):
		return MsgInvalidCredentials, true
	case authdomain.IsAuthError(err):
		return MsgSomethingWentWrong, true
	default:
		return "", false
	}
}

func isCredentialFailure(err error) bool {
	return errors.Is(err, authdomain.ErrInvalidCredentials) || errors.Is(err, authdomain.ErrUserNotFound)
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}
