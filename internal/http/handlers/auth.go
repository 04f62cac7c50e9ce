package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/antarn88/userserver/internal/config"
	"github.com/antarn88/userserver/internal/observability"
	"github.com/antarn88/userserver/internal/service"
	"github.com/gin-gonic/gin"
)

// LoginService is the slice of the auth service this handler needs.
type LoginService interface {
	Login(ctx context.Context, email, password string) (service.LoginResult, error)
}

type AuthHandler struct {
	auth LoginService
	prom *observability.Prom
}

func NewAuthHandler(auth LoginService, prom *observability.Prom) *AuthHandler {
	return &AuthHandler{
		auth: auth,
		prom: prom,
	}
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	// short timeout for DB lookup
	cctx, cancel := config.WithTimeout(2 * time.Second)
	defer cancel()

	result, err := h.auth.Login(cctx, req.Email, req.Password)

	if err != nil {
		// Unknown email and wrong password deliberately produce the
		// same response.
		if errors.Is(err, service.ErrInvalidCredentials) {
			h.countLogin("rejected")
			RespondUnAuthorized(ctx, "invalid_credentials", "Email or password is incorrect.")
			return
		}

		h.countLogin("error")
		RespondInternal(ctx, "Could not log in")
		return
	}

	h.countLogin("ok")

	ctx.JSON(http.StatusOK, result)
}

func (h *AuthHandler) countLogin(outcome string) {
	if h.prom != nil {
		h.prom.LoginAttempts.WithLabelValues(outcome).Inc()
	}
}
