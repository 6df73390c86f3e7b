package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	identityapp "github.com/stitchline/backend/internal/application/identity"
)

// AuthService is the signup and login flow
type AuthService interface {
	Register(ctx context.Context, req identityapp.RegisterRequest) (*identityapp.ProfileResponse, error)
	Login(ctx context.Context, req identityapp.LoginRequest) (*identityapp.LoginResponse, error)
	VerifyOTP(ctx context.Context, req identityapp.VerifyOTPRequest) (*identityapp.LoginResponse, error)
}

// AuthHandler handles registration and login
type AuthHandler struct {
	BaseHandler
	auth AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(base BaseHandler, auth AuthService) *AuthHandler {
	return &AuthHandler{BaseHandler: base, auth: auth}
}

// Register godoc
// @Summary      Register a customer account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.RegisterRequest true "Signup form"
// @Success      201 {object} dto.Response{data=identityapp.ProfileResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req identityapp.RegisterRequest
	if !h.bindJSON(c, &req) {
		return
	}
	profile, err := h.auth.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, profile)
}

// Login godoc
// @Summary      Log in
// @Description  Returns a token, or an OTP challenge when one-time passwords are enabled
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=identityapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req identityapp.LoginRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.auth.Login(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// VerifyOTP godoc
// @Summary      Complete an OTP login
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body identityapp.VerifyOTPRequest true "OTP answer"
// @Success      200 {object} dto.Response{data=identityapp.LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/verify-otp [post]
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req identityapp.VerifyOTPRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.auth.VerifyOTP(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
