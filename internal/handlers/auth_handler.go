package handlers

import (
	"net/http"
	"time"

	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/middleware"
	"github.com/TimiOdusanya/tourbirth-backend/internal/models"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type emailRequest struct {
	Email string `json:"email"`
}

type otpRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

type codeRequest struct {
	Code string `json:"code"`
}

func secureCookies() bool {
	return gin.Mode() == gin.ReleaseMode
}

// setSession stores the token in the httpOnly session cookie.
func setSession(c *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(helpers.CookieName, token, maxAge, "/", "", secureCookies(), true)
}

func clearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(helpers.CookieName, "", -1, "/", "", secureCookies(), true)
}

// Signup creates a user or admin account depending on role.
func Signup(a *services.AuthService, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.SignupInput
		if !bindJSON(c, &in) {
			return
		}
		account, err := a.Signup(c.Request.Context(), in, role)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		msg := "Account created successfully"
		if role == models.RoleUser {
			msg = "Account created successfully. Check your email for the verification code"
		}
		created(c, account, msg)
	}
}

func Login(a *services.AuthService, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.LoginInput
		if !bindJSON(c, &in) {
			return
		}
		res, err := a.Login(c.Request.Context(), in, role)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		setSession(c, res.Token, res.ExpiresAt)
		ok(c, res, "Login successful")
	}
}

// Logout clears the cookie and revokes whatever token came with the request.
func Logout(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := a.LogoutToken(c.Request.Context(), middleware.TokenFromRequest(c)); err != nil {
			helpers.RespondError(c, err)
			return
		}
		clearSession(c)
		ok(c, nil, "Logged out successfully")
	}
}

func VerifyAccount(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req otpRequest
		if !bindJSON(c, &req) {
			return
		}
		account, err := a.VerifyAccount(c.Request.Context(), req.Email, req.OTP)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, account, "Account verified successfully")
	}
}

func ResendVerification(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req emailRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := a.ResendVerification(c.Request.Context(), req.Email); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Verification code sent")
	}
}

func ForgotPassword(a *services.AuthService, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req emailRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := a.ForgotPassword(c.Request.Context(), req.Email, role); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Password reset code sent to your email")
	}
}

func VerifyForgotPassword(a *services.AuthService, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req otpRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := a.VerifyResetOTP(c.Request.Context(), req.Email, req.OTP, role); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "OTP verified successfully")
	}
}

func ResetPassword(a *services.AuthService, role models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.ResetPasswordInput
		if !bindJSON(c, &in) {
			return
		}
		if err := a.ResetPassword(c.Request.Context(), in, role); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Password reset successfully")
	}
}

func ChangePassword(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		var in services.ChangePasswordInput
		if !bindJSON(c, &in) {
			return
		}
		if err := a.ChangePassword(c.Request.Context(), claims.UserObjectID(), in); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Password changed successfully")
	}
}

// EnableTwoFactor returns a fresh TOTP secret. It is only switched on once
// ConfirmTwoFactor sees a valid code for it.
func EnableTwoFactor(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		setup, err := a.EnableTwoFactor(c.Request.Context(), claims.UserObjectID())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, setup, "Scan the secret with your authenticator app and confirm with a code")
	}
}

func ConfirmTwoFactor(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		var req codeRequest
		if !bindJSON(c, &req) {
			return
		}
		if err := a.ConfirmTwoFactor(c.Request.Context(), claims.UserObjectID(), req.Code); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Two-factor authentication enabled")
	}
}
