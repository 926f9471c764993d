package handlers

import (
	"github.com/TimiOdusanya/tourbirth-backend/internal/helpers"
	"github.com/TimiOdusanya/tourbirth-backend/internal/services"
	"github.com/gin-gonic/gin"
)

type companionLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// CompanionLogin accepts a temporary or a permanent password.
func CompanionLogin(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req companionLoginRequest
		if !bindJSON(c, &req) {
			return
		}
		res, err := a.CompanionLogin(c.Request.Context(), req.Email, req.Password)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		setSession(c, res.Token, res.ExpiresAt)
		msg := "Login successful"
		if res.IsTempPassword {
			msg = "Login successful. Set a permanent password to complete your registration"
		}
		ok(c, res, msg)
	}
}

func CompleteRegistration(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in services.CompleteRegistrationInput
		if !bindJSON(c, &in) {
			return
		}
		res, err := a.CompleteRegistration(c.Request.Context(), in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		setSession(c, res.Token, res.ExpiresAt)
		ok(c, res, "Registration completed successfully")
	}
}

func GetCompanionProfile(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		companion, err := a.CompanionProfile(c.Request.Context(), claims.CompanionObjectID())
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, companion, "")
	}
}

func UpdateCompanionProfile(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		var in services.CompanionProfileInput
		if !bindJSON(c, &in) {
			return
		}
		companion, err := a.UpdateCompanionProfile(c.Request.Context(), claims.CustomClaims, in)
		if err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, companion, "Profile updated successfully")
	}
}

func CompanionChangePassword(a *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, found := principal(c)
		if !found {
			return
		}
		var in services.ChangePasswordInput
		if !bindJSON(c, &in) {
			return
		}
		if err := a.CompanionChangePassword(c.Request.Context(), claims.CustomClaims, in); err != nil {
			helpers.RespondError(c, err)
			return
		}
		ok(c, nil, "Password changed successfully")
	}
}
