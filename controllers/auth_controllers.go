package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/middlewares"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

type AuthController struct {
	Accounts      *services.AccountService
	Revocations   utils.RevocationStore
	SecureCookies bool
}

func NewAuthController(accounts *services.AccountService, revocations utils.RevocationStore, secureCookies bool) *AuthController {
	return &AuthController{Accounts: accounts, Revocations: revocations, SecureCookies: secureCookies}
}

// LoginPage describes the login form.
func (ac *AuthController) LoginPage(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Login", gin.H{
		"fields": []string{"username", "password"},
	})
}

// Login accepts a username or email and answers with a session token, also set as
// cookie.
func (ac *AuthController) Login(c *gin.Context) {
	var input struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	account, err := ac.Accounts.Authenticate(c.Request.Context(), input.Username, input.Password)
	if err != nil {
		if errors.Is(err, services.ErrUnauthorized) {
			utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid username or password"))
			return
		}
		respondServiceError(c, err)
		return
	}

	ac.issueSession(c, account, http.StatusOK, "Login successful")
}

func (ac *AuthController) SignupPage(c *gin.Context) {
	utils.RespondJSON(c, http.StatusOK, "Sign up", gin.H{
		"fields":             []string{"username", "email", "password", "first_name", "last_name", "phone", "address", "preferred_contact"},
		"preferred_contacts": []models.ContactMethod{models.ContactEmail, models.ContactPhone},
	})
}

// Signup registers a customer and logs them in.
func (ac *AuthController) Signup(c *gin.Context) {
	var input services.SignupInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	account, err := ac.Accounts.Signup(c.Request.Context(), input)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	ac.issueSession(c, account, http.StatusCreated, "Account created")
}

func (ac *AuthController) issueSession(c *gin.Context, account *models.Account, code int, message string) {
	token, err := utils.GenerateToken(account.ID, string(account.Role))
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, errInternal)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middlewares.SessionCookie, token, int(utils.TokenTTL()/time.Second), "/", "", ac.SecureCookies, true)

	utils.InfoLogger.Printf("Session issued for account %d (role=%s)", account.ID, account.Role)
	utils.RespondJSON(c, code, message, gin.H{
		"token":   token,
		"account": account,
	})
}

// Logout revokes the presented token until it would have expired.
func (ac *AuthController) Logout(c *gin.Context) {
	if raw, ok := c.Get(middlewares.ContextClaims); ok && ac.Revocations != nil {
		claims := raw.(*utils.CustomClaims)
		until := time.Now().Add(utils.TokenTTL())
		if claims.ExpiresAt != nil {
			until = claims.ExpiresAt.Time
		}
		if err := ac.Revocations.Revoke(c.Request.Context(), claims.ID, until); err != nil {
			utils.ErrorLogger.Printf("Failed to revoke token: %v", err)
			utils.RespondError(c, http.StatusInternalServerError, errInternal)
			return
		}
	}

	c.SetCookie(middlewares.SessionCookie, "", -1, "/", "", ac.SecureCookies, true)
	utils.RespondJSON(c, http.StatusOK, "Logged out", nil)
}
