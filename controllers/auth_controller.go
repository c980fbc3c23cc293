package controllers

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/healthyfries/reviewsite/config"
	"github.com/healthyfries/reviewsite/middleware"
	"github.com/healthyfries/reviewsite/models"
	"github.com/healthyfries/reviewsite/utils"
)

const tokenLifetime = 72 * time.Hour

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_]{3,32}$`)

// AuthController handles registration, login, logout and the session probe.
type AuthController struct {
	db *gorm.DB
}

// NewAuthController creates a new AuthController instance.
func NewAuthController(db *gorm.DB) *AuthController {
	return &AuthController{db: db}
}

type registerRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Register creates a regular account. Every self-registered user gets the
// reader role; admin accounts come only from the bootstrap config.
func (a *AuthController) Register(ctx *gin.Context) {
	var req registerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40010, "invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if !usernamePattern.MatchString(req.Username) {
		utils.Error(ctx, http.StatusBadRequest, 40011, "username must be 3-32 letters, digits or underscores")
		return
	}
	if len(req.Password) < 8 {
		utils.Error(ctx, http.StatusBadRequest, 40012, "password must be at least 8 characters")
		return
	}
	if !strings.Contains(req.Email, "@") {
		utils.Error(ctx, http.StatusBadRequest, 40013, "invalid email address")
		return
	}

	var count int64
	a.db.Model(&models.User{}).
		Where("username = ? OR email = ?", req.Username, req.Email).
		Count(&count)
	if count > 0 {
		utils.Error(ctx, http.StatusConflict, 40910, "username or email already taken")
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50010, "failed to create account")
		return
	}

	user := models.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         models.RoleUser,
	}
	if err := a.db.WithContext(ctx.Request.Context()).Create(&user).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50011, "failed to create account")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login verifies credentials and issues a JWT carrying the role claim the
// admin gate checks. Wrong username and wrong password are indistinguishable.
func (a *AuthController) Login(ctx *gin.Context) {
	var req loginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40014, "invalid request body")
		return
	}

	var user models.User
	err := a.db.WithContext(ctx.Request.Context()).
		Where("username = ?", strings.TrimSpace(req.Username)).
		First(&user).Error
	if err != nil || !utils.CheckPassword(user.PasswordHash, req.Password) {
		utils.Error(ctx, http.StatusUnauthorized, 40110, "invalid username or password")
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Username, user.Role, tokenLifetime)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50012, "failed to issue token")
		return
	}

	utils.Success(ctx, gin.H{
		"token":      token,
		"expires_in": int(tokenLifetime.Seconds()),
		"user":       user,
	})
}

// Logout revokes the presented token for the rest of its lifetime.
func (a *AuthController) Logout(ctx *gin.Context) {
	authHeader := ctx.GetHeader("Authorization")
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 {
		token := strings.TrimSpace(parts[1])
		expiresAt := time.Now().Add(tokenLifetime)
		if claims, err := utils.ParseToken(token); err == nil && claims.ExpiresAt != nil {
			expiresAt = claims.ExpiresAt.Time
		}
		utils.BlacklistToken(token, expiresAt)
	}
	utils.Success(ctx, nil)
}

// Me returns the authenticated account, including the role the front end
// uses to decide whether to show the management panel.
func (a *AuthController) Me(ctx *gin.Context) {
	userID := ctx.GetUint(middleware.ContextUserIDKey)

	var user models.User
	err := a.db.WithContext(ctx.Request.Context()).First(&user, userID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.Error(ctx, http.StatusUnauthorized, 40111, "account no longer exists")
			return
		}
		utils.Error(ctx, http.StatusInternalServerError, 50013, "failed to load account")
		return
	}

	utils.Success(ctx, gin.H{"user": user})
}

// EnsureAdminAccount creates the bootstrap administrator from config when no
// account with that username exists yet. Called once at startup.
func EnsureAdminAccount(db *gorm.DB) error {
	cfg := config.Get()
	if cfg.AdminUsername == "" || cfg.AdminPassword == "" {
		return nil
	}

	var count int64
	if err := db.Model(&models.User{}).Where("username = ?", cfg.AdminUsername).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := utils.HashPassword(cfg.AdminPassword)
	if err != nil {
		return err
	}

	admin := models.User{
		Username:     cfg.AdminUsername,
		Email:        cfg.AdminUsername + "@localhost",
		PasswordHash: hash,
		Role:         models.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	utils.Sugar.Infof("bootstrap admin account %q created", cfg.AdminUsername)
	return nil
}
