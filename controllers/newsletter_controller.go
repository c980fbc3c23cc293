package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/healthyfries/reviewsite/config"
	"github.com/healthyfries/reviewsite/models"
	"github.com/healthyfries/reviewsite/utils"
)

const subscribeCooldown = time.Minute

// NewsletterController handles newsletter signups from the footer form.
type NewsletterController struct {
	db *gorm.DB
}

// NewNewsletterController creates a new NewsletterController instance.
func NewNewsletterController(db *gorm.DB) *NewsletterController {
	return &NewsletterController{db: db}
}

type subscribeRequest struct {
	Email string `json:"email" binding:"required"`
}

// Subscribe records a newsletter address. Repeat signups are idempotent and
// each address is rate limited to one attempt per cooldown window.
func (n *NewsletterController) Subscribe(ctx *gin.Context) {
	var req subscribeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request body")
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	at := strings.Index(email, "@")
	if at < 1 || at == len(email)-1 {
		utils.Error(ctx, http.StatusBadRequest, 40041, "invalid email address")
		return
	}

	if !utils.CooldownTrySet("newsletter:"+email, subscribeCooldown) {
		utils.Error(ctx, http.StatusTooManyRequests, 42902, "please wait before trying again")
		return
	}

	var existing models.Subscriber
	err := n.db.WithContext(ctx.Request.Context()).Where("email = ?", email).First(&existing).Error
	if err == nil {
		// Already subscribed; do not leak that through a different response.
		utils.Success(ctx, gin.H{"subscribed": true})
		return
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "subscription failed")
		return
	}

	sub := models.Subscriber{Email: email}
	if err := n.db.WithContext(ctx.Request.Context()).Create(&sub).Error; err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "subscription failed")
		return
	}

	// Confirmation mail is best effort; the signup already succeeded.
	go func(to string) {
		cfg := config.Get()
		if cfg.SMTPHost == "" {
			return
		}
		body := "Thanks for subscribing to " + cfg.SiteTitle + "! You'll hear from us when new reviews go up."
		if err := utils.SendMail(to, "Welcome to "+cfg.SiteTitle, body); err != nil {
			utils.Sugar.Warnf("confirmation mail to %s failed: %v", to, err)
		}
	}(email)

	utils.Success(ctx, gin.H{"subscribed": true})
}
