package routes

import (
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/healthyfries/reviewsite/config"
	"github.com/healthyfries/reviewsite/controllers"
	"github.com/healthyfries/reviewsite/middleware"
	"github.com/healthyfries/reviewsite/repository"
	"github.com/healthyfries/reviewsite/storage"
	"github.com/healthyfries/reviewsite/utils"
	"github.com/healthyfries/reviewsite/workflow"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))
	// Record PV after each request
	r.Use(middleware.PageViewRecorder(db))

	// Uploaded post images are served from the same tree they are written to.
	r.Static("/static", "./static")

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	repo := repository.NewPostRepository(db)
	drafts := workflow.NewStore()
	images := storage.NewLocalStore(cfg.UploadsDir, cfg.UploadsBucket, cfg.UploadsPublicBase, cfg.UploadsMaxMB)

	authController := controllers.NewAuthController(db)
	postController := controllers.NewPostController(repo)
	adminController := controllers.NewAdminController(repo, drafts, images, db)
	siteController := controllers.NewSiteController()
	newsletterController := controllers.NewNewsletterController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)

	postsGroup := api.Group("/posts")
	postsGroup.GET("", postController.ListPosts)
	postsGroup.GET("/featured", postController.GetFeatured)
	postsGroup.GET("/latest", postController.GetLatest)
	postsGroup.GET("/top", postController.GetTop)
	postsGroup.GET("/:id", postController.GetPost)

	api.GET("/site/faq", siteController.GetFAQ)
	api.GET("/site/hero", siteController.GetHero)

	api.POST("/newsletter/subscribe", middleware.RateLimitMiddleware(), newsletterController.Subscribe)

	adminGroup := api.Group("/admin")
	adminGroup.Use(middleware.AuthRequired(), middleware.AdminRequired(), middleware.RateLimitMiddleware())
	adminGroup.GET("/posts", adminController.ListPosts)
	adminGroup.DELETE("/posts/:id", adminController.DeletePost)
	adminGroup.POST("/drafts", adminController.OpenDraft)
	adminGroup.GET("/drafts/:id", adminController.GetDraft)
	adminGroup.PATCH("/drafts/:id", adminController.PatchDraft)
	adminGroup.POST("/drafts/:id/image", adminController.StageDraftImage)
	adminGroup.POST("/drafts/:id/image/upload", adminController.UploadDraftImage)
	adminGroup.POST("/drafts/:id/submit", adminController.SubmitDraft)
	adminGroup.DELETE("/drafts/:id", adminController.CancelDraft)

	// The front end owns routing for everything else.
	r.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api/") {
			utils.Error(c, 404, 40400, "not found")
			return
		}
		c.File("./static/index.html")
	})

	return r
}
