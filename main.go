package main

import (
	"time"

	"github.com/healthyfries/reviewsite/config"
	"github.com/healthyfries/reviewsite/controllers"
	"github.com/healthyfries/reviewsite/models"
	"github.com/healthyfries/reviewsite/routes"
	"github.com/healthyfries/reviewsite/utils"
)

func main() {
	cfg := config.Load()

	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}

	db := config.InitDatabase(&models.User{}, &models.Post{}, &models.Subscriber{}, &models.UploadedFile{}, &models.PageView{})

	// The management panel is unusable without at least one admin account.
	if err := controllers.EnsureAdminAccount(db); err != nil {
		utils.Sugar.Fatalf("admin bootstrap failed: %v", err)
	}

	r := routes.SetupRouter(db)

	// Start background cleanup for expired uploads (best-effort)
	utils.StartUploadCleaner(5 * time.Minute)

	utils.Sugar.Infof("Starting server on port %s (graceful)", cfg.AppPort)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
