package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	httpServer "github.com/magiclink/server/internal/api/http/server"

	"github.com/magiclink/server/internal/api/http/router"
	"github.com/magiclink/server/internal/config"
	"github.com/magiclink/server/internal/logger"
	"github.com/magiclink/server/internal/mailer/sendgrid"
	"github.com/magiclink/server/internal/model"
	"github.com/magiclink/server/internal/repository/jsonfile"
	"github.com/magiclink/server/internal/server"
	"github.com/magiclink/server/internal/service"
	"github.com/magiclink/server/internal/storage/disk"
	storage "github.com/magiclink/server/internal/storage/minio"
	"github.com/magiclink/server/internal/token"
)

var (
	buildVersion = "N/A" // set by ldflags
	buildDate    = "N/A" // set by ldflags
	buildCommit  = "N/A" // set by ldflags
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT, os.Interrupt)
	defer stop()

	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("failed to parse config: %v", err)
	}
	logger := logger.New(cfg.LogLevel)

	seed := model.User{
		ID:             "1",
		Email:          cfg.Store.SeedEmail,
		Username:       cfg.Store.SeedUsername,
		AvatarFileName: "image_1.png",
	}
	userRepo := jsonfile.New(cfg.Store.FilePath, seed, logger)

	tokenManager := token.NewJWT(cfg.JWT.Secret, cfg.JWT.TTL)

	mailer := sendgrid.New(cfg.Mail.APIKey, sendgrid.Options{
		SenderEmail:  cfg.Mail.SenderEmail,
		SenderName:   cfg.Mail.SenderName,
		BaseURL:      cfg.HTTP.BaseURL,
		TemplateFile: cfg.Mail.TemplateFile,
	}, logger)

	storageClient, err := newStorageClient(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialize storage client", "error", err)
	}

	authService := service.NewAuth(userRepo, tokenManager, mailer, storageClient, logger)

	r := router.New(authService, storageClient, cfg.HTTP.PagesDir, cfg.HTTP.CookieName, logger)
	srv := httpServer.NewHTTPServer(r.Register(), fmt.Sprintf(":%s", cfg.HTTP.Port))

	var sl model.SecurityLayer
	if cfg.HTTP.EnableHTTPS {
		sl = server.NewTLSListener(cfg.HTTP.CertFileName, cfg.HTTP.PrivateKeyFileName)
	} else {
		sl = server.NewPlainListener()
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func(s model.Server) {
		defer wg.Done()
		logger.Info("Starting server on", "address", s.Address())
		if err := s.Start(sl); err != nil {
			logger.Error("failed to start server", "error", err)
		}
	}(srv)

	logAppVersion()

	<-ctx.Done()
	logger.Info("received interruption signal, shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		logger.Error("error during server shutdown", "error", err, "address", srv.Address())
	}

	wg.Wait()
	logger.Info("shutdown complete")
}

func newStorageClient(ctx context.Context, cfg *config.Config) (model.Storage, error) {
	if cfg.Storage.Backend == "minio" {
		minioClient, err := minio.New(cfg.Storage.Endpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.Storage.AccessKey, cfg.Storage.SecretKey, ""),
			Secure: cfg.Storage.UseSSL,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create minio client: %w", err)
		}
		return storage.NewClient(ctx, minioClient, cfg.Storage.Bucket)
	}

	return disk.NewClient(cfg.Storage.RootDir)
}

func logAppVersion() {
	tmpl := `
Build version: %s
Build date: %s
Build commit: %s
`

	fmt.Printf(tmpl, buildVersion, buildDate, buildCommit)
}
