package api

import (
	"fmt"
	"time"

	"github.com/ssnnd0/Saxon-Scout/api/controllers"
	"github.com/ssnnd0/Saxon-Scout/api/transport"
	"github.com/ssnnd0/Saxon-Scout/logging"
	"github.com/ssnnd0/Saxon-Scout/scheduler"
	"github.com/ssnnd0/Saxon-Scout/storage"
)

type Server struct {
	config *Config
}

func NewServer(config *Config) *Server {
	return &Server{
		config: config,
	}
}

func (s *Server) Start() {
	r := transport.NewRouter(s.config.GinMode)

	// Create storage
	db, err := storage.Open(s.config.DatabasePath)
	if err != nil {
		logging.Log.Errorf("failed to open database: %v", err)
		panic("failed to open database")
	}
	defer db.Close()

	seasonStorage := &storage.BoltSeasonStorage{DB: db}
	entryStorage := &storage.BoltEntryStorage{DB: db}
	userStorage := &storage.BoltUserStorage{DB: db}
	inviteStorage := &storage.BoltInviteStorage{DB: db}

	tokenTTL := time.Duration(s.config.TokenTTLHours) * time.Hour

	// Create the controllers and register routes
	authController := controllers.NewAuthController(userStorage, inviteStorage, s.config.JWTSecret, tokenTTL)
	userController := controllers.NewUserController(userStorage, inviteStorage, s.config.JWTSecret)
	seasonController := controllers.NewSeasonController(seasonStorage, userStorage, s.config.JWTSecret)
	scoutingController := controllers.NewScoutingController(entryStorage, seasonStorage, userStorage, s.config.JWTSecret)

	authController.RegisterRoutes(r)
	userController.RegisterRoutes(r)
	seasonController.RegisterRoutes(r)
	scoutingController.RegisterRoutes(r)

	// Nightly export backups
	backup := scheduler.New(scheduler.Config{
		Enabled:  s.config.BackupEnabled,
		CronSpec: s.config.BackupCron,
		Dir:      s.config.BackupDir,
	}, seasonStorage, entryStorage)
	if err := backup.Start(); err != nil {
		logging.Log.Errorf("failed to start backup scheduler: %v", err)
		panic("failed to start backup scheduler")
	}
	defer backup.Stop()

	addr := fmt.Sprintf(":%d", s.config.Port)
	logging.Log.Infof("scouting server listening on %s", addr)
	if err := r.Run(addr); err != nil {
		logging.Log.Errorf("server stopped: %v", err)
		panic("server stopped")
	}
}
