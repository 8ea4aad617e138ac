package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"shuttlestats/backend/internal/api"
	"shuttlestats/backend/internal/config"
	"shuttlestats/backend/internal/export"
	"shuttlestats/backend/internal/notify"
	"shuttlestats/backend/internal/repository/local"
	mongorepo "shuttlestats/backend/internal/repository/mongo"
	"shuttlestats/backend/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const reminderPollInterval = time.Minute

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	log.Info("Starting ShuttleStats server...")

	cfg, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("Could not load config: %v", err)
	}

	// The file store always exists: it is the record store in local mode
	// and carries reminder settings in either mode.
	store, err := local.NewStore(cfg.Local.Dir, cfg.Demo.Owner, log)
	if err != nil {
		log.Fatalf("Could not open local store at %s: %v", cfg.Local.Dir, err)
	}

	stores := service.Stores{Local: store}
	var authService service.AuthService

	if cfg.RemoteMode() {
		dbClient, err := mongorepo.ConnectDB(cfg.Database.URI)
		if err != nil {
			log.Fatalf("Could not connect to MongoDB: %v", err)
		}
		defer func() {
			log.Info("Disconnecting MongoDB...")
			if err := mongorepo.DisconnectDB(dbClient); err != nil {
				log.Errorw("failed to disconnect MongoDB", "error", err)
			}
		}()
		appDB := dbClient.Database(cfg.Database.Name)
		log.Info("Database connection established.")

		// Missing indexes never block startup; queries fall back to
		// unordered reads until these complete.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			mongorepo.EnsureUserIndexes(ctx, appDB.Collection("users"), log)
			mongorepo.EnsureTrainingIndexes(ctx, appDB.Collection("training_sessions"), log)
			mongorepo.EnsureMatchIndexes(ctx, appDB.Collection("matches"), log)
			mongorepo.EnsureScheduleIndexes(ctx, appDB.Collection("schedule_sessions"), log)
			mongorepo.EnsureGoalIndexes(ctx, appDB.Collection("goals"), log)
			log.Info("Index creation process completed.")
		}()

		stores.Training = mongorepo.NewTrainingCollection(appDB, log)
		stores.Matches = mongorepo.NewMatchCollection(appDB, log)
		stores.Schedule = mongorepo.NewScheduleCollection(appDB, log)
		stores.Goals = mongorepo.NewGoalCollection(appDB, log)

		userRepo := mongorepo.NewMongoUserRepository(appDB)
		authService = service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	} else {
		log.Infow("No database configured, using local file store", "dir", cfg.Local.Dir)
	}

	msgs := notify.NewCenter(log)
	defer msgs.Close()

	hub := service.NewHub(stores, service.Deps{
		Msgs:    msgs,
		Log:     log,
		Timeout: cfg.Sync.Timeout,
	})
	defer hub.Close()

	var archive *export.Archive
	if cfg.ArchiveEnabled() {
		archive, err = export.NewArchive(cfg.S3, log)
		if err != nil {
			log.Fatalf("Failed to initialize export archive: %v", err)
		}
	}

	jwtSecret := cfg.JWT.Secret
	if authService == nil && jwtSecret == "" {
		// Local mode issues no tokens; the middleware still needs a
		// non-empty secret to reject forged Authorization headers.
		jwtSecret = "local-mode"
	}

	router := gin.Default()
	api.SetupRoutes(router, jwtSecret, cfg.Demo.Owner, authService, hub, archive, msgs)

	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Surface due schedule reminders for the demo identity as notices.
	reminderCtx, stopReminders := context.WithCancel(context.Background())
	defer stopReminders()
	go remindLoop(reminderCtx, hub, msgs, cfg.Demo.Owner, log)

	log.Infow("Server starting", "address", cfg.Server.Address, "remote", cfg.RemoteMode())

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ListenAndServe error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("Server exiting.")
}

// remindLoop polls the owner's schedule and posts a notice for every
// session entering its reminder window.
func remindLoop(ctx context.Context, hub *service.Hub, msgs *notify.Center, owner string, log *zap.SugaredLogger) {
	if owner == "" {
		return
	}
	ticker := time.NewTicker(reminderPollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			ws, err := hub.For(ctx, owner)
			if err != nil {
				log.Errorw("reminder poll failed", "error", err)
				continue
			}
			for _, s := range ws.Schedule.DueReminders(now) {
				msgs.Show("Upcoming session: "+s.Title+" at "+s.Time, notify.Info, 0)
			}
		}
	}
}
