package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DhavalSuthar-24/clubhub/config"
	_ "github.com/DhavalSuthar-24/clubhub/docs"
	"github.com/DhavalSuthar-24/clubhub/internal/auth"
	"github.com/DhavalSuthar-24/clubhub/internal/directory"
	"github.com/DhavalSuthar-24/clubhub/internal/event"
	"github.com/DhavalSuthar-24/clubhub/internal/mail"
	"github.com/DhavalSuthar-24/clubhub/internal/membership"
	"github.com/DhavalSuthar-24/clubhub/internal/news"
	"github.com/DhavalSuthar-24/clubhub/internal/push"
	"github.com/DhavalSuthar-24/clubhub/internal/session"
	"github.com/DhavalSuthar-24/clubhub/internal/store/memory"
	"github.com/DhavalSuthar-24/clubhub/internal/team"
	"github.com/DhavalSuthar-24/clubhub/internal/user"
	"github.com/DhavalSuthar-24/clubhub/pkg/validator"
	"github.com/DhavalSuthar-24/clubhub/routes"
)

type repositories struct {
	accounts auth.AccountRepository
	profiles user.Repository
	teams    team.Repository
	events   event.Repository
	news     news.Repository
}

func openRepositories(cfg *config.Config) (repositories, error) {
	if cfg.DB.Driver == config.DriverMemory {
		log.Println("Using in-memory document store; data is lost on restart")
		s := memory.New()
		return repositories{accounts: s, profiles: s, teams: s, events: s, news: s}, nil
	}

	db, err := config.ConnectDB(cfg)
	if err != nil {
		return repositories{}, err
	}
	err = db.AutoMigrate(
		&auth.Account{}, &user.Profile{},
		&team.Team{}, &team.Request{},
		&event.Event{}, &news.Item{},
	)
	if err != nil {
		return repositories{}, err
	}
	log.Println("AutoMigrate successful")

	return repositories{
		accounts: auth.NewAccountRepository(db),
		profiles: user.NewUserRepository(db),
		teams:    team.NewTeamRepository(db),
		events:   event.NewEventRepository(db),
		news:     news.NewNewsRepository(db),
	}, nil
}

// @title ClubHub REST API
// @version 1.0
// @description Club management server: sessions, teams, membership, events and news.
// @host localhost:8088
// @BasePath /api
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := slog.LevelInfo
	if cfg.App.Env == "development" {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	repos, err := openRepositories(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	validator.UseJSONFieldNames()

	mailer := mail.New(cfg.Mail.ResendAPIKey, cfg.Mail.From, logger)
	provider := auth.NewService(repos.accounts, cfg.JWT.AccessTokenSecret, cfg.JWT.AccessTokenExpiryMinutes,
		auth.WithLogger(logger),
		auth.WithPasswordReset(mailer, cfg.Mail.PasswordResetURL, cfg.Mail.PasswordResetExpiryMinutes),
	)
	defer provider.Close()

	policy := session.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Session.RoleRetryAttempts
	policy.Delay = cfg.Session.RoleRetryDelay
	resolver := session.NewRoleResolver(repos.profiles, policy, logger)
	hub := session.NewHub(provider, resolver, logger)
	defer hub.Close()

	dispatcher := push.NewDispatcher(repos.profiles, push.LogSender{Log: logger}, cfg.Push.QueueSize, logger)
	dispatcher.Start()
	defer dispatcher.Stop()

	engine := membership.NewEngine(repos.teams, repos.profiles,
		membership.WithNotifier(dispatcher),
		membership.WithLogger(logger),
	)

	r := routes.SetupRoutes(routes.Deps{
		Config:    cfg,
		Log:       logger,
		Provider:  provider,
		Profiles:  repos.profiles,
		Teams:     repos.teams,
		Events:    repos.events,
		News:      repos.news,
		Hub:       hub,
		Engine:    engine,
		Directory: directory.New(repos.teams, repos.profiles, repos.events),
	})

	srv := &http.Server{
		Addr:    ":" + cfg.App.Port,
		Handler: r,
	}

	go func() {
		log.Printf("Starting server on port %s in %s mode\n", cfg.App.Port, cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to run server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Session streams end when the hub closes, so close it before draining.
	hub.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}
}
