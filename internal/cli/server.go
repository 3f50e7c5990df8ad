package cli

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"assessment-service/internal/app"
	"assessment-service/internal/config"
	transport "assessment-service/internal/transport/http"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// NewStartCmd builds the CLI subcommand to start the server.
func NewStartCmd(configPath, port *string) *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the assessment server",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadRuntime(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			if *port != "" {
				cfg.Server.Port = *port
			}
			return runServer(cmd.Context(), cfg, logger)
		},
	}
}

func runServer(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	b, err := openBackends(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer b.Close()

	if cfg.Quiz.SeedFile != "" {
		quiz, err := readQuizFile(cfg.Quiz.SeedFile, cfg.Quiz.ActiveID)
		if err != nil {
			return err
		}
		if err := b.saveQuiz(ctx, quiz); err != nil {
			return fmt.Errorf("seeding quiz: %w", err)
		}
		logger.Info("quiz seeded", zap.String("quiz_id", quiz.ID), zap.Int("questions", len(quiz.Questions)))
	}

	allowList := app.NewAllowListService(b.allowed)
	if err := registerAllowed(ctx, allowList, cfg.AllowList, logger); err != nil {
		return err
	}

	providers, err := buildIdentity(cfg.Auth, b.tokens)
	if err != nil {
		return err
	}

	feed := app.NewResultsFeed()
	sessions := app.NewSessionService(b.candidates, b.quizzes, logger.Named("session"), app.SessionConfig{
		QuizID:        cfg.Quiz.ActiveID,
		QuestionCount: cfg.Quiz.QuestionCount,
		GraceSeconds:  cfg.Quiz.GraceSeconds,
	}, app.WithPublisher(feed))

	handler := transport.NewHandler(transport.Deps{
		Logger:        logger.Named("http"),
		Auth:          app.NewAuthService(b.allowed, b.candidates, logger.Named("auth")),
		Sessions:      sessions,
		Results:       app.NewResultsService(b.candidates, logger.Named("results")),
		AllowList:     allowList,
		Identity:      providers,
		Feed:          feed,
		Limiter:       b.limiter,
		Checks:        b.checks,
		AdminKeyHash:  cfg.Auth.AdminKeyHash,
		TokenTTL:      config.TTLDuration(cfg.Auth.TokenTTL, 0),
		SecureCookie:  cfg.Auth.SecureCookie,
		AuthPerMinute: cfg.RateLimit.AuthPerMinute,
		APIPerMinute:  cfg.RateLimit.APIPerMinute,
	})
	if cfg.Auth.AdminKeyHash == "" {
		logger.Warn("auth.admin_key_hash not set; admin routes will reject every request")
	}

	server := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           transport.NewRouter(handler),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		ln, err := net.Listen("tcp", server.Addr)
		if err != nil {
			return fmt.Errorf("listening on %s: %w", server.Addr, err)
		}
		logger.Info("starting assessment service",
			zap.String("addr", server.Addr),
			zap.String("quiz_id", cfg.Quiz.ActiveID),
			zap.String("issuer", cfg.Auth.Issuer),
		)
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
