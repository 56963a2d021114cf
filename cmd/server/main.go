package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gorm.io/gorm/logger"

	"github.com/UkralStul/content-service/internal/comment"
	"github.com/UkralStul/content-service/internal/config"
	"github.com/UkralStul/content-service/internal/httpapi"
	"github.com/UkralStul/content-service/internal/post"
	"github.com/UkralStul/content-service/internal/search"
	"github.com/UkralStul/content-service/internal/storage"
	"github.com/UkralStul/content-service/internal/storage/inmemory"
	"github.com/UkralStul/content-service/internal/storage/mongo"
	"github.com/UkralStul/content-service/internal/storage/postgres"
	"github.com/UkralStul/content-service/internal/telemetry"
	"github.com/UkralStul/content-service/internal/userclient"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		slog.Error("server stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
}

// run возвращает управление только после остановки сервера, чтобы отработали все defer.
func run(args []string) error {
	cfg, err := config.Load(args)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTelemetry, err := telemetry.Setup(cfg.OTelExporter, os.Stderr, cfg.OTelInterval)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := shutdownTelemetry(ctx); err != nil {
			log.Error("failed to flush telemetry", slog.Any("error", err))
		}
	}()

	var repos storage.Repositories
	seed := false

	log.Info("starting server", slog.String("storage", cfg.Storage), slog.String("otel", cfg.OTelExporter))
	if cfg.Storage == config.StoragePostgres {
		level := logger.Warn
		if cfg.LogLevel <= slog.LevelDebug {
			level = logger.Info
		}
		store, err := postgres.New(cfg.DatabaseURL, log, level)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Error("failed to close postgres", slog.Any("error", err))
			}
		}()
		repos = store.Repositories()
	} else {
		repos = inmemory.New().Repositories()
		seed = true
	}

	if cfg.CommentStorage == config.StorageMongo {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		client, err := mongo.Connect(connectCtx, cfg.MongoURI)
		if err == nil {
			repos.Comments, err = mongo.NewCommentRepository(connectCtx, client, cfg.MongoDB)
		}
		cancel()
		if err != nil {
			return fmt.Errorf("failed to set up mongo comment storage: %w", err)
		}
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
			defer cancel()
			if err := client.Disconnect(ctx); err != nil {
				log.Error("failed to disconnect from mongo", slog.Any("error", err))
			}
		}()
		log.Info("comments are stored in mongo", slog.String("database", cfg.MongoDB))
	}

	if cfg.UserServiceURL == "" {
		log.Warn("USER_SERVICE_URL is not set, user post counters and subscriptions will fail")
	}
	users := userclient.New(cfg.UserServiceURL, cfg.HTTPClientTimeout, log)

	posts := post.NewService(repos.Posts, users, log)
	svc := httpapi.Services{
		PostRepo: repos.Posts,
		Posts:    posts,
		Links:    post.NewLinkService(repos.Links, posts, log),
		Photos:   post.NewPhotoService(repos.Photos, posts, log),
		Quotes:   post.NewQuoteService(repos.Quotes, posts, log),
		Texts:    post.NewTextService(repos.Texts, posts, log),
		Videos:   post.NewVideoService(repos.Videos, posts, log),
		Search: search.NewService(
			search.NewEngine(repos, log, search.WithDefaultTracer(), search.WithDefaultMeter()),
			users, cfg.PostLimit, log,
		),
		Comments: comment.NewService(repos.Comments, posts, comment.NewObserver(), cfg.CommentLimit, log),
	}

	if seed {
		// Заполним данными для тестов
		if err := fillWithMockData(ctx, svc, log); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           httpapi.NewRouter(svc, cfg.JWTSecret, log),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("listening", slog.String("addr", "http://localhost:"+cfg.Port))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", slog.Duration("timeout", cfg.ShutdownTimeout))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	log.Info("server stopped")
	return nil
}

func fillWithMockData(ctx context.Context, svc httpapi.Services, log *slog.Logger) error {
	fail := func(step string, err error) error {
		return fmt.Errorf("fillWithMockData failed at %s: %w", step, err)
	}

	// 1. Текстовый пост с тегами
	text, err := svc.Texts.CreatePost(ctx, "user-1", post.CreateTextPost{
		Tags:         []string{"golang", "rest"},
		Title:        "Polymorphic posts in Go",
		Announcement: "One table for posts, one per type for details.",
		Text:         "Each post keeps its shared fields in posts and its content in a detail table.",
	})
	if err != nil {
		return fail("text post", err)
	}

	// 2. Ссылка и видео от другого автора
	if _, err := svc.Links.CreatePost(ctx, "user-2", post.CreateLinkPost{
		Tags:        []string{"golang"},
		URL:         "https://go.dev/doc/effective_go",
		Description: "Effective Go",
	}); err != nil {
		return fail("link post", err)
	}
	video, err := svc.Videos.CreatePost(ctx, "user-2", post.CreateVideoPost{
		Tags:  []string{"talks"},
		Title: "Concurrency is not parallelism",
		URL:   "https://go.dev/blog/waza-talk",
	})
	if err != nil {
		return fail("video post", err)
	}

	// 3. Комментарии, лайк и репост
	if _, err := svc.Comments.CreateComment(ctx, "user-2", text.ID, "Great overview, thanks!"); err != nil {
		return fail("comment", err)
	}
	if _, err := svc.Posts.LikePostByID(ctx, "user-3", text.ID); err != nil {
		return fail("like", err)
	}
	if _, err := svc.Texts.RepostPostByID(ctx, "user-3", text.ID); err != nil {
		return fail("repost", err)
	}

	log.Info("mock data filled", slog.String("textPostId", text.ID), slog.String("videoPostId", video.ID))
	return nil
}
