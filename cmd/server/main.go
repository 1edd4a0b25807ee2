package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/socialsense/social-sense-backend/internal/auth"
	"github.com/socialsense/social-sense-backend/internal/config"
	"github.com/socialsense/social-sense-backend/internal/forum"
	"github.com/socialsense/social-sense-backend/internal/history"
	"github.com/socialsense/social-sense-backend/internal/middleware"
	"github.com/socialsense/social-sense-backend/internal/query"
	"github.com/socialsense/social-sense-backend/internal/store"
)

func main() {
	cfg := config.Load()
	ctx := context.Background()

	// ── PostgreSQL ────────────────────────────────────────────
	pgPool, err := pgxpool.New(ctx, cfg.PostgresDSN)
	if err != nil {
		log.Fatalf("postgres connect: %v", err)
	}
	defer pgPool.Close()
	pgStore := store.NewPostgresStore(pgPool)
	if err := pgStore.Migrate(ctx); err != nil {
		log.Fatalf("postgres migrate: %v", err)
	}

	// ── MongoDB ──────────────────────────────────────────────
	mongoClient, err := mongo.Connect(ctx, options.Client().ApplyURI(cfg.MongoURI))
	if err != nil {
		log.Fatalf("mongo connect: %v", err)
	}
	defer mongoClient.Disconnect(ctx)
	mongoStore := store.NewMongoStore(mongoClient.Database(cfg.MongoDB))

	// ── Redis ────────────────────────────────────────────────
	rdb, err := store.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword)
	if err != nil {
		log.Fatalf("redis connect: %v", err)
	}
	defer rdb.Close()

	// ── Auth ─────────────────────────────────────────────────
	tokens := auth.NewTokenService(cfg.SecretKey, cfg.TokenTTL)
	resets := auth.NewResetStore(rdb)

	// ── Model client ─────────────────────────────────────────
	modelClient := query.NewOllamaClient(cfg.ModelURL)

	// ── Handlers ─────────────────────────────────────────────
	authHandler := auth.NewHandler(pgStore, mongoStore, tokens, resets)
	historyHandler := history.NewHandler(mongoStore)
	queryHandler := query.NewHandler(mongoStore, mongoStore, modelClient)
	forumHandler := forum.NewHandler(mongoStore, forum.NewNameResolver(pgStore, rdb))

	requireAuth := middleware.RequireAuth(tokens, pgStore)

	// ── Router ───────────────────────────────────────────────
	r := chi.NewRouter()
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)
	r.Use(chimw.StripSlashes)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173", "http://localhost:3000"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/login", authHandler.Login)
		r.Post("/reset-password", authHandler.ResetPassword)
		r.Post("/reset-password/confirm", authHandler.ConfirmReset)
		r.Group(func(r chi.Router) {
			r.Use(requireAuth)
			r.Post("/refresh-token", authHandler.RefreshToken)
			r.Post("/change-password", authHandler.ChangePassword)
			r.Get("/verify-token", authHandler.VerifyToken)
			r.Post("/logout", authHandler.Logout)
		})
	})

	r.Route("/user", func(r chi.Router) {
		r.Use(requireAuth)
		r.Get("/me", authHandler.Me)
		r.Put("/update", authHandler.UpdateUser)
		r.Delete("/delete", authHandler.DeleteUser)
	})

	r.Route("/history", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", historyHandler.Create)
		r.Get("/user", historyHandler.ListMine)
		r.Get("/{history_id}", historyHandler.Get)
		r.Put("/{history_id}/add-query", historyHandler.AddQuery)
		r.Put("/{history_id}/remove-query", historyHandler.RemoveQuery)
		r.Delete("/{history_id}", historyHandler.Delete)
	})

	r.Route("/query", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/", queryHandler.Create)
		r.Get("/user/me", queryHandler.ListMine)
		r.Get("/{query_id}", queryHandler.Get)
		r.Put("/{query_id}", queryHandler.Update)
		r.Delete("/{query_id}", queryHandler.Delete)
	})

	r.Route("/forum", func(r chi.Router) {
		r.Use(requireAuth)
		r.Post("/question", forumHandler.CreateQuestion)
		r.Get("/question/all", forumHandler.ListQuestions)
		r.Get("/question/{question_id}", forumHandler.GetQuestion)
		r.Delete("/question/{question_id}", forumHandler.DeleteQuestion)
		r.Post("/answer", forumHandler.CreateAnswer)
		r.Get("/answer/question/{question_id}", forumHandler.ListAnswers)
		r.Get("/answer/{answer_id}", forumHandler.GetAnswer)
		r.Delete("/answer/{answer_id}", forumHandler.DeleteAnswer)
	})

	// ── Server ───────────────────────────────────────────────
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  5 * time.Minute,
		WriteTimeout: 5 * time.Minute,
	}

	go func() {
		log.Printf("Backend listening on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down...")
	shutCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	srv.Shutdown(shutCtx)
}
