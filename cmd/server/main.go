package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/AnshRaj112/hostel-survival-kit/internal/auth"
	"github.com/AnshRaj112/hostel-survival-kit/internal/config"
	"github.com/AnshRaj112/hostel-survival-kit/internal/database"
	"github.com/AnshRaj112/hostel-survival-kit/internal/extractor"
	"github.com/AnshRaj112/hostel-survival-kit/internal/handlers"
	"github.com/AnshRaj112/hostel-survival-kit/internal/logging"
	"github.com/AnshRaj112/hostel-survival-kit/internal/metrics"
	"github.com/AnshRaj112/hostel-survival-kit/internal/routes"
	"github.com/AnshRaj112/hostel-survival-kit/internal/services"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store/memstore"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store/mongostore"
	"github.com/AnshRaj112/hostel-survival-kit/internal/store/pgstore"
)

// backends holds whatever connections the chosen store driver opened.
type backends struct {
	docs  store.Store
	users store.UserStore
	redis *redis.Client

	mongo *mongo.Client
	pg    *sql.DB
}

func (b *backends) close(log *logrus.Logger) {
	if b.mongo != nil {
		if err := database.DisconnectMongo(b.mongo); err != nil {
			log.WithError(err).Warn("MongoDB disconnect failed")
		}
	}
	if err := database.DisconnectPostgres(b.pg); err != nil {
		log.WithError(err).Warn("PostgreSQL disconnect failed")
	}
	if err := database.DisconnectRedis(b.redis); err != nil {
		log.WithError(err).Warn("Redis disconnect failed")
	}
}

func connect(cfg *config.Config, log *logrus.Logger) (*backends, error) {
	if cfg.StoreDriver == config.StoreMemory {
		log.Warn("STORE_DRIVER=memory: data lives in this process only")
		st := memstore.New()
		return &backends{docs: st, users: st}, nil
	}

	b := &backends{}
	client, db, err := database.ConnectMongo(cfg.MongoURI, log)
	if err != nil {
		return nil, err
	}
	b.mongo = client

	docs := mongostore.New(db)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	// uniq_user_date_meal is what keeps ratings at one per user and meal.
	if err := docs.EnsureIndexes(ctx); err != nil {
		b.close(log)
		return nil, err
	}
	log.Info("MongoDB indexes ensured")
	b.docs = docs

	if b.pg, err = database.ConnectPostgres(cfg.PostgresURI, log); err != nil {
		b.close(log)
		return nil, err
	}
	b.users = pgstore.NewUsers(b.pg)

	if cfg.RedisURI != "" {
		if b.redis, err = database.ConnectRedis(cfg.RedisURI, log); err != nil {
			b.close(log)
			return nil, err
		}
	} else {
		log.Warn("REDIS_URI unset or disabled: profile cache, write limits and cross-instance feed disabled")
	}
	return b, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Info("No .env file found")
	}

	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err := cfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid configuration")
	}
	loc, _ := cfg.Location()

	b, err := connect(cfg, log)
	if err != nil {
		log.WithError(err).Fatal("failed to connect backends")
	}
	defer b.close(log)

	m := metrics.New()
	hub := services.NewHub(b.redis, log, func(n int) { m.FeedClients.Set(float64(n)) })

	opts := services.Options{
		Store:           b.docs,
		Users:           b.users,
		Cache:           services.NewCacheService(b.redis),
		Feed:            hub,
		Metrics:         m,
		Log:             log,
		Location:        loc,
		ProfileCacheTTL: cfg.ProfileCacheTTL,
	}
	if cfg.OpenAIConfigured() {
		opts.Extractor = extractor.NewOpenAI(cfg.OpenAIKey, cfg.OpenAIModel, "")
		log.WithField("model", cfg.OpenAIModel).Info("Calendar extraction enabled")
	} else {
		log.Warn("OPENAI_API_KEY not set: calendar parsing unavailable")
	}
	if cfg.CloudinaryConfigured() {
		cld, err := services.NewCloudinaryService(cfg.CloudinaryName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		if err != nil {
			log.WithError(err).Warn("Cloudinary unavailable: calendar uploads disabled")
		} else {
			opts.Uploader = cld
			log.Info("Cloudinary service initialized")
		}
	} else {
		log.Warn("Cloudinary credentials not found: calendar uploads disabled")
	}
	svc := services.New(opts)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub.Start(ctx)

	var locker services.Locker
	if b.redis != nil {
		host, _ := os.Hostname()
		locker = services.NewRedisLocker(b.redis, host+"-"+uuid.NewString())
	} else {
		locker = services.NewLocalLocker(time.Now)
	}
	services.NewScheduler(svc, locker, cfg.SweepInterval).Start(ctx)
	log.WithField("interval", cfg.SweepInterval).Info("Vent sweep and weekly mess summary jobs started")

	router := routes.New(routes.Deps{
		Handler:         handlers.New(svc, hub, log, cfg.AllowedOrigins),
		Verifier:        auth.NewJWTVerifier(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
		Roles:           svc.Users,
		Metrics:         m,
		Log:             log,
		Redis:           b.redis,
		AllowedOrigins:  cfg.AllowedOrigins,
		Production:      cfg.IsProduction(),
		WriteRateLimit:  cfg.WriteRateLimit,
		WriteRateWindow: cfg.WriteRateWindow,
	})
	if cfg.IsProduction() {
		log.Info("Production security enabled (security headers, per-IP rate limiting)")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{"port": cfg.Port, "store": cfg.StoreDriver}).Info("Hostel Survival Kit backend running")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("graceful shutdown failed")
	}
}
