package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/iliyamo/food-ordering/internal/config"
	"github.com/iliyamo/food-ordering/internal/database"
	"github.com/iliyamo/food-ordering/internal/handler"
	"github.com/iliyamo/food-ordering/internal/logging"
	"github.com/iliyamo/food-ordering/internal/middleware"
	"github.com/iliyamo/food-ordering/internal/queue"
	"github.com/iliyamo/food-ordering/internal/repository"
	"github.com/iliyamo/food-ordering/internal/router"
	"github.com/iliyamo/food-ordering/internal/service"
	"github.com/iliyamo/food-ordering/internal/storage"
	"github.com/iliyamo/food-ordering/internal/validation"
)

func main() {
	cfg := config.Load()
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.WithError(err).Fatal("server stopped")
	}
}

func run(cfg config.Config, log *logrus.Logger) (err error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		return err
	}
	var closers []func() error
	closers = append(closers, db.Close)
	defer func() {
		var merr *multierror.Error
		for i := len(closers) - 1; i >= 0; i-- {
			merr = multierror.Append(merr, closers[i]())
		}
		if cerr := merr.ErrorOrNil(); cerr != nil {
			log.WithError(cerr).Warn("close resources")
		}
	}()

	if err := database.Migrate(db, log); err != nil {
		return err
	}

	rlCfg := config.LoadRateLimitConfig()
	cacheCfg := config.LoadCacheConfig()
	rdb, err := config.NewRedisClient(ctx)
	if err != nil {
		// Tokens still go through the lazily reconnecting client; the
		// limiter and cache step aside.
		log.WithError(err).Warn("redis unavailable, rate limit and cache disabled")
		rlCfg.Enabled = false
		cacheCfg.Enabled = false
	}
	closers = append(closers, rdb.Close)

	restaurants := repository.NewRestaurantRepo(db)
	menus := repository.NewMenuRepo(db, restaurants)
	histories := repository.NewHistoryRepo(db)
	orders := repository.NewOrderRepo(db, menus, histories)
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(rdb)

	images := storage.NewLocal(cfg.UploadDir, cfg.PublicBaseURL)
	v := validation.New()
	events := service.NewBufferedPublisher(service.NewAMQPPublisher(cfg.AMQPURL), 256, log)
	mailer := service.NewMailer(cfg.Mail, log)

	userSvc := service.NewUserService(users, tokens, mailer, images, v, service.AuthConfig{
		JWTSecret:      cfg.JWTSecret,
		AccessTTLMin:   cfg.AccessTTLMin,
		RefreshTTLDays: cfg.RefreshTTLDays,
		BcryptCost:     cfg.BcryptCost,
		OTPTTL:         cfg.OTPTTL,
		DefaultPicture: cfg.DefaultProfileImg,
	}, log)
	restaurantSvc := service.NewRestaurantService(restaurants, menus, images, v, log, cfg.DefaultBanner, cfg.DefaultMenuImg)
	buyerSvc := service.NewBuyerService(restaurants, menus, orders, histories, events, v, log)
	sellerSvc := service.NewSellerService(restaurants, orders, events, log)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = handler.ErrorHandler(log)
	e.Validator = v
	e.Use(middleware.RequestLogger(log))

	guards := router.NewGuards(cfg.JWTSecret, restaurants, router.Shared{
		Limit:       middleware.NewTokenBucket(rlCfg, rdb, log),
		PublicLimit: middleware.NewTokenBucket(rlCfg.Anonymous(), rdb, log),
		Cache:       middleware.NewRedisCache(cacheCfg, rdb, log),
		Purge:       middleware.PurgeRestaurant(cacheCfg, rdb, log),
	})
	buyerH := handler.NewBuyerHandler(buyerSvc)

	router.RegisterRoutes(e, handler.NewHealthHandler(db), cfg.UploadDir)
	router.RegisterUser(e, handler.NewUserHandler(userSvc), guards)
	router.RegisterRestaurant(e, handler.NewRestaurantHandler(restaurantSvc), buyerH, guards)
	router.RegisterBuyer(e, buyerH, guards)
	router.RegisterSeller(e, handler.NewSellerHandler(sellerSvc), guards)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		addr := ":" + cfg.Port
		log.WithFields(logrus.Fields{"addr": addr, "env": cfg.Env}).Info("listening")
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return queue.NewConsumer(cfg.AMQPURL, cfg.EventLogDir, log).Run(gctx)
	})
	g.Go(func() error {
		return events.Run(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		log.Info("shutting down")
		return e.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
