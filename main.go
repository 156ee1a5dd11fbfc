// File: creatorhub/main.go
package main

import (
	"context"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"creatorhub/config"
	"creatorhub/cron"
	"creatorhub/database"
	communityRepo "creatorhub/database/repository/community"
	contentRepo "creatorhub/database/repository/content"
	followRepo "creatorhub/database/repository/follow"
	subscriptionRepo "creatorhub/database/repository/subscription"
	userRepoPkg "creatorhub/database/repository/user"
	"creatorhub/handlers"
	"creatorhub/middleware"
	"creatorhub/routes"
	"creatorhub/services/content"
	"creatorhub/services/feed"
	feedUtils "creatorhub/services/feed/utils"
	"creatorhub/services/notification"
	"creatorhub/services/payment"
	"creatorhub/services/realtime"
	"creatorhub/services/social"
	"creatorhub/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"github.com/stripe/stripe-go/v76"
	"go.uber.org/zap"
)

// sessionTiers grants a tier in the store and re-gates the viewer's open feeds.
type sessionTiers struct {
	users    userRepoPkg.UserRepository
	sessions *feed.SessionManager
}

func (t sessionTiers) UpdateTier(ctx context.Context, userID, tier string) error {
	if err := t.users.UpdateTier(ctx, userID, tier); err != nil {
		return err
	}
	t.sessions.UpdateViewerTier(userID, tier)
	return nil
}

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	database.InitDB()
	utils.InitCache()
	stripe.Key = config.AppConfig.StripeKey
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	storageSvc, err := utils.NewStorageService(ctx, logger)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize storage service: %v", err)
	}
	if closer, ok := storageSvc.(io.Closer); ok {
		defer closer.Close()
	}

	// repositories.
	db := database.DB()
	contentStore := contentRepo.NewMongoContentRepo(db)
	followStore := followRepo.NewMongoFollowRepo(db)
	userRepo := userRepoPkg.NewMongoUserRepo(db)
	subscriptionStore := subscriptionRepo.NewMongoSubscriptionRepo(db)
	communityStore := communityRepo.NewMongoCommunityRepo(database.MongoClient, db)

	// realtime: one change stream shared by every feed session.
	hub := realtime.NewHub(logger.Named("realtime"))
	watcher := contentRepo.NewChangeStreamWatcher(contentStore.Collection(), logger.Named("changestream"))
	go hub.Run(ctx, watcher.Watch(ctx))

	prefetch := feedUtils.NewRedisPrefetchCache(utils.GetCacheClient(), config.AppConfig.FeedPrefetchTTL, logger)
	sessions := feed.NewSessionManager(ctx, feed.SessionDeps{
		Source:   contentStore,
		Follows:  followStore,
		Realtime: hub,
		Prefetch: func(viewerID string) feed.PrefetchCache { return prefetch.ForViewer(viewerID) },
		Logger:   logger.Named("feed"),
	}, feed.SessionConfig{
		PageSize:         config.AppConfig.FeedPageSize,
		SuggestionStride: config.AppConfig.FeedSuggestionStride,
		IdleTimeout:      config.AppConfig.FeedSessionIdle,
		Tiers:            feed.NewTierPolicy(config.AppConfig.TierOrder),
	})
	go feed.StartSessionSweeper(ctx, sessions, time.Minute)
	utils.StartHealthMonitor(ctx, utils.GetCacheClient(), database.MongoClient)

	// background jobs.
	queue := asynq.NewClient(utils.QueueRedisOpt())
	defer queue.Close()

	var worker *asynq.Server
	if fcm, err := utils.FirebaseInit(ctx); err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	} else if notifSvc, err := notification.NewDefaultNotificationService(userRepo, fcm, logger.Named("notification")); err != nil {
		logger.Warn("main: push notifications disabled", zap.Error(err))
	} else {
		worker = cron.InitSubscriptionWorker(notifSvc, logger.Named("worker"))
	}

	// services.
	contentSvc := content.NewContentService(contentStore, userRepo, sessions, logger.Named("content"))
	socialSvc := social.NewSocialService(followStore, communityStore, logger.Named("social"))
	paymentSvc := payment.NewPaymentService(payment.Config{
		WebhookSecret: config.AppConfig.StripeWebhookSecret,
		SuccessURL:    config.AppConfig.StripeSuccessURL,
		CancelURL:     config.AppConfig.StripeCancelURL,
	}, payment.NewStripeProcessor(), sessionTiers{users: userRepo, sessions: sessions}, subscriptionStore, queue, logger.Named("payment"))

	feedHandler := handlers.NewFeedHandler(sessions, userRepo)
	contentHandler := handlers.NewContentHandler(contentSvc)
	storageHandler := handlers.NewStorageHandler(storageSvc)
	socialHandler := handlers.NewSocialHandler(socialSvc)
	paymentHandler := handlers.NewPaymentHandler(paymentSvc)
	healthHandler := &handlers.HealthHandler{Sessions: sessions, Realtime: hub}

	handlerBundle := &handlers.HandlerBundle{
		Signer: utils.NewTokenSigner(config.AppConfig.JWTSecret),

		CreateFeedSession: feedHandler.CreateSession,
		GetFeedSession:    feedHandler.GetSession,
		SetFeedTab:        feedHandler.SetTab,
		LoadMoreFeed:      feedHandler.LoadMore,
		RetryFeed:         feedHandler.Retry,
		RefreshFeed:       feedHandler.Refresh,
		StreamFeed:        feedHandler.Stream,
		CloseFeedSession:  feedHandler.CloseSession,

		CreateContent: contentHandler.CreateContent,
		UploadFile:    storageHandler.UploadFileHandler,
		DeleteFile:    storageHandler.DeleteFileHandler,

		Follow:         socialHandler.Follow,
		Unfollow:       socialHandler.Unfollow,
		JoinCommunity:  socialHandler.JoinCommunity,
		LeaveCommunity: socialHandler.LeaveCommunity,

		CreateCheckout: paymentHandler.CreateCheckout,
		StripeWebhook:  paymentHandler.Webhook,

		Health: healthHandler.Health,
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(handlers.RequestLogger(logger))
	router.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))
	routes.RegisterRoutes(router, handlerBundle)

	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Sugar().Info("main: server is shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Sugar().Errorf("main: server forced to shutdown: %v", err)
	}
	sessions.CloseAll()
	if worker != nil {
		worker.Shutdown()
	}
	if err := database.MongoClient.Disconnect(shutdownCtx); err != nil {
		logger.Warn("main: mongo disconnect failed", zap.Error(err))
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
