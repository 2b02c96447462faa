package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/yeremiapane/auto-service/config"
	"github.com/yeremiapane/auto-service/database"
	"github.com/yeremiapane/auto-service/hub"
	"github.com/yeremiapane/auto-service/router"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
)

func main() {
	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	utils.ConfigureTokens(cfg.JWTSecret, cfg.TokenTTL)

	// Initialize DB
	db, err := config.InitDB(cfg)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to migrate: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.ShopName != "" {
		shop, err := services.NewShopService(db).Provision(ctx, services.ShopInput{
			Name:    cfg.ShopName,
			Address: cfg.ShopAddress,
			Phone:   cfg.ShopPhone,
			Email:   cfg.ShopEmail,
			TaxID:   cfg.ShopTaxID,
		})
		if err != nil {
			utils.ErrorLogger.Fatalf("Failed to provision repair shop: %v", err)
		}
		utils.InfoLogger.Printf("Repair shop: %s", shop.Name)
	}

	var revocations utils.RevocationStore
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			utils.ErrorLogger.Fatalf("Failed to connect to redis: %v", err)
		}
		defer rdb.Close()
		revocations = utils.NewRedisRevocationStore(rdb)
		utils.InfoLogger.Printf("Token revocations stored in redis at %s", cfg.RedisAddr)
	} else {
		revocations = utils.NewMemoryRevocationStore()
	}

	wsHub := hub.New()

	var gateway *services.MidtransService
	if cfg.MidtransServerKey != "" {
		gateway = services.NewMidtransService(&services.MidtransConfig{
			ServerKey:    cfg.MidtransServerKey,
			ClientKey:    cfg.MidtransClientKey,
			IsProduction: cfg.MidtransProduction(),
			Bank:         cfg.MidtransBank,
		})
		if err := gateway.ValidateConfig(); err != nil {
			utils.ErrorLogger.Fatalf("Invalid Midtrans config: %v", err)
		}
	} else {
		utils.InfoLogger.Println("MIDTRANS_SERVER_KEY not set, bank transfers disabled")
	}

	paymentService := services.NewPaymentService(db, gateway, wsHub, cfg.PaymentTimeout)
	paymentService.StartTimeoutChecker(ctx, cfg.ReminderInterval)

	monitor := services.NewReminderMonitor(db, wsHub, cfg.ReminderInterval, cfg.ReminderLeadTime)
	monitor.Start()
	defer monitor.Stop()

	r := router.SetupRouter(router.Deps{
		DB:            db,
		Hub:           wsHub,
		Revocations:   revocations,
		Payments:      paymentService,
		CORSOrigin:    cfg.CORSOrigin,
		SecureCookies: cfg.SecureCookies,
	})
	if err := r.SetTrustedProxies(nil); err != nil {
		utils.ErrorLogger.Printf("Failed to set trusted proxies: %v", err)
	}

	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := r.Run(":" + cfg.Port); err != nil {
			utils.ErrorLogger.Fatal(err)
		}
	}()

	<-ctx.Done()
	utils.InfoLogger.Println("Shutting down")
}
