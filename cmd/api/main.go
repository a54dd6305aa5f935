package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/DoughlasMuthoni/linen-store-sub000/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/handler"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/infra/db"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/infra/events"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/infra/mail"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/infra/notify"
	infraRepo "github.com/DoughlasMuthoni/linen-store-sub000/internal/infra/repository"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/infra/seed"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/observability"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/server"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase"
	auth "github.com/DoughlasMuthoni/linen-store-sub000/internal/usecase/auth_usecase"
	"github.com/DoughlasMuthoni/linen-store-sub000/internal/validator"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// .envは任意。本番は環境変数を直接設定する
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		panic(err)
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	gormDB, err := db.Connect(cfg)
	if err != nil {
		return err
	}
	if err := db.Migrate(gormDB); err != nil {
		return err
	}

	// repository（gorm）
	userRepo := infraRepo.NewUserGormRepository(gormDB)
	addressRepo := infraRepo.NewAddressGormRepository(gormDB)
	auditRepo := infraRepo.NewAuditLogGormRepository(gormDB)
	cartRepo := infraRepo.NewCartGormRepository(gormDB)
	lineRepo := infraRepo.NewCartLineGormRepository(gormDB)
	productRepo := infraRepo.NewProductGormRepository(gormDB)
	inventoryRepo := infraRepo.NewInventoryGormRepository(gormDB)
	notificationRepo := infraRepo.NewNotificationGormRepository(gormDB)
	zoneRepo := infraRepo.NewShippingZoneGormRepository(gormDB)
	taxRepo := infraRepo.NewTaxSettingsGormRepository(gormDB)
	txm := infraRepo.NewTxManagerGorm(gormDB)

	if cfg.Shipping.ZonesFile != "" {
		f, err := seed.LoadFile(cfg.Shipping.ZonesFile)
		if err != nil {
			return err
		}
		if err := seed.Apply(ctx, f, zoneRepo, taxRepo, logger); err != nil {
			return err
		}
	}

	// 注文後の外部への通知
	sink := notify.NewSink(notificationRepo, cfg.Currency)
	renderer := mail.NewRenderer(cfg.StoreName, cfg.Currency)

	var mailer usecase.Mailer
	if cfg.SMTP.Host == "" {
		logger.Info("SMTP_HOST not set, confirmation mails are only logged")
		mailer = mail.NewLogMailer(renderer, logger)
	} else {
		mailer = mail.NewSMTPMailer(cfg.SMTP, renderer, logger)
	}

	var publisher usecase.OrderEventPublisher = events.NoopPublisher{}
	if cfg.RabbitMQURL != "" {
		p, err := events.NewRabbitMQPublisher(cfg.RabbitMQURL, cfg.OrderExchange, logger)
		if err != nil {
			return err
		}
		defer p.Close()
		publisher = p
	}

	// usecases
	shipping := usecase.NewShippingResolver(zoneRepo, cfg.Shipping, cfg.Currency, logger)
	tax := usecase.NewTaxCalculator(taxRepo)
	cartUC := usecase.NewCartUsecase(cartRepo, lineRepo, productRepo)
	orderUC := usecase.NewOrderUsecase(txm)
	checkoutUC := usecase.NewCheckoutUsecase(usecase.CheckoutDeps{
		Tx:            txm,
		Addresses:     addressRepo,
		Users:         userRepo,
		Shipping:      shipping,
		Tax:           tax,
		Validator:     validator.NewCheckoutValidator(),
		Notifications: sink,
		Mailer:        mailer,
		Events:        publisher,
		Logger:        logger,
		PriceEpsilon:  cfg.PriceEpsilon,
		StoreURL:      cfg.StoreURL,
		Currency:      cfg.Currency,
	})
	addressUC := usecase.NewAddressUsecase(addressRepo)
	productUC := usecase.NewProductUsecase(productRepo, inventoryRepo, auditRepo)
	adminOrderUC := usecase.NewAdminOrderUsecase(txm, auditRepo, sink, logger)
	notificationUC := usecase.NewNotificationUsecase(notificationRepo)

	// auth: 登録/ログインはbcrypt、アクセストークンはHS256
	issuer, err := auth.NewJWTIssuer(cfg.JWTSecret, cfg.AccessTokenTTL)
	if err != nil {
		return err
	}
	clock := auth.SystemClock{}
	passwords := auth.NewBcrypt(12)
	registerUC := auth.NewRegisterUserUsecase(userRepo, passwords, clock)
	loginUC := auth.NewLoginUsecase(userRepo, passwords, issuer, clock)

	e := server.New(cfg, logger, userRepo, server.Handlers{
		Auth:         handler.NewAuthHandler(registerUC, loginUC, validator.NewAuthValidator(userRepo), userRepo),
		Cart:         handler.NewCartHandler(cartUC),
		Checkout:     handler.NewCheckoutHandler(checkoutUC, cartUC, orderUC, logger),
		Shipping:     handler.NewShippingHandler(shipping),
		Orders:       handler.NewOrderHandler(orderUC, notificationUC),
		Addresses:    handler.NewAddressHandler(addressUC),
		Products:     handler.NewProductHandler(productUC),
		AdminOrders:  handler.NewAdminOrderHandler(adminOrderUC),
		AdminProduct: handler.NewAdminProductHandler(productUC, tax),
	})

	return server.Start(ctx, e, ":"+cfg.Port, logger)
}
