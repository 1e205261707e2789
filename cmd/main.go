package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"priceoye_shop_v1/internal/config"
	"priceoye_shop_v1/internal/controller"
	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/model"
	"priceoye_shop_v1/internal/repository"
	"priceoye_shop_v1/internal/router"
	"priceoye_shop_v1/internal/service"
	"priceoye_shop_v1/internal/task"
	"priceoye_shop_v1/pkg/database"
	"priceoye_shop_v1/pkg/logger"
)

// @title PriceOye 商城 API
// @version 1.0
// @description 品牌、分类、商品、订单、购物车、支付、发票的增删改查，以及账号激活、JWT 与令牌登录
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	configPath := flag.String("config", "", "配置文件路径，默认在 . ./config /etc/priceoye 中查找 config.yaml")
	flag.Parse()

	log := logger.Setup("info", "console")
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("加载配置失败")
	}

	log = logger.Setup(cfg.Log.Level, cfg.Log.Format)
	gin.SetMode(cfg.Server.Mode)

	// 1. 初始化数据库
	db := initDatabase(cfg, log)
	defer func() {
		if err := database.Close(db); err != nil {
			log.Warn().Err(err).Msg("关闭数据库失败")
		}
	}()

	// 2. 初始化依赖
	deps := initDependencies(cfg, db, log)

	// 3. 启动定时任务
	maintenance := initTasks(cfg, deps, log)

	// 4. 初始化路由
	r := router.SetupRouter(deps.Controllers, log)

	// 5. 启动服务
	err = startServer(cfg.Server, r, log)
	<-maintenance.Stop().Done()
	if err != nil {
		log.Fatal().Err(err).Msg("服务异常退出")
	}
}

// ==================== 依赖容器 ====================

// Dependencies 依赖容器
type Dependencies struct {
	DB          *gorm.DB
	Users       repository.UserRepository
	Limiter     *middleware.ActionLimiter
	Auth        *service.AuthService
	Controllers *router.Controllers
}

// ==================== 初始化函数 ====================

// initDatabase 连接数据库并建表
func initDatabase(cfg *config.Config, log zerolog.Logger) *gorm.DB {
	db, err := database.Open(database.Options{
		Driver:          cfg.Database.Driver,
		DSN:             cfg.Database.DSN,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		Logger:          logger.NewGormLogger(log, cfg.Database.LogLevel),
	})
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("数据库连接失败")
	}
	if err := database.Migrate(db, model.AllModels()...); err != nil {
		log.Fatal().Err(err).Msg("数据库迁移失败")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("数据库已就绪")
	return db
}

// initDependencies 初始化所有依赖
func initDependencies(cfg *config.Config, db *gorm.DB, log zerolog.Logger) *Dependencies {
	middleware.SetJWTConfig(&middleware.JWTConfig{
		SecretKey:       cfg.JWT.Secret,
		AccessTokenTTL:  cfg.JWT.AccessTTL,
		RefreshTokenTTL: cfg.JWT.RefreshTTL,
		Issuer:          cfg.JWT.Issuer,
	})

	// -------- Repo 层 --------
	users := repository.NewUserRepository(db)
	limiter := middleware.NewActionLimiter()

	// -------- 账号服务 --------
	authSvc := service.NewAuthService(
		users,
		repository.NewAuthTokenRepository(db),
		service.NewActionTokenService(cfg.JWT.Secret, cfg.Auth.ActivationTTL),
		service.NewMailer(cfg.Mail, log),
		service.NewGoogleVerifier(cfg.Google),
		limiter,
		service.AuthOptions{
			ActivationURL:       cfg.Auth.ActivationURL,
			PasswordResetURL:    cfg.Auth.PasswordResetURL,
			SendActivationEmail: cfg.Auth.SendActivationEmail,
			ResendInterval:      cfg.Auth.ResendInterval,
			TokenTTL:            cfg.Auth.ActivationTTL,
		},
	)

	// -------- Controller 层 --------
	view := controller.NewViewController(
		authSvc,
		controller.NewSessionStore(cfg.Session.Secret),
		cfg.Session.Name,
		cfg.Auth.LoginRedirect,
	)
	controllers := router.NewControllers(db, users, controller.NewAuthController(authSvc), view, authSvc)

	return &Dependencies{
		DB:          db,
		Users:       users,
		Limiter:     limiter,
		Auth:        authSvc,
		Controllers: controllers,
	}
}

// ==================== 定时任务 ====================

// initTasks 启动后台维护任务
func initTasks(cfg *config.Config, deps *Dependencies, log zerolog.Logger) *task.MaintenanceTask {
	maintenance := task.NewMaintenanceTask(deps.Users, deps.Limiter, task.MaintenanceConfig{
		LimiterMaxAge:      cfg.Auth.ResendInterval,
		PurgeInactiveAfter: cfg.Auth.PurgeInactiveAfter,
	}, log)
	if err := maintenance.Start(); err != nil {
		log.Fatal().Err(err).Msg("无法启动维护任务")
	}
	return maintenance
}

// ==================== 服务启动 ====================

// startServer 启动服务，收到退出信号后优雅关闭
func startServer(cfg config.ServerConfig, r *gin.Engine, log zerolog.Logger) error {
	srv := &http.Server{
		Addr:    cfg.Addr(),
		Handler: r,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", srv.Addr).Msg("服务启动")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("正在关闭服务...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info().Msg("服务已退出")
	return nil
}
