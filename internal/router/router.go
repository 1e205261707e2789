package router

import (
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"priceoye_shop_v1/internal/api/dto"
	"priceoye_shop_v1/internal/controller"
	"priceoye_shop_v1/internal/middleware"
	"priceoye_shop_v1/internal/repository"
	"priceoye_shop_v1/internal/service"

	_ "priceoye_shop_v1/docs"
)

// Registrar 能把自己挂到路由组上的资源控制器
type Registrar interface {
	Register(group *gin.RouterGroup, path string)
}

// Controllers 所有控制器
type Controllers struct {
	Users        Registrar
	Brands       Registrar
	Categories   Registrar
	Products     Registrar
	Orders       Registrar
	OrderDetails Registrar
	Carts        Registrar
	Payments     Registrar
	Invoices     Registrar

	Auth   *controller.AuthController
	View   *controller.ViewController
	Tokens middleware.TokenResolver
}

// SetupRouter 创建引擎并注册所有路由
func SetupRouter(ctrls *Controllers, log zerolog.Logger) *gin.Engine {
	middleware.RegisterValidators()

	r := gin.New()
	r.Use(middleware.RequestID(log), middleware.RequestLogger(), middleware.Recovery())

	InitRoutes(r, ctrls)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctrls *Controllers) {
	// 1. Swagger 文档路由
	// 访问 http://localhost:8080/swagger/index.html 即可查看
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// 2. 资源 API，每个集合都是 list / create / retrieve / replace / delete
	api := r.Group("/api")
	{
		ctrls.Users.Register(api, "/users")
		ctrls.Brands.Register(api, "/brands")
		ctrls.Categories.Register(api, "/categories")
		ctrls.Products.Register(api, "/products")
		ctrls.Orders.Register(api, "/orders")
		ctrls.OrderDetails.Register(api, "/order-details")
		ctrls.Carts.Register(api, "/carts")
		ctrls.Payments.Register(api, "/payments")
		ctrls.Invoices.Register(api, "/invoices")
	}

	// 3. 账号 / 令牌，需要登录的接口接受 JWT 或不透明令牌
	userAuth := middleware.UserAuth(ctrls.Tokens)
	auth := r.Group("/auth")
	{
		users := auth.Group("/users")
		{
			users.POST("", ctrls.Auth.Register)
			users.POST("/activation", ctrls.Auth.Activation)
			users.POST("/resend_activation", ctrls.Auth.ResendActivation)
			users.POST("/reset_password", ctrls.Auth.ResetPassword)
			users.POST("/reset_password_confirm", ctrls.Auth.ResetPasswordConfirm)

			// 需要登录
			users.GET("/me", userAuth, ctrls.Auth.Me)
			users.POST("/set_password", userAuth, ctrls.Auth.SetPassword)
		}

		token := auth.Group("/token")
		{
			token.POST("/login", ctrls.Auth.TokenLogin)
			token.POST("/logout", userAuth, ctrls.Auth.TokenLogout)
		}

		jwt := auth.Group("/jwt")
		{
			jwt.POST("/create", ctrls.Auth.CreateToken)
			jwt.POST("/refresh", ctrls.Auth.RefreshToken)
			jwt.POST("/verify", ctrls.Auth.VerifyToken)
		}

		// 社交登录
		auth.POST("/o/google", ctrls.Auth.GoogleLogin)
	}

	// 4. 浏览器页面
	r.GET("/activate/:uid/:token", ctrls.View.Activate)
	pages := r.Group("/api-auth")
	{
		pages.GET("/login", ctrls.View.LoginPage)
		pages.POST("/login", ctrls.View.Login)
		pages.GET("/logout", ctrls.View.Logout)
	}
}

// NewControllers 组装资源控制器，auth / view / tokens 由调用方创建
func NewControllers(
	db *gorm.DB,
	users repository.UserRepository,
	auth *controller.AuthController,
	view *controller.ViewController,
	tokens middleware.TokenResolver,
) *Controllers {
	return &Controllers{
		Users:        controller.NewCrudController[dto.UserRequest, dto.UserResponse](service.NewUserService(users)),
		Brands:       controller.NewCrudController[dto.BrandRequest, dto.BrandResponse](service.NewBrandService(db)),
		Categories:   controller.NewCrudController[dto.CategoryRequest, dto.CategoryResponse](service.NewCategoryService(db)),
		Products:     controller.NewCrudController[dto.ProductRequest, dto.ProductResponse](service.NewProductService(db)),
		Orders:       controller.NewCrudController[dto.OrderRequest, dto.OrderResponse](service.NewOrderService(db)),
		OrderDetails: controller.NewCrudController[dto.OrderDetailRequest, dto.OrderDetailResponse](service.NewOrderDetailService(db)),
		Carts:        controller.NewCrudController[dto.CartRequest, dto.CartResponse](service.NewCartService(db)),
		Payments:     controller.NewCrudController[dto.PaymentRequest, dto.PaymentResponse](service.NewPaymentService(db)),
		Invoices:     controller.NewCrudController[dto.InvoiceRequest, dto.InvoiceResponse](service.NewInvoiceService(db)),
		Auth:         auth,
		View:         view,
		Tokens:       tokens,
	}
}
