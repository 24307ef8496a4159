package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/danghoang/sportygear-backend/api/controllers"
	"github.com/danghoang/sportygear-backend/api/middleware"
	"github.com/danghoang/sportygear-backend/internal/blogs"
	"github.com/danghoang/sportygear-backend/internal/cart"
	"github.com/danghoang/sportygear-backend/internal/catalog"
	"github.com/danghoang/sportygear-backend/internal/gateway/momo"
	"github.com/danghoang/sportygear-backend/internal/gateway/vnpay"
	"github.com/danghoang/sportygear-backend/internal/orders"
	"github.com/danghoang/sportygear-backend/internal/payments"
	"github.com/danghoang/sportygear-backend/internal/products"
	"github.com/danghoang/sportygear-backend/internal/reviews"
	"github.com/danghoang/sportygear-backend/internal/suppliers"
	"github.com/danghoang/sportygear-backend/internal/users"
	"github.com/danghoang/sportygear-backend/internal/vouchers"
	"github.com/danghoang/sportygear-backend/internal/wishlist"
	"github.com/danghoang/sportygear-backend/pkg/auth/session"
	"github.com/danghoang/sportygear-backend/pkg/cloudinary"
	"github.com/danghoang/sportygear-backend/pkg/config"
	"github.com/danghoang/sportygear-backend/pkg/db"
	"github.com/danghoang/sportygear-backend/pkg/enums"
	"github.com/danghoang/sportygear-backend/pkg/logger"
	"github.com/danghoang/sportygear-backend/pkg/metrics"
	pkgredis "github.com/danghoang/sportygear-backend/pkg/redis"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Config   *config.Config
	Logger   *logger.Logger
	DB       *db.Client
	Redis    *pkgredis.Client
	Sessions *session.Manager
	Metrics  *metrics.HTTPMetrics
	Gatherer prometheus.Gatherer

	Users     users.Service
	Catalog   catalog.Service
	Suppliers suppliers.Service
	Products  products.Service
	Vouchers  vouchers.Service
	Cart      cart.Service
	Wishlist  wishlist.Service
	Orders    orders.Service
	Reviews   reviews.Service
	Payments  payments.Service
	Blogs     blogs.Service

	MoMo  *momo.Client
	VNPay *vnpay.Client
	Media *cloudinary.Client
}

// New assembles the full HTTP surface: public reads and payment callbacks,
// the authenticated storefront, and the admin mirror.
func New(deps Deps) http.Handler {
	logg := deps.Logger

	r := chi.NewRouter()
	r.Use(middleware.Recoverer(logg))
	r.Use(middleware.RequestID(logg))
	r.Use(middleware.Logging(logg))
	r.Use(middleware.Metrics(deps.Metrics))
	r.Use(middleware.CORS())

	r.Get("/health/live", controllers.HealthLive())
	r.Get("/health/ready", controllers.HealthReady(deps.DB, deps.Redis, logg))
	if deps.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{}))
	}

	authMW := middleware.Auth(deps.Config.JWT, deps.Sessions, logg)
	adminMW := middleware.RequireRole(string(enums.UserRoleAdmin), logg)
	idempotencyMW := middleware.Idempotency(deps.Redis, logg)

	loginPolicy := middleware.NewAuthRateLimitPolicy("login",
		deps.Config.AuthRateLimit.LoginWindow,
		deps.Config.AuthRateLimit.LoginIPLimit,
		deps.Config.AuthRateLimit.LoginEmailLimit)
	registerPolicy := middleware.NewAuthRateLimitPolicy("register",
		deps.Config.AuthRateLimit.RegisterWindow,
		deps.Config.AuthRateLimit.RegisterIPLimit,
		deps.Config.AuthRateLimit.RegisterEmailLimit)

	r.Route("/api", func(api chi.Router) {
		// public auth surface
		api.Group(func(pub chi.Router) {
			pub.With(middleware.AuthRateLimit(registerPolicy, deps.Redis, logg), idempotencyMW).
				Post("/auth/register", controllers.Register(deps.Users, logg))
			pub.With(middleware.AuthRateLimit(loginPolicy, deps.Redis, logg)).
				Post("/auth/login", controllers.Login(deps.Users, logg))
		})

		// public catalog reads
		api.Get("/products", controllers.ListProducts(deps.Products, logg))
		api.Get("/products/{productID}", controllers.GetProduct(deps.Products, logg))
		api.Get("/products/{productID}/reviews", controllers.ListProductReviews(deps.Reviews, logg))
		api.Get("/categories", controllers.ListCategories(deps.Catalog, logg))
		api.Get("/categories/{categoryID}", controllers.GetCategory(deps.Catalog, logg))
		api.Get("/sports", controllers.ListSports(deps.Catalog, logg))
		api.Get("/tournaments", controllers.ListTournaments(deps.Catalog, logg))
		api.Get("/teams", controllers.ListTeams(deps.Catalog, logg))
		api.Get("/suppliers", controllers.ListSuppliers(deps.Suppliers, logg))
		api.Get("/suppliers/{supplierID}", controllers.GetSupplier(deps.Suppliers, logg))
		api.Get("/vouchers/{code}", controllers.GetVoucherByCode(deps.Vouchers, logg))
		api.Get("/blogs", controllers.ListBlogs(deps.Blogs, logg))
		api.Get("/blogs/{slug}", controllers.GetBlog(deps.Blogs, logg))
		api.Get("/banners", controllers.ListBanners(deps.Blogs, logg))

		// payment callbacks authenticate themselves by signature
		api.Post("/payment/momo/ipn", controllers.MoMoIPN(deps.Payments, deps.MoMo, logg))
		api.Get("/payment/vnpay/return", controllers.VNPayReturn(deps.Payments, deps.VNPay, logg))

		// authenticated storefront
		api.Group(func(auth chi.Router) {
			auth.Use(authMW)
			auth.Use(idempotencyMW)

			auth.Post("/auth/refresh", controllers.Refresh(deps.Users, logg))
			auth.Post("/auth/logout", controllers.Logout(deps.Users, logg))
			auth.Get("/auth/profile", controllers.Profile(deps.Users, logg))
			auth.Put("/auth/profile", controllers.UpdateProfile(deps.Users, logg))

			auth.Get("/cart", controllers.GetCart(deps.Cart, logg))
			auth.Post("/cart/items", controllers.AddCartItem(deps.Cart, logg))
			auth.Put("/cart/items/{variantID}", controllers.SetCartItemQuantity(deps.Cart, logg))
			auth.Delete("/cart/items/{variantID}", controllers.RemoveCartItem(deps.Cart, logg))
			auth.Delete("/cart", controllers.ClearCart(deps.Cart, logg))
			auth.Get("/cart/quote", controllers.QuoteCart(deps.Cart, logg))

			auth.Get("/wishlist", controllers.GetWishlist(deps.Wishlist, logg))
			auth.Post("/wishlist/items", controllers.AddWishlistItem(deps.Wishlist, logg))
			auth.Delete("/wishlist/items/{variantID}", controllers.RemoveWishlistItem(deps.Wishlist, logg))

			auth.Post("/order", controllers.CreateOrder(deps.Orders, logg))
			auth.Get("/order/{orderID}", controllers.GetOrder(deps.Orders, logg))
			auth.Post("/order/{orderID}/cancel", controllers.CancelOrder(deps.Orders, logg))
			auth.Get("/orders/user/{userID}", controllers.ListUserOrders(deps.Orders, logg))

			auth.Post("/payment/momo", controllers.InitiateMoMoPayment(deps.Payments, logg))
			auth.Post("/payment/vnpay", controllers.InitiateVNPayPayment(deps.Payments, logg))
			auth.Get("/payment/{orderID}", controllers.GetPayment(deps.Payments, logg))

			auth.Post("/review", controllers.CreateReview(deps.Reviews, logg))
			auth.Get("/review/check", controllers.CheckReview(deps.Reviews, logg))
		})

		// admin mirror
		api.Route("/admin", func(admin chi.Router) {
			admin.Use(authMW)
			admin.Use(adminMW)

			admin.Post("/categories", controllers.CreateCategory(deps.Catalog, logg))
			admin.Put("/categories/{categoryID}", controllers.UpdateCategory(deps.Catalog, logg))
			admin.Delete("/categories/{categoryID}", controllers.DeleteCategory(deps.Catalog, logg))
			admin.Post("/sports", controllers.CreateSport(deps.Catalog, logg))
			admin.Put("/sports/{sportID}", controllers.UpdateSport(deps.Catalog, logg))
			admin.Delete("/sports/{sportID}", controllers.DeleteSport(deps.Catalog, logg))
			admin.Post("/tournaments", controllers.CreateTournament(deps.Catalog, logg))
			admin.Put("/tournaments/{tournamentID}", controllers.UpdateTournament(deps.Catalog, logg))
			admin.Delete("/tournaments/{tournamentID}", controllers.DeleteTournament(deps.Catalog, logg))
			admin.Post("/teams", controllers.CreateTeam(deps.Catalog, logg))
			admin.Put("/teams/{teamID}", controllers.UpdateTeam(deps.Catalog, logg))
			admin.Delete("/teams/{teamID}", controllers.DeleteTeam(deps.Catalog, logg))

			admin.Post("/suppliers", controllers.CreateSupplier(deps.Suppliers, logg))
			admin.Put("/suppliers/{supplierID}", controllers.UpdateSupplier(deps.Suppliers, logg))
			admin.Delete("/suppliers/{supplierID}", controllers.DeleteSupplier(deps.Suppliers, logg))

			admin.Post("/products", controllers.CreateProduct(deps.Products, logg))
			admin.Put("/products/{productID}", controllers.UpdateProduct(deps.Products, logg))
			admin.Delete("/products/{productID}", controllers.DeleteProduct(deps.Products, logg))
			admin.Post("/products/{productID}/variants", controllers.AddVariant(deps.Products, logg))
			admin.Delete("/variants/{variantID}", controllers.RemoveVariant(deps.Products, logg))
			admin.Post("/variants/{variantID}/restock", controllers.RestockVariant(deps.Products, logg))
			admin.Post("/products/{productID}/image", controllers.UploadProductImage(deps.Media, deps.Products, logg))
			admin.Delete("/products/{productID}/image", controllers.DeleteProductImage(deps.Media, deps.Products, logg))

			admin.Get("/vouchers", controllers.ListVouchers(deps.Vouchers, logg))
			admin.Post("/vouchers", controllers.CreateVoucher(deps.Vouchers, logg))
			admin.Put("/vouchers/{voucherID}", controllers.UpdateVoucher(deps.Vouchers, logg))
			admin.Delete("/vouchers/{voucherID}", controllers.DeleteVoucher(deps.Vouchers, logg))

			admin.Get("/orders", controllers.ListOrders(deps.Orders, logg))
			admin.Put("/orders/{orderID}/status", controllers.UpdateOrderStatus(deps.Orders, logg))

			admin.Get("/blogs", controllers.ListAllBlogs(deps.Blogs, logg))
			admin.Post("/blogs", controllers.CreateBlog(deps.Blogs, logg))
			admin.Put("/blogs/{blogID}", controllers.UpdateBlog(deps.Blogs, logg))
			admin.Delete("/blogs/{blogID}", controllers.DeleteBlog(deps.Blogs, logg))
			admin.Get("/banners", controllers.ListAllBanners(deps.Blogs, logg))
			admin.Post("/banners", controllers.CreateBanner(deps.Blogs, logg))
			admin.Put("/banners/{bannerID}", controllers.UpdateBanner(deps.Blogs, logg))
			admin.Delete("/banners/{bannerID}", controllers.DeleteBanner(deps.Blogs, logg))
		})
	})

	return r
}
