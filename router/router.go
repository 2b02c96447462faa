package router

import (
	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/auto-service/controllers"
	"github.com/yeremiapane/auto-service/hub"
	"github.com/yeremiapane/auto-service/middlewares"
	"github.com/yeremiapane/auto-service/models"
	"github.com/yeremiapane/auto-service/services"
	"github.com/yeremiapane/auto-service/utils"
	"gorm.io/gorm"
)

// Deps is everything the router wires into controllers.
type Deps struct {
	DB            *gorm.DB
	Hub           *hub.Hub
	Revocations   utils.RevocationStore
	Payments      *services.PaymentService
	CORSOrigin    string
	SecureCookies bool

	// AuthLimiter guards login and signup; nil uses the strict default.
	AuthLimiter gin.HandlerFunc
	// GlobalLimiter is applied to every route; nil uses 50 requests per second per IP.
	GlobalLimiter gin.HandlerFunc
}

func SetupRouter(deps Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	var pusher services.Pusher
	if deps.Hub != nil {
		pusher = deps.Hub
	}

	// Services
	db := deps.DB
	shopSvc := services.NewShopService(db)
	accountSvc := services.NewAccountService(db)
	facilitySvc := services.NewFacilityService(db, shopSvc)
	catalogSvc := services.NewCatalogService(db)
	vehicleSvc := services.NewVehicleService(db)
	appointmentSvc := services.NewAppointmentService(db, pusher)
	reviewSvc := services.NewReviewService(db)
	messageSvc := services.NewMessageService(db)
	notificationSvc := services.NewNotificationService(db)
	availabilitySvc := services.NewAvailabilityService(db)
	analyticsSvc := services.NewAnalyticsService(db, shopSvc)
	paymentSvc := deps.Payments
	if paymentSvc == nil {
		paymentSvc = services.NewPaymentService(db, nil, pusher, 0)
	}
	dashboardSvc := &services.DashboardService{
		DB:            db,
		Shops:         shopSvc,
		Facilities:    facilitySvc,
		Reviews:       reviewSvc,
		Appointments:  appointmentSvc,
		Vehicles:      vehicleSvc,
		Notifications: notificationSvc,
	}

	// Controllers
	authCtrl := controllers.NewAuthController(accountSvc, deps.Revocations, deps.SecureCookies)
	dashboardCtrl := &controllers.DashboardController{
		DashboardSvc:    dashboardSvc,
		NotificationSvc: notificationSvc,
		AppointmentSvc:  appointmentSvc,
		MessageSvc:      messageSvc,
		AvailabilitySvc: availabilitySvc,
	}
	facilityCtrl := controllers.NewFacilityController(facilitySvc, catalogSvc)
	vehicleCtrl := controllers.NewVehicleController(vehicleSvc)
	appointmentCtrl := controllers.NewAppointmentController(appointmentSvc)
	reviewCtrl := controllers.NewReviewController(reviewSvc)
	adminCtrl := controllers.NewAdminController(analyticsSvc, accountSvc, shopSvc)
	paymentCtrl := controllers.NewPaymentController(paymentSvc)
	apiCtrl := &controllers.APIController{
		Facilities:    facilitySvc,
		Availability:  availabilitySvc,
		Notifications: notificationSvc,
		Appointments:  appointmentSvc,
	}

	globalLimiter := deps.GlobalLimiter
	if globalLimiter == nil {
		globalLimiter = middlewares.NewRateLimiter(50, 1).RateLimit()
	}
	authLimiter := deps.AuthLimiter
	if authLimiter == nil {
		authLimiter = middlewares.NewStrictRateLimiter()
	}

	r.Use(middlewares.SecurityHeaders(deps.SecureCookies))
	r.Use(middlewares.CORSMiddlewares(deps.CORSOrigin))
	r.Use(middlewares.LoggerMiddleware())
	r.Use(globalLimiter)

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.OptionalAuth(deps.Revocations))
	{
		public.GET("/", dashboardCtrl.Landing)
		public.GET("/logout/", authCtrl.Logout)
		public.GET("/facilities/", facilityCtrl.ListFacilities)
		public.GET("/facilities/:id/", facilityCtrl.GetFacility)
		public.GET("/service-types/", facilityCtrl.ListServiceTypes)
		public.GET("/login/", authCtrl.LoginPage)
		public.GET("/signup/", authCtrl.SignupPage)
	}

	// Rate limiter untuk login/signup
	credentials := r.Group("/")
	credentials.Use(authLimiter)
	{
		credentials.POST("/login/", authCtrl.Login)
		credentials.POST("/signup/", authCtrl.Signup)
	}

	callback := r.Group("/payments")
	callback.Use(middlewares.PaymentSecurityHeaders(), middlewares.LogPaymentRequest())
	callback.POST("/callback/", paymentCtrl.HandleCallback)

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware(deps.Revocations))

	if deps.Hub != nil {
		wsCtrl := controllers.NewWSController(deps.Hub, deps.CORSOrigin)
		auth.GET("/ws", wsCtrl.Connect)
	}

	dashboard := auth.Group("/dashboard")
	{
		dashboard.GET("/", dashboardCtrl.Dashboard)
		dashboard.GET("/notifications/", dashboardCtrl.Notifications)
		dashboard.GET("/appointments/", dashboardCtrl.Appointments)
		dashboard.GET("/messages/", dashboardCtrl.Messages)
		dashboard.POST("/messages/", dashboardCtrl.SendMessage)
		dashboard.POST("/messages/:id/read/", dashboardCtrl.MarkMessageRead)
		dashboard.POST("/availability/", middlewares.RequireRoles(models.RoleTechnician), dashboardCtrl.PublishAvailability)
	}

	vehicles := auth.Group("/vehicles")
	{
		vehicles.GET("/register/", vehicleCtrl.RegisterPage)
		vehicles.POST("/register/", vehicleCtrl.Register)
		vehicles.GET("/:id/", vehicleCtrl.GetVehicle)
	}

	appointments := auth.Group("/appointments")
	{
		appointments.GET("/create/", appointmentCtrl.BookingOptions)
		appointments.POST("/create/", appointmentCtrl.CreateAppointment)
		appointments.GET("/:id/", appointmentCtrl.GetAppointment)
		appointments.POST("/:id/cancel/", appointmentCtrl.CancelAppointment)
	}

	reviews := auth.Group("/reviews")
	{
		reviews.GET("/create/:appointment_id/", reviewCtrl.ReviewPage)
		reviews.POST("/create/:appointment_id/", reviewCtrl.CreateReview)
	}

	api := auth.Group("/api")
	{
		api.GET("/facility-schedule/:id/", apiCtrl.FacilitySchedule)
		api.GET("/technician-schedule/:id/", apiCtrl.TechnicianSchedule)
		api.POST("/mark-notification-read/:id/", apiCtrl.MarkNotificationRead)
		api.POST("/notifications/:id/dismiss/", apiCtrl.DismissNotification)
		api.POST("/appointments/:id/start/", apiCtrl.StartAppointment)
		api.POST("/appointments/:id/complete/", apiCtrl.CompleteAppointment)
	}

	// Front desk
	staff := auth.Group("/staff")
	staff.Use(middlewares.RequireRoles(middlewares.FrontDeskRoles...))
	{
		staff.PATCH("/appointments/:id/assign/", appointmentCtrl.AssignTechnician)

		payments := staff.Group("/payments")
		payments.Use(
			middlewares.PaymentSecurityHeaders(),
			middlewares.PaymentRateLimiter(),
			middlewares.LogPaymentRequest(),
		)
		payments.POST("/", paymentCtrl.RecordPayment)
	}

	// Routes untuk Admin
	admin := auth.Group("/admin")
	admin.Use(middlewares.RequireRoles(middlewares.ManagementRoles...))
	{
		admin.GET("/analytics/", adminCtrl.GetAnalytics)
		admin.POST("/analytics/recompute/", adminCtrl.RecomputeAnalytics)
		admin.GET("/analytics/export/", adminCtrl.ExportPDF)

		admin.GET("/users/", adminCtrl.ListUsers)
		admin.POST("/users/", adminCtrl.CreateUser)

		admin.GET("/facilities/manage/", facilityCtrl.ManageFacilities)
		admin.POST("/facilities/manage/", facilityCtrl.CreateFacility)
		admin.PATCH("/facilities/:id/schedule/", facilityCtrl.UpdateSchedule)
		admin.PATCH("/facilities/:id/active/", facilityCtrl.SetActive)
		admin.POST("/facilities/:id/equipment/", facilityCtrl.AddEquipment)

		admin.POST("/service-types/", facilityCtrl.CreateServiceType)
		admin.POST("/certifications/", facilityCtrl.CreateCertification)

		admin.POST("/shop/", adminCtrl.CreateShop)
		admin.DELETE("/shop/", adminCtrl.DeleteShop)
	}

	return r
}
