package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/tunedhq/tuned-core/internal/handler"
	"github.com/tunedhq/tuned-core/internal/middleware"
	"github.com/tunedhq/tuned-core/internal/repository"
	"github.com/tunedhq/tuned-core/internal/service"
)

type Server struct {
	echo                *echo.Echo
	orderHandler        *handler.OrderHandler
	billingHandler      *handler.BillingHandler
	operatorHandler     *handler.OperatorHandler
	notificationHandler *handler.NotificationHandler
	jwtSecret           string
}

func NewServer(
	orderService service.OrderService,
	pricingService service.PricingService,
	notifications repository.NotificationRepository,
	jwtSecret string,
) *Server {
	e := echo.New()
	e.HideBanner = true

	e.Use(echomw.Logger())
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	s := &Server{
		echo:                e,
		orderHandler:        handler.NewOrderHandler(orderService),
		billingHandler:      handler.NewBillingHandler(orderService, pricingService),
		operatorHandler:     handler.NewOperatorHandler(orderService),
		notificationHandler: handler.NewNotificationHandler(notifications),
		jwtSecret:           jwtSecret,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	api := s.echo.Group("/api")

	api.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]string{"status": "ok"})
	})

	// -------- payment processor callback --------
	api.POST("/payments/completed", s.billingHandler.PaymentCompleted)

	// -------- client --------
	auth := api.Group("", middleware.Auth(s.jwtSecret))

	auth.POST("/orders", s.orderHandler.Create)
	auth.GET("/orders", s.orderHandler.List)
	auth.GET("/orders/:id", s.orderHandler.Get)
	auth.DELETE("/orders/:id", s.orderHandler.Delete)
	auth.GET("/orders/:id/invoice", s.orderHandler.GetInvoice)

	auth.POST("/orders/:id/comments", s.orderHandler.AddComment)
	auth.POST("/orders/:id/files", s.orderHandler.UploadFile)
	auth.DELETE("/orders/:id/files/:fileID", s.orderHandler.DeleteFile)
	auth.POST("/orders/:id/tickets", s.orderHandler.CreateTicket)
	auth.POST("/orders/:id/extension", s.orderHandler.RequestExtension)
	auth.POST("/orders/:id/revision", s.orderHandler.RequestRevision)
	auth.POST("/orders/:id/accept", s.orderHandler.Accept)

	auth.POST("/discounts/validate", s.billingHandler.ValidateDiscount)
	auth.POST("/rewards/redeem", s.billingHandler.RedeemPoints)

	auth.GET("/notifications", s.notificationHandler.List)
	auth.POST("/notifications/:id/read", s.notificationHandler.MarkRead)

	// -------- operator --------
	op := auth.Group("/operator", middleware.OperatorOnly())
	op.POST("/orders/:id/delivery", s.operatorHandler.SubmitDelivery)
	op.POST("/orders/:id/cancel", s.operatorHandler.CancelOrder)
	op.GET("/extension-requests", s.operatorHandler.ListExtensionRequests)
	op.POST("/extension-requests/:id/resolve", s.operatorHandler.ResolveExtension)
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown() error {
	return s.echo.Close()
}
