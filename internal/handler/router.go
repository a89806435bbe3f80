package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/myanedu/portal-api/internal/middleware"
	"github.com/myanedu/portal-api/internal/service"
)

// Services bundles everything the router needs.
type Services struct {
	Sessions  *service.SessionService
	Tokens    *service.TokenService
	Views     *service.ViewService
	Catalog   *service.CatalogService
	Classroom *service.ClassroomService
	Payments  *service.PaymentService
	Receipts  *service.ReceiptService
	Feeds     *service.FeedService
	Metrics   *service.MetricsService
}

// Register wires every portal route onto the engine under the API prefix.
func Register(r *gin.Engine, prefix string, svcs Services) {
	auth := NewAuthHandler(svcs.Sessions, svcs.Tokens)
	sessionH := NewSessionHandler(svcs.Sessions, svcs.Views, svcs.Tokens, svcs.Feeds)
	view := NewViewHandler(svcs.Sessions, svcs.Views)
	catalog := NewCatalogHandler(svcs.Catalog)
	classroom := NewClassroomHandler(svcs.Sessions, svcs.Classroom)
	payments := NewPaymentHandler(svcs.Sessions, svcs.Payments)
	dashboard := NewDashboardHandler(svcs.Sessions, svcs.Payments)
	notifications := NewNotificationHandler(svcs.Sessions)
	profile := NewProfileHandler(svcs.Sessions)
	receipts := NewReceiptHandler(svcs.Sessions, svcs.Receipts)
	feeds := NewFeedHandler(svcs.Sessions, svcs.Feeds)

	api := r.Group(prefix)
	api.Use(middleware.WithResponseMeta())

	requireSession := middleware.Session(svcs.Tokens)
	optionalSession := middleware.OptionalSession(svcs.Tokens)

	api.POST("/auth/search", auth.Lookup)
	api.POST("/auth/login", optionalSession, auth.Login)
	api.POST("/auth/register", optionalSession, auth.Register)

	api.GET("/session", optionalSession, sessionH.Restore)
	api.POST("/session/refresh", requireSession, sessionH.Refresh)
	api.DELETE("/session", requireSession, sessionH.Logout)

	api.POST("/view", optionalSession, view.Apply)

	api.GET("/catalog/batches", catalog.ActiveBatches)
	api.GET("/catalog/promoted", catalog.PromotedCourses)
	api.GET("/catalog/instructors", catalog.Instructors)

	api.GET("/dashboard", requireSession, dashboard.Summary)
	api.GET("/exams", requireSession, dashboard.Exams)

	api.GET("/payments/methods", payments.Methods)
	api.GET("/payments", requireSession, payments.History)
	api.POST("/payments", requireSession, payments.Submit)
	api.GET("/payments/export", requireSession, payments.Export)

	api.GET("/classroom/:batchId/lessons", requireSession, classroom.Lessons)
	api.GET("/lessons/:lessonId/comments", classroom.Comments)
	api.POST("/comments", requireSession, classroom.PostComment)

	api.GET("/notifications", requireSession, notifications.List)
	api.PUT("/notifications/:id/read", requireSession, notifications.MarkRead)

	api.PUT("/profile", requireSession, profile.Update)

	api.POST("/receipts", requireSession, receipts.Request)
	api.GET("/receipts/:id", requireSession, receipts.Status)
	api.GET("/downloads/receipt", receipts.Download)

	api.GET("/feeds/notifications", requireSession, feeds.Notifications)
	api.GET("/feeds/lessons/:lessonId/comments", requireSession, feeds.Comments)

	if svcs.Metrics != nil {
		ops := NewMetricsHandler(svcs.Metrics)
		r.GET("/metrics", ops.Prometheus)
		r.GET("/health", ops.Health)
		r.GET("/ready", ops.Health)
		api.GET("/ops/metrics", ops.Snapshot)
	}
}
