package app

import (
	"net/http"

	"github.com/kawooya/remitta/internal/handler"
	"github.com/kawooya/remitta/internal/middleware"
	"github.com/kawooya/remitta/internal/models"
)

func (app *Application) routes() http.Handler {
	mux := http.NewServeMux()

	middlewareRepo := middleware.New(app.errorHandler, app.Logger, app.DB.User(), &app.Config)

	healthHandler := handler.NewHealthCheckHandler(app.errorHandler)

	authHandler := handler.NewAuthHandler(&handler.AuthHandler{
		UserRepo:     app.DB.User(),
		ActivityRepo: app.DB.Activity(),
		Helper:       app.helper,
		Mailer:       app.Mailer,
		ErrHandler:   app.errorHandler,
		Config:       &app.Config,
	})

	userHandler := handler.NewUserHandler(&handler.UserHandler{
		UserRepo:     app.DB.User(),
		ActivityRepo: app.DB.Activity(),
		FileUploader: app.FileUploader,
		Helper:       app.helper,
		ErrHandler:   app.errorHandler,
	})

	currencyHandler := handler.NewCurrencyHandler(&handler.CurrencyHandler{
		CurrencyRepo: app.DB.Currency(),
		Converter:    app.Converter,
		ErrHandler:   app.errorHandler,
	})

	orderHandler := handler.NewOrderHandler(&handler.OrderHandler{
		OrderRepo:    app.DB.Order(),
		UserRepo:     app.DB.User(),
		CurrencyRepo: app.DB.Currency(),
		ActivityRepo: app.DB.Activity(),
		Kafka:        app.Kafka,
		Helper:       app.helper,
		ErrHandler:   app.errorHandler,
	})

	collectionHandler := handler.NewCollectionHandler(&handler.CollectionHandler{
		CollectionRepo: app.DB.Collection(),
		UserRepo:       app.DB.User(),
		CurrencyRepo:   app.DB.Currency(),
		ActivityRepo:   app.DB.Activity(),
		Helper:         app.helper,
		ErrHandler:     app.errorHandler,
	})

	messageHandler := handler.NewMessageHandler(&handler.MessageHandler{
		MessageRepo: app.DB.Message(),
		OrderRepo:   app.DB.Order(),
		UserRepo:    app.DB.User(),
		ErrHandler:  app.errorHandler,
	})

	notificationHandler := handler.NewNotificationHandler(&handler.NotificationHandler{
		NotificationRepo: app.DB.Notification(),
		UserRepo:         app.DB.User(),
		ErrHandler:       app.errorHandler,
	})

	mux.HandleFunc("GET /status", healthHandler.HandleHealthCheck)

	mux.HandleFunc("POST /auth/register", authHandler.HandleAuthRegister)
	mux.HandleFunc("POST /auth/login", authHandler.HandleAuthLogin)

	// conversion quotes are public so the landing page can show rates
	mux.HandleFunc("POST /currency/convert", currencyHandler.HandleConvert)

	mux.Handle("GET /profile", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(userHandler.HandleUserProfile)))
	mux.Handle("PATCH /profile", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(userHandler.HandleUpdateProfile)))
	mux.Handle("POST /profile/picture", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(userHandler.HandleChangeProfilePicture)))

	mux.Handle("GET /users", middlewareRepo.RequireAdminUser(http.HandlerFunc(userHandler.HandleListUsers)))
	mux.Handle("GET /users/members", middlewareRepo.RequireAdminUser(http.HandlerFunc(userHandler.HandleListMembers)))
	mux.Handle("PATCH /users/{id}/block", middlewareRepo.RequireAdminUser(http.HandlerFunc(userHandler.HandleBlockUser)))
	mux.Handle("PATCH /users/{id}/unblock", middlewareRepo.RequireAdminUser(http.HandlerFunc(userHandler.HandleUnblockUser)))

	mux.Handle("GET /currencies", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(currencyHandler.HandleListCurrencies)))
	mux.Handle("POST /currencies", middlewareRepo.RequireAdminUser(http.HandlerFunc(currencyHandler.HandleCreateCurrency)))
	mux.Handle("PUT /currencies/{id}", middlewareRepo.RequireAdminUser(http.HandlerFunc(currencyHandler.HandleUpdateCurrency)))
	mux.Handle("DELETE /currencies/{id}", middlewareRepo.RequireAdminUser(http.HandlerFunc(currencyHandler.HandleDeleteCurrency)))

	mux.Handle("POST /orders", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(orderHandler.HandleCreateOrder)))
	mux.Handle("GET /orders", middlewareRepo.RequireAdminUser(http.HandlerFunc(orderHandler.HandleListOrders)))
	mux.Handle("GET /orders/mine", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(orderHandler.HandleMyOrders)))
	mux.Handle("PATCH /orders/status", middlewareRepo.RequireMemberUser(http.HandlerFunc(orderHandler.HandleChangeOrderStatus)))
	mux.Handle("PATCH /orders/assign", middlewareRepo.RequireAdminUser(http.HandlerFunc(orderHandler.HandleAssignMember)))
	mux.Handle("GET /orders/pending", middlewareRepo.RequireMemberUser(orderHandler.HandleOrdersByStatus(models.OrderStatusPending)))
	mux.Handle("GET /orders/pending/paginated", middlewareRepo.RequireMemberUser(orderHandler.HandleOrdersByStatusPaginated(models.OrderStatusPending)))
	mux.Handle("GET /orders/pending/count", middlewareRepo.RequireMemberUser(orderHandler.HandleOrdersByStatusCount(models.OrderStatusPending)))
	mux.Handle("GET /orders/completed", middlewareRepo.RequireMemberUser(orderHandler.HandleOrdersByStatus(models.OrderStatusCompleted)))
	mux.Handle("GET /orders/completed/paginated", middlewareRepo.RequireMemberUser(orderHandler.HandleOrdersByStatusPaginated(models.OrderStatusCompleted)))
	mux.Handle("GET /orders/completed/count", middlewareRepo.RequireMemberUser(orderHandler.HandleOrdersByStatusCount(models.OrderStatusCompleted)))
	mux.Handle("GET /orders/{id}", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(orderHandler.HandleGetOrder)))
	mux.Handle("DELETE /orders/{id}", middlewareRepo.RequireAdminUser(http.HandlerFunc(orderHandler.HandleDeleteOrder)))

	mux.Handle("POST /collections", middlewareRepo.RequireAdminUser(http.HandlerFunc(collectionHandler.HandleCreateCollection)))
	mux.Handle("GET /collections", middlewareRepo.RequireAdminUser(http.HandlerFunc(collectionHandler.HandleListCollections)))
	mux.Handle("GET /collections/mine", middlewareRepo.RequireMemberUser(http.HandlerFunc(collectionHandler.HandleMyCollections)))
	mux.Handle("PATCH /collections/{id}/confirm", middlewareRepo.RequireMemberUser(http.HandlerFunc(collectionHandler.HandleConfirmCollection)))
	mux.Handle("PATCH /collections/{id}/reject", middlewareRepo.RequireMemberUser(http.HandlerFunc(collectionHandler.HandleRejectCollection)))
	mux.Handle("GET /collections/balance", middlewareRepo.RequireMemberUser(http.HandlerFunc(collectionHandler.HandleBalance)))
	mux.Handle("GET /collections/balance/{userId}", middlewareRepo.RequireAdminUser(http.HandlerFunc(collectionHandler.HandleMemberBalance)))
	mux.Handle("GET /collections/balances", middlewareRepo.RequireMemberUser(http.HandlerFunc(collectionHandler.HandleBalancesByCurrency)))

	mux.Handle("POST /messages/order", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(messageHandler.HandleCreateOrderMessage)))
	mux.Handle("POST /messages/direct", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(messageHandler.HandleCreateDirectMessage)))
	mux.Handle("GET /orders/{id}/messages", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(messageHandler.HandleOrderChatHistory)))
	mux.Handle("PATCH /orders/{id}/messages/read", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(messageHandler.HandleMarkOrderMessagesRead)))
	mux.Handle("GET /messages/direct/{userId}", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(messageHandler.HandleDirectThread)))
	mux.Handle("PATCH /messages/direct/{userId}/read", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(messageHandler.HandleMarkDirectMessagesRead)))
	mux.Handle("GET /messages/unread/count", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(messageHandler.HandleUnreadMessageCount)))

	mux.Handle("POST /notifications", middlewareRepo.RequireAdminUser(http.HandlerFunc(notificationHandler.HandleCreateNotification)))
	mux.Handle("GET /notifications", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(notificationHandler.HandleMyNotifications)))
	mux.Handle("PATCH /notifications/read-all", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(notificationHandler.HandleMarkAllNotificationsRead)))
	mux.Handle("PATCH /notifications/{id}/read", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(notificationHandler.HandleMarkNotificationRead)))
	mux.Handle("GET /notifications/unread/count", middlewareRepo.RequireAuthenticatedUser(http.HandlerFunc(notificationHandler.HandleUnreadNotificationCount)))

	return middlewareRepo.LogAccess(middlewareRepo.RecoverPanic(middlewareRepo.Authenticate(mux)))
}
