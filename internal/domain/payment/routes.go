package payment

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the JWT-protected payment API. admin and partner are
// the role guards for refund and partner listing.
func (h *Handler) RegisterRoutes(protected *gin.RouterGroup, admin, partner gin.HandlerFunc) {
	payments := protected.Group("/payments")
	{
		payments.POST("/intents", h.CreateIntent)
		payments.GET("/intents/:id", h.Get)
		payments.POST("/intents/:id/confirm", h.Confirm)
		payments.POST("/intents/:id/sync", h.Sync)
		payments.POST("/intents/:id/refund", admin, h.Refund)
		payments.GET("/me", h.ListMine)
		payments.GET("/partner", partner, h.ListForPartner)
	}
}

// RegisterWebhookRoutes must stay outside auth; the processor signs requests.
func (h *Handler) RegisterWebhookRoutes(v1 *gin.RouterGroup) {
	v1.POST("/payments/stripe/webhook", h.Webhook)
}

// RegisterRoutes mounts the forwarders on /api. Every method is routed so
// non-POST calls get the 405 body.
func (h *ForwardHandler) RegisterRoutes(api *gin.RouterGroup) {
	api.Any("/create-payment-intent", h.CreatePaymentIntent)
	api.Any("/refund-payment", h.RefundPayment)
}
