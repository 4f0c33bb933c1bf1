package httppresentation

import (
	"errors"
	"net/http"
	"strconv"

	apporder "github.com/Zhima-Mochi/snackhouse/internal/application/order"
	apppayment "github.com/Zhima-Mochi/snackhouse/internal/application/payment"
	domcustomer "github.com/Zhima-Mochi/snackhouse/internal/domain/customer"
	domorder "github.com/Zhima-Mochi/snackhouse/internal/domain/order"
	dompayment "github.com/Zhima-Mochi/snackhouse/internal/domain/payment"
	domproduct "github.com/Zhima-Mochi/snackhouse/internal/domain/product"
	"github.com/Zhima-Mochi/snackhouse/internal/observability"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handler exposes the order and payment services over HTTP.
type Handler struct {
	orders   *apporder.Service
	payments *apppayment.Service
	log      observability.Logger
	tel      observability.Telemetry
}

func NewHandler(orders *apporder.Service, payments *apppayment.Service, tel observability.Telemetry) *Handler {
	if tel == nil {
		tel = observability.NopTelemetry()
	}
	return &Handler{
		orders:   orders,
		payments: payments,
		log:      tel.Logger().With(observability.F("component", "http")),
		tel:      tel,
	}
}

func (h *Handler) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(Observability(h.log, h.tel))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	orders := router.Group("/orders")
	{
		orders.POST("", h.createOrder)
		orders.GET("", h.listOrders)
		orders.GET("/:id", h.getOrder)
		orders.GET("/:id/status", h.getOrderStatus)
		orders.PUT("/:id/status/:status", h.updateStatus)
		orders.PUT("/:id/customer/:customerID", h.attachCustomer)
		orders.PUT("/:id/product/:category/:productID", h.attachProduct)
		orders.POST("/:id/pagamento", h.realizePayment)
		orders.POST("/:id/pagamento/async", h.initiatePayment)
		orders.PUT("/:id/pagamento", h.paymentNotification)
		orders.GET("/:id/pagamento", h.getPayment)
	}

	router.GET("/products/:category", h.listProducts)

	return router
}

type createOrderRequest struct {
	CustomerID *int64 `json:"customer_id"`
}

type itemResponse struct {
	ID    int64   `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

type orderResponse struct {
	ID         int64         `json:"id"`
	CustomerID *int64        `json:"customer_id,omitempty"`
	Snack      *itemResponse `json:"snack,omitempty"`
	Side       *itemResponse `json:"side,omitempty"`
	Drink      *itemResponse `json:"drink,omitempty"`
	Total      float64       `json:"total"`
	PaymentRef string        `json:"payment_ref,omitempty"`
	Status     string        `json:"status"`
	CreatedAt  string        `json:"created_at"`
	UpdatedAt  string        `json:"updated_at"`
}

type paymentResponse struct {
	OrderID   int64   `json:"order_id"`
	State     string  `json:"state"`
	Reference string  `json:"reference,omitempty"`
	Amount    float64 `json:"amount"`
}

func toItemResponse(p *domproduct.Product) *itemResponse {
	if p == nil {
		return nil
	}
	return &itemResponse{ID: p.ID, Name: p.Name, Price: p.Price}
}

func toOrderResponse(o *domorder.Order) orderResponse {
	resp := orderResponse{
		ID:         o.ID,
		Snack:      toItemResponse(o.Snack),
		Side:       toItemResponse(o.Side),
		Drink:      toItemResponse(o.Drink),
		Total:      o.Total(),
		PaymentRef: o.PaymentRef,
		Status:     string(o.Status),
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
	if o.Customer != nil {
		id := o.Customer.ID
		resp.CustomerID = &id
	}
	return resp
}

func toPaymentResponse(p *dompayment.Payment) paymentResponse {
	return paymentResponse{
		OrderID:   p.OrderID,
		State:     string(p.State),
		Reference: p.Reference,
		Amount:    p.Amount,
	}
}

func (h *Handler) createOrder(c *gin.Context) {
	var req createOrderRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
	}

	created, err := h.orders.Create(c.Request.Context(), apporder.CreateOrderInput{CustomerID: req.CustomerID})
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toOrderResponse(created))
}

func (h *Handler) listOrders(c *gin.Context) {
	ctx := c.Request.Context()

	var (
		listed []*domorder.Order
		err    error
	)
	if status := c.Query("status"); status != "" {
		listed, err = h.orders.ListByStatus(ctx, status)
	} else {
		listed, err = h.orders.List(ctx)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]orderResponse, 0, len(listed))
	for _, o := range listed {
		out = append(out, toOrderResponse(o))
	}
	c.JSON(http.StatusOK, out)
}

func (h *Handler) getOrder(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	found, err := h.orders.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(found))
}

func (h *Handler) getOrderStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	status, err := h.orders.GetStatus(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": string(status)})
}

func (h *Handler) updateStatus(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	updated, err := h.orders.UpdateStatus(c.Request.Context(), id, c.Param("status"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) attachCustomer(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	customerID, ok := pathID(c, "customerID")
	if !ok {
		return
	}
	updated, err := h.orders.AttachCustomer(c.Request.Context(), id, customerID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) attachProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productID")
	if !ok {
		return
	}
	category, err := domproduct.ParseCategory(c.Param("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	updated, err := h.orders.AttachProduct(c.Request.Context(), id, productID, category)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(updated))
}

func (h *Handler) realizePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	snapshot, err := h.payments.RealizePayment(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toOrderResponse(snapshot))
}

func (h *Handler) initiatePayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	pending, err := h.payments.InitiatePayment(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, toPaymentResponse(pending))
}

// paymentNotification is the processor callback. It always acknowledges;
// processors retry on anything else and the ingest path is tolerant of
// payloads it does not understand.
func (h *Handler) paymentNotification(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	var payload map[string]any
	if err := c.ShouldBindJSON(&payload); err != nil {
		payload = map[string]any{}
	}

	record := h.payments.HandleNotification(c.Request.Context(), id, payload)
	c.JSON(http.StatusOK, toPaymentResponse(record))
}

func (h *Handler) getPayment(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	found, err := h.payments.GetByOrderID(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toPaymentResponse(found))
}

func (h *Handler) listProducts(c *gin.Context) {
	listed, err := h.orders.ListProducts(c.Request.Context(), c.Param("category"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	out := make([]*itemResponse, 0, len(listed))
	for _, p := range listed {
		out = append(out, toItemResponse(p))
	}
	c.JSON(http.StatusOK, out)
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domorder.ErrNotFound),
		errors.Is(err, domproduct.ErrNotFound),
		errors.Is(err, domcustomer.ErrNotFound),
		errors.Is(err, dompayment.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domorder.ErrUnknownStatus),
		errors.Is(err, domorder.ErrTransitionNotAllowed),
		errors.Is(err, domproduct.ErrUnknownCategory),
		errors.Is(err, domproduct.ErrCategoryMismatch):
		status = http.StatusBadRequest
	case errors.Is(err, dompayment.ErrRejected):
		status = http.StatusPaymentRequired
	case errors.Is(err, dompayment.ErrAdapter):
		// the wrapped transport cause stays in the logs, not the response
		h.log.Warn("payment_adapter_failure", observability.F("error", err.Error()))
		c.JSON(http.StatusBadGateway, gin.H{"error": dompayment.ErrAdapter.Error()})
		return
	}

	if status == http.StatusInternalServerError {
		h.log.Error("request_failed", observability.F("error", err.Error()))
		c.JSON(status, gin.H{"error": "internal error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
