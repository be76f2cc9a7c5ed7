package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/nikolayk812/cartkeeper/internal/domain"
	"github.com/nikolayk812/cartkeeper/internal/port"
	"github.com/nikolayk812/cartkeeper/internal/service"
	"golang.org/x/text/currency"
)

type CartService interface {
	Cart() domain.Cart
	AddProduct(ctx context.Context, productID int64) (service.Outcome, error)
	RemoveProduct(ctx context.Context, productID int64) (service.Outcome, error)
	UpdateProductAmount(ctx context.Context, req service.UpdateAmount) (service.Outcome, error)
}

type HTTPHandler struct {
	cartService CartService
	currency    currency.Unit
}

type UpdateAmountRequest struct {
	Amount *int `json:"amount" binding:"required"`
}

type CartResponse struct {
	Lines    []domain.CartLine `json:"lines"`
	Total    string            `json:"total"`
	Currency string            `json:"currency"`
}

type MutationResponse struct {
	Cart     CartResponse  `json:"cart"`
	Message  string        `json:"message,omitempty"`
	Severity port.Severity `json:"severity,omitempty"`
}

func NewHTTPHandler(cartService CartService, unit currency.Unit) *HTTPHandler {
	return &HTTPHandler{
		cartService: cartService,
		currency:    unit,
	}
}

func (h *HTTPHandler) Register(r gin.IRouter) {
	r.GET("/health", h.HealthCheck)
	r.GET("/cart", h.GetCart)
	r.POST("/cart/items/:productId", h.AddProduct)
	r.DELETE("/cart/items/:productId", h.RemoveProduct)
	r.PUT("/cart/items/:productId", h.UpdateProductAmount)
}

func (h *HTTPHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *HTTPHandler) GetCart(c *gin.Context) {
	c.JSON(http.StatusOK, h.cartResponse())
}

func (h *HTTPHandler) AddProduct(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	outcome, err := h.cartService.AddProduct(c.Request.Context(), productID)
	h.respond(c, service.OpAdd, outcome, err)
}

func (h *HTTPHandler) RemoveProduct(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	outcome, err := h.cartService.RemoveProduct(c.Request.Context(), productID)
	h.respond(c, service.OpRemove, outcome, err)
}

func (h *HTTPHandler) UpdateProductAmount(c *gin.Context) {
	productID, ok := productIDParam(c)
	if !ok {
		return
	}

	var req UpdateAmountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid request body"})
		return
	}

	outcome, err := h.cartService.UpdateProductAmount(c.Request.Context(), service.UpdateAmount{
		ProductID: productID,
		Amount:    *req.Amount,
	})
	h.respond(c, service.OpUpdate, outcome, err)
}

func (h *HTTPHandler) respond(c *gin.Context, op service.Op, outcome service.Outcome, err error) {
	resp := MutationResponse{Cart: h.cartResponse()}
	if notice, ok := service.Describe(op, outcome, err); ok {
		resp.Message = notice.Message
		resp.Severity = notice.Severity
	}

	c.JSON(statusFor(err), resp)
}

func (h *HTTPHandler) cartResponse() CartResponse {
	cart := h.cartService.Cart()

	lines := cart.Lines
	if lines == nil {
		lines = []domain.CartLine{}
	}

	total := cart.Total(h.currency)

	return CartResponse{
		Lines:    lines,
		Total:    total.Amount.StringFixed(2),
		Currency: total.Currency.String(),
	}
}

func statusFor(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, service.ErrInvalidQuantity):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrProductNotInCart):
		return http.StatusNotFound
	case errors.Is(err, service.ErrOutOfStock), errors.Is(err, service.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, service.ErrInventory):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func productIDParam(c *gin.Context) (int64, bool) {
	productID, err := strconv.ParseInt(c.Param("productId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid product id"})
		return 0, false
	}
	return productID, true
}
