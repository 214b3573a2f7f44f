package controllers

import (
	"errors"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/resp"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/services"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/store"

	"github.com/gin-gonic/gin"
)

type CheckoutRequest struct {
	DeliveryAddressID string `json:"deliveryAddressId" binding:"required"`
	PaymentMethod     string `json:"paymentMethod" binding:"required"`
	DeliveryNotes     string `json:"deliveryNotes"`
}

type OrderController struct {
	Orders   *services.OrderService
	Cart     *store.CartStore
	Sessions *store.SessionStore
}

func NewOrderController(orders *services.OrderService, cart *store.CartStore, sessions *store.SessionStore) *OrderController {
	return &OrderController{Orders: orders, Cart: cart, Sessions: sessions}
}

// POST /orders - checkout จากตะกร้าปัจจุบัน สำเร็จแล้วค่อยล้างตะกร้า
func (o *OrderController) Create(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	user := o.Sessions.User()
	userID := ""
	if user != nil {
		userID = user.ID
	}

	order, err := o.Orders.Create(
		c.Request.Context(),
		userID,
		o.Cart.RestaurantID(),
		o.Cart.Lines(),
		req.DeliveryAddressID,
		req.PaymentMethod,
		req.DeliveryNotes,
	)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrNotSignedIn):
			resp.Unauthorized(c, "คุณยังไม่ได้เข้าสู่ระบบ")
		case errors.Is(err, services.ErrEmptyCart):
			resp.BadRequest(c, "ไม่พบรายการอาหารในตะกร้า")
		default:
			resp.ServerError(c, err)
		}
		return
	}

	o.Cart.Clear()
	resp.Created(c, order)
}

// GET /orders/:id
func (o *OrderController) Detail(c *gin.Context) {
	d := o.Orders.Detail(c.Request.Context(), c.Param("id"))
	if d == nil {
		resp.NotFound(c, "ไม่พบออเดอร์")
		return
	}
	resp.OK(c, d)
}

// GET /profile/order
func (o *OrderController) ListForMe(c *gin.Context) {
	resp.OK(c, o.Orders.ListForMe(c.Request.Context()))
}
