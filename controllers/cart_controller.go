package controllers

import (
	"errors"
	"fmt"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/resp"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/services"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/store"

	"github.com/gin-gonic/gin"
)

// ค่าส่งคงที่ทั้งระบบ (บาท)
const DeliveryFee = 40.0

type AddToCartRequest struct {
	RestaurantID string `json:"restaurantId" binding:"required"`
	MenuItemID   string `json:"menuItemId" binding:"required"`
	Quantity     int    `json:"quantity" binding:"min=1"`
	Notes        string `json:"notes"`
	// Confirm = user ยอมล้างของร้านเดิมแล้ว (ตอบ 409 รอบแรกไปก่อนหน้า)
	Confirm bool `json:"confirm"`
}

type UpdateQtyRequest struct {
	Quantity int `json:"quantity"`
}

type UpdateNotesRequest struct {
	Notes string `json:"notes"`
}

type CartController struct {
	Cart        *store.CartStore
	Restaurants *services.RestaurantService
}

func NewCartController(cart *store.CartStore, restaurants *services.RestaurantService) *CartController {
	return &CartController{Cart: cart, Restaurants: restaurants}
}

// GET /cart
func (ct *CartController) Get(c *gin.Context) {
	subtotal := ct.Cart.Subtotal()
	resp.OK(c, gin.H{
		"cart":           ct.Cart.Lines(),
		"restaurantId":   ct.Cart.RestaurantID(),
		"restaurantName": ct.Cart.RestaurantName(),
		"totalItems":     ct.Cart.TotalItems(),
		"subTotal":       subtotal,
		"deliveryFee":    DeliveryFee,
		"total":          subtotal + DeliveryFee,
	})
}

// POST /cart/items
// ของข้ามร้าน: รอบแรกตอบ 409 พร้อมคำถามยืนยัน, client ส่งซ้ำพร้อม confirm=true
func (ct *CartController) AddItem(c *gin.Context) {
	var req AddToCartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	ctx := c.Request.Context()
	item := ct.Restaurants.MenuItem(ctx, req.MenuItemID)
	if item == nil {
		resp.NotFound(c, "ไม่พบเมนูอาหาร")
		return
	}
	// เมนูต้องอยู่ร้านเดียวกับที่ client อ้าง
	if item.RestaurantID != req.RestaurantID {
		resp.BadRequest(c, "เมนูไม่อยู่ในร้านนี้")
		return
	}
	restaurant := ct.Restaurants.Get(ctx, req.RestaurantID)
	if restaurant == nil {
		resp.NotFound(c, "ไม่พบร้านอาหาร")
		return
	}

	if req.Confirm && ct.Cart.Conflicts(req.RestaurantID) {
		ct.Cart.ReplaceCart(*item, req.Quantity, restaurant.ID, restaurant.Name, req.Notes)
		resp.OK(c, gin.H{"totalItems": ct.Cart.TotalItems()})
		return
	}

	err := ct.Cart.AddItem(*item, req.Quantity, restaurant.ID, restaurant.Name, req.Notes)
	if errors.Is(err, store.ErrRestaurantConflict) {
		resp.Conflict(c, fmt.Sprintf(
			"คุณมีรายการอาหารจากร้าน %s ในตะกร้าอยู่แล้ว ต้องการล้างตะกร้าและเพิ่มรายการใหม่จากร้าน %s หรือไม่?",
			ct.Cart.RestaurantName(), restaurant.Name,
		))
		return
	}
	resp.OK(c, gin.H{"totalItems": ct.Cart.TotalItems()})
}

// PATCH /cart/items/:menuItemId
func (ct *CartController) UpdateQuantity(c *gin.Context) {
	var req UpdateQtyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	ct.Cart.UpdateQuantity(c.Param("menuItemId"), req.Quantity)
	resp.OK(c, gin.H{"totalItems": ct.Cart.TotalItems()})
}

// PATCH /cart/items/:menuItemId/notes
func (ct *CartController) UpdateNotes(c *gin.Context) {
	var req UpdateNotesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}
	ct.Cart.UpdateNotes(c.Param("menuItemId"), req.Notes)
	resp.OK(c, gin.H{"totalItems": ct.Cart.TotalItems()})
}

// DELETE /cart/items/:menuItemId
func (ct *CartController) RemoveItem(c *gin.Context) {
	ct.Cart.RemoveItem(c.Param("menuItemId"))
	resp.OK(c, gin.H{"totalItems": ct.Cart.TotalItems()})
}

// DELETE /cart
func (ct *CartController) Clear(c *gin.Context) {
	ct.Cart.Clear()
	resp.OK(c, gin.H{"totalItems": 0})
}
