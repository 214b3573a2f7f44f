package controllers

import (
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/resp"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/services"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/store"

	"github.com/gin-gonic/gin"
)

type AddressRequest struct {
	Description string `json:"description" binding:"required"`
	Street      string `json:"street" binding:"required"`
	City        string `json:"city" binding:"required"`
	State       string `json:"state" binding:"required"`
	ZipCode     string `json:"zipCode" binding:"required"`
	IsDefault   bool   `json:"isDefault"`
}

type AddressController struct {
	Addresses *services.AddressService
	Sessions  *store.SessionStore
}

func NewAddressController(addresses *services.AddressService, sessions *store.SessionStore) *AddressController {
	return &AddressController{Addresses: addresses, Sessions: sessions}
}

func (a *AddressController) currentUserID() string {
	if u := a.Sessions.User(); u != nil {
		return u.ID
	}
	return ""
}

// GET /addresses
func (a *AddressController) List(c *gin.Context) {
	resp.OK(c, a.Addresses.List(c.Request.Context()))
}

// POST /addresses
func (a *AddressController) Create(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	addr := a.Addresses.Create(c.Request.Context(), a.currentUserID(), entity.Address{
		Description: req.Description,
		Street:      req.Street,
		City:        req.City,
		State:       req.State,
		ZipCode:     req.ZipCode,
		IsDefault:   req.IsDefault,
	})
	if addr == nil {
		resp.BadRequest(c, "ไม่สามารถบันทึกที่อยู่ได้")
		return
	}
	resp.Created(c, addr)
}

// PATCH /addresses/:id
func (a *AddressController) Update(c *gin.Context) {
	var req AddressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	addr := a.Addresses.Update(c.Request.Context(), a.currentUserID(), c.Param("id"), map[string]any{
		"description": req.Description,
		"street":      req.Street,
		"city":        req.City,
		"state":       req.State,
		"zip_code":    req.ZipCode,
		"is_default":  req.IsDefault,
	})
	if addr == nil {
		resp.BadRequest(c, "ไม่สามารถอัปเดตที่อยู่ได้")
		return
	}
	resp.OK(c, addr)
}

// DELETE /addresses/:id
func (a *AddressController) Delete(c *gin.Context) {
	if !a.Addresses.Delete(c.Request.Context(), c.Param("id")) {
		resp.BadRequest(c, "ไม่สามารถลบที่อยู่ได้")
		return
	}
	resp.OK(c, gin.H{"deleted": true})
}

// PATCH /addresses/:id/default
func (a *AddressController) SetDefault(c *gin.Context) {
	if !a.Addresses.SetDefault(c.Request.Context(), a.currentUserID(), c.Param("id")) {
		resp.BadRequest(c, "ไม่สามารถตั้งค่าที่อยู่เริ่มต้นได้")
		return
	}
	resp.OK(c, gin.H{"default": true})
}
