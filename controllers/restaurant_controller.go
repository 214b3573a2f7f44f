package controllers

import (
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/resp"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/services"

	"github.com/gin-gonic/gin"
)

type RestaurantController struct {
	Restaurants *services.RestaurantService
}

func NewRestaurantController(s *services.RestaurantService) *RestaurantController {
	return &RestaurantController{Restaurants: s}
}

// GET /restaurants?search=
func (r *RestaurantController) List(c *gin.Context) {
	resp.OK(c, r.Restaurants.List(c.Request.Context(), c.Query("search")))
}

// GET /restaurants/:id
func (r *RestaurantController) Detail(c *gin.Context) {
	rest := r.Restaurants.Get(c.Request.Context(), c.Param("id"))
	if rest == nil {
		resp.NotFound(c, "ไม่พบร้านอาหาร")
		return
	}
	resp.OK(c, rest)
}

// GET /restaurants/:id/menu?category=
func (r *RestaurantController) Menu(c *gin.Context) {
	items := r.Restaurants.MenuItems(c.Request.Context(), c.Param("id"), c.Query("category"))
	resp.OK(c, items)
}
