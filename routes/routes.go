package routes

import (
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/controllers"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/middlewares"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/services"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/store"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/ws"

	"github.com/gin-gonic/gin"
)

// Deps = ทุกอย่างที่ route layer ต้องใช้ ส่งมาจาก main ตรง ๆ ไม่มี global
type Deps struct {
	Sessions    *store.SessionStore
	Cart        *store.CartStore
	Restaurants *services.RestaurantService
	Orders      *services.OrderService
	Addresses   *services.AddressService
	OrderHub    *ws.OrderHub
}

func RegisterRoutes(r *gin.Engine, d *Deps) {
	r.Use(middlewares.CORSMiddleware())
	r.GET("/health", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	authCtrl := controllers.NewAuthController(d.Sessions)
	restCtrl := controllers.NewRestaurantController(d.Restaurants)
	cartCtrl := controllers.NewCartController(d.Cart, d.Restaurants)
	orderCtrl := controllers.NewOrderController(d.Orders, d.Cart, d.Sessions)
	addrCtrl := controllers.NewAddressController(d.Addresses, d.Sessions)

	// Auth (public)
	a := r.Group("/auth")
	{
		a.POST("/register", authCtrl.Register)
		a.POST("/login", authCtrl.Login)
	}

	// Auth (protected)
	aAuth := a.Group("", middlewares.RequireAuth(d.Sessions))
	{
		aAuth.POST("/logout", authCtrl.Logout)
		aAuth.GET("/me", authCtrl.Me)
		aAuth.PATCH("/me", authCtrl.UpdateMe)
		aAuth.POST("/me/avatar", authCtrl.UploadAvatar)
	}

	// Public
	r.GET("/restaurants", restCtrl.List)
	r.GET("/restaurants/:id", restCtrl.Detail)
	r.GET("/restaurants/:id/menu", restCtrl.Menu)

	// Cart (ฝั่ง client ล้วน ๆ ไม่ต้อง login จนกว่าจะ checkout)
	cart := r.Group("/cart")
	{
		cart.GET("", cartCtrl.Get)
		cart.POST("/items", cartCtrl.AddItem)
		cart.PATCH("/items/:menuItemId", cartCtrl.UpdateQuantity)
		cart.PATCH("/items/:menuItemId/notes", cartCtrl.UpdateNotes)
		cart.DELETE("/items/:menuItemId", cartCtrl.RemoveItem)
		cart.DELETE("", cartCtrl.Clear)
	}

	// Orders (ต้อง login)
	u := r.Group("/", middlewares.RequireAuth(d.Sessions))
	{
		u.POST("/orders", orderCtrl.Create)
		u.GET("/orders/:id", orderCtrl.Detail)
	}

	// Profile
	profile := r.Group("/profile", middlewares.RequireAuth(d.Sessions))
	{
		profile.GET("/order", orderCtrl.ListForMe)
	}

	// Addresses
	addr := r.Group("/addresses", middlewares.RequireAuth(d.Sessions))
	{
		addr.GET("", addrCtrl.List)
		addr.POST("", addrCtrl.Create)
		addr.PATCH("/:id", addrCtrl.Update)
		addr.DELETE("/:id", addrCtrl.Delete)
		addr.PATCH("/:id/default", addrCtrl.SetDefault)
	}

	// Realtime order tracking
	r.GET("/ws/orders/:id", middlewares.RequireAuth(d.Sessions), d.OrderHub.HandleWebSocket)
}
