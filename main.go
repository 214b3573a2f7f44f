package main

import (
	"context"
	"log"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/backend"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/configs"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/localstate"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/notify"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/routes"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/services"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/store"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := configs.LoadConfig()

	// local state (ตะกร้า + session) อยู่ใน sqlite ไฟล์เดียว
	localDB := configs.OpenLocalDB(cfg.LocalDB)
	state, err := localstate.New(localDB)
	if err != nil {
		log.Fatalf("setup local state: %v", err)
	}

	client := backend.New(backend.Config{
		BaseURL: cfg.BackendURL,
		AnonKey: cfg.BackendAnonKey,
	}, state)
	defer client.Auth.Close()

	toasts := notify.NewLogNotifier()

	// stores สร้างที่นี่ที่เดียว แล้วฉีดลงไปทั้ง tree - ไม่มี ambient singleton
	cart := store.NewCartStore(state, toasts)
	sessions := store.NewSessionStore(
		client.Auth,
		services.NewProfileService(client),
		services.NewAvatarStorage(client),
		toasts,
	)
	sessions.Start(context.Background())
	defer sessions.Stop()

	restaurants := services.NewRestaurantService(client, toasts)
	orders := services.NewOrderService(client, toasts)
	addresses := services.NewAddressService(client, toasts)

	hub := ws.NewOrderHub(orders)
	go hub.Run()

	r := gin.Default()
	routes.RegisterRoutes(r, &routes.Deps{
		Sessions:    sessions,
		Cart:        cart,
		Restaurants: restaurants,
		Orders:      orders,
		Addresses:   addresses,
		OrderHub:    hub,
	})

	log.Println("listening on :" + cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
