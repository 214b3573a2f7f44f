package ws

import (
	"context"
	"log"
	"net/http"
	"sync"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// OrderHub ส่งสถานะ order จาก change feed ของ backend ต่อให้ browser
// หนึ่ง order = หนึ่งห้อง; เปิด feed เมื่อมีคนดูคนแรก ปิดเมื่อคนสุดท้ายออก
type OrderHub struct {
	orders *services.OrderService

	clients map[string]map[*websocket.Conn]bool // orderID -> set of clients
	cancels map[string]func()                   // orderID -> ปิด feed ฝั่ง backend

	broadcast  chan statusUpdate
	register   chan subscription
	unregister chan subscription
	mu         sync.Mutex
}

type subscription struct {
	Conn    *websocket.Conn
	OrderID string
}

type statusUpdate struct {
	OrderID string
	Order   entity.Order
}

func NewOrderHub(orders *services.OrderService) *OrderHub {
	return &OrderHub{
		orders:     orders,
		clients:    make(map[string]map[*websocket.Conn]bool),
		cancels:    make(map[string]func()),
		broadcast:  make(chan statusUpdate),
		register:   make(chan subscription),
		unregister: make(chan subscription),
	}
}

// Run คอยฟัง register/unregister/broadcast ตลอดเวลา
func (h *OrderHub) Run() {
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			first := h.clients[sub.OrderID] == nil
			if first {
				h.clients[sub.OrderID] = make(map[*websocket.Conn]bool)
			}
			h.clients[sub.OrderID][sub.Conn] = true
			h.mu.Unlock()

			// คนแรกของห้อง → เปิด change feed ของ order นี้
			if first {
				h.openFeed(sub.OrderID)
			}

		case sub := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[sub.OrderID][sub.Conn]; ok {
				delete(h.clients[sub.OrderID], sub.Conn)
				sub.Conn.Close()
			}
			empty := len(h.clients[sub.OrderID]) == 0
			var cancel func()
			if empty {
				delete(h.clients, sub.OrderID)
				cancel = h.cancels[sub.OrderID]
				delete(h.cancels, sub.OrderID)
			}
			h.mu.Unlock()

			// คนสุดท้ายออก → ต้องปิด feed เสมอ ไม่งั้น subscription รั่ว
			if cancel != nil {
				cancel()
			}

		case up := <-h.broadcast:
			h.mu.Lock()
			for conn := range h.clients[up.OrderID] {
				if err := conn.WriteJSON(gin.H{
					"order":       up.Order,
					"statusLabel": entity.OrderStatusLabel(up.Order.Status),
				}); err != nil {
					log.Printf("ws write error: %v", err)
					conn.Close()
					delete(h.clients[up.OrderID], conn)
				}
			}
			h.mu.Unlock()
		}
	}
}

func (h *OrderHub) openFeed(orderID string) {
	cancel, err := h.orders.Track(context.Background(), orderID, func(o entity.Order) {
		h.broadcast <- statusUpdate{OrderID: orderID, Order: o}
	})
	if err != nil {
		log.Printf("ws: open feed for order %s: %v", orderID, err)
		return
	}
	h.mu.Lock()
	h.cancels[orderID] = cancel
	h.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// WS route: /ws/orders/:id
func (h *OrderHub) HandleWebSocket(c *gin.Context) {
	orderID := c.Param("id")

	// order ต้องมีจริงและ user ปัจจุบันต้องเห็นได้ (backend scope ให้แล้ว)
	if d := h.orders.Detail(c.Request.Context(), orderID); d == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}

	sub := subscription{Conn: conn, OrderID: orderID}
	h.register <- sub

	go h.listen(sub)
}

// listen ไม่สน payload จาก client - อ่านไว้แค่ให้รู้ว่า connection หลุดเมื่อไหร่
func (h *OrderHub) listen(sub subscription) {
	defer func() { h.unregister <- sub }()

	for {
		if _, _, err := sub.Conn.ReadMessage(); err != nil {
			break
		}
	}
}
