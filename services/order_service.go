package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/backend"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/notify"
)

var (
	ErrNotSignedIn = errors.New("not signed in")
	ErrEmptyCart   = errors.New("cart is empty")
)

type OrderService struct {
	client *backend.Client
	notify notify.Notifier
}

func NewOrderService(c *backend.Client, n notify.Notifier) *OrderService {
	return &OrderService{client: c, notify: n}
}

// OrderItemDetail = order item พร้อมชื่อ/ราคาเมนูที่ backend join มาให้
type OrderItemDetail struct {
	entity.OrderItem
	MenuItem struct {
		Name  string  `json:"name"`
		Price float64 `json:"price"`
	} `json:"menu_item"`
}

type OrderDetail struct {
	entity.Order
	Restaurant      entity.RestaurantInfo `json:"restaurant"`
	Items           []OrderItemDetail     `json:"items"`
	DeliveryAddress *entity.Address       `json:"delivery_address,omitempty"`
}

// Create สร้าง order จากตะกร้า: แถว orders ก่อน แล้วตามด้วย order_items
// ราคารวมคำนวณจาก line ตอนนี้เลย (ราคาต่อหน่วย x จำนวน)
func (s *OrderService) Create(ctx context.Context, userID, restaurantID string, lines []entity.CartLine, deliveryAddressID, paymentMethod, deliveryNotes string) (*entity.Order, error) {
	if userID == "" {
		s.notify.Error("คุณยังไม่ได้เข้าสู่ระบบ", "")
		return nil, ErrNotSignedIn
	}
	if len(lines) == 0 {
		s.notify.Error("ไม่พบรายการอาหารในตะกร้า", "")
		return nil, ErrEmptyCart
	}

	var total float64
	for _, l := range lines {
		total += l.MenuItem.Price * float64(l.Quantity)
	}

	var order entity.Order
	err := s.client.From("orders").Insert(map[string]any{
		"user_id":             userID,
		"restaurant_id":       restaurantID,
		"total_price":         total,
		"delivery_address_id": deliveryAddressID,
		"payment_method":      paymentMethod,
		"delivery_notes":      deliveryNotes,
	}).Single().Execute(ctx, &order)
	if err != nil {
		s.notify.Error("ไม่สามารถสร้างออเดอร์ได้", errDescription(err))
		return nil, err
	}

	items := make([]map[string]any, 0, len(lines))
	for _, l := range lines {
		items = append(items, map[string]any{
			"order_id":     order.ID,
			"menu_item_id": l.MenuItem.ID,
			"quantity":     l.Quantity,
			"price":        l.MenuItem.Price,
			"notes":        l.Notes,
		})
	}
	if err := s.client.From("order_items").Insert(items).Execute(ctx, nil); err != nil {
		s.notify.Error("ไม่สามารถบันทึกรายการอาหารได้", errDescription(err))
		return nil, err
	}

	s.notify.Success("สั่งอาหารสำเร็จ", "หมายเลขออเดอร์: "+shortID(order.ID))
	return &order, nil
}

// ListForMe คืน order ของ user ปัจจุบัน (backend scope แถวตาม token อยู่แล้ว)
func (s *OrderService) ListForMe(ctx context.Context) []entity.Order {
	var rows []entity.Order
	err := s.client.From("orders").Select("*").Order("created_at", false).Execute(ctx, &rows)
	if err != nil {
		s.notify.Error("ไม่สามารถดึงข้อมูลออเดอร์ได้", errDescription(err))
		log.Printf("orders: list: %v", err)
		return []entity.Order{}
	}
	return rows
}

// Detail ประกอบ order + ร้าน + รายการ + ที่อยู่จัดส่ง
func (s *OrderService) Detail(ctx context.Context, orderID string) *OrderDetail {
	var d OrderDetail
	err := s.client.From("orders").
		Select("*,restaurant:restaurants(name,address,phone)").
		Eq("id", orderID).Single().Execute(ctx, &d)
	if err != nil {
		if !backend.IsNotFound(err) {
			s.notify.Error("ไม่สามารถดึงข้อมูลออเดอร์ได้", errDescription(err))
			log.Printf("orders: detail %s: %v", orderID, err)
		}
		return nil
	}

	err = s.client.From("order_items").
		Select("*,menu_item:menu_items(name,price)").
		Eq("order_id", orderID).Execute(ctx, &d.Items)
	if err != nil {
		s.notify.Error("ไม่สามารถดึงข้อมูลรายการอาหารได้", errDescription(err))
		log.Printf("orders: items of %s: %v", orderID, err)
		return nil
	}

	if d.DeliveryAddressID != "" {
		var addr entity.Address
		err := s.client.From("addresses").Select("*").Eq("id", d.DeliveryAddressID).Single().Execute(ctx, &addr)
		if err == nil {
			d.DeliveryAddress = &addr
		}
		// address หายไม่ถือเป็น failure ของ detail
	}
	return &d
}

// Track ฟังสถานะ order แบบ realtime; คืน cancel func ที่ caller ต้องเรียกตอนเลิกดู
func (s *OrderService) Track(ctx context.Context, orderID string, onUpdate func(entity.Order)) (func(), error) {
	ch, err := s.client.Realtime.SubscribeRowUpdates(ctx, "orders", orderID, func(record json.RawMessage) {
		var o entity.Order
		if err := json.Unmarshal(record, &o); err != nil {
			log.Printf("orders: bad realtime row: %v", err)
			return
		}
		onUpdate(o)
	})
	if err != nil {
		return nil, err
	}
	return ch.Close, nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
