// Package store รวม state machine ฝั่ง client: ตะกร้า กับ identity/session
package store

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/notify"
)

// key ใน local storage - หนึ่ง record JSON ต่อหนึ่งตะกร้า
const CartStorageKey = "food-delivery-cart"

// ErrRestaurantConflict = ตะกร้ามีของร้านอื่นอยู่ ผู้เรียกต้องให้ user ยืนยัน
// แล้วค่อยเรียก ReplaceCart (store ไม่เด้ง dialog เอง)
var ErrRestaurantConflict = errors.New("cart holds items from another restaurant")

// CartPersister เขียน/อ่าน record ของตะกร้า (localstate.Store ใช้ได้เลย)
type CartPersister interface {
	Get(key string, dest any) (bool, error)
	Put(key string, v any) error
}

// รูปแบบ record ที่ serialize ลง storage
type cartRecord struct {
	Cart           []entity.CartLine `json:"cart"`
	RestaurantID   string            `json:"restaurantId"`
	RestaurantName string            `json:"restaurantName"`
}

// CartStore ถือรายการที่จะสั่งของร้านเดียวเท่านั้น
// invariant: ทุก line อยู่ร้านเดียวกับ restaurantID; ตะกร้าว่าง = ไม่ผูกร้าน
type CartStore struct {
	mu             sync.Mutex
	lines          []entity.CartLine
	restaurantID   string
	restaurantName string

	persist CartPersister
	notify  notify.Notifier
}

// NewCartStore สร้างตะกร้าแล้ว hydrate จาก storage หนึ่งครั้ง
// record หาย/พัง = เริ่มจากตะกร้าว่าง ไม่ error
func NewCartStore(p CartPersister, n notify.Notifier) *CartStore {
	s := &CartStore{persist: p, notify: n}
	var rec cartRecord
	ok, err := p.Get(CartStorageKey, &rec)
	if err != nil {
		log.Printf("cart: load saved cart: %v", err)
		return s
	}
	if ok {
		s.lines = rec.Cart
		s.restaurantID = rec.RestaurantID
		s.restaurantName = rec.RestaurantName
	}
	return s
}

// Conflicts = การเพิ่มของจากร้านนี้ต้องล้างตะกร้าก่อนหรือไม่ (pure decision)
func (s *CartStore) Conflicts(restaurantID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.conflictsLocked(restaurantID)
}

func (s *CartStore) conflictsLocked(restaurantID string) bool {
	return len(s.lines) > 0 && s.restaurantID != restaurantID
}

// AddItem เพิ่มเมนูลงตะกร้า
//   - qty <= 0 เงียบ ๆ ไม่ทำอะไร (UI ควรกันมาก่อนแล้ว)
//   - ร้านไม่ตรงกับของในตะกร้า -> ErrRestaurantConflict ให้ caller ไปถาม user
//   - เมนูเดิมมีอยู่แล้ว -> บวก quantity และทับ notes เฉพาะเมื่อ notes ใหม่ไม่ว่าง
func (s *CartStore) AddItem(item entity.MenuItem, quantity int, restaurantID, restaurantName, notes string) error {
	if quantity <= 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conflictsLocked(restaurantID) {
		return ErrRestaurantConflict
	}
	if len(s.lines) == 0 {
		s.restaurantID = restaurantID
		s.restaurantName = restaurantName
	}

	for i := range s.lines {
		if s.lines[i].MenuItem.ID == item.ID {
			s.lines[i].Quantity += quantity
			if notes != "" {
				s.lines[i].Notes = notes
			}
			s.saveLocked()
			s.notify.Success("อัปเดตรายการในตะกร้า", fmt.Sprintf("%s x%d", item.Name, s.lines[i].Quantity))
			return nil
		}
	}

	s.lines = append(s.lines, entity.CartLine{MenuItem: item, Quantity: quantity, Notes: notes})
	s.saveLocked()
	s.notify.Success("เพิ่มลงตะกร้าแล้ว", fmt.Sprintf("%s x%d", item.Name, quantity))
	return nil
}

// ReplaceCart ล้างของร้านเดิมทิ้งแล้วเริ่มตะกร้าใหม่ด้วยเมนูนี้
// เรียกหลังจาก user ยืนยันตอนเจอ ErrRestaurantConflict แล้วเท่านั้น
func (s *CartStore) ReplaceCart(item entity.MenuItem, quantity int, restaurantID, restaurantName, notes string) {
	if quantity <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lines = []entity.CartLine{{MenuItem: item, Quantity: quantity, Notes: notes}}
	s.restaurantID = restaurantID
	s.restaurantName = restaurantName
	s.saveLocked()
	s.notify.Success("เพิ่มลงตะกร้าแล้ว", fmt.Sprintf("%s x%d", item.Name, quantity))
}

// UpdateQuantity ตั้ง quantity ใหม่; <= 0 เท่ากับเอาออก; ไม่เจอเมนู = no-op
func (s *CartStore) UpdateQuantity(menuItemID string, quantity int) {
	if quantity <= 0 {
		s.RemoveItem(menuItemID)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].MenuItem.ID == menuItemID {
			s.lines[i].Quantity = quantity
			s.saveLocked()
			return
		}
	}
}

func (s *CartStore) UpdateNotes(menuItemID, notes string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.lines {
		if s.lines[i].MenuItem.ID == menuItemID {
			s.lines[i].Notes = notes
			s.saveLocked()
			return
		}
	}
}

// RemoveItem เอาเมนูออก; ถ้าตะกร้าว่างแล้วให้ปลดร้านออกด้วย
func (s *CartStore) RemoveItem(menuItemID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.lines[:0]
	removed := false
	for _, l := range s.lines {
		if l.MenuItem.ID == menuItemID {
			removed = true
			continue
		}
		kept = append(kept, l)
	}
	if !removed {
		return
	}
	s.lines = kept
	if len(s.lines) == 0 {
		s.restaurantID = ""
		s.restaurantName = ""
	}
	s.saveLocked()
	s.notify.Success("นำรายการออกจากตะกร้าแล้ว", "")
}

// Clear ล้างตะกร้าทั้งหมด (เรียกหลังสั่งอาหารสำเร็จด้วย)
func (s *CartStore) Clear() {
	s.mu.Lock()
	s.lines = nil
	s.restaurantID = ""
	s.restaurantName = ""
	s.saveLocked()
	s.mu.Unlock()
	s.notify.Success("ล้างตะกร้าแล้ว", "")
}

// Lines คืนสำเนา ป้องกันคนนอก mutate ตะกร้าตรง ๆ
func (s *CartStore) Lines() []entity.CartLine {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]entity.CartLine, len(s.lines))
	copy(out, s.lines)
	return out
}

func (s *CartStore) RestaurantID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restaurantID
}

func (s *CartStore) RestaurantName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.restaurantName
}

// TotalItems = ผลรวม quantity ทุก line (คำนวณสดทุกครั้ง ไม่ cache)
func (s *CartStore) TotalItems() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// Subtotal = ผลรวมราคาต่อหน่วย x quantity
func (s *CartStore) Subtotal() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	var sum float64
	for _, l := range s.lines {
		sum += l.MenuItem.Price * float64(l.Quantity)
	}
	return sum
}

// saveLocked persist ทุก mutation; เขียนพลาดแค่ log (state ใน memory ยังถูก)
func (s *CartStore) saveLocked() {
	rec := cartRecord{
		Cart:           s.lines,
		RestaurantID:   s.restaurantID,
		RestaurantName: s.restaurantName,
	}
	if err := s.persist.Put(CartStorageKey, rec); err != nil {
		log.Printf("cart: save cart: %v", err)
	}
}
