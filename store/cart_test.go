package store

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
)

type memPersister struct {
	data map[string][]byte
}

func newMemPersister() *memPersister {
	return &memPersister{data: map[string][]byte{}}
}

func (m *memPersister) Get(key string, dest any) (bool, error) {
	b, ok := m.data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, nil
	}
	return true, nil
}

func (m *memPersister) Put(key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	m.data[key] = b
	return nil
}

func (m *memPersister) Delete(key string) error {
	delete(m.data, key)
	return nil
}

type toastRecorder struct {
	successes []string
	errors    []string
}

func (t *toastRecorder) Success(title, _ string) { t.successes = append(t.successes, title) }
func (t *toastRecorder) Error(title, _ string)   { t.errors = append(t.errors, title) }

func menuItem(id, name string, price float64, restaurantID string) entity.MenuItem {
	return entity.MenuItem{ID: id, Name: name, Price: price, RestaurantID: restaurantID}
}

func newTestCart() *CartStore {
	return NewCartStore(newMemPersister(), &toastRecorder{})
}

func TestAddItemAccumulatesSameMenuItem(t *testing.T) {
	s := newTestCart()
	padThai := menuItem("m1", "ผัดไทย", 65, "r1")

	if err := s.AddItem(padThai, 2, "r1", "ร้านป้าแดง", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := s.AddItem(padThai, 3, "r1", "ร้านป้าแดง", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	lines := s.Lines()
	if len(lines) != 1 {
		t.Fatalf("same menu item should accumulate, got %d lines", len(lines))
	}
	if lines[0].Quantity != 5 {
		t.Errorf("quantity = %d, want 5", lines[0].Quantity)
	}
	if s.TotalItems() != 5 {
		t.Errorf("TotalItems = %d, want 5", s.TotalItems())
	}
}

func TestAddItemTotalMatchesSumOfQuantities(t *testing.T) {
	s := newTestCart()
	qtys := []int{1, 4, 2, 3}
	want := 0
	for i, q := range qtys {
		item := menuItem("m"+string(rune('a'+i)), "เมนู", 50, "r1")
		if err := s.AddItem(item, q, "r1", "ร้าน", ""); err != nil {
			t.Fatalf("AddItem: %v", err)
		}
		want += q
	}
	if s.TotalItems() != want {
		t.Errorf("TotalItems = %d, want %d", s.TotalItems(), want)
	}
}

func TestAddItemRestaurantConflict(t *testing.T) {
	s := newTestCart()
	a := menuItem("m1", "ผัดไทย", 65, "restA")
	b := menuItem("m2", "ข้าวมันไก่", 50, "restB")

	if err := s.AddItem(a, 1, "restA", "ร้าน A", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	err := s.AddItem(b, 2, "restB", "ร้าน B", "")
	if !errors.Is(err, ErrRestaurantConflict) {
		t.Fatalf("err = %v, want ErrRestaurantConflict", err)
	}
	// ปฏิเสธ = ตะกร้าเดิมอยู่ครบ
	if got := s.Lines(); len(got) != 1 || got[0].MenuItem.ID != "m1" {
		t.Fatalf("cart changed after refused conflict: %+v", got)
	}

	// ยืนยัน = เหลือของร้าน B อย่างเดียว quantity ตาม argument
	s.ReplaceCart(b, 2, "restB", "ร้าน B", "")
	lines := s.Lines()
	if len(lines) != 1 || lines[0].MenuItem.ID != "m2" || lines[0].Quantity != 2 {
		t.Fatalf("after replace: %+v", lines)
	}
	if s.RestaurantID() != "restB" || s.RestaurantName() != "ร้าน B" {
		t.Errorf("restaurant = %s/%s, want restB", s.RestaurantID(), s.RestaurantName())
	}
}

func TestRemoveLastItemClearsRestaurant(t *testing.T) {
	s := newTestCart()
	if err := s.AddItem(menuItem("m1", "ผัดไทย", 65, "r1"), 1, "r1", "ร้านป้าแดง", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	s.RemoveItem("m1")

	if len(s.Lines()) != 0 {
		t.Fatal("cart should be empty")
	}
	if s.RestaurantID() != "" || s.RestaurantName() != "" {
		t.Errorf("restaurant association should be cleared, got %s/%s", s.RestaurantID(), s.RestaurantName())
	}
}

func TestUpdateQuantityZeroEqualsRemove(t *testing.T) {
	s := newTestCart()
	if err := s.AddItem(menuItem("m1", "ผัดไทย", 65, "r1"), 2, "r1", "ร้าน", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	s.UpdateQuantity("m1", 0)

	if len(s.Lines()) != 0 {
		t.Fatal("UpdateQuantity(id, 0) should remove the line")
	}
	if s.RestaurantID() != "" {
		t.Error("restaurant should be cleared after last line removed")
	}
}

func TestUpdateQuantityAndNotesUnknownIDIsNoop(t *testing.T) {
	s := newTestCart()
	if err := s.AddItem(menuItem("m1", "ผัดไทย", 65, "r1"), 1, "r1", "ร้าน", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}

	s.UpdateQuantity("nope", 9)
	s.UpdateNotes("nope", "x")
	s.RemoveItem("nope")

	lines := s.Lines()
	if len(lines) != 1 || lines[0].Quantity != 1 || lines[0].Notes != "" {
		t.Fatalf("unknown id mutated cart: %+v", lines)
	}
}

func TestAddItemNonPositiveQuantityIsNoop(t *testing.T) {
	s := newTestCart()
	if err := s.AddItem(menuItem("m1", "ผัดไทย", 65, "r1"), 0, "r1", "ร้าน", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if len(s.Lines()) != 0 {
		t.Fatal("quantity 0 should not add a line")
	}
}

func TestSubtotal(t *testing.T) {
	s := newTestCart()
	if err := s.AddItem(menuItem("m1", "ผัดไทย", 65, "r1"), 2, "r1", "ร้าน", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if err := s.AddItem(menuItem("m2", "ต้มยำกุ้ง", 120, "r1"), 1, "r1", "ร้าน", ""); err != nil {
		t.Fatalf("AddItem: %v", err)
	}
	if got := s.Subtotal(); got != 250 {
		t.Errorf("Subtotal = %v, want 250", got)
	}
}

func TestNotesOverwriteOnlyWhenNonEmpty(t *testing.T) {
	s := newTestCart()
	item := menuItem("m1", "ผัดไทย", 65, "r1")

	s.AddItem(item, 1, "r1", "ร้าน", "ไม่ใส่ถั่ว")
	s.AddItem(item, 1, "r1", "ร้าน", "")
	if got := s.Lines()[0].Notes; got != "ไม่ใส่ถั่ว" {
		t.Errorf("empty notes overwrote existing: %q", got)
	}

	s.AddItem(item, 1, "r1", "ร้าน", "เผ็ดน้อย")
	if got := s.Lines()[0].Notes; got != "เผ็ดน้อย" {
		t.Errorf("non-empty notes should overwrite, got %q", got)
	}
}

func TestPersistenceRoundTrip(t *testing.T) {
	p := newMemPersister()
	s1 := NewCartStore(p, &toastRecorder{})
	s1.AddItem(menuItem("m1", "ผัดไทย", 65, "r1"), 2, "r1", "ร้านป้าแดง", "เผ็ดน้อย")
	s1.AddItem(menuItem("m2", "ต้มยำกุ้ง", 120, "r1"), 1, "r1", "ร้านป้าแดง", "")

	// เปิดแอปใหม่จาก storage เดิม
	s2 := NewCartStore(p, &toastRecorder{})
	got, want := s2.Lines(), s1.Lines()
	if len(got) != len(want) {
		t.Fatalf("rehydrated %d lines, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].MenuItem.ID != want[i].MenuItem.ID ||
			got[i].Quantity != want[i].Quantity ||
			got[i].Notes != want[i].Notes {
			t.Errorf("line %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if s2.RestaurantID() != "r1" || s2.RestaurantName() != "ร้านป้าแดง" {
		t.Errorf("restaurant = %s/%s", s2.RestaurantID(), s2.RestaurantName())
	}
	if s2.Subtotal() != 250 {
		t.Errorf("Subtotal after rehydrate = %v, want 250", s2.Subtotal())
	}
}

func TestCorruptRecordHydratesEmpty(t *testing.T) {
	p := newMemPersister()
	p.data[CartStorageKey] = []byte(`{"cart": [{"menuItem"`)

	s := NewCartStore(p, &toastRecorder{})
	if len(s.Lines()) != 0 || s.RestaurantID() != "" {
		t.Fatal("corrupt record should hydrate as empty cart")
	}
}

func TestClearEmptiesEverything(t *testing.T) {
	s := newTestCart()
	s.AddItem(menuItem("m1", "ผัดไทย", 65, "r1"), 2, "r1", "ร้าน", "")

	s.Clear()

	if len(s.Lines()) != 0 || s.RestaurantID() != "" || s.TotalItems() != 0 || s.Subtotal() != 0 {
		t.Fatal("Clear should reset lines, restaurant and totals")
	}
}
