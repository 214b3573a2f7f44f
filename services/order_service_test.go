package services

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/backend"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
)

type toastRecorder struct {
	successes []string
	errs      []string
}

func (t *toastRecorder) Success(title, _ string) { t.successes = append(t.successes, title) }
func (t *toastRecorder) Error(title, _ string)   { t.errs = append(t.errs, title) }

func testLines() []entity.CartLine {
	return []entity.CartLine{
		{MenuItem: entity.MenuItem{ID: "m1", Name: "ผัดไทย", Price: 65, RestaurantID: "r1"}, Quantity: 2, Notes: "เผ็ดน้อย"},
		{MenuItem: entity.MenuItem{ID: "m2", Name: "ต้มยำกุ้ง", Price: 120, RestaurantID: "r1"}, Quantity: 1},
	}
}

func TestCreateOrder(t *testing.T) {
	var orderBody, itemsBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/rest/v1/orders":
			orderBody = readBody(r)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(201)
			w.Write([]byte(`{"id":"1a2b3c4d-5678-90ab-cdef-1234567890ab","user_id":"u1","restaurant_id":"r1","status":"pending","total_price":250}`))
		case "/rest/v1/order_items":
			itemsBody = readBody(r)
			w.WriteHeader(201)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	toasts := &toastRecorder{}
	svc := NewOrderService(backend.New(backend.Config{BaseURL: srv.URL, AnonKey: "anon"}, nil), toasts)

	order, err := svc.Create(context.Background(), "u1", "r1", testLines(), "addr1", "cash", "ฝากไว้หน้าบ้าน")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if order.ID == "" || order.Status != "pending" {
		t.Errorf("order = %+v", order)
	}

	var sent map[string]any
	if err := json.Unmarshal(orderBody, &sent); err != nil {
		t.Fatalf("orders body not json: %v", err)
	}
	// 65x2 + 120 = 250 คิดจาก line ฝั่งเรา ไม่เชื่อ client
	if sent["total_price"] != float64(250) {
		t.Errorf("total_price = %v, want 250", sent["total_price"])
	}
	if sent["user_id"] != "u1" || sent["restaurant_id"] != "r1" || sent["payment_method"] != "cash" {
		t.Errorf("order row = %v", sent)
	}

	var items []map[string]any
	if err := json.Unmarshal(itemsBody, &items); err != nil {
		t.Fatalf("order_items body not json: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("items = %d, want 2", len(items))
	}
	if items[0]["order_id"] != "1a2b3c4d-5678-90ab-cdef-1234567890ab" {
		t.Errorf("items not linked to order: %v", items[0])
	}
	if items[0]["menu_item_id"] != "m1" || items[0]["quantity"] != float64(2) || items[0]["price"] != float64(65) || items[0]["notes"] != "เผ็ดน้อย" {
		t.Errorf("item row = %v", items[0])
	}

	if len(toasts.successes) != 1 {
		t.Errorf("success toasts = %v", toasts.successes)
	}
}

func TestCreateRequiresSignIn(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	svc := NewOrderService(backend.New(backend.Config{BaseURL: srv.URL, AnonKey: "anon"}, nil), &toastRecorder{})

	_, err := svc.Create(context.Background(), "", "r1", testLines(), "", "cash", "")
	if !errors.Is(err, ErrNotSignedIn) {
		t.Fatalf("err = %v, want ErrNotSignedIn", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("signed-out create must not reach the network")
	}
}

func TestCreateEmptyCart(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
	}))
	defer srv.Close()

	svc := NewOrderService(backend.New(backend.Config{BaseURL: srv.URL, AnonKey: "anon"}, nil), &toastRecorder{})

	_, err := svc.Create(context.Background(), "u1", "r1", nil, "", "cash", "")
	if !errors.Is(err, ErrEmptyCart) {
		t.Fatalf("err = %v, want ErrEmptyCart", err)
	}
	if atomic.LoadInt32(&hits) != 0 {
		t.Error("empty cart must not reach the network")
	}
}

func TestDetailNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(406)
		w.Write([]byte(`{"code":"PGRST116","message":"JSON object requested, multiple (or no) rows returned"}`))
	}))
	defer srv.Close()

	toasts := &toastRecorder{}
	svc := NewOrderService(backend.New(backend.Config{BaseURL: srv.URL, AnonKey: "anon"}, nil), toasts)

	if d := svc.Detail(context.Background(), "nope"); d != nil {
		t.Errorf("Detail = %+v, want nil", d)
	}
	// ไม่พบ = เรื่องปกติ ไม่ต้องเด้ง toast
	if len(toasts.errs) != 0 {
		t.Errorf("error toasts = %v", toasts.errs)
	}
}

func TestDetailAssemblesItemsAndAddress(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/rest/v1/orders":
			w.Write([]byte(`{"id":"o1","status":"delivery","total_price":250,"delivery_address_id":"a1","restaurant":{"name":"ร้านป้าแดง","address":"ถ.สุขุมวิท","phone":"021234567"}}`))
		case "/rest/v1/order_items":
			w.Write([]byte(`[{"id":"i1","order_id":"o1","quantity":2,"price":65,"menu_item":{"name":"ผัดไทย","price":65}}]`))
		case "/rest/v1/addresses":
			w.Write([]byte(`{"id":"a1","description":"บ้าน","street":"99/1 หมู่ 4"}`))
		default:
			w.WriteHeader(404)
		}
	}))
	defer srv.Close()

	svc := NewOrderService(backend.New(backend.Config{BaseURL: srv.URL, AnonKey: "anon"}, nil), &toastRecorder{})

	d := svc.Detail(context.Background(), "o1")
	if d == nil {
		t.Fatal("Detail = nil")
	}
	if d.Restaurant.Name != "ร้านป้าแดง" {
		t.Errorf("restaurant = %+v", d.Restaurant)
	}
	if len(d.Items) != 1 || d.Items[0].MenuItem.Name != "ผัดไทย" {
		t.Errorf("items = %+v", d.Items)
	}
	if d.DeliveryAddress == nil || d.DeliveryAddress.ID != "a1" {
		t.Errorf("delivery address = %+v", d.DeliveryAddress)
	}
}

func TestListForMeErrorReturnsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(500)
		w.Write([]byte(`{"message":"boom"}`))
	}))
	defer srv.Close()

	toasts := &toastRecorder{}
	svc := NewOrderService(backend.New(backend.Config{BaseURL: srv.URL, AnonKey: "anon"}, nil), toasts)

	rows := svc.ListForMe(context.Background())
	if rows == nil || len(rows) != 0 {
		t.Errorf("rows = %v, want empty non-nil slice", rows)
	}
	if len(toasts.errs) != 1 {
		t.Errorf("error toasts = %v", toasts.errs)
	}
}

func readBody(r *http.Request) []byte {
	b, _ := io.ReadAll(r.Body)
	return b
}
