package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/backend"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/notify"
)

type RestaurantService struct {
	client *backend.Client
	notify notify.Notifier
}

func NewRestaurantService(c *backend.Client, n notify.Notifier) *RestaurantService {
	return &RestaurantService{client: c, notify: n}
}

// List เรียงตามชื่อ; search ว่าง = เอาทุกร้าน
// error จาก backend แปลงเป็น toast แล้วคืน list ว่าง ไม่โยนขึ้น view
func (s *RestaurantService) List(ctx context.Context, search string) []entity.Restaurant {
	q := s.client.From("restaurants").Select("*").Order("name", true)
	if search != "" {
		q = q.Ilike("name", "%"+search+"%")
	}
	var rows []entity.Restaurant
	if err := q.Execute(ctx, &rows); err != nil {
		s.notify.Error("ไม่สามารถดึงข้อมูลร้านอาหารได้", errDescription(err))
		log.Printf("restaurants: list: %v", err)
		return []entity.Restaurant{}
	}
	return rows
}

// Get คืน nil ถ้าไม่เจอ (ไม่ toast สำหรับ not-found ธรรมดา)
func (s *RestaurantService) Get(ctx context.Context, id string) *entity.Restaurant {
	var r entity.Restaurant
	err := s.client.From("restaurants").Select("*").Eq("id", id).Single().Execute(ctx, &r)
	if err != nil {
		if !backend.IsNotFound(err) {
			s.notify.Error("ไม่สามารถดึงข้อมูลร้านอาหารได้", errDescription(err))
			log.Printf("restaurants: get %s: %v", id, err)
		}
		return nil
	}
	return &r
}

// MenuItems เอาเฉพาะเมนูที่ยังขายอยู่; category ว่าง = ทุกหมวด
func (s *RestaurantService) MenuItems(ctx context.Context, restaurantID, category string) []entity.MenuItem {
	q := s.client.From("menu_items").Select("*").
		Eq("restaurant_id", restaurantID).
		Eq("is_available", true)
	if category != "" {
		q = q.Eq("category", category)
	}
	var rows []entity.MenuItem
	if err := q.Execute(ctx, &rows); err != nil {
		s.notify.Error("ไม่สามารถดึงข้อมูลเมนูอาหารได้", errDescription(err))
		log.Printf("restaurants: menu of %s: %v", restaurantID, err)
		return []entity.MenuItem{}
	}
	return rows
}

// MenuItem ดึงเมนูเดี่ยว (ใช้ตอนเพิ่มลงตะกร้า - ราคาต้องมาจาก backend ไม่ใช่ form)
func (s *RestaurantService) MenuItem(ctx context.Context, id string) *entity.MenuItem {
	var m entity.MenuItem
	err := s.client.From("menu_items").Select("*").Eq("id", id).Single().Execute(ctx, &m)
	if err != nil {
		if !backend.IsNotFound(err) {
			s.notify.Error("ไม่สามารถดึงข้อมูลเมนูอาหารได้", errDescription(err))
			log.Printf("restaurants: menu item %s: %v", id, err)
		}
		return nil
	}
	return &m
}

// UploadRestaurantImage เพดาน 5MB ที่เหลือเหมือน avatar
func (s *RestaurantService) UploadRestaurantImage(ctx context.Context, restaurantID, filename string, r io.Reader, size int64) (string, error) {
	return s.uploadImage(ctx, "restaurant_images", restaurantID, filename, r, size, 5<<20)
}

// UploadMenuItemImage เพดาน 3MB
func (s *RestaurantService) UploadMenuItemImage(ctx context.Context, menuItemID, filename string, r io.Reader, size int64) (string, error) {
	return s.uploadImage(ctx, "menu_item_images", menuItemID, filename, r, size, 3<<20)
}

var errImageRejected = errors.New("image rejected")

var imageContentTypes = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

func (s *RestaurantService) uploadImage(ctx context.Context, bucket, prefix, filename string, r io.Reader, size, maxBytes int64) (string, error) {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	contentType, ok := imageContentTypes[ext]
	if !ok {
		s.notify.Error("รูปแบบไฟล์ไม่รองรับ", "กรุณาใช้ไฟล์รูปภาพ JPG, PNG หรือ GIF")
		return "", errImageRejected
	}
	if size > maxBytes {
		s.notify.Error("ไฟล์มีขนาดใหญ่เกินไป", fmt.Sprintf("กรุณาใช้ไฟล์ที่มีขนาดไม่เกิน %dMB", maxBytes>>20))
		return "", errImageRejected
	}

	path := fmt.Sprintf("%s/%d.%s", prefix, time.Now().UnixMilli(), ext)
	err := s.client.Storage.Upload(ctx, bucket, path, r, backend.UploadOptions{
		CacheControl: "3600",
		ContentType:  contentType,
	})
	if err != nil {
		s.notify.Error("อัปโหลดรูปภาพไม่สำเร็จ", errDescription(err))
		return "", err
	}
	return s.client.Storage.GetPublicURL(bucket, path), nil
}

func errDescription(err error) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
