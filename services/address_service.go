package services

import (
	"context"
	"log"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/backend"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/notify"
)

type AddressService struct {
	client *backend.Client
	notify notify.Notifier
}

func NewAddressService(c *backend.Client, n notify.Notifier) *AddressService {
	return &AddressService{client: c, notify: n}
}

// List ที่อยู่ของ user ปัจจุบัน ที่อยู่หลักขึ้นก่อน
func (s *AddressService) List(ctx context.Context) []entity.Address {
	var rows []entity.Address
	err := s.client.From("addresses").Select("*").
		Order("is_default", false).
		Order("created_at", false).
		Execute(ctx, &rows)
	if err != nil {
		s.notify.Error("ไม่สามารถดึงข้อมูลที่อยู่ได้", errDescription(err))
		log.Printf("addresses: list: %v", err)
		return []entity.Address{}
	}
	return rows
}

func (s *AddressService) Get(ctx context.Context, id string) *entity.Address {
	var a entity.Address
	err := s.client.From("addresses").Select("*").Eq("id", id).Single().Execute(ctx, &a)
	if err != nil {
		if !backend.IsNotFound(err) {
			s.notify.Error("ไม่สามารถดึงข้อมูลที่อยู่ได้", errDescription(err))
			log.Printf("addresses: get %s: %v", id, err)
		}
		return nil
	}
	return &a
}

// Create เพิ่มที่อยู่; ถ้าตั้งเป็นหลัก ต้องปลดหลักเดิมก่อน (มีหลักได้ที่เดียว)
func (s *AddressService) Create(ctx context.Context, userID string, addr entity.Address) *entity.Address {
	if userID == "" {
		s.notify.Error("คุณยังไม่ได้เข้าสู่ระบบ", "")
		return nil
	}
	if addr.IsDefault {
		s.unsetDefault(ctx, userID)
	}

	var rows []entity.Address
	err := s.client.From("addresses").Insert(map[string]any{
		"user_id":     userID,
		"description": addr.Description,
		"street":      addr.Street,
		"city":        addr.City,
		"state":       addr.State,
		"zip_code":    addr.ZipCode,
		"is_default":  addr.IsDefault,
	}).Execute(ctx, &rows)
	if err != nil || len(rows) == 0 {
		s.notify.Error("ไม่สามารถบันทึกที่อยู่ได้", errDescription(err))
		log.Printf("addresses: create: %v", err)
		return nil
	}
	s.notify.Success("บันทึกที่อยู่สำเร็จ", "")
	return &rows[0]
}

func (s *AddressService) Update(ctx context.Context, userID, id string, updates map[string]any) *entity.Address {
	if userID == "" {
		s.notify.Error("คุณยังไม่ได้เข้าสู่ระบบ", "")
		return nil
	}
	if def, ok := updates["is_default"].(bool); ok && def {
		s.unsetDefault(ctx, userID)
	}

	var rows []entity.Address
	err := s.client.From("addresses").Update(updates).
		Eq("id", id).Eq("user_id", userID).
		Execute(ctx, &rows)
	if err != nil || len(rows) == 0 {
		s.notify.Error("ไม่สามารถอัปเดตที่อยู่ได้", errDescription(err))
		log.Printf("addresses: update %s: %v", id, err)
		return nil
	}
	s.notify.Success("อัปเดตที่อยู่สำเร็จ", "")
	return &rows[0]
}

func (s *AddressService) Delete(ctx context.Context, id string) bool {
	err := s.client.From("addresses").Delete().Eq("id", id).Execute(ctx, nil)
	if err != nil {
		s.notify.Error("ไม่สามารถลบที่อยู่ได้", errDescription(err))
		log.Printf("addresses: delete %s: %v", id, err)
		return false
	}
	s.notify.Success("ลบที่อยู่สำเร็จ", "")
	return true
}

func (s *AddressService) SetDefault(ctx context.Context, userID, id string) bool {
	if userID == "" {
		s.notify.Error("คุณยังไม่ได้เข้าสู่ระบบ", "")
		return false
	}
	s.unsetDefault(ctx, userID)

	err := s.client.From("addresses").Update(map[string]any{"is_default": true}).
		Eq("id", id).Eq("user_id", userID).
		Execute(ctx, nil)
	if err != nil {
		s.notify.Error("ไม่สามารถตั้งค่าที่อยู่เริ่มต้นได้", errDescription(err))
		log.Printf("addresses: set default %s: %v", id, err)
		return false
	}
	s.notify.Success("ตั้งค่าที่อยู่เริ่มต้นสำเร็จ", "")
	return true
}

// unsetDefault ปลดที่อยู่หลักเดิมของ user; พลาดก็ไม่เป็นไร ขั้นถัดไปจะฟ้องเอง
func (s *AddressService) unsetDefault(ctx context.Context, userID string) {
	err := s.client.From("addresses").Update(map[string]any{"is_default": false}).
		Eq("is_default", true).Eq("user_id", userID).
		Execute(ctx, nil)
	if err != nil {
		log.Printf("addresses: unset default: %v", err)
	}
}
