package services

import (
	"context"
	"errors"
	"io"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/backend"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
)

// ProfileService อ่าน/แก้ตาราง profiles (profile.id = user id ของ auth เสมอ)
type ProfileService struct {
	client *backend.Client
}

func NewProfileService(c *backend.Client) *ProfileService {
	return &ProfileService{client: c}
}

// Fetch คืน nil, nil ถ้ายังไม่มีแถว profile (user ใหม่) - ไม่ใช่ error
func (s *ProfileService) Fetch(ctx context.Context, userID string) (*entity.Profile, error) {
	var p entity.Profile
	err := s.client.From("profiles").Select("*").Eq("id", userID).Single().Execute(ctx, &p)
	if backend.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Update แก้เฉพาะ field ที่ส่งมา แล้วคืนแถวที่ backend ตอบกลับ
func (s *ProfileService) Update(ctx context.Context, userID string, updates map[string]any) (*entity.Profile, error) {
	var rows []entity.Profile
	err := s.client.From("profiles").Update(updates).Eq("id", userID).Execute(ctx, &rows)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("profile row not found")
	}
	return &rows[0], nil
}

// AvatarStorage อัปโหลดรูปโปรไฟล์ขึ้น bucket "avatars"
type AvatarStorage struct {
	client *backend.Client
}

func NewAvatarStorage(c *backend.Client) *AvatarStorage {
	return &AvatarStorage{client: c}
}

func (s *AvatarStorage) Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error) {
	err := s.client.Storage.Upload(ctx, "avatars", path, r, backend.UploadOptions{
		CacheControl: "3600",
		Upsert:       false,
		ContentType:  contentType,
	})
	if err != nil {
		return "", err
	}
	return s.client.Storage.GetPublicURL("avatars", path), nil
}
