package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/backend"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/entity"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/notify"
)

var (
	ErrNotSignedIn         = errors.New("not signed in")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file too large")
)

const maxAvatarBytes = 2 << 20 // 2 MiB

var allowedAvatarExts = map[string]string{
	"jpg":  "image/jpeg",
	"jpeg": "image/jpeg",
	"png":  "image/png",
	"gif":  "image/gif",
}

// AuthAPI คือส่วนของ auth service ที่ store นี้ใช้ (*backend.AuthClient implement ครบ)
type AuthAPI interface {
	SignInWithPassword(ctx context.Context, email, password string) (*backend.Session, error)
	SignUp(ctx context.Context, email, password string, metadata map[string]any) (*backend.User, error)
	SignOut(ctx context.Context) error
	GetSession() *backend.Session
	OnAuthStateChange(fn func(backend.AuthEvent, *backend.Session)) func()
}

// ProfileAPI อ่าน/แก้แถว profiles ของ user
type ProfileAPI interface {
	Fetch(ctx context.Context, userID string) (*entity.Profile, error)
	Update(ctx context.Context, userID string, updates map[string]any) (*entity.Profile, error)
}

// AvatarUploader อัปโหลดรูปแล้วคืน public URL
type AvatarUploader interface {
	Upload(ctx context.Context, path string, r io.Reader, contentType string) (string, error)
}

type SessionState int

const (
	StateLoading SessionState = iota // ยังไม่รู้ว่า login อยู่ไหม
	StateSignedIn
	StateSignedOut
)

// SessionStore mirror session ของ auth service + profile ของ user
// transition มาจากสองทางเท่านั้น: GetSession ตอน Start กับ event stream ของ service
type SessionStore struct {
	auth     AuthAPI
	profiles ProfileAPI
	avatars  AvatarUploader
	notify   notify.Notifier

	mu      sync.Mutex
	session *backend.Session
	user    *backend.User
	profile *entity.Profile
	loading bool
	version uint64 // เพิ่มทุก transition ไว้กัน async result ที่มาช้า
	unsub   func()
}

func NewSessionStore(auth AuthAPI, profiles ProfileAPI, avatars AvatarUploader, n notify.Notifier) *SessionStore {
	return &SessionStore{auth: auth, profiles: profiles, avatars: avatars, notify: n, loading: true}
}

// Start สมัคร listener ก่อน แล้วค่อยอ่าน session เดิม (ลำดับเดียวกันกัน event หล่น)
func (s *SessionStore) Start(ctx context.Context) {
	s.unsub = s.auth.OnAuthStateChange(func(_ backend.AuthEvent, sess *backend.Session) {
		s.applySession(ctx, sess)
	})
	s.applySession(ctx, s.auth.GetSession())
}

// Stop ถอน listener - ต้องเรียกตอนปิดแอป ไม่งั้น subscription ค้าง
func (s *SessionStore) Stop() {
	if s.unsub != nil {
		s.unsub()
		s.unsub = nil
	}
}

func (s *SessionStore) applySession(ctx context.Context, sess *backend.Session) {
	s.mu.Lock()
	s.version++
	v := s.version
	s.session = sess
	s.loading = false
	if sess != nil && sess.User != nil {
		s.user = sess.User
		userID := s.user.ID
		s.mu.Unlock()
		go s.fetchProfile(ctx, userID, v)
		return
	}
	s.user = nil
	s.profile = nil
	s.mu.Unlock()
}

// fetchProfile ดึง profile แบบ async; apply เฉพาะเมื่อ identity ยังเป็นคนเดิม
// (sign-out/สลับ user ระหว่างรอ = ทิ้งผลลัพธ์)
func (s *SessionStore) fetchProfile(ctx context.Context, userID string, version uint64) {
	p, err := s.profiles.Fetch(ctx, userID)
	if err != nil {
		// profile ไม่ครบไม่ทำให้หลุด login - แค่ log
		log.Printf("session: fetch profile: %v", err)
		return
	}
	s.applyProfile(userID, version, p)
}

func (s *SessionStore) applyProfile(userID string, version uint64, p *entity.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.version != version || s.user == nil || s.user.ID != userID {
		return // ผลลัพธ์ stale
	}
	s.profile = p
}

// SignIn แลก credential เป็น session; state เปลี่ยนผ่าน event ของ auth service
// error คืนให้ caller ด้วย เพราะต้องยกเลิก navigation
func (s *SessionStore) SignIn(ctx context.Context, email, password string) error {
	if _, err := s.auth.SignInWithPassword(ctx, email, password); err != nil {
		s.notify.Error("เข้าสู่ระบบไม่สำเร็จ", errMessage(err, "กรุณาตรวจสอบอีเมลและรหัสผ่าน"))
		return err
	}
	s.notify.Success("เข้าสู่ระบบสำเร็จ", "ยินดีต้อนรับกลับมา")
	return nil
}

// SignUp สมัครสมาชิก - ไม่ได้ session ทันที ต้องยืนยันอีเมลตาม flow ของ service
func (s *SessionStore) SignUp(ctx context.Context, email, password string, metadata map[string]any) error {
	if _, err := s.auth.SignUp(ctx, email, password, metadata); err != nil {
		s.notify.Error("สมัครสมาชิกไม่สำเร็จ", errMessage(err, "กรุณาตรวจสอบข้อมูลของคุณและลองใหม่อีกครั้ง"))
		return err
	}
	s.notify.Success("สมัครสมาชิกสำเร็จ", "กรุณาตรวจสอบอีเมลของคุณเพื่อยืนยันการสมัคร")
	return nil
}

// SignOut: ล้าง identity เฉพาะเมื่อ service ยืนยัน (ผ่าน SIGNED_OUT event)
// error = ยังถือ session เดิมไว้ ไม่ force-clear กัน desync กับฝั่ง service
func (s *SessionStore) SignOut(ctx context.Context) error {
	if err := s.auth.SignOut(ctx); err != nil {
		s.notify.Error("ไม่สามารถออกจากระบบได้", "กรุณาลองใหม่อีกครั้ง")
		return err
	}
	s.notify.Success("ออกจากระบบสำเร็จ", "")
	return nil
}

// UpdateProfile แก้ field ของ profile; ต้อง login แล้วเท่านั้น
func (s *SessionStore) UpdateProfile(ctx context.Context, updates map[string]any) error {
	s.mu.Lock()
	user := s.user
	version := s.version
	s.mu.Unlock()
	if user == nil {
		s.notify.Error("กรุณาเข้าสู่ระบบก่อนดำเนินการ", "")
		return ErrNotSignedIn
	}

	p, err := s.profiles.Update(ctx, user.ID, updates)
	if err != nil {
		s.notify.Error("อัปเดตข้อมูลไม่สำเร็จ", errMessage(err, ""))
		return err
	}
	s.applyProfile(user.ID, version, p)
	s.notify.Success("อัปเดตข้อมูลสำเร็จ", "")
	return nil
}

// UploadAvatar ตรวจชนิด/ขนาดไฟล์ก่อนแตะ network, อัปโหลดไปที่ {userID}/{millis}.{ext}
// แล้ว persist URL ใหม่ลง profile; fail ที่ขั้นไหนก็คืนค่าว่าง
func (s *SessionStore) UploadAvatar(ctx context.Context, filename string, r io.Reader, size int64) (string, error) {
	s.mu.Lock()
	user := s.user
	s.mu.Unlock()
	if user == nil {
		s.notify.Error("กรุณาเข้าสู่ระบบก่อนดำเนินการ", "")
		return "", ErrNotSignedIn
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	contentType, ok := allowedAvatarExts[ext]
	if !ok {
		s.notify.Error("รูปแบบไฟล์ไม่รองรับ", "กรุณาใช้ไฟล์รูปภาพ JPG, PNG หรือ GIF")
		return "", ErrUnsupportedFileType
	}
	if size > maxAvatarBytes {
		s.notify.Error("ไฟล์มีขนาดใหญ่เกินไป", "กรุณาใช้ไฟล์ที่มีขนาดไม่เกิน 2MB")
		return "", ErrFileTooLarge
	}

	path := fmt.Sprintf("%s/%d.%s", user.ID, time.Now().UnixMilli(), ext)
	url, err := s.avatars.Upload(ctx, path, r, contentType)
	if err != nil {
		s.notify.Error("อัปโหลดรูปโปรไฟล์ไม่สำเร็จ", errMessage(err, ""))
		return "", err
	}

	if err := s.UpdateProfile(ctx, map[string]any{"avatar_url": url}); err != nil {
		return "", err
	}
	s.notify.Success("อัปโหลดรูปโปรไฟล์สำเร็จ", "")
	return url, nil
}

func (s *SessionStore) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.loading {
		return StateLoading
	}
	if s.user != nil {
		return StateSignedIn
	}
	return StateSignedOut
}

func (s *SessionStore) Session() *backend.Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.session
}

func (s *SessionStore) User() *backend.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

func (s *SessionStore) Profile() *entity.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

func (s *SessionStore) IsLoading() bool {
	return s.State() == StateLoading
}

func errMessage(err error, fallback string) string {
	var apiErr *backend.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if fallback != "" {
		return fallback
	}
	return err.Error()
}
