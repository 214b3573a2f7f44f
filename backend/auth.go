package backend

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type AuthEvent string

const (
	SignedIn       AuthEvent = "SIGNED_IN"
	SignedOut      AuthEvent = "SIGNED_OUT"
	TokenRefreshed AuthEvent = "TOKEN_REFRESHED"
)

const sessionStorageKey = "backend-auth-session"

// refresh ก่อนหมดอายุเท่านี้
const refreshMargin = 60 * time.Second

type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type Session struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
	ExpiresAt    int64  `json:"expires_at"` // unix seconds
	User         *User  `json:"user"`
}

// AuthClient mirror สถานะ login กับ auth service
// เก็บ session ล่าสุดไว้ใน persister เพื่อให้เปิดแอปใหม่แล้วยัง login อยู่
type AuthClient struct {
	c       *Client
	persist SessionPersister

	mu        sync.Mutex
	session   *Session
	listeners map[int]func(AuthEvent, *Session)
	nextID    int
	refresh   *time.Timer
}

func newAuthClient(c *Client, persist SessionPersister) *AuthClient {
	a := &AuthClient{c: c, persist: persist, listeners: map[int]func(AuthEvent, *Session){}}
	a.restore()
	return a
}

func (a *AuthClient) restore() {
	if a.persist == nil {
		return
	}
	var s Session
	ok, err := a.persist.Get(sessionStorageKey, &s)
	if err != nil {
		log.Printf("auth: restore session: %v", err)
		return
	}
	if !ok || s.AccessToken == "" {
		return
	}
	if s.ExpiresAt > 0 && time.Now().Unix() >= s.ExpiresAt {
		// หมดอายุระหว่างปิดแอป - ทิ้งไปให้ user login ใหม่
		a.persist.Delete(sessionStorageKey)
		return
	}
	a.mu.Lock()
	a.session = &s
	a.scheduleRefreshLocked()
	a.mu.Unlock()
}

// SignInWithPassword แลก email+password เป็น session
func (a *AuthClient) SignInWithPassword(ctx context.Context, email, password string) (*Session, error) {
	body, err := marshalBody(map[string]string{"email": email, "password": password})
	if err != nil {
		return nil, err
	}
	req, err := a.c.newRequest(ctx, "POST", "/auth/v1/token?grant_type=password", body)
	if err != nil {
		return nil, err
	}
	var s Session
	if err := a.c.do(req, &s); err != nil {
		return nil, err
	}
	a.adopt(&s, SignedIn)
	return &s, nil
}

// SignUp สมัครสมาชิก - ยังไม่ได้ session จนกว่าจะยืนยันอีเมลตาม flow ของ service
func (a *AuthClient) SignUp(ctx context.Context, email, password string, metadata map[string]any) (*User, error) {
	payload := map[string]any{"email": email, "password": password}
	if len(metadata) > 0 {
		payload["data"] = metadata
	}
	body, err := marshalBody(payload)
	if err != nil {
		return nil, err
	}
	req, err := a.c.newRequest(ctx, "POST", "/auth/v1/signup", body)
	if err != nil {
		return nil, err
	}
	var out struct {
		ID    string `json:"id"`
		Email string `json:"email"`
		User  *User  `json:"user"`
	}
	if err := a.c.do(req, &out); err != nil {
		return nil, err
	}
	if out.User != nil {
		return out.User, nil
	}
	return &User{ID: out.ID, Email: out.Email}, nil
}

// SignOut ขอให้ service จบ session; ล้าง state ฝั่งเราเฉพาะเมื่อสำเร็จ
// (ถ้า error ปล่อย session ไว้ เพื่อไม่ desync กับฝั่ง service)
func (a *AuthClient) SignOut(ctx context.Context) error {
	req, err := a.c.newRequest(ctx, "POST", "/auth/v1/logout", nil)
	if err != nil {
		return err
	}
	if err := a.c.do(req, nil); err != nil {
		return err
	}
	a.clear()
	return nil
}

func (a *AuthClient) GetSession() *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.session
}

// OnAuthStateChange สมัครฟัง event (SIGNED_IN/SIGNED_OUT/TOKEN_REFRESHED)
// คืน func สำหรับ unsubscribe - ต้องเรียกตอน owner ถูก dispose
func (a *AuthClient) OnAuthStateChange(fn func(AuthEvent, *Session)) func() {
	a.mu.Lock()
	id := a.nextID
	a.nextID++
	a.listeners[id] = fn
	a.mu.Unlock()
	return func() {
		a.mu.Lock()
		delete(a.listeners, id)
		a.mu.Unlock()
	}
}

func (a *AuthClient) Close() {
	a.mu.Lock()
	if a.refresh != nil {
		a.refresh.Stop()
		a.refresh = nil
	}
	a.mu.Unlock()
}

func (a *AuthClient) adopt(s *Session, event AuthEvent) {
	if s.ExpiresAt == 0 && s.ExpiresIn > 0 {
		s.ExpiresAt = time.Now().Unix() + s.ExpiresIn
	}
	if s.User == nil {
		s.User = userFromToken(s.AccessToken)
	}
	a.mu.Lock()
	a.session = s
	a.scheduleRefreshLocked()
	a.mu.Unlock()

	if a.persist != nil {
		if err := a.persist.Put(sessionStorageKey, s); err != nil {
			log.Printf("auth: persist session: %v", err)
		}
	}
	a.emit(event, s)
}

func (a *AuthClient) clear() {
	a.mu.Lock()
	a.session = nil
	if a.refresh != nil {
		a.refresh.Stop()
		a.refresh = nil
	}
	a.mu.Unlock()

	if a.persist != nil {
		if err := a.persist.Delete(sessionStorageKey); err != nil {
			log.Printf("auth: drop session: %v", err)
		}
	}
	a.emit(SignedOut, nil)
}

// emit เรียก listener นอก lock กัน deadlock เวลา listener ย้อนมาอ่าน session
func (a *AuthClient) emit(event AuthEvent, s *Session) {
	a.mu.Lock()
	fns := make([]func(AuthEvent, *Session), 0, len(a.listeners))
	for _, fn := range a.listeners {
		fns = append(fns, fn)
	}
	a.mu.Unlock()
	for _, fn := range fns {
		fn(event, s)
	}
}

func (a *AuthClient) scheduleRefreshLocked() {
	if a.refresh != nil {
		a.refresh.Stop()
		a.refresh = nil
	}
	if a.session == nil || a.session.ExpiresAt == 0 || a.session.RefreshToken == "" {
		return
	}
	wait := time.Until(time.Unix(a.session.ExpiresAt, 0)) - refreshMargin
	if wait < time.Second {
		wait = time.Second
	}
	a.refresh = time.AfterFunc(wait, a.refreshToken)
}

func (a *AuthClient) refreshToken() {
	a.mu.Lock()
	cur := a.session
	a.mu.Unlock()
	if cur == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	body, err := marshalBody(map[string]string{"refresh_token": cur.RefreshToken})
	if err != nil {
		return
	}
	req, err := a.c.newRequest(ctx, "POST", "/auth/v1/token?grant_type=refresh_token", body)
	if err != nil {
		return
	}
	var s Session
	if err := a.c.do(req, &s); err != nil {
		// token เดิมอาจยังใช้ได้อีกพัก - log แล้วรอ user action
		log.Printf("auth: token refresh failed: %v", err)
		return
	}
	a.adopt(&s, TokenRefreshed)
}

// userFromToken อ่าน claims จาก access token โดยไม่ verify ลายเซ็น
// (การ verify เป็นหน้าที่ของ backend; เราแค่อยากได้ sub กับ email)
func userFromToken(token string) *User {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}
	u := &User{}
	if sub, ok := claims["sub"].(string); ok {
		u.ID = sub
	}
	if email, ok := claims["email"].(string); ok {
		u.Email = email
	}
	if u.ID == "" {
		return nil
	}
	return u
}
