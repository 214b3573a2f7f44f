// Package backend เป็น client ของ hosted backend (auth + rest + storage + realtime)
// ทุกตาราง/ไฟล์/การยืนยันตัวตนอยู่ฝั่งโน้น แอปนี้เรียกผ่าน REST กับ websocket เท่านั้น
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

type Config struct {
	BaseURL string
	AnonKey string
}

// SessionPersister เก็บ session ข้าม restart (localstate.Store ใช้ได้เลย)
type SessionPersister interface {
	Get(key string, dest any) (bool, error)
	Put(key string, v any) error
	Delete(key string) error
}

type Client struct {
	baseURL string
	anonKey string
	http    *http.Client

	Auth     *AuthClient
	Storage  *StorageClient
	Realtime *RealtimeClient
}

func New(cfg Config, persist SessionPersister) *Client {
	c := &Client{
		baseURL: cfg.BaseURL,
		anonKey: cfg.AnonKey,
		http:    &http.Client{Timeout: 30 * time.Second},
	}
	c.Auth = newAuthClient(c, persist)
	c.Storage = &StorageClient{c: c}
	c.Realtime = &RealtimeClient{c: c}
	return c
}

// accessToken = token ของ session ถ้า login แล้ว ไม่งั้นใช้ anon key
func (c *Client) accessToken() string {
	if s := c.Auth.GetSession(); s != nil {
		return s.AccessToken
	}
	return c.anonKey
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("apikey", c.anonKey)
	req.Header.Set("Authorization", "Bearer "+c.accessToken())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// do ยิง request แล้ว decode ลง dest (nil = ไม่สนใจ body)
// status >= 400 แปลงเป็น *APIError เสมอ ไม่ปล่อย error ดิบขึ้นไปถึง view
func (c *Client) do(req *http.Request, dest any) error {
	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode >= 400 {
		return parseAPIError(res)
	}
	if dest == nil {
		io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(dest)
}

func marshalBody(v any) (io.Reader, error) {
	if v == nil {
		return nil, nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
