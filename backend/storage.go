package backend

import (
	"context"
	"io"
	"strconv"
)

type StorageClient struct {
	c *Client
}

type UploadOptions struct {
	CacheControl string // วินาที เช่น "3600"
	Upsert       bool
	ContentType  string
}

// Upload อัปโหลด object ไป bucket; path ต้อง namespace กันชนกันเอง (เช่น userID/timestamp.ext)
func (s *StorageClient) Upload(ctx context.Context, bucket, path string, r io.Reader, opt UploadOptions) error {
	req, err := s.c.newRequest(ctx, "POST", "/storage/v1/object/"+bucket+"/"+path, r)
	if err != nil {
		return err
	}
	if opt.ContentType != "" {
		req.Header.Set("Content-Type", opt.ContentType)
	} else {
		req.Header.Set("Content-Type", "application/octet-stream")
	}
	if opt.CacheControl != "" {
		req.Header.Set("Cache-Control", "max-age="+opt.CacheControl)
	}
	req.Header.Set("x-upsert", strconv.FormatBool(opt.Upsert))
	return s.c.do(req, nil)
}

// GetPublicURL คืน address สาธารณะของ object (bucket ต้องเปิด public)
func (s *StorageClient) GetPublicURL(bucket, path string) string {
	return s.c.baseURL + "/storage/v1/object/public/" + bucket + "/" + path
}
