package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// รหัสของ "ไม่พบแถว" จาก rest layer - ไม่ถือเป็น failure
const codeNoRows = "PGRST116"

type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("backend: %s (%s)", e.Message, e.Code)
	}
	return "backend: " + e.Message
}

// IsNotFound = query เจอศูนย์แถวตอนขอแถวเดียว
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == codeNoRows
}

func parseAPIError(res *http.Response) error {
	apiErr := &APIError{Status: res.StatusCode}
	body, _ := io.ReadAll(io.LimitReader(res.Body, 1<<16))
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = res.Status
	}
	return apiErr
}
