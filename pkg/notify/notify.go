// Package notify คือ toast ของฝั่ง UI - ทุก failure จาก backend จบที่นี่
// ไม่ใช่ panic ขึ้นไปถึง handler
package notify

import "log"

type Notifier interface {
	Success(title, description string)
	Error(title, description string)
}

// LogNotifier เขียน toast ลง log (surface จริงของ UI อยู่ฝั่ง frontend)
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (*LogNotifier) Success(title, description string) {
	if description == "" {
		log.Printf("[toast] %s", title)
		return
	}
	log.Printf("[toast] %s: %s", title, description)
}

func (*LogNotifier) Error(title, description string) {
	if description == "" {
		log.Printf("[toast:error] %s", title)
		return
	}
	log.Printf("[toast:error] %s: %s", title, description)
}
