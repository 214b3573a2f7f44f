package configs

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// OpenLocalDB เปิด sqlite สำหรับ state ฝั่งเรา (ตะกร้า + session)
// ข้อมูลจริงทั้งหมดอยู่บน backend; ไฟล์นี้เป็นแค่ localStorage ของแอป
func OpenLocalDB(path string) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{})
	if err != nil {
		panic("failed to connect local database")
	}
	return db
}
