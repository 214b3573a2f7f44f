package localstate

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Record = หนึ่ง key ต่อหนึ่งก้อน JSON (แทน localStorage ของเว็บ)
type Record struct {
	Key       string `gorm:"primaryKey;size:128"`
	Value     []byte
	UpdatedAt time.Time
}

type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) (*Store, error) {
	if err := db.AutoMigrate(&Record{}); err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// Get อ่าน record ตาม key; record หายหรือ JSON พังถือว่าไม่มี (ok=false) ไม่ error
func (s *Store) Get(key string, dest any) (bool, error) {
	var rec Record
	err := s.db.First(&rec, "key = ?", key).Error
	if err == gorm.ErrRecordNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(rec.Value, dest); err != nil {
		log.Printf("localstate: corrupt record %q, treating as empty: %v", key, err)
		return false, nil
	}
	return true, nil
}

// Put เขียนทับทั้งก้อน (last write wins ข้ามหลาย process - ยอมรับได้)
func (s *Store) Put(key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	rec := Record{Key: key, Value: data, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&rec).Error
}

func (s *Store) Delete(key string) error {
	return s.db.Delete(&Record{}, "key = ?", key).Error
}
