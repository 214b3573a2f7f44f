package entity

// Profile คือข้อมูลผู้ใช้ฝั่งแอป (ตาราง profiles) แยกจาก credential ของ auth service
// Profile.ID ต้องตรงกับ user id ของ session เสมอ
type Profile struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Phone     string `json:"phone,omitempty"`
	AvatarURL string `json:"avatar_url,omitempty"`
	IsDriver  bool   `json:"is_driver"`
}
