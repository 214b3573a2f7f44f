package entity

// สถานะ order ตาม flow ของร้าน → ไรเดอร์ → ลูกค้า
const (
	OrderStatusPending   = "pending"
	OrderStatusConfirmed = "confirmed"
	OrderStatusPreparing = "preparing"
	OrderStatusDelivery  = "delivery"
	OrderStatusCompleted = "completed"
)

var orderStatusLabels = map[string]string{
	OrderStatusPending:   "รอการยืนยัน",
	OrderStatusConfirmed: "ยืนยันคำสั่งซื้อ",
	OrderStatusPreparing: "กำลังจัดเตรียมอาหาร",
	OrderStatusDelivery:  "กำลังจัดส่ง",
	OrderStatusCompleted: "จัดส่งสำเร็จ",
}

func OrderStatusLabel(status string) string {
	if th, ok := orderStatusLabels[status]; ok {
		return th
	}
	return status
}
