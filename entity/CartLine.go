package entity

// CartLine = เมนูหนึ่งรายการในตะกร้า
// invariant: ต่อหนึ่งตะกร้ามี line เดียวต่อ MenuItem.ID
// json tag เป็น camelCase เพราะ serialize ลง local record ไม่ใช่ตาราง backend
type CartLine struct {
	MenuItem MenuItem `json:"menuItem"`
	Quantity int      `json:"quantity"`
	Notes    string   `json:"notes,omitempty"`
}
