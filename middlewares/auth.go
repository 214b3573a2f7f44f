package middlewares

import (
	"net/http"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/store"

	"github.com/gin-gonic/gin"
)

// RequireAuth กันทุก route ที่ต้อง login โดยดูจาก session store
// ยัง loading อยู่ = ตอบ 503 ให้ client ลองใหม่ (ไม่เดาว่า login หรือยัง)
func RequireAuth(sessions *store.SessionStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch sessions.State() {
		case store.StateLoading:
			c.JSON(http.StatusServiceUnavailable, gin.H{"ok": false, "error": "กำลังโหลด..."})
			c.Abort()
			return
		case store.StateSignedOut:
			c.JSON(http.StatusUnauthorized, gin.H{
				"ok":       false,
				"error":    "กรุณาเข้าสู่ระบบก่อนดำเนินการ",
				"redirect": "/login?from=" + c.Request.URL.Path,
			})
			c.Abort()
			return
		}

		c.Set("userId", sessions.User().ID)
		c.Next()
	}
}
