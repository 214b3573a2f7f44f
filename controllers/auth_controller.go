package controllers

import (
	"errors"

	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/pkg/resp"
	"github.com/Tour-Der-Wang-Dev/baan-wang-delivery-khrap/store"

	"github.com/gin-gonic/gin"
)

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RegisterRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Password  string `json:"password" binding:"required,min=6"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

type UpdateProfileRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Phone     *string `json:"phone"`
}

type AuthController struct {
	Sessions *store.SessionStore
}

func NewAuthController(sessions *store.SessionStore) *AuthController {
	return &AuthController{Sessions: sessions}
}

// POST /auth/login
// ?from= คือหน้าที่ user ตั้งใจจะไปก่อนโดนส่งมา login
func (a *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	if err := a.Sessions.SignIn(c.Request.Context(), req.Email, req.Password); err != nil {
		resp.Unauthorized(c, "เข้าสู่ระบบไม่สำเร็จ")
		return
	}

	redirect := c.Query("from")
	if redirect == "" {
		redirect = "/"
	}
	resp.OK(c, gin.H{"redirect": redirect})
}

// POST /auth/register - สมัครแล้วยังไม่ login ต้องรอยืนยันอีเมล
func (a *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	metadata := map[string]any{}
	if req.FirstName != "" {
		metadata["first_name"] = req.FirstName
	}
	if req.LastName != "" {
		metadata["last_name"] = req.LastName
	}

	if err := a.Sessions.SignUp(c.Request.Context(), req.Email, req.Password, metadata); err != nil {
		resp.BadRequest(c, "สมัครสมาชิกไม่สำเร็จ")
		return
	}
	resp.Created(c, gin.H{"message": "กรุณาตรวจสอบอีเมลของคุณเพื่อยืนยันการสมัคร"})
}

// POST /auth/logout
func (a *AuthController) Logout(c *gin.Context) {
	if err := a.Sessions.SignOut(c.Request.Context()); err != nil {
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, gin.H{"redirect": "/"})
}

// GET /auth/me
func (a *AuthController) Me(c *gin.Context) {
	user := a.Sessions.User()
	if user == nil {
		resp.Unauthorized(c, "กรุณาเข้าสู่ระบบก่อนดำเนินการ")
		return
	}
	resp.OK(c, gin.H{
		"user":    user,
		"profile": a.Sessions.Profile(),
	})
}

// PATCH /auth/me
func (a *AuthController) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, err.Error())
		return
	}

	// ส่งเฉพาะ field ที่ client ตั้งใจแก้
	updates := map[string]any{}
	if req.FirstName != nil {
		updates["first_name"] = *req.FirstName
	}
	if req.LastName != nil {
		updates["last_name"] = *req.LastName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if len(updates) == 0 {
		resp.BadRequest(c, "no fields to update")
		return
	}

	if err := a.Sessions.UpdateProfile(c.Request.Context(), updates); err != nil {
		if errors.Is(err, store.ErrNotSignedIn) {
			resp.Unauthorized(c, "กรุณาเข้าสู่ระบบก่อนดำเนินการ")
			return
		}
		resp.ServerError(c, err)
		return
	}
	resp.OK(c, a.Sessions.Profile())
}

// POST /auth/me/avatar (multipart field "file")
func (a *AuthController) UploadAvatar(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		resp.BadRequest(c, "missing file")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		resp.ServerError(c, err)
		return
	}
	defer f.Close()

	url, err := a.Sessions.UploadAvatar(c.Request.Context(), fileHeader.Filename, f, fileHeader.Size)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotSignedIn):
			resp.Unauthorized(c, "กรุณาเข้าสู่ระบบก่อนดำเนินการ")
		case errors.Is(err, store.ErrUnsupportedFileType):
			resp.BadRequest(c, "กรุณาใช้ไฟล์รูปภาพ JPG, PNG หรือ GIF")
		case errors.Is(err, store.ErrFileTooLarge):
			resp.BadRequest(c, "กรุณาใช้ไฟล์ที่มีขนาดไม่เกิน 2MB")
		default:
			resp.ServerError(c, err)
		}
		return
	}
	resp.OK(c, gin.H{"avatar_url": url})
}
