package dto

// ── 教师认证 DTO ──

// LoginRequest 教师登录请求（只有口令，没有账号）
type LoginRequest struct {
	Password string `json:"password" binding:"required,max=64"`
}

// ChangePasswordRequest 修改口令请求
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=4,max=64"`
}

// TokenResponse 登录成功响应
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int    `json:"expiresIn"` // 有效期（秒）
}
