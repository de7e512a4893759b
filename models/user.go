package models

import "time"

type User struct {
	ID        string    `json:"id"`
	Username  string    `json:"username"`
	Password  string    `json:"password,omitempty"` // Lưu mật khẩu đã được mã hóa (hashed)
	CreatedAt time.Time `json:"created_at"`
}
