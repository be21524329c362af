package dto

type LoginRequest struct {
	UserID      string `json:"user_id" binding:"required"`
	DisplayName string `json:"display_name" binding:"required"`
	Role        string `json:"role" binding:"required,oneof=admin student"`
}

type UserResponse struct {
	UserID          string `json:"user_id"`
	DisplayName     string `json:"display_name"`
	Role            string `json:"role"`
	AuthenticatedAt string `json:"authenticated_at"`
}
