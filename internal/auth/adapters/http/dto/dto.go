// Package dto содержит структуры запросов и ответов HTTP API.
package dto

// SignupRequest - тело запроса POST /signup.
type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest - тело запроса POST /login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ForgotPasswordRequest - тело запроса POST /forgot-password.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest - тело запроса POST /reset-password.
type ResetPasswordRequest struct {
	Email       string `json:"email"`
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse - ответ с локализованным сообщением.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginResponse - ответ на успешный вход.
type LoginResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

// HomeResponse - ответ GET /user-home.
type HomeResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}
