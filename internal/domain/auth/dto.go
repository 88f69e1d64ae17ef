package auth

type SignInRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type EmailRequest struct {
	Email string `json:"email" binding:"required"`
}

type VerifyRequest struct {
	Token string       `json:"token" binding:"required"`
	Type  TokenPurpose `json:"type" binding:"required"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdatePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type UpdateEmailRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password"`
}

type OAuthCallbackRequest struct {
	State string `json:"state" form:"state" binding:"required"`
	Code  string `json:"code" form:"code" binding:"required"`
}
