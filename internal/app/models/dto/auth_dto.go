package dto

// LoginRequest carries staff credentials.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@school.example"`
	Password string `json:"password" binding:"required" example:"ChangeMe123!"`
}

// TokenResponse is returned after a successful staff login.
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType" example:"Bearer"`
	ExpiresIn   int    `json:"expiresIn" example:"3600"`
}
