package authapi

import (
	"time"

	"vidcore/cmd/identity"
)

type loginRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type changePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

type updateProfileRequest struct {
	FullName *string `json:"fullName"`
	Email    *string `json:"email"`
}

// accountResponse is the sanitized account projection. Password and refresh
// credential hashes never leave the server.
type accountResponse struct {
	ID            string    `json:"id"`
	Username      string    `json:"username"`
	Email         string    `json:"email"`
	FullName      string    `json:"fullName"`
	AvatarURL     string    `json:"avatar"`
	CoverImageURL string    `json:"coverImage,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type tokensResponse struct {
	AccessToken      string    `json:"accessToken"`
	AccessExpiresAt  time.Time `json:"accessExpiresAt"`
	RefreshToken     string    `json:"refreshToken"`
	RefreshExpiresAt time.Time `json:"refreshExpiresAt"`
}

type registerResponse struct {
	Account accountResponse `json:"user"`
}

type loginResponse struct {
	Account accountResponse `json:"user"`
	Tokens  tokensResponse  `json:"tokens"`
}

type refreshResponse struct {
	Tokens tokensResponse `json:"tokens"`
}

type accountEnvelope struct {
	Account accountResponse `json:"user"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func toAccountResponse(a identity.Account) accountResponse {
	return accountResponse{
		ID:            a.ID,
		Username:      a.Username,
		Email:         a.Email,
		FullName:      a.FullName,
		AvatarURL:     a.AvatarURL,
		CoverImageURL: a.CoverImageURL,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
}
