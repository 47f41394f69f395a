package authapi

import (
	"atrium/cmd/identity"
	"atrium/cmd/internal/auth/session"
)

type signupRequest struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	Name     *string `json:"name"`
}

type signinRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userResponse struct {
	ID    string  `json:"id"`
	Email string  `json:"email"`
	Name  *string `json:"name"`
}

type meResponse struct {
	User *userResponse `json:"user"`
}

type ackResponse struct {
	OK bool `json:"ok"`
}

func userResponseFrom(u identity.User) userResponse {
	return userResponse{ID: u.ID, Email: u.Email, Name: u.Name}
}

func userResponseFromIdentity(id session.Identity) userResponse {
	return userResponse{ID: id.UserID, Email: id.Email, Name: id.Name}
}
