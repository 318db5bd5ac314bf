// models/auth.go

package models

type SignupRequest struct {
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirmPassword"`
	Handle          string `json:"handle"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserDetailsRequest struct {
	Bio      string `json:"bio"`
	Website  string `json:"website"`
	Location string `json:"location"`
}

type PostRequest struct {
	Body string `json:"body"`
}

type FCMTokenRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
}
