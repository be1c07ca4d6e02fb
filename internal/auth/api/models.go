package authapi

type signupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"fullName"`
}

// responsePayload is the wire envelope for all signup outcomes:
// data carries the issued token on success and is null otherwise.
type responsePayload struct {
	Success bool    `json:"success"`
	Data    *string `json:"data"`
	Message string  `json:"message,omitempty"`
}
