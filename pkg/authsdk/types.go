package authsdk

// TokenResponse is the token pair returned by login and refresh.
type TokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int64  `json:"expires_in"`
}

// User describes an account as returned by registration and role changes.
type User struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

// ErrorResponse is the error envelope the service writes on failures.
type ErrorResponse struct {
	Error string `json:"error"`
}
