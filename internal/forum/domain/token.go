package domain

// TokenPair is what the login and refresh endpoints return: the short-lived
// access token and the refresh token bound to it.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type,omitempty"` // typically "Bearer"
}
