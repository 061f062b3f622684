package model

// TokenManager issues and validates session access tokens for logged-in accounts.
type TokenManager interface {
	GenerateAccessToken(username string) (string, error)
	ParseAccessToken(token string) (string, error)
}
