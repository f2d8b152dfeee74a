package auth

// TokenManager abstracts session token issuance and verification.
// Issue mints a signed token naming the email; Decode verifies signature
// and expiry and returns the email the token was issued for.
type TokenManager interface {
	Issue(email string) (string, error)
	Decode(token string) (string, error)
}
