package utils

import (
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/kataras/iris/v12/middleware/jwt"
)

const (
	// AccessTokenTTL bounds a session opened by a magic link.
	AccessTokenTTL = 24 * time.Hour
	// MagicLinkTTL bounds the window between requesting and clicking a link.
	MagicLinkTTL = 15 * time.Minute
)

// AccessToken is the claims payload trusted by the buyer routes. The
// UserID inside is the acting user for every mutation.
type AccessToken struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// MagicLinkToken is the short-lived claims payload embedded in a sign-in
// email. Nonce keys the redis entry that makes the link single-use.
type MagicLinkToken struct {
	Email string `json:"email"`
	Nonce string `json:"nonce"`
}

func CreateAccessToken(userID, email string) (string, error) {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("ACCESS_TOKEN_SECRET"), AccessTokenTTL)
	token, err := signer.Sign(AccessToken{UserID: userID, Email: email})
	if err != nil {
		return "", err
	}
	return string(token), nil
}

func CreateMagicLinkToken(email string) (token, nonce string, err error) {
	signer := jwt.NewSigner(jwt.HS256, os.Getenv("EMAIL_TOKEN_SECRET"), MagicLinkTTL)
	nonce = uuid.NewString()
	raw, err := signer.Sign(MagicLinkToken{Email: email, Nonce: nonce})
	if err != nil {
		return "", "", err
	}
	return string(raw), nonce, nil
}

func VerifyMagicLinkToken(token string) (*MagicLinkToken, error) {
	verifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("EMAIL_TOKEN_SECRET")))
	verified, err := verifier.VerifyToken([]byte(token))
	if err != nil {
		return nil, err
	}
	var claims MagicLinkToken
	if err := verified.Claims(&claims); err != nil {
		return nil, err
	}
	return &claims, nil
}
