package routes

import (
	"errors"
	"log"
	"net/http"
	"strings"

	"github.com/SanskarBabel/BuyerBase/models"
	"github.com/SanskarBabel/BuyerBase/utils"

	"github.com/go-redis/redis/v8"
	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// AuthHandler implements passwordless sign-in: a short-lived token is
// emailed to the user, and exchanging it (once) yields an access token.
// The user record is created lazily on first successful verification.
type AuthHandler struct {
	DB     *gorm.DB
	Redis  *redis.Client
	Mailer *utils.Mailer
}

type MagicLinkInput struct {
	Email string `json:"email" validate:"required,email"`
}

type VerifyInput struct {
	Token string `json:"token" validate:"required"`
}

func magicLinkKey(nonce string) string {
	return "magiclink:" + nonce
}

// POST /api/auth/magic-link
func (h *AuthHandler) RequestMagicLink(ctx iris.Context) {
	var input MagicLinkInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	email := strings.ToLower(strings.TrimSpace(input.Email))
	token, nonce, err := utils.CreateMagicLinkToken(email)
	if err != nil {
		log.Printf("failed to sign magic-link token: %v", err)
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	err = h.Redis.Set(ctx.Request().Context(), magicLinkKey(nonce), email, utils.MagicLinkTTL).Err()
	if err != nil {
		log.Printf("failed to store magic-link nonce: %v", err)
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	h.Mailer.SendMagicLink(email, token)

	// Same response whether or not the address is known, so the endpoint
	// cannot be used to probe for registered emails.
	ctx.JSON(iris.Map{"message": "sign-in link sent"})
}

// POST /api/auth/verify
func (h *AuthHandler) VerifyMagicLink(ctx iris.Context) {
	var input VerifyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	claims, err := utils.VerifyMagicLinkToken(input.Token)
	if err != nil {
		utils.JSONError(ctx, http.StatusUnauthorized, "invalid_token", "sign-in link is invalid or expired")
		return
	}

	// GETDEL makes the link single-use: a second click finds nothing.
	stored, err := h.Redis.GetDel(ctx.Request().Context(), magicLinkKey(claims.Nonce)).Result()
	if errors.Is(err, redis.Nil) || (err == nil && stored != claims.Email) {
		utils.JSONError(ctx, http.StatusUnauthorized, "invalid_token", "sign-in link is invalid or already used")
		return
	}
	if err != nil {
		log.Printf("failed to consume magic-link nonce: %v", err)
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	var user models.User
	err = h.DB.Where("email = ?", claims.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		user = models.User{Email: claims.Email}
		err = h.DB.Create(&user).Error
	}
	if err != nil {
		log.Printf("failed to load or create user %s: %v", claims.Email, err)
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	accessToken, err := utils.CreateAccessToken(user.ID, user.Email)
	if err != nil {
		log.Printf("failed to sign access token: %v", err)
		utils.JSONError(ctx, http.StatusInternalServerError, "server_error", "internal server error")
		return
	}

	ctx.JSON(iris.Map{"token": accessToken, "user": user})
}
