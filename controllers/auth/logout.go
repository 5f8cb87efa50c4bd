package auth

import (
	"net/http"
	"strings"
	"time"

	"educycle/database"
	"educycle/middleware"
	"educycle/models"
	"educycle/utils"
)

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// POST /v1/auth/logout
//
// Revokes the presented refresh token and blacklists the current access
// token's jti for its remaining lifetime.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	var req LogoutRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if req.RefreshToken != "" {
		_ = database.DB.Model(&models.RefreshToken{}).
			Where("id = ?", req.RefreshToken).
			Update("revoked", true).Error
	}

	authz := r.Header.Get("Authorization")
	if strings.HasPrefix(authz, "Bearer ") {
		tokenStr := strings.TrimPrefix(authz, "Bearer ")
		if _, claims, err := utils.ValidateAccessToken(tokenStr); err == nil {
			jti, _ := claims["jti"].(string)
			ttl := time.Hour
			if expRaw, ok := claims["exp"].(float64); ok {
				if remaining := time.Until(time.Unix(int64(expRaw), 0)); remaining > 0 {
					ttl = remaining
				}
			}
			_ = utils.RevokeJTI(jti, ttl)
		}
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logout berhasil"})
}
