package jwtmw

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/response"
)

const ContextUserID = "userID"

// AuthRequired は JWT を検証し、認証済みユーザーだけを通す
// Gin ミドルウェアを返します。
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Authorization ヘッダーを取得
		auth := c.GetHeader("Authorization")
		if !strings.HasPrefix(auth, "Bearer ") {
			response.Abort(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		tokenStr := strings.TrimPrefix(auth, "Bearer ")

		// 2. 環境変数から署名鍵を読み込む
		secret := os.Getenv(EnvKeyJWTSecret)
		if secret == "" {
			// サーバーの設定不備（JWT_SECRET 未設定）
			response.Abort(c, http.StatusInternalServerError, "server misconfigured")
			return
		}

		// 3. JWT をパースして署名を検証
		token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
			// 署名アルゴリズムを確認（HMAC のみ許可）
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			response.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}

		// 4. subject を取り出す。subject のないトークンはどのハンドラーでも使えない
		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			response.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		sub, ok := claims["sub"].(float64) // JWT の数値は float64 でデコードされる
		if !ok || sub <= 0 {
			response.Abort(c, http.StatusUnauthorized, "invalid token")
			return
		}
		c.Set(ContextUserID, uint(sub))

		c.Next()
	}
}

// UserID は AuthRequired がセットした認証済みユーザーを返します。
func UserID(c *gin.Context) (uint, bool) {
	v, ok := c.Get(ContextUserID)
	if !ok {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id != 0
}
