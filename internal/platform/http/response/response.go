// Package response は全エンドポイント共通の {success, message, data} 形式で応答を書き込みます。
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/api"
)

// OK は 200 で応答します。
func OK(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, api.Envelope{Success: true, Message: message, Data: data})
}

// Created は 201 で応答します。
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, api.Envelope{Success: true, Message: message, Data: data})
}

// Fail は指定されたステータスでエラー応答を書き込みます。
func Fail(c *gin.Context, status int, message string) {
	c.JSON(status, api.Envelope{Success: false, Message: message})
}

// Abort はエラー応答を書き込み、後続のハンドラーを止めます。
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, api.Envelope{Success: false, Message: message})
}

// InternalError は err をクライアントに見せません。ログは呼び出し側で出します。
func InternalError(c *gin.Context) {
	Fail(c, http.StatusInternalServerError, "internal server error")
}
