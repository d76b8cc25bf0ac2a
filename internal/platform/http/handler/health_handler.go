// Package handler はプラットフォームレベルのエンドポイント用HTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"github.com/gin-gonic/gin"
)

// checkTimeout は依存先1件あたりの確認時間の上限です。
const checkTimeout = 2 * time.Second

// Check は依存先（データベース、Redis など）1件の疎通を確認します。
type Check func(ctx context.Context) error

// HealthHandler は /healthz を提供します。
type HealthHandler struct {
	checks map[string]Check
}

// NewHealthHandler は HealthHandler を生成します。nil のチェックは無視します。
func NewHealthHandler(checks map[string]Check) *HealthHandler {
	hc := make(map[string]Check, len(checks))
	for name, fn := range checks {
		if fn != nil {
			hc[name] = fn
		}
	}
	return &HealthHandler{checks: hc}
}

// Health は GET には全依存先の状態を返し、HEAD と OPTIONS には本文なしで応答します。
// レスポンスはキャッシュさせません。
func (h *HealthHandler) Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")

	if c.Request.Method == http.MethodOptions {
		c.Status(http.StatusNoContent)
		return
	}

	status, deps := h.checkAll(c.Request.Context())
	code := http.StatusOK
	if status != "ok" {
		code = http.StatusServiceUnavailable
	}

	if c.Request.Method == http.MethodHead {
		c.Status(code)
		return
	}
	c.JSON(code, gin.H{"status": status, "checks": deps})
}

func (h *HealthHandler) checkAll(ctx context.Context) (string, map[string]string) {
	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	status := "ok"
	deps := make(map[string]string, len(names))
	for _, name := range names {
		cctx, cancel := context.WithTimeout(ctx, checkTimeout)
		err := h.checks[name](cctx)
		cancel()
		if err != nil {
			slog.Warn("health check failed", "dependency", name, "error", err)
			deps[name] = "down"
			status = "degraded"
			continue
		}
		deps[name] = "ok"
	}
	return status, deps
}
