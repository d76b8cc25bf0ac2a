// Package idempotency は Idempotency-Key ヘッダー付きの更新リクエストに対して
// 最初のレスポンスを再送し、クライアントのリトライで同じ操作が二重に適用されないようにします。
package idempotency

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/http/response"
	jwtmw "github.com/amitgupta-mai/sebi-demo-sub000/internal/platform/jwt"
)

const (
	// HeaderKey はクライアントが選んだ UUID を運ぶヘッダーです。
	HeaderKey = "Idempotency-Key"
	// HeaderReplayed は保存済みレスポンスの再送であることを示します。
	HeaderReplayed = "Idempotent-Replayed"

	DefaultTTL    = 24 * time.Hour
	defaultPrefix = "idem"

	stateInProgress = "in_progress"
	stateDone       = "done"
)

// record はキーごとに保存する内容です。Body は最初に送ったバイト列そのままです。
type record struct {
	State       string `json:"state"`
	Fingerprint string `json:"fingerprint"`
	Status      int    `json:"status,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// Middleware は Redis 上でキーを確保します。client が nil なら全リクエストを素通しします。
type Middleware struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

// New は ttl の間レコードを保存する Middleware を返します（0以下なら24時間）。
func New(rdb *redis.Client, ttl time.Duration) *Middleware {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Middleware{rdb: rdb, ttl: ttl, prefix: defaultPrefix}
}

func (m *Middleware) key(userID uint, idemKey string) string {
	return fmt.Sprintf("%s:%d:%s", m.prefix, userID, idemKey)
}

// Handler はキーをユーザー単位にするため jwtmw.AuthRequired の後に置きます。
func (m *Middleware) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		idemKey := c.GetHeader(HeaderKey)
		if idemKey == "" || m.rdb == nil {
			c.Next()
			return
		}
		parsed, err := uuid.Parse(idemKey)
		if err != nil {
			response.Abort(c, http.StatusBadRequest, "Idempotency-Key must be a UUID")
			return
		}

		userID, _ := jwtmw.UserID(c)
		key := m.key(userID, parsed.String())
		fingerprint := c.Request.Method + " " + c.Request.URL.Path
		ctx := c.Request.Context()

		claimed, err := m.claim(ctx, key, fingerprint)
		if err != nil {
			// Redis の障害で売買まで止めない
			slog.Warn("idempotency store unavailable, proceeding without it", "key", key, "error", err)
			c.Next()
			return
		}
		if !claimed {
			m.replay(c, key, fingerprint)
			return
		}

		rec := &recorder{ResponseWriter: c.Writer}
		c.Writer = rec
		c.Next()

		// リクエストの context はキャンセル済みかもしれないので新しいものを使う
		storeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
		defer cancel()
		status := rec.Status()
		if status >= http.StatusInternalServerError {
			// 失敗した試行はクライアントがやり直せるようにする
			if err := m.rdb.Del(storeCtx, key).Err(); err != nil {
				slog.Warn("failed to release idempotency key", "key", key, "error", err)
			}
			return
		}
		done, _ := json.Marshal(record{State: stateDone, Fingerprint: fingerprint, Status: status, Body: rec.body.Bytes()})
		if err := m.rdb.Set(storeCtx, key, done, redis.KeepTTL).Err(); err != nil {
			slog.Warn("failed to store idempotent response", "key", key, "error", err)
		}
	}
}

func (m *Middleware) claim(ctx context.Context, key, fingerprint string) (bool, error) {
	pending, err := json.Marshal(record{State: stateInProgress, Fingerprint: fingerprint})
	if err != nil {
		return false, err
	}
	return m.rdb.SetNX(ctx, key, pending, m.ttl).Result()
}

func (m *Middleware) replay(c *gin.Context, key, fingerprint string) {
	raw, err := m.rdb.Get(c.Request.Context(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		// SETNX と GET の間に解放された。最初の試行は失敗している
		response.Abort(c, http.StatusConflict, "request with this Idempotency-Key failed, retry")
		return
	}
	if err != nil {
		slog.Error("failed to read idempotency record", "key", key, "error", err)
		response.Abort(c, http.StatusServiceUnavailable, "idempotency store unavailable")
		return
	}

	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		slog.Error("corrupt idempotency record", "key", key, "error", err)
		response.Abort(c, http.StatusConflict, "Idempotency-Key already used")
		return
	}
	switch {
	case rec.Fingerprint != fingerprint:
		response.Abort(c, http.StatusUnprocessableEntity, "Idempotency-Key reused for a different request")
	case rec.State == stateInProgress:
		response.Abort(c, http.StatusConflict, "request with this Idempotency-Key is still in progress")
	default:
		c.Header(HeaderReplayed, "true")
		c.Data(rec.Status, "application/json; charset=utf-8", rec.Body)
		c.Abort()
	}
}

// recorder はハンドラー終了後に保存できるようレスポンスボディを複製します。
type recorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (r *recorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

func (r *recorder) WriteString(s string) (int, error) {
	r.body.WriteString(s)
	return r.ResponseWriter.WriteString(s)
}
