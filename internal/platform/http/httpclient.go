// Package http は気配値プロバイダー向けの HTTP クライアントを生成します。
package http

import (
	"net"
	"net/http"
	"time"
)

// defaultTimeout はタイムアウトに0以下が渡されたときに使います。
const defaultTimeout = 10 * time.Second

// NewHTTPClient はタイムアウトとアイドル接続数を明示したクライアントを返します。
// http.DefaultClient にはタイムアウトがないため、外部 API のアダプターは必ずこれを使います。
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	t := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   5 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
	}
	return &http.Client{Timeout: timeout, Transport: t}
}
