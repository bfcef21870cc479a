package common

import (
	"context"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// NormalizeURL 正規化來源網址：小寫 host、去掉 fragment 與結尾斜線，作為快取鍵
func NormalizeURL(raw string) (string, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", NewValidationError("url must be http or https")
	}
	if u.Host == "" {
		return "", NewValidationError("url host is required")
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), nil
}

type requestIDKey struct{}

// WithRequestID 將請求 ID 放入 context，供服務層記錄日誌
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFrom 取出請求 ID，沒有時回傳空字串
func RequestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
