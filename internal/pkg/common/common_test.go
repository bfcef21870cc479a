package common

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCustomErrorWrap(t *testing.T) {
	cause := fmt.Errorf("dial tcp: refused")
	err := ErrFetchFailed.Wrap(cause)

	assert.True(t, errors.Is(err, ErrFetchFailed))
	assert.False(t, errors.Is(err, ErrNoRecipeFound))
	assert.True(t, errors.Is(err, cause))
	assert.Equal(t, "無法取得來源頁面: dial tcp: refused", err.Error())
	assert.Equal(t, http.StatusBadGateway, err.Status)
	assert.Nil(t, ErrFetchFailed.Err, "wrapping leaves the template untouched")
}

func TestAsCustomError(t *testing.T) {
	wrapped := fmt.Errorf("import: %w", ErrNoRecipeFound)
	assert.Equal(t, ErrCodeNoRecipeFound, AsCustomError(wrapped).Code)

	plain := AsCustomError(errors.New("boom"))
	assert.Equal(t, ErrCodeInternalError, plain.Code)
	assert.Equal(t, http.StatusInternalServerError, plain.Status)
}

func TestValidationError(t *testing.T) {
	err := fmt.Errorf("batch: %w", NewValidationError("urls is required"))
	assert.True(t, IsValidationError(err))
	assert.False(t, IsValidationError(ErrInvalidRequest))
	assert.Equal(t, "batch: urls is required", err.Error())
}

func TestDecodeTree(t *testing.T) {
	tree, err := DecodeTree(strings.NewReader(`{"a":[1,"x",{"b":2.5}]}`))
	require.NoError(t, err)

	m, ok := tree.(map[string]interface{})
	require.True(t, ok)
	arr := m["a"].([]interface{})
	assert.Equal(t, json.Number("1"), arr[0])
	assert.Equal(t, json.Number("2.5"), arr[2].(map[string]interface{})["b"])

	_, err = DecodeTree(strings.NewReader(`{"a":1} {"b":2}`))
	assert.Error(t, err)
	_, err = DecodeTree(strings.NewReader(`{"a":`))
	assert.Error(t, err)
}

func TestParseJSONBytes(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}
	require.NoError(t, ParseJSONBytes([]byte(`{"name":"soup","extra":true}`), &v))
	assert.Equal(t, "soup", v.Name)
	assert.Error(t, ParseJSONBytes([]byte(`{"name":"soup"}]`), &v))
}

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: " https://Example.COM/recipes/soup/#top ", want: "https://example.com/recipes/soup"},
		{in: "http://example.com/a?b=1", want: "http://example.com/a?b=1"},
		{in: "ftp://example.com/a", wantErr: true},
		{in: "https:///path-only", wantErr: true},
		{in: "not a url", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := NormalizeURL(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRequestIDContext(t *testing.T) {
	assert.Empty(t, RequestIDFrom(context.Background()))
	ctx := WithRequestID(context.Background(), "abc")
	assert.Equal(t, "abc", RequestIDFrom(ctx))
}

func TestGenerateUUID(t *testing.T) {
	a, b := GenerateUUID(), GenerateUUID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zapcore.DebugLevel, ParseLevel("DEBUG"))
	assert.Equal(t, zapcore.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zapcore.InfoLevel, ParseLevel("nonsense"))
}

func TestFilterFields(t *testing.T) {
	fields := filterFields([]zap.Field{
		zap.String("url", "https://example.com"),
		zap.String("raw_html", "<html>"),
		zap.String("request_body", "{}"),
	})
	require.Len(t, fields, 1)
	assert.Equal(t, "url", fields[0].Key)
}

func TestLogImport(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	SetLogger(zap.New(core))
	t.Cleanup(func() { SetLogger(nil) })

	LogImport("https://example.com/soup", 120*time.Millisecond, nil, "req-1")
	LogImport("https://example.com/bad", time.Millisecond, ErrFetchFailed, "req-2")

	entries := logs.All()
	require.Len(t, entries, 2)
	assert.Equal(t, zapcore.InfoLevel, entries[0].Level)
	assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "https://example.com/bad", entries[1].ContextMap()["source"])
}
