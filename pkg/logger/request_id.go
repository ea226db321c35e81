package logger

import (
	"context"

	"github.com/google/uuid"
)

// MaxRequestIDLength - наибольшая длина принимаемого от клиента идентификатора запроса.
const MaxRequestIDLength = 128

type requestIDKeyType struct{}

var requestIDKey = requestIDKeyType{}

// NewRequestIDContext кладет идентификатор запроса в контекст.
// Пустой или непригодный идентификатор заменяется новым.
func NewRequestIDContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, NormalizeRequestID(requestID))
}

// GetRequestID извлекает идентификатор запроса из контекста.
func GetRequestID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(requestIDKey).(string)
	return id, ok
}

// GenerateRequestID генерирует новый идентификатор запроса.
func GenerateRequestID() string {
	return uuid.NewString()
}

// NormalizeRequestID возвращает id, если он не длиннее MaxRequestIDLength
// и состоит из печатных ASCII символов без пробелов, иначе новый идентификатор.
func NormalizeRequestID(id string) string {
	if id == "" || len(id) > MaxRequestIDLength {
		return GenerateRequestID()
	}
	for i := 0; i < len(id); i++ {
		if id[i] <= ' ' || id[i] > '~' {
			return GenerateRequestID()
		}
	}
	return id
}
