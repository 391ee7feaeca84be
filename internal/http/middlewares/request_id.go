package middlewares

import (
	"context"
	"net/http"

	"github.com/google/uuid"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// HeaderRequestID es el header estándar para propagación del request id
const HeaderRequestID = "X-Request-ID"

// WithRequestID asegura que cada request tenga un ID único.
// Si el cliente ya envía X-Request-ID lo respetamos (útil para tracing entre servicios),
// si no, generamos uno nuevo. Siempre lo devolvemos en la respuesta.
func WithRequestID() Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rid := r.Header.Get(HeaderRequestID)
			if rid == "" {
				rid = uuid.NewString()
			}

			ctx := context.WithValue(r.Context(), requestIDKey, rid)
			w.Header().Set(HeaderRequestID, rid)

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetRequestID devuelve el request id del contexto, o "" si no hay
func GetRequestID(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}
