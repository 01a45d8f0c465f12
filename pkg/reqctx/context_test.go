package reqctx

import (
	"context"
	"testing"
)

func TestRequestIDFromContext(t *testing.T) {
	tests := []struct {
		name string
		ctx  context.Context
		want string
	}{
		{"unset", context.Background(), ""},
		{"nil meta", WithRequestMeta(context.Background(), nil), ""},
		{"set", WithRequestMeta(context.Background(), &RequestMeta{RequestID: "rid-1", ClientIP: "10.0.0.1"}), "rid-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RequestIDFromContext(tt.ctx); got != tt.want {
				t.Errorf("RequestIDFromContext() = %q, want %q", got, tt.want)
			}
		})
	}
}
