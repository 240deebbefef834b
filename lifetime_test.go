package di_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/sectrean/inject-kit"
)

func Test_Lifetime_String(t *testing.T) {
	tests := []struct {
		name     string
		want     string
		lifetime di.Lifetime
	}{
		{
			name:     "singleton",
			lifetime: di.SingletonLifetime,
			want:     "Singleton",
		},
		{
			name:     "request",
			lifetime: di.RequestLifetime,
			want:     "Request",
		},
		{
			name:     "transient",
			lifetime: di.TransientLifetime,
			want:     "Transient",
		},
		{
			name:     "unknown lifetime",
			lifetime: di.Lifetime(99),
			want:     "Unknown Lifetime 99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.lifetime.String()
			assert.Equal(t, tt.want, got)
		})
	}
}
