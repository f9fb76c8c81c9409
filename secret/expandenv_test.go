package secret

import (
	"errors"
	"strings"
	"testing"
)

func TestExpandEnvStrict(t *testing.T) {
	t.Setenv("DOCCACHE_TEST_HOST", "cache.internal")
	t.Setenv("DOCCACHE_TEST_PORT", "6379")
	t.Setenv("DOCCACHE_TEST_EMPTY", "")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "redis://localhost:6379", "redis://localhost:6379"},
		{"braced", "redis://${DOCCACHE_TEST_HOST}:${DOCCACHE_TEST_PORT}", "redis://cache.internal:6379"},
		{"bare name is literal", "$DOCCACHE_TEST_HOST", "$DOCCACHE_TEST_HOST"},
		{"dollar in password", "redis://:pa$word@host:6379", "redis://:pa$word@host:6379"},
		{"escaped dollar in password", "redis://:pa$$word@${DOCCACHE_TEST_HOST}", "redis://:pa$word@cache.internal"},
		{"set but empty", "x${DOCCACHE_TEST_EMPTY}y", "xy"},
		{"escaped dollar", "pa$$word", "pa$word"},
		{"escaped before braces", "$${DOCCACHE_TEST_HOST}", "${DOCCACHE_TEST_HOST}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandEnvStrict(tt.in)
			if err != nil {
				t.Fatalf("ExpandEnvStrict(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ExpandEnvStrict(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestExpandEnvStrict_Missing(t *testing.T) {
	_, err := ExpandEnvStrict("${DOCCACHE_TEST_ZZZ}/${DOCCACHE_TEST_AAA}/${DOCCACHE_TEST_ZZZ}")
	if !errors.Is(err, ErrMissingEnv) {
		t.Fatalf("error = %v, want ErrMissingEnv", err)
	}
	if !strings.HasSuffix(err.Error(), "DOCCACHE_TEST_AAA, DOCCACHE_TEST_ZZZ") {
		t.Errorf("error = %q, want sorted unique names", err)
	}
}
