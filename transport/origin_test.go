package transport

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestOriginChecker_EmptyAllowListAcceptsAll(t *testing.T) {
	req := require.New(t)
	checker := newOriginChecker(nil)

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://evil.example")
	req.True(checker.check(r))
}

func TestOriginChecker_AllowedHostPasses(t *testing.T) {
	req := require.New(t)
	checker := newOriginChecker([]string{"chat.example.com"})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://chat.example.com")
	req.True(checker.check(r))
}

func TestOriginChecker_UnknownHostRejected(t *testing.T) {
	req := require.New(t)
	checker := newOriginChecker([]string{"chat.example.com"})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://evil.example")
	req.False(checker.check(r))
}

func TestOriginChecker_MissingOriginPasses(t *testing.T) {
	req := require.New(t)
	checker := newOriginChecker([]string{"chat.example.com"})

	// Non-browser clients send no Origin header at all
	r := httptest.NewRequest("GET", "/ws", nil)
	req.True(checker.check(r))
}

func TestOriginChecker_CaseInsensitiveHosts(t *testing.T) {
	req := require.New(t)
	checker := newOriginChecker([]string{"Chat.Example.COM"})

	r := httptest.NewRequest("GET", "/ws", nil)
	r.Header.Set("Origin", "https://chat.example.com")
	req.True(checker.check(r))
}
