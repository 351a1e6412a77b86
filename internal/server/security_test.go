package server

import (
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	t.Parallel()

	// 5 reqs/sec, 10 reqs/min, 1s ban
	rl := NewRateLimiter(5, 10, 1*time.Second)
	ip := "127.0.0.1"

	// Initial requests should be allowed
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow(ip), "Request %d should be allowed", i)
	}

	// 6th request should fail due to per-second limit
	assert.False(t, rl.Allow(ip), "6th request should be blocked")
	assert.True(t, rl.IsBanned(ip), "IP should be banned")
}

func TestRateLimiter_BanExpires(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 50, 2*time.Second)
	defer rl.Stop()
	rl.now = func() time.Time { return now }
	ip := "192.168.1.1"

	for i := range 10 {
		assert.True(t, rl.Allow(ip), "Burst request %d should be allowed", i)
	}

	// 11th request should be blocked
	assert.False(t, rl.Allow(ip))
	assert.True(t, rl.IsBanned(ip))

	now = now.Add(2100 * time.Millisecond)
	assert.False(t, rl.IsBanned(ip))
	assert.True(t, rl.Allow(ip))
}

func TestRateLimiter_CleanupDropsIdle(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rl := NewRateLimiter(10, 50, time.Second)
	defer rl.Stop()
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(11 * time.Minute)
	rl.Allow("b")
	rl.cleanup()

	rl.mu.RLock()
	defer rl.mu.RUnlock()
	assert.NotContains(t, rl.requests, "a")
	assert.Contains(t, rl.requests, "b")
}

func TestRateLimiter_MinuteLimit(t *testing.T) {
	t.Parallel()

	// 100/sec but only 5/min
	rl := NewRateLimiter(100, 5, 1*time.Second)
	ip := "10.0.0.1"

	// First 5 requests allowed
	for i := 0; i < 5; i++ {
		assert.True(t, rl.Allow(ip))
	}

	// 6th request blocked by minute limit
	assert.False(t, rl.Allow(ip))
}

func TestRateLimiter_Concurrency(t *testing.T) {
	t.Parallel()

	rl := NewRateLimiter(100, 200, 1*time.Second)
	var wg sync.WaitGroup
	successCount := 0
	var mu sync.Mutex

	// Concurrent requests from same IP
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if rl.Allow("concurrent-test") {
				mu.Lock()
				successCount++
				mu.Unlock()
			}
		}()
	}

	wg.Wait()
	assert.Greater(t, successCount, 0)
	assert.LessOrEqual(t, successCount, 50)
}

func TestGetClientIP_ProxyHeaders(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		expectedIP string
	}{
		{
			name:       "Direct connection",
			remoteAddr: "192.168.1.1:12345",
			headers:    map[string]string{},
			expectedIP: "192.168.1.1",
		},
		{
			name:       "X-Forwarded-For single IP",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1",
			},
			expectedIP: "203.0.113.1",
		},
		{
			name:       "X-Forwarded-For multiple IPs",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.1, 10.0.0.2, 10.0.0.3",
			},
			expectedIP: "203.0.113.1", // First IP is the original client
		},
		{
			name:       "X-Real-IP",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Real-IP": "203.0.113.2",
			},
			expectedIP: "203.0.113.2",
		},
		{
			name:       "X-Forwarded-For takes precedence over X-Real-IP",
			remoteAddr: "10.0.0.1:12345",
			headers: map[string]string{
				"X-Forwarded-For": "203.0.113.3",
				"X-Real-IP":       "203.0.113.4",
			},
			expectedIP: "203.0.113.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}

			ip := GetClientIP(req)
			assert.Equal(t, tt.expectedIP, ip)
		})
	}
}

func TestMessageRateLimiter(t *testing.T) {
	t.Parallel()

	// 10 msgs/sec, warning above 8
	ml := NewMessageRateLimiter(10)
	clientID := "client1"

	for i := range 10 {
		allowed, warning := ml.AllowMessage(clientID)
		assert.True(t, allowed)
		assert.Equal(t, i >= 8, warning, "message %d", i+1)
	}

	// 11th message should be blocked
	allowed, warning := ml.AllowMessage(clientID)
	assert.False(t, allowed)
	assert.True(t, warning)
}

func TestMessageRateLimiter_ResetsEverySecond(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ml := NewMessageRateLimiter(2)
	ml.now = func() time.Time { return now }

	ml.AllowMessage("c")
	ml.AllowMessage("c")
	allowed, _ := ml.AllowMessage("c")
	assert.False(t, allowed)

	now = now.Add(time.Second)
	allowed, warning := ml.AllowMessage("c")
	assert.True(t, allowed)
	assert.False(t, warning)
}

func TestMessageRateLimiter_WarningCount(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(3)
	clientID := "test-client"

	// Trigger warnings
	for i := 0; i < 5; i++ {
		ml.AllowMessage(clientID)
	}

	// Check warning count
	warnings := ml.GetWarningCount(clientID)
	assert.Greater(t, warnings, 0)
}

func TestMessageRateLimiter_RemoveClient(t *testing.T) {
	t.Parallel()

	ml := NewMessageRateLimiter(5)
	clientID := "temp-client"

	// Generate some activity
	ml.AllowMessage(clientID)
	ml.AllowMessage(clientID)

	// Remove client
	ml.RemoveClient(clientID)

	// Should start fresh
	allowed, warning := ml.AllowMessage(clientID)
	assert.True(t, allowed)
	assert.False(t, warning)
}

func TestOriginChecker_AllowAll(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"*"})
	req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
	req.Header.Set("Origin", "https://evil.com")

	assert.True(t, oc.Check(req))
}

func TestOriginChecker_SpecificOrigins(t *testing.T) {
	t.Parallel()

	oc := NewOriginChecker([]string{"https://example.com", "https://app.example.com"})

	tests := []struct {
		origin  string
		allowed bool
	}{
		{"https://example.com", true},
		{"https://app.example.com", true},
		{"https://evil.com", false},
		{"http://example.com", false}, // Different scheme
		{"", true},                    // No origin header (same-origin or local)
	}

	for _, tt := range tests {
		req, _ := http.NewRequest(http.MethodGet, "/", http.NoBody)
		if tt.origin != "" {
			req.Header.Set("Origin", tt.origin)
		}
		assert.Equal(t, tt.allowed, oc.Check(req), "Origin: %s", tt.origin)
	}
}
