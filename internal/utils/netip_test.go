package utils

import (
	"net/http/httptest"
	"testing"
)

func TestIsPublicIP(t *testing.T) {
	tests := []struct {
		ip   string
		want bool
	}{
		{"8.8.8.8", true},
		{"203.0.113.7", true},
		{"2001:4860:4860::8888", true},
		{"::ffff:8.8.8.8", true},
		{"127.0.0.1", false},
		{"10.0.0.1", false},
		{"172.16.4.2", false},
		{"192.168.1.1", false},
		{"169.254.0.1", false},
		{"::1", false},
		{"fe80::1", false},
		{"fd00::1", false},
		{"0.0.0.0", false},
		{"", false},
		{"not-an-ip", false},
	}
	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			if got := IsPublicIP(tt.ip); got != tt.want {
				t.Errorf("IsPublicIP(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "10.0.0.5:1234"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	if got := ClientIP(r, false); got != "10.0.0.5" {
		t.Errorf("ClientIP(untrusted) = %q, want 10.0.0.5", got)
	}
	if got := ClientIP(r, true); got != "203.0.113.9" {
		t.Errorf("ClientIP(trusted) = %q, want 203.0.113.9", got)
	}

	r.Header.Set("CF-Connecting-IP", "198.51.100.4")
	if got := ClientIP(r, true); got != "198.51.100.4" {
		t.Errorf("ClientIP(cloudflare) = %q, want 198.51.100.4", got)
	}
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.0.2.1 ", "garbage", ""})
	if m.IsEmpty() {
		t.Fatal("matcher should not be empty")
	}

	for ip, want := range map[string]bool{
		"10.20.30.40": true,
		"192.0.2.1":   true,
		"192.0.2.2":   false,
		"bad":         false,
	} {
		if got := m.Allow(ip); got != want {
			t.Errorf("Allow(%q) = %v, want %v", ip, got, want)
		}
	}

	if !NewIPMatcher(nil).IsEmpty() {
		t.Error("nil list should give an empty matcher")
	}
}
