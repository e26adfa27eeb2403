package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidIPToken(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"10.0.0.1", true},
		{"10.0.0.0/24", true},
		{"10.0.0.1-10.0.0.5", true},
		{"10.0.0.1, 10.0.0.2", true},
		{"  192.168.1.1  ", true},
		{"host.example.com", false},
		{"", false},
		{"  ", false},
		{"2001:db8::1", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidIPToken(tt.in))
		})
	}
}

func TestSplitPortsTrimsTokens(t *testing.T) {
	assert.Equal(t, []string{"80", "443", "8080-8090"}, SplitPorts("80, 443 ,8080-8090"))
	assert.Equal(t, []string{"22"}, SplitPorts("22"))
	assert.Empty(t, SplitPorts(""))
}
