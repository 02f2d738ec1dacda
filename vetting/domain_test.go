package vetting_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"security-assistant/vetting"
)

func TestNormalizeDomain(t *testing.T) {
	tests := map[string]string{
		"example.com":                    "example.com",
		"  Example.COM  ":                "example.com",
		"https://example.com/path?q=1":   "example.com",
		"http://example.com:8080":        "example.com",
		"www.example.com.":               "www.example.com",
		"https://sub.example.com#anchor": "sub.example.com",
		"http://[::1]:8080/":             "::1",
		"[2001:DB8::1]":                  "2001:db8::1",
		"::1":                            "::1",
	}

	for input, expected := range tests {
		t.Run(input, func(t *testing.T) {
			assert.Equal(t, expected, vetting.NormalizeDomain(input))
		})
	}
}

func TestHostFromURL(t *testing.T) {
	host, err := vetting.HostFromURL("https://Login.Example.com:443/account")
	require.NoError(t, err)
	assert.Equal(t, "login.example.com", host)
}

func TestHostFromURL_IPv6(t *testing.T) {
	host, err := vetting.HostFromURL("http://[::1]:8080/")
	require.NoError(t, err)
	assert.Equal(t, "::1", host)
	assert.Equal(t, host, vetting.NormalizeDomain(host))
}

func TestHostFromURL_Invalid(t *testing.T) {
	for _, raw := range []string{"", "not a url", "example.com", "http://[::1", "mailto:someone@example.com"} {
		t.Run(raw, func(t *testing.T) {
			_, err := vetting.HostFromURL(raw)
			require.Error(t, err)
			assert.True(t, errors.Is(err, vetting.ErrInvalidInput))
		})
	}
}
