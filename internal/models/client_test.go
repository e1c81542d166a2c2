package models

import "testing"

func TestHasPermission(t *testing.T) {
	cases := []struct {
		name     string
		grants   []string
		required string
		want     bool
	}{
		{"exact", []string{PermAscentsWrite}, PermAscentsWrite, true},
		{"missing", []string{PermAscentsRead}, PermAscentsWrite, false},
		{"scope wildcard", []string{"ascents:*"}, PermAscentsRead, true},
		{"scope wildcard other scope", []string{"ascents:*"}, PermStatsRead, false},
		{"global wildcard", []string{"*"}, PermTicksWrite, true},
		{"no grants", nil, PermRoutesRead, false},
	}

	for _, tc := range cases {
		client := &ApiClient{IsActive: true, Permissions: tc.grants}
		if got := client.HasPermission(tc.required); got != tc.want {
			t.Errorf("%s: HasPermission(%q) with %v = %v, want %v",
				tc.name, tc.required, tc.grants, got, tc.want)
		}
	}
}

func TestHasPermissionInactive(t *testing.T) {
	client := &ApiClient{IsActive: false, Permissions: []string{"*"}}
	if client.HasPermission(PermAscentsRead) {
		t.Error("inactive client should hold no permissions")
	}

	var nilClient *ApiClient
	if nilClient.HasPermission(PermAscentsRead) {
		t.Error("nil client should hold no permissions")
	}
}

func TestMaskedApiKey(t *testing.T) {
	client := &ApiClient{ApiKey: "sk_live_abcdef123456"}
	if got := client.MaskedApiKey(); got != "sk_live_..." {
		t.Errorf("unexpected mask: %q", got)
	}

	short := &ApiClient{ApiKey: "sk"}
	if got := short.MaskedApiKey(); got != "***" {
		t.Errorf("short keys should mask fully, got %q", got)
	}
}
