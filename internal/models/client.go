package models

import (
	"strings"
	"time"
)

// Permission scopes granted to API clients. Write scopes cover create,
// update, and delete on their resource.
const (
	PermAscentsRead  = "ascents:read"
	PermAscentsWrite = "ascents:write"
	PermSessionsRead = "sessions:read"
	PermStatsRead    = "stats:read"
	PermRoutesRead   = "routes:read"
	PermTicksRead    = "ticks:read"
	PermTicksWrite   = "ticks:write"
)

// ApiClient is an authenticated caller of the logbook API, e.g. the web
// guidebook frontend or a partner sync job. Each carries its own key
// and permission grants.
type ApiClient struct {
	ID          int               `json:"id"`
	Name        string            `json:"name"`
	ApiKey      string            `json:"-"` // Never serialize
	IsActive    bool              `json:"is_active"`
	CreatedAt   time.Time         `json:"created_at"`
	LastUsedAt  *time.Time        `json:"last_used_at,omitempty"`
	Permissions []string          `json:"permissions"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// HasPermission reports whether the client holds a grant covering the
// required scope. Grants are scope:action strings; "ascents:*" covers
// every ascents action and "*" covers everything.
func (c *ApiClient) HasPermission(required string) bool {
	if c == nil || !c.IsActive {
		return false
	}

	scope, _, _ := strings.Cut(required, ":")

	for _, grant := range c.Permissions {
		switch grant {
		case required, "*", scope + ":*":
			return true
		}
	}

	return false
}

// MaskedApiKey returns a log-safe prefix of the API key
func (c *ApiClient) MaskedApiKey() string {
	if len(c.ApiKey) < 8 {
		return "***"
	}
	return c.ApiKey[:8] + "..."
}
