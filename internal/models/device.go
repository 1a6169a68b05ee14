package models

import "time"

// Device is a registered sync participant. Sync timestamps are zero until
// the device first pushes or pulls.
type Device struct {
	LastSyncAt   time.Time      `json:"last_sync_at"`
	LastPushAt   time.Time      `json:"last_push_at"`
	LastPullAt   time.Time      `json:"last_pull_at"`
	RegisteredAt time.Time      `json:"registered_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	Capabilities map[string]any `json:"capabilities,omitempty"`
	DeviceID     string         `json:"device_id"`
	Name         string         `json:"device_name"`
	Type         string         `json:"device_type"`
	Platform     string         `json:"platform,omitempty"`
	AppVersion   string         `json:"app_version,omitempty"`
	IsActive     bool           `json:"is_active"`
	IsOffline    bool           `json:"is_offline"`
}

// SyncDirection names the side of an exchange a device took part in.
type SyncDirection string

const (
	SyncPush SyncDirection = "push"
	SyncPull SyncDirection = "pull"
	// SyncBoth отмечает двусторонний обмен
	SyncBoth SyncDirection = "both"
)
