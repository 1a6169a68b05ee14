package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/fleetsync/internal/models"
	"github.com/iudanet/fleetsync/internal/storage"
)

const deviceColumns = `device_id, device_name, device_type, platform, app_version, capabilities,
	is_active, is_offline, last_sync_at, last_push_at, last_pull_at, registered_at, updated_at`

// RegisterDevice inserts a device or refreshes the descriptive fields of a known one
func (s *Storage) RegisterDevice(ctx context.Context, d *models.Device) error {
	var caps []byte
	if len(d.Capabilities) > 0 {
		var err error
		if caps, err = json.Marshal(d.Capabilities); err != nil {
			return fmt.Errorf("failed to marshal device capabilities: %w", err)
		}
	}

	// Повторная регистрация снова активирует устройство
	query := `
		INSERT INTO sync_devices (` + deviceColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, 1, 0, 0, 0, 0, ?, ?)
		ON CONFLICT (device_id) DO UPDATE SET
			device_name  = excluded.device_name,
			device_type  = excluded.device_type,
			platform     = excluded.platform,
			app_version  = excluded.app_version,
			capabilities = excluded.capabilities,
			is_active    = 1,
			updated_at   = excluded.updated_at
	`
	_, err := s.db.ExecContext(ctx, query,
		d.DeviceID, d.Name, d.Type, d.Platform, d.AppVersion, string(caps),
		timeToNano(d.RegisteredAt), timeToNano(d.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to register device: %w", err)
	}
	return nil
}

// GetDevice retrieves a registered device
// Returns storage.ErrDeviceNotFound if it doesn't exist
func (s *Storage) GetDevice(ctx context.Context, deviceID string) (*models.Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM sync_devices WHERE device_id = ?`

	var (
		d                       models.Device
		caps                    sql.NullString
		active, offline         int
		syncAt, pushAt, pullAt  int64
		registeredAt, updatedAt int64
	)
	err := s.db.QueryRowContext(ctx, query, deviceID).Scan(
		&d.DeviceID, &d.Name, &d.Type, &d.Platform, &d.AppVersion, &caps,
		&active, &offline, &syncAt, &pushAt, &pullAt, &registeredAt, &updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, storage.ErrDeviceNotFound
		}
		return nil, fmt.Errorf("failed to get device: %w", err)
	}

	if caps.Valid && caps.String != "" {
		if err := json.Unmarshal([]byte(caps.String), &d.Capabilities); err != nil {
			return nil, fmt.Errorf("failed to unmarshal device capabilities: %w", err)
		}
	}
	d.IsActive = intToBool(active)
	d.IsOffline = intToBool(offline)
	d.LastSyncAt = nanoToTime(syncAt)
	d.LastPushAt = nanoToTime(pushAt)
	d.LastPullAt = nanoToTime(pullAt)
	d.RegisteredAt = nanoToTime(registeredAt)
	d.UpdatedAt = nanoToTime(updatedAt)
	return &d, nil
}

// SetDeviceOffline updates the online/offline flag of a device
func (s *Storage) SetDeviceOffline(ctx context.Context, deviceID string, offline bool, at time.Time) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE sync_devices SET is_offline = ?, updated_at = ? WHERE device_id = ?`,
		boolToInt(offline), timeToNano(at), deviceID,
	)
	if err != nil {
		return fmt.Errorf("failed to update device status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if n == 0 {
		return storage.ErrDeviceNotFound
	}
	return nil
}

// TouchDevice stores the time of a sync exchange of a registered device
func (s *Storage) TouchDevice(ctx context.Context, deviceID string, dir models.SyncDirection, at time.Time) error {
	var set string
	switch dir {
	case models.SyncPush:
		set = `last_push_at = ?1`
	case models.SyncPull:
		set = `last_pull_at = ?1`
	case models.SyncBoth:
		set = `last_push_at = ?1, last_pull_at = ?1`
	default:
		return fmt.Errorf("unknown sync direction %q", dir)
	}

	// Устройство, которое синхронизируется, считается онлайн
	query := `UPDATE sync_devices SET ` + set + `, last_sync_at = ?1, is_offline = 0, updated_at = ?1
		WHERE device_id = ?2`
	if _, err := s.db.ExecContext(ctx, query, timeToNano(at), deviceID); err != nil {
		return fmt.Errorf("failed to touch device: %w", err)
	}
	return nil
}
