package api

// RegisterDeviceRequest регистрирует устройство или обновляет его описание
type RegisterDeviceRequest struct {
	Capabilities map[string]any `json:"capabilities,omitempty"`
	DeviceID     string         `json:"device_id"`
	DeviceName   string         `json:"device_name"`
	DeviceType   string         `json:"device_type"` // mobile, tablet, desktop, workshop_terminal
	Platform     string         `json:"platform,omitempty"`
	AppVersion   string         `json:"app_version,omitempty"`
}

// DeviceStatusRequest переключает признак офлайн устройства
type DeviceStatusRequest struct {
	IsOffline bool `json:"is_offline"`
}

// EntityRef identifies an entity across all devices.
type EntityRef struct {
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// EntitiesResponse lists entities that are not deleted.
type EntitiesResponse struct {
	Entities []EntityRef `json:"entities"`
}
