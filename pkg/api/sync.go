// Package api содержит типы, которыми обмениваются устройства и сервер синхронизации.
package api

import (
	"encoding/json"
	"time"
)

// RemoteState представляет одну реплицируемую запись устройства
type RemoteState struct {
	UpdatedAt   time.Time         `json:"updated_at"` // zero = время получения
	VectorClock map[string]uint64 `json:"vector_clock"`
	EntityType  string            `json:"entity_type"`
	EntityID    string            `json:"entity_id"`
	DeviceID    string            `json:"device_id"`
	Payload     json.RawMessage   `json:"crdt_payload"` // переносимое CRDT представление
	Tombstone   bool              `json:"tombstone"`
}

// SyncResult представляет итог применения пакета удаленных записей
type SyncResult struct {
	Errors              []string       `json:"errors"`
	Conflicts           []ConflictInfo `json:"conflicts,omitempty"`
	EntitiesSynced      int            `json:"entities_synced"`
	ConflictsResolved   int            `json:"conflicts_resolved"`
	OperationsApplied   int            `json:"operations_applied"`
	TombstonesProcessed int            `json:"tombstones_processed"`
}

// ConflictInfo описывает разрешенный конфликт одновременных изменений
type ConflictInfo struct {
	EntityType           string `json:"entity_type"`
	EntityID             string `json:"entity_id"`
	LocalDevice          string `json:"local_device"`
	RemoteDevice         string `json:"remote_device"`
	Strategy             string `json:"strategy"`
	WinnerDevice         string `json:"winner_device,omitempty"`
	RequiresManualReview bool   `json:"requires_manual_review,omitempty"`
}

// PushRequest представляет отправку локальных изменений устройства на сервер
type PushRequest struct {
	DeviceID string        `json:"device_id"`
	States   []RemoteState `json:"states"`
}

// PushResponse представляет ответ сервера на push
type PushResponse struct {
	ServerTime time.Time  `json:"server_time"`
	Result     SyncResult `json:"result"`
}

// PullRequest представляет запрос изменений других устройств
type PullRequest struct {
	Since    time.Time `json:"since"` // zero = все изменения
	DeviceID string    `json:"device_id"`
	Limit    int       `json:"limit,omitempty"`
}

// PullResponse представляет изменения, которые устройство еще не видело
type PullResponse struct {
	ServerTime time.Time     `json:"server_time"` // следующий since для устройства
	States     []RemoteState `json:"states"`
	HasMore    bool          `json:"has_more"`
}

// BidirectionalRequest объединяет push и pull в одном запросе
type BidirectionalRequest struct {
	Since    time.Time     `json:"since"`
	DeviceID string        `json:"device_id"`
	States   []RemoteState `json:"states"`
	Limit    int           `json:"limit,omitempty"`
}

// BidirectionalResponse представляет ответ на двунаправленную синхронизацию
type BidirectionalResponse struct {
	ServerTime time.Time     `json:"server_time"`
	States     []RemoteState `json:"states"`
	Result     SyncResult    `json:"result"`
	HasMore    bool          `json:"has_more"`
}

// ErrorResponse представляет ответ с ошибкой
type ErrorResponse struct {
	Error   string `json:"error"`             // описание ошибки
	Message string `json:"message,omitempty"` // дополнительное сообщение
}
