package api

import (
	"encoding/json"
	"time"
)

// EnqueueRequest представляет локальную мутацию для очереди устройства
type EnqueueRequest struct {
	OperationID   string          `json:"operation_id,omitempty"` // пусто = сгенерировать на сервере
	OperationType string          `json:"operation_type"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Priority      string          `json:"priority,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	MaxRetries    int             `json:"max_retries,omitempty"`
}

// OperationInfo представляет операцию очереди в ответах API
type OperationInfo struct {
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
	OperationID   string          `json:"operation_id"`
	DeviceID      string          `json:"device_id"`
	OperationType string          `json:"operation_type"`
	EntityType    string          `json:"entity_type"`
	EntityID      string          `json:"entity_id"`
	Priority      string          `json:"priority"`
	Status        string          `json:"status"`
	ErrorMessage  string          `json:"error_message,omitempty"`
	Payload       json.RawMessage `json:"payload"`
	RetryCount    int             `json:"retry_count"`
	MaxRetries    int             `json:"max_retries"`
}

// PendingResponse представляет операции, ожидающие обработки
type PendingResponse struct {
	Operations []OperationInfo `json:"operations"`
}

// QueueStatsResponse представляет счетчики очереди устройства по статусам
type QueueStatsResponse struct {
	DeviceID   string `json:"device_id"`
	Total      int    `json:"total"`
	Pending    int    `json:"pending"`
	InProgress int    `json:"in_progress"`
	Completed  int    `json:"completed"`
	Retry      int    `json:"retry"`
	Failed     int    `json:"failed"`
}

// ClearResponse представляет количество удаленных операций
type ClearResponse struct {
	Removed int `json:"removed"`
}
