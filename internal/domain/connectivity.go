package domain

import "time"

// ConnectivityState classifies the last observed backend poll outcome.
type ConnectivityState string

const (
	StateConnected   ConnectivityState = "Connected"
	StateServerError ConnectivityState = "ServerError"
	StateOffline     ConnectivityState = "Offline"
)

// ErrorClassification tags a SyncError by failure layer.
type ErrorClassification string

const (
	ErrClassNetwork    ErrorClassification = "NETWORK"
	ErrClassServer     ErrorClassification = "SERVER"
	ErrClassValidation ErrorClassification = "VALIDATION"
)

// SyncError carries the diagnostic detail behind a non-Connected state.
type SyncError struct {
	Classification ErrorClassification `json:"classification"`
	Message        string              `json:"message"`
	Detail         string              `json:"detail,omitempty"`
}

func (e *SyncError) Error() string {
	if e.Detail != "" {
		return e.Message + ": " + e.Detail
	}
	return e.Message
}

// ConnectivitySnapshot is the single value consumers read; every poll or
// manual retry replaces it wholesale.
type ConnectivitySnapshot struct {
	State              ConnectivityState `json:"state"`
	LastSuccessfulSync *time.Time        `json:"last_successful_sync,omitempty"`
	LastError          *SyncError        `json:"last_error,omitempty"`
	RetryCount         int               `json:"retry_count"`
	Seq                uint64            `json:"seq"`
}

// InitialSnapshot is the optimistic session-start state.
func InitialSnapshot() ConnectivitySnapshot {
	return ConnectivitySnapshot{State: StateConnected}
}
