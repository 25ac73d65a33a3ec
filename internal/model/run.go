package model

import (
	"encoding/json"
	"time"
)

// RunStatus is the lifecycle state of one sync run.
type RunStatus string

const (
	RunStatusRunning  RunStatus = "running"
	RunStatusComplete RunStatus = "complete"
	RunStatusFailed   RunStatus = "failed"
)

// Run kinds, one per subcommand that records history.
const (
	RunKindRebuild  = "rebuild"
	RunKindBackfill = "backfill"
	RunKindAudit    = "audit"
)

// Run is one recorded invocation of a sync operation.
type Run struct {
	ID         string          `json:"id"`
	Kind       string          `json:"kind"`
	Live       bool            `json:"live"`
	Status     RunStatus       `json:"status"`
	Report     json.RawMessage `json:"report,omitempty"`
	StartedAt  time.Time       `json:"started_at"`
	FinishedAt *time.Time      `json:"finished_at,omitempty"`
}
