// # internal/history/models.go
package history

import "time"

const SchemaVersion = 1

// Snapshot is one persisted detection run.
type Snapshot struct {
	RunID           string
	ProjectKey      string
	SchemaVersion   int
	Timestamp       time.Time
	CommitHash      string
	CommitTimestamp time.Time

	ModuleCount   int
	FileCount     int
	EdgeCount     int
	CycleCount    int
	NodesInCycles int
	MaxFanIn      int
	MaxFanOut     int
}

// TrendPoint is a snapshot plus deltas against its predecessor.
type TrendPoint struct {
	Timestamp  time.Time
	CommitHash string

	ModuleCount   int
	FileCount     int
	EdgeCount     int
	CycleCount    int
	NodesInCycles int

	DeltaModules int
	DeltaFiles   int
	DeltaEdges   int
	DeltaCycles  int
}

type TrendReport struct {
	Since     time.Time
	Until     time.Time
	ScanCount int
	Points    []TrendPoint
}
