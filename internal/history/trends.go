// # internal/history/trends.go
package history

import "fmt"

// BuildTrendReport turns an ordered snapshot series into per-scan deltas so
// "did this change add a cycle" is answerable at a glance.
func BuildTrendReport(snapshots []Snapshot) (TrendReport, error) {
	if len(snapshots) == 0 {
		return TrendReport{}, fmt.Errorf("no snapshots available")
	}

	points := make([]TrendPoint, 0, len(snapshots))
	for i, current := range snapshots {
		point := TrendPoint{
			Timestamp:     current.Timestamp,
			CommitHash:    current.CommitHash,
			ModuleCount:   current.ModuleCount,
			FileCount:     current.FileCount,
			EdgeCount:     current.EdgeCount,
			CycleCount:    current.CycleCount,
			NodesInCycles: current.NodesInCycles,
		}

		if i > 0 {
			prev := snapshots[i-1]
			point.DeltaModules = current.ModuleCount - prev.ModuleCount
			point.DeltaFiles = current.FileCount - prev.FileCount
			point.DeltaEdges = current.EdgeCount - prev.EdgeCount
			point.DeltaCycles = current.CycleCount - prev.CycleCount
		}

		points = append(points, point)
	}

	return TrendReport{
		Since:     snapshots[0].Timestamp,
		Until:     snapshots[len(snapshots)-1].Timestamp,
		ScanCount: len(points),
		Points:    points,
	}, nil
}
