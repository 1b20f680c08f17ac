package store

import (
	"encoding/json"
	"os"

	"github.com/san-kum/swarmeng/internal/trajectory"
)

// ExportData is the JSON sidecar view of a recording, the format the
// CLI's inspect --json flag and other non-protobuf tooling consume.
type ExportData struct {
	Model       string             `json:"model"`
	Algorithm   string             `json:"algorithm"`
	Dt          float64            `json:"dt"`
	FrameCount  int                `json:"frame_count"`
	AgentCount  int                `json:"agent_count"`
	Fields      []string           `json:"fields"`
	Groups      []int              `json:"groups"`
	Params      map[string]float64 `json:"algorithm_params"`
	States      []float32          `json:"states"`
}

func exportDataOf(rec trajectory.Recording) ExportData {
	return ExportData{
		Model:      rec.Meta.ModelID,
		Algorithm:  rec.Meta.AlgorithmID,
		Dt:         rec.Meta.Dt,
		FrameCount: rec.FrameCount,
		AgentCount: rec.Meta.AgentCount,
		Fields:     rec.Meta.Fields,
		Groups:     rec.Meta.Groups,
		Params:     rec.Meta.AlgorithmParams,
		States:     rec.States,
	}
}

// ExportJSON writes a recording's JSON sidecar view to path.
func ExportJSON(path string, rec trajectory.Recording) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportDataOf(rec))
}

// ExportJSONStdout writes a recording's JSON sidecar view to stdout.
func ExportJSONStdout(rec trajectory.Recording) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(exportDataOf(rec))
}
