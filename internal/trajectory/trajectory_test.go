package trajectory

import (
	"testing"

	"github.com/san-kum/swarmeng/internal/engine"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	rec := Recording{
		Meta: Meta{
			Version:     FormatVersion,
			CreatedAt:   "2026-08-03T00:00:00Z",
			Dt:          1.0 / 60.0,
			Stride:      2,
			ModelID:     engine.ModelRing,
			AlgorithmID: engine.AlgoFlockingID,
			Plane2D:     false,
			AgentCount:  2,
			Fields:      BaseFields,
			GroupColors: map[int]string{0: "#ff0000", 1: "#00ff00"},
			Groups:      []int{0, 1},
			AlgorithmParams: map[string]float64{
				"neighbor_radius":   2.6,
				"separation_radius": 0.9,
			},
		},
		FrameCount: 2,
		States: []float32{
			0, 0, 0, 1, 0, 0,
			1, 1, 1, 1, 1, 0,
			1, 1, 1, 2, 0, 0,
			2, 2, 2, 1, 1, 0,
		},
	}

	encoded := Encode(rec)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if decoded.FrameCount != rec.FrameCount {
		t.Errorf("frame count: got %d want %d", decoded.FrameCount, rec.FrameCount)
	}
	if decoded.Meta.ModelID != rec.Meta.ModelID {
		t.Errorf("model id: got %q want %q", decoded.Meta.ModelID, rec.Meta.ModelID)
	}
	if decoded.Meta.AlgorithmID != rec.Meta.AlgorithmID {
		t.Errorf("algorithm id: got %q want %q", decoded.Meta.AlgorithmID, rec.Meta.AlgorithmID)
	}
	if decoded.Meta.Dt != rec.Meta.Dt {
		t.Errorf("dt: got %v want %v", decoded.Meta.Dt, rec.Meta.Dt)
	}
	if decoded.Meta.AgentCount != rec.Meta.AgentCount {
		t.Errorf("agent count: got %d want %d", decoded.Meta.AgentCount, rec.Meta.AgentCount)
	}
	if len(decoded.Meta.Fields) != len(BaseFields) {
		t.Errorf("fields: got %v want %v", decoded.Meta.Fields, BaseFields)
	}
	if decoded.Meta.GroupColors[0] != "#ff0000" || decoded.Meta.GroupColors[1] != "#00ff00" {
		t.Errorf("group colors mismatch: %v", decoded.Meta.GroupColors)
	}
	if len(decoded.Meta.Groups) != 2 {
		t.Errorf("groups: got %v", decoded.Meta.Groups)
	}
	if decoded.Meta.AlgorithmParams["neighbor_radius"] != 2.6 {
		t.Errorf("neighbor_radius param lost: %v", decoded.Meta.AlgorithmParams)
	}
	if len(decoded.States) != len(rec.States) {
		t.Fatalf("states length: got %d want %d", len(decoded.States), len(rec.States))
	}
	for i := range rec.States {
		if decoded.States[i] != rec.States[i] {
			t.Errorf("state[%d]: got %v want %v", i, decoded.States[i], rec.States[i])
		}
	}
}

func TestDecodeEmptyStates(t *testing.T) {
	rec := Recording{Meta: Meta{ModelID: engine.ModelRing}, FrameCount: 0}
	encoded := Encode(rec)
	// An empty recording still carries a zero-length states field, so the
	// unmodified copy decodes without error.
	var truncated []byte
	truncated = append(truncated, encoded...)
	if _, err := Decode(truncated); err != nil {
		t.Fatalf("unexpected error decoding a well-formed (if empty) recording: %v", err)
	}
}

func TestFieldsFor(t *testing.T) {
	if got := FieldsFor(engine.AlgoSafeID); len(got) != 14 {
		t.Errorf("expected 14 fields for safe-flocking-alpha, got %d", len(got))
	}
	if got := FieldsFor(engine.AlgoFlockingID); len(got) != 6 {
		t.Errorf("expected 6 fields for flocking, got %d", len(got))
	}
}
