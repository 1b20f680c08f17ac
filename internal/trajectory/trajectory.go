// Package trajectory encodes and decodes recorded runs to the
// length-prefixed wire format external tooling reads: a top-level
// message carrying a metadata submessage, a frame count, and a packed
// little-endian float32 state blob. Encoding is built directly on
// google.golang.org/protobuf's wire primitives rather than compiled
// .proto types, since the format predates any .proto schema.
package trajectory

import (
	"encoding/binary"
	"fmt"
	"math"
	"sort"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/san-kum/swarmeng/internal/engine"
)

// Field numbers for the top-level Recording message.
const (
	fieldMeta       = 1
	fieldFrameCount = 2
	fieldStates     = 3
)

// Field numbers for the RecordMeta submessage.
const (
	metaVersion         = 1
	metaCreatedAt       = 2
	metaDt              = 3
	metaStride          = 4
	metaMaxFrames       = 5
	metaModelID         = 6
	metaAlgorithmID     = 7
	metaPlane2D         = 8
	metaAgentCount      = 9
	metaFields          = 10
	metaGroupColors     = 11
	metaGroups          = 12
	metaAlgorithmParams = 13
)

// Field numbers for the GroupColor submessage.
const (
	groupColorGroup = 1
	groupColorColor = 2
)

// Field numbers for the AlgorithmParam submessage.
const (
	algoParamKey   = 1
	algoParamValue = 2
)

// FormatVersion is written into every encoded recording's meta.version.
const FormatVersion = 1

// BaseFields is the 6-field per-agent layout every algorithm produces.
var BaseFields = []string{"x", "y", "z", "vx", "vy", "vz"}

// SafeFlockingFields is the 14-field per-agent layout used when the
// active algorithm is safe-flocking-alpha, adding the nominal/filtered
// control and the safety-filter diagnostics to the base state.
var SafeFlockingFields = []string{
	"x", "y", "z", "vx", "vy", "vz",
	"unom_x", "unom_y", "unom_z",
	"u_x", "u_y", "u_z",
	"slack", "active_constraints",
}

// Meta is a recording's header: timing, identity, and per-agent
// metadata that does not vary per frame.
type Meta struct {
	Version         int
	CreatedAt       string
	Dt              float64
	Stride          int
	MaxFrames       int
	ModelID         string
	AlgorithmID     string
	Plane2D         bool
	AgentCount      int
	Fields          []string
	GroupColors     map[int]string
	Groups          []int
	AlgorithmParams map[string]float64
}

// Recording is a fully decoded trajectory: header plus the flattened
// per-frame, per-agent, per-field state values in
// states[frame*agentCount*len(fields) + agent*len(fields) + field]
// order.
type Recording struct {
	Meta       Meta
	FrameCount int
	States     []float32
}

func encodeMeta(m Meta) []byte {
	var b []byte
	b = protowire.AppendTag(b, metaVersion, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Version))

	if m.CreatedAt != "" {
		b = protowire.AppendTag(b, metaCreatedAt, protowire.BytesType)
		b = protowire.AppendString(b, m.CreatedAt)
	}

	b = protowire.AppendTag(b, metaDt, protowire.Fixed64Type)
	b = protowire.AppendFixed64(b, math.Float64bits(m.Dt))

	b = protowire.AppendTag(b, metaStride, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.Stride))

	b = protowire.AppendTag(b, metaMaxFrames, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.MaxFrames))

	if m.ModelID != "" {
		b = protowire.AppendTag(b, metaModelID, protowire.BytesType)
		b = protowire.AppendString(b, m.ModelID)
	}
	if m.AlgorithmID != "" {
		b = protowire.AppendTag(b, metaAlgorithmID, protowire.BytesType)
		b = protowire.AppendString(b, m.AlgorithmID)
	}

	plane2d := uint64(0)
	if m.Plane2D {
		plane2d = 1
	}
	b = protowire.AppendTag(b, metaPlane2D, protowire.VarintType)
	b = protowire.AppendVarint(b, plane2d)

	b = protowire.AppendTag(b, metaAgentCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(m.AgentCount))

	for _, f := range m.Fields {
		b = protowire.AppendTag(b, metaFields, protowire.BytesType)
		b = protowire.AppendString(b, f)
	}

	groupKeys := make([]int, 0, len(m.GroupColors))
	for g := range m.GroupColors {
		groupKeys = append(groupKeys, g)
	}
	sort.Ints(groupKeys)
	for _, g := range groupKeys {
		var gc []byte
		gc = protowire.AppendTag(gc, groupColorGroup, protowire.VarintType)
		gc = protowire.AppendVarint(gc, uint64(g))
		gc = protowire.AppendTag(gc, groupColorColor, protowire.BytesType)
		gc = protowire.AppendString(gc, m.GroupColors[g])
		b = protowire.AppendTag(b, metaGroupColors, protowire.BytesType)
		b = protowire.AppendBytes(b, gc)
	}

	if len(m.Groups) > 0 {
		var packed []byte
		for _, g := range m.Groups {
			packed = protowire.AppendVarint(packed, uint64(g))
		}
		b = protowire.AppendTag(b, metaGroups, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}

	paramKeys := make([]string, 0, len(m.AlgorithmParams))
	for k := range m.AlgorithmParams {
		paramKeys = append(paramKeys, k)
	}
	sort.Strings(paramKeys)
	for _, k := range paramKeys {
		var ap []byte
		ap = protowire.AppendTag(ap, algoParamKey, protowire.BytesType)
		ap = protowire.AppendString(ap, k)
		ap = protowire.AppendTag(ap, algoParamValue, protowire.Fixed64Type)
		ap = protowire.AppendFixed64(ap, math.Float64bits(m.AlgorithmParams[k]))
		b = protowire.AppendTag(b, metaAlgorithmParams, protowire.BytesType)
		b = protowire.AppendBytes(b, ap)
	}

	return b
}

func encodeStates(states []float32) []byte {
	raw := make([]byte, len(states)*4)
	for i, v := range states {
		binary.LittleEndian.PutUint32(raw[i*4:], math.Float32bits(v))
	}
	return raw
}

// Encode serializes a recording to the wire format.
func Encode(r Recording) []byte {
	var b []byte

	metaBytes := encodeMeta(r.Meta)
	b = protowire.AppendTag(b, fieldMeta, protowire.BytesType)
	b = protowire.AppendBytes(b, metaBytes)

	b = protowire.AppendTag(b, fieldFrameCount, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(r.FrameCount))

	b = protowire.AppendTag(b, fieldStates, protowire.BytesType)
	b = protowire.AppendBytes(b, encodeStates(r.States))

	return b
}

// ErrTruncated indicates the byte slice ended mid-field.
var ErrTruncated = fmt.Errorf("trajectory: truncated wire data")

func consumeGroupColor(b []byte) (int, string, error) {
	group, color := -1, ""
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return 0, "", ErrTruncated
		}
		b = b[n:]
		switch {
		case num == groupColorGroup && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return 0, "", ErrTruncated
			}
			group = int(v)
			b = b[n:]
		case num == groupColorColor && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return 0, "", ErrTruncated
			}
			color = string(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return 0, "", ErrTruncated
			}
			b = b[n:]
		}
	}
	return group, color, nil
}

func consumeAlgoParam(b []byte) (string, float64, error) {
	key, value := "", math.NaN()
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return "", 0, ErrTruncated
		}
		b = b[n:]
		switch {
		case num == algoParamKey && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return "", 0, ErrTruncated
			}
			key = string(v)
			b = b[n:]
		case num == algoParamValue && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return "", 0, ErrTruncated
			}
			value = math.Float64frombits(v)
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return "", 0, ErrTruncated
			}
			b = b[n:]
		}
	}
	return key, value, nil
}

func decodeMeta(b []byte) (Meta, error) {
	m := Meta{GroupColors: map[int]string{}, AlgorithmParams: map[string]float64{}}
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return m, ErrTruncated
		}
		b = b[n:]
		switch {
		case num == metaVersion && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.Version = int(v)
			b = b[n:]
		case num == metaCreatedAt && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.CreatedAt = string(v)
			b = b[n:]
		case num == metaDt && typ == protowire.Fixed64Type:
			v, n := protowire.ConsumeFixed64(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.Dt = math.Float64frombits(v)
			b = b[n:]
		case num == metaStride && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.Stride = int(v)
			b = b[n:]
		case num == metaMaxFrames && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.MaxFrames = int(v)
			b = b[n:]
		case num == metaModelID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.ModelID = string(v)
			b = b[n:]
		case num == metaAlgorithmID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.AlgorithmID = string(v)
			b = b[n:]
		case num == metaPlane2D && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.Plane2D = v != 0
			b = b[n:]
		case num == metaAgentCount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.AgentCount = int(v)
			b = b[n:]
		case num == metaFields && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, ErrTruncated
			}
			m.Fields = append(m.Fields, string(v))
			b = b[n:]
		case num == metaGroupColors && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, ErrTruncated
			}
			group, color, err := consumeGroupColor(v)
			if err != nil {
				return m, err
			}
			if group >= 0 {
				m.GroupColors[group] = color
			}
			b = b[n:]
		case num == metaGroups && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, ErrTruncated
			}
			for len(v) > 0 {
				g, gn := protowire.ConsumeVarint(v)
				if gn < 0 {
					return m, ErrTruncated
				}
				m.Groups = append(m.Groups, int(g))
				v = v[gn:]
			}
			b = b[n:]
		case num == metaAlgorithmParams && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return m, ErrTruncated
			}
			key, value, err := consumeAlgoParam(v)
			if err != nil {
				return m, err
			}
			if key != "" {
				m.AlgorithmParams[key] = value
			}
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return m, ErrTruncated
			}
			b = b[n:]
		}
	}
	return m, nil
}

func decodeStates(b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, fmt.Errorf("trajectory: states payload length %d is not a multiple of 4", len(b))
	}
	out := make([]float32, len(b)/4)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[i*4:]))
	}
	return out, nil
}

// Decode parses the wire format back into a Recording.
func Decode(b []byte) (Recording, error) {
	var rec Recording
	var metaBytes, statesBytes []byte
	haveStates := false

	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return rec, ErrTruncated
		}
		b = b[n:]
		switch {
		case num == fieldMeta && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return rec, ErrTruncated
			}
			metaBytes = v
			b = b[n:]
		case num == fieldFrameCount && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return rec, ErrTruncated
			}
			rec.FrameCount = int(v)
			b = b[n:]
		case num == fieldStates && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return rec, ErrTruncated
			}
			statesBytes = v
			haveStates = true
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return rec, ErrTruncated
			}
			b = b[n:]
		}
	}

	if metaBytes != nil {
		meta, err := decodeMeta(metaBytes)
		if err != nil {
			return rec, err
		}
		rec.Meta = meta
	}
	if !haveStates {
		return rec, fmt.Errorf("trajectory: states payload missing")
	}
	states, err := decodeStates(statesBytes)
	if err != nil {
		return rec, err
	}
	rec.States = states
	return rec, nil
}

// FieldsFor returns the canonical per-agent field layout for an
// algorithm id.
func FieldsFor(algorithmID string) []string {
	if algorithmID == engine.AlgoSafeID {
		return SafeFlockingFields
	}
	return BaseFields
}
