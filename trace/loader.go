package trace

import (
	"encoding/json"
	"fmt"
	"io"
)

// jsonSegment mirrors the tagged-union shape documented on Segment:
// Kind names the payload, and only the fields that payload needs are
// populated.
type jsonSegment struct {
	Kind    string `json:"kind"`
	Cycles  uint64 `json:"cycles,omitempty"`
	Channel string `json:"channel,omitempty"`
	Tokens  uint64 `json:"tokens,omitempty"`
}

func (s jsonSegment) toSegment() (Segment, error) {
	switch s.Kind {
	case "compute":
		return Compute(s.Cycles), nil
	case "read":
		return Read(s.Channel, s.Tokens), nil
	case "write":
		return Write(s.Channel, s.Tokens), nil
	case "terminate":
		return Terminate(), nil
	default:
		return Segment{}, fmt.Errorf("trace: LoadReplayJSON: unknown segment kind %q", s.Kind)
	}
}

// LoadReplayJSON decodes a per-process segment stream map from r and
// builds a ReplayGenerator from it — the JSON counterpart to the
// externally-recorded trace stream spec.md §6 describes, for callers that
// want to feed a recorded execution log into the trace graph without
// writing a statistical Generator.
func LoadReplayJSON(r io.Reader) (*ReplayGenerator, error) {
	var doc map[string][]jsonSegment
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("trace: LoadReplayJSON: %w", err)
	}

	traces := make(map[string][]Segment, len(doc))

	for proc, segs := range doc {
		out := make([]Segment, 0, len(segs))

		for _, s := range segs {
			seg, err := s.toSegment()
			if err != nil {
				return nil, fmt.Errorf("trace: LoadReplayJSON: process %q: %w", proc, err)
			}

			out = append(out, seg)
		}

		traces[proc] = out
	}

	return NewReplayGenerator(traces), nil
}
