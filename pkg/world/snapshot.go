// pkg/world/snapshot.go
package world

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/opd-ai/go-rigid2d/pkg/collision"
	"github.com/opd-ai/go-rigid2d/pkg/physics"
)

// BodyState is the captured motion of one registered body
type BodyState struct {
	Owner           collision.ID     `msgpack:"owner"`
	Kind            string           `msgpack:"kind"`
	Active          bool             `msgpack:"active"`
	Position        physics.Vector2D `msgpack:"position"`
	Rotation        float64          `msgpack:"rotation"`
	Velocity        physics.Vector2D `msgpack:"velocity"`
	AngularVelocity float64          `msgpack:"angular_velocity"`
}

// Snapshot captures every registered body after a tick, in owner order
type Snapshot struct {
	Tick   uint64      `msgpack:"tick"`
	Bodies []BodyState `msgpack:"bodies"`
}

// Snapshot captures the current body states
func (s *Simulation) Snapshot() Snapshot {
	snap := Snapshot{Tick: s.tick, Bodies: make([]BodyState, 0, len(s.bodies))}
	for id, reg := range s.bodies {
		st := BodyState{
			Owner:           id,
			Kind:            reg.body.Kind().String(),
			Active:          reg.active,
			Velocity:        reg.body.Velocity,
			AngularVelocity: reg.body.AngularVelocity,
		}
		if reg.frame != nil {
			st.Position = reg.frame.WorldPosition()
			st.Rotation = reg.frame.WorldRotation()
		}
		snap.Bodies = append(snap.Bodies, st)
	}
	sort.Slice(snap.Bodies, func(i, j int) bool { return snap.Bodies[i].Owner < snap.Bodies[j].Owner })
	return snap
}

// Encode serializes the snapshot with msgpack. Equal states encode to
// identical bytes.
func (snap Snapshot) Encode() ([]byte, error) {
	data, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return data, nil
}

// DecodeSnapshot parses a snapshot produced by Encode
func DecodeSnapshot(data []byte) (Snapshot, error) {
	var snap Snapshot
	if err := msgpack.Unmarshal(data, &snap); err != nil {
		return Snapshot{}, fmt.Errorf("failed to decode snapshot: %w", err)
	}
	return snap, nil
}

// Lines renders the snapshot one body per line with full float precision,
// for printing and for diffing two runs.
func (snap Snapshot) Lines() []string {
	lines := make([]string, 0, len(snap.Bodies)+1)
	lines = append(lines, "tick "+strconv.FormatUint(snap.Tick, 10)+"\n")
	for _, b := range snap.Bodies {
		lines = append(lines, fmt.Sprintf("%d %s pos=(%s,%s) rot=%s vel=(%s,%s) w=%s\n",
			b.Owner, b.Kind,
			ftoa(b.Position.X), ftoa(b.Position.Y), ftoa(b.Rotation),
			ftoa(b.Velocity.X), ftoa(b.Velocity.Y), ftoa(b.AngularVelocity),
		))
	}
	return lines
}

func ftoa(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
