package view

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/artsim/internal/actuator"
	"github.com/san-kum/artsim/internal/artic"
	"github.com/san-kum/artsim/internal/bridge"
)

// mockBridge records every flush so tests can assert on exactly what
// reached the backend.
type mockBridge struct {
	n, j int

	pos, vel, eff artic.Vec // served on reads

	effortWrites [][]float64
	driveWrites  []driveWrite
	stateWrites  int
}

type driveWrite struct {
	stiffness, damping, target []float64
}

func newMockBridge(n, j int) *mockBridge {
	return &mockBridge{
		n:   n,
		j:   j,
		pos: make(artic.Vec, n*j),
		vel: make(artic.Vec, n*j),
		eff: make(artic.Vec, n*j),
	}
}

func (m *mockBridge) Counts() (int, int) { return m.n, m.j }

func (m *mockBridge) ReadRootState(ids []int, pose, twist artic.Vec) error {
	return nil
}

func (m *mockBridge) ReadJointState(ids []int, pos, vel, eff artic.Vec) error {
	copy(pos, m.pos)
	copy(vel, m.vel)
	copy(eff, m.eff)
	return nil
}

func (m *mockBridge) WriteRootState(ids []int, pose, twist artic.Vec) error { return nil }

func (m *mockBridge) WriteJointState(ids []int, pos, vel artic.Vec) error {
	m.stateWrites++
	if ids == nil {
		copy(m.pos, pos)
		copy(m.vel, vel)
		return nil
	}
	for r, id := range ids {
		copy(m.pos[id*m.j:(id+1)*m.j], pos[r*m.j:(r+1)*m.j])
		copy(m.vel[id*m.j:(id+1)*m.j], vel[r*m.j:(r+1)*m.j])
	}
	return nil
}

func (m *mockBridge) WriteJointDriveTargets(ids []int, stiffness, damping, target artic.Vec) error {
	m.driveWrites = append(m.driveWrites, driveWrite{
		stiffness: append([]float64(nil), stiffness...),
		damping:   append([]float64(nil), damping...),
		target:    append([]float64(nil), target...),
	})
	return nil
}

func (m *mockBridge) WriteJointEfforts(ids []int, effort artic.Vec) error {
	m.effortWrites = append(m.effortWrites, append([]float64(nil), effort...))
	return nil
}

var testJoints = []string{"hip", "knee", "ankle"}

func pdSpecs() []actuator.GroupSpec {
	return []actuator.GroupSpec{{
		Name:        "legs",
		Pattern:     ".*",
		Model:       "ideal_pd",
		Stiffness:   []float64{10},
		Damping:     []float64{0},
		EffortLimit: []float64{5},
	}}
}

func newTestView(t *testing.T, mb *mockBridge, specs []actuator.GroupSpec) *View {
	t.Helper()
	v, err := New(bridge.NewHandle(mb), testJoints, specs)
	if err != nil {
		t.Fatalf("view construction failed: %v", err)
	}
	return v
}

func TestNewRejectsJointCountMismatch(t *testing.T) {
	mb := newMockBridge(2, 4)
	_, err := New(bridge.NewHandle(mb), testJoints, pdSpecs())
	if !errors.Is(err, artic.ErrConfiguration) {
		t.Errorf("expected configuration error for joint mismatch, got %v", err)
	}
}

func TestNewRejectsPartitionViolations(t *testing.T) {
	mb := newMockBridge(2, 3)

	// Unclaimed joint.
	_, err := New(bridge.NewHandle(mb), testJoints, []actuator.GroupSpec{
		{Name: "upper", Pattern: "hip|knee", Model: "ideal_pd"},
	})
	if !errors.Is(err, artic.ErrConfiguration) {
		t.Errorf("unclaimed joint accepted: %v", err)
	}

	// Doubly claimed joint.
	_, err = New(bridge.NewHandle(mb), testJoints, []actuator.GroupSpec{
		{Name: "all", Pattern: ".*", Model: "ideal_pd"},
		{Name: "knee", Pattern: "knee", Model: "effort"},
	})
	if !errors.Is(err, artic.ErrConfiguration) {
		t.Errorf("overlapping groups accepted: %v", err)
	}
}

func TestStateRoundTripThroughBackend(t *testing.T) {
	nb := bridge.NewNative(2, []float64{1, 1, 1}, []float64{0, 0, 0}, []float64{0, 0, 0})
	v, err := New(bridge.NewHandle(nb), testJoints, pdSpecs())
	if err != nil {
		t.Fatalf("view construction failed: %v", err)
	}

	written := []float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6}
	vel := make([]float64, 6)
	if err := v.WriteJointState(written, vel, nil); err != nil {
		t.Fatalf("write joint state failed: %v", err)
	}
	if err := v.Update(0.01); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	s := v.GetState()
	for i, want := range written {
		if math.Abs(s.Joint.Position[i]-want) > 1e-12 {
			t.Errorf("position[%d] = %f, want %f", i, s.Joint.Position[i], want)
		}
	}
}

func TestStaleReadReturnsZeros(t *testing.T) {
	mb := newMockBridge(2, 3)
	mb.pos.Fill(9) // backend has data, but the view has not refreshed
	v := newTestView(t, mb, pdSpecs())

	if v.Fresh() {
		t.Error("view fresh before first update")
	}
	s := v.GetState()
	for i, p := range s.Joint.Position {
		if p != 0 {
			t.Errorf("stale position[%d] = %f, want 0", i, p)
		}
	}

	if err := v.Update(0.01); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if !v.Fresh() {
		t.Error("view not fresh after update")
	}
	if v.GetState().Joint.Position[0] != 9 {
		t.Error("update did not refresh from backend")
	}
}

func TestSnapshotDoesNotAliasBuffers(t *testing.T) {
	mb := newMockBridge(1, 3)
	v := newTestView(t, mb, pdSpecs())

	s := v.GetState()
	s.Joint.Position[0] = 123

	if v.GetState().Joint.Position[0] != 0 {
		t.Error("snapshot mutation leaked into the view buffer")
	}
}

func TestLastWriteWins(t *testing.T) {
	mb := newMockBridge(1, 3)
	v := newTestView(t, mb, pdSpecs())

	// Position target would produce PD effort 10 -> clamped 5. The later
	// effort target overwrites the pending record entirely.
	if err := v.SetJointPositionTarget([]float64{1}, []int{0}, nil); err != nil {
		t.Fatalf("set position target failed: %v", err)
	}
	if err := v.SetJointEffortTarget([]float64{2}, []int{0}, nil); err != nil {
		t.Fatalf("set effort target failed: %v", err)
	}
	if err := v.WriteDataToSim(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	flushed := mb.effortWrites[len(mb.effortWrites)-1]
	if flushed[0] != 2 {
		t.Errorf("flushed effort = %f, want the effort target 2, not a PD value", flushed[0])
	}
}

func TestLastWriteWinsClampsEffort(t *testing.T) {
	mb := newMockBridge(1, 3)
	v := newTestView(t, mb, pdSpecs())

	if err := v.SetJointPositionTarget([]float64{1}, []int{0}, nil); err != nil {
		t.Fatalf("set position target failed: %v", err)
	}
	if err := v.SetJointEffortTarget([]float64{50}, []int{0}, nil); err != nil {
		t.Fatalf("set effort target failed: %v", err)
	}
	if err := v.WriteDataToSim(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	flushed := mb.effortWrites[len(mb.effortWrites)-1]
	if flushed[0] != 5 {
		t.Errorf("flushed effort = %f, want effort target clamped to limit 5", flushed[0])
	}
}

func TestFlushIsIdempotent(t *testing.T) {
	mb := newMockBridge(2, 3)
	mb.pos[0] = 0.25
	v := newTestView(t, mb, pdSpecs())

	if err := v.Update(0.01); err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if err := v.SetJointPositionTarget([]float64{1, 0.5, -0.5}, nil, nil); err != nil {
		t.Fatalf("set targets failed: %v", err)
	}

	if err := v.WriteDataToSim(); err != nil {
		t.Fatalf("first flush failed: %v", err)
	}
	if err := v.WriteDataToSim(); err != nil {
		t.Fatalf("second flush failed: %v", err)
	}

	if len(mb.effortWrites) != 2 {
		t.Fatalf("expected 2 effort flushes, got %d", len(mb.effortWrites))
	}
	a, b := mb.effortWrites[0], mb.effortWrites[1]
	for i := range a {
		if a[i] != b[i] {
			t.Errorf("flush %d differs: %f vs %f", i, a[i], b[i])
		}
	}
}

func TestPartialReset(t *testing.T) {
	mb := newMockBridge(4, 3)
	v := newTestView(t, mb, pdSpecs())

	if err := v.SetJointPositionTarget([]float64{1, 2, 3}, nil, nil); err != nil {
		t.Fatalf("set targets failed: %v", err)
	}

	beforeKinds, beforeTargets := v.Staged()

	if err := v.Reset([]int{2}); err != nil {
		t.Fatalf("reset failed: %v", err)
	}

	kinds, targets := v.Staged()
	j := 3
	for i := 0; i < 4; i++ {
		for jj := 0; jj < j; jj++ {
			k := i*j + jj
			if i == 2 {
				if kinds[k] != artic.TargetNone || targets[k] != 0 {
					t.Errorf("instance 2 joint %d not cleared: kind=%v target=%f", jj, kinds[k], targets[k])
				}
				continue
			}
			if kinds[k] != beforeKinds[k] || targets[k] != beforeTargets[k] {
				t.Errorf("instance %d joint %d disturbed by partial reset", i, jj)
			}
		}
	}
}

func TestDirectWriteClearsStagedTargets(t *testing.T) {
	mb := newMockBridge(2, 3)
	v := newTestView(t, mb, pdSpecs())

	if err := v.SetJointPositionTarget([]float64{1, 1, 1}, nil, nil); err != nil {
		t.Fatalf("set targets failed: %v", err)
	}

	row := make([]float64, 3)
	if err := v.WriteJointState(row, row, []int{1}); err != nil {
		t.Fatalf("teleport failed: %v", err)
	}

	kinds, _ := v.Staged()
	for jj := 0; jj < 3; jj++ {
		if kinds[1*3+jj] != artic.TargetNone {
			t.Errorf("instance 1 joint %d still staged after teleport", jj)
		}
		if kinds[0*3+jj] != artic.TargetPosition {
			t.Errorf("instance 0 joint %d lost its target", jj)
		}
	}
}

func TestTargetValidation(t *testing.T) {
	mb := newMockBridge(2, 3)
	v := newTestView(t, mb, pdSpecs())

	tests := []struct {
		name string
		err  error
	}{
		{"length mismatch", v.SetJointPositionTarget([]float64{1, 2}, []int{0}, nil)},
		{"joint out of range", v.SetJointPositionTarget([]float64{1}, []int{7}, nil)},
		{"negative joint", v.SetJointVelocityTarget([]float64{1}, []int{-1}, nil)},
		{"instance out of range", v.SetJointEffortTarget([]float64{1}, []int{0}, []int{5})},
	}
	for _, tt := range tests {
		if !errors.Is(tt.err, artic.ErrConfiguration) {
			t.Errorf("%s: expected configuration error, got %v", tt.name, tt.err)
		}
	}
}

func TestUseAfterInvalidation(t *testing.T) {
	mb := newMockBridge(2, 3)
	h := bridge.NewHandle(mb)
	v, err := New(h, testJoints, pdSpecs())
	if err != nil {
		t.Fatalf("view construction failed: %v", err)
	}

	h.Invalidate()

	if err := v.SetJointPositionTarget([]float64{1, 1, 1}, nil, nil); !errors.Is(err, artic.ErrInvalidHandle) {
		t.Errorf("stage after invalidation: got %v", err)
	}
	if err := v.WriteDataToSim(); !errors.Is(err, artic.ErrInvalidHandle) {
		t.Errorf("flush after invalidation: got %v", err)
	}
	if err := v.Update(0.01); !errors.Is(err, artic.ErrInvalidHandle) {
		t.Errorf("update after invalidation: got %v", err)
	}
	if err := v.Reset(nil); !errors.Is(err, artic.ErrInvalidHandle) {
		t.Errorf("reset after invalidation: got %v", err)
	}
}

func TestMixedGroupsFlushEffortsAndDrives(t *testing.T) {
	mb := newMockBridge(1, 3)
	specs := []actuator.GroupSpec{
		{
			Name: "upper", Pattern: "hip|knee", Model: "implicit_pd",
			Stiffness: []float64{100}, Damping: []float64{10},
		},
		{
			Name: "foot", Pattern: "ankle", Model: "ideal_pd",
			Stiffness: []float64{10}, EffortLimit: []float64{5},
		},
	}
	v := newTestView(t, mb, specs)

	if err := v.SetJointPositionTarget([]float64{0.3, 0.4, 1.0}, nil, nil); err != nil {
		t.Fatalf("set targets failed: %v", err)
	}
	if err := v.WriteDataToSim(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if len(mb.driveWrites) != 1 {
		t.Fatalf("expected 1 drive flush, got %d", len(mb.driveWrites))
	}
	d := mb.driveWrites[0]
	if d.stiffness[0] != 100 || d.target[1] != 0.4 {
		t.Errorf("drive params = kp %v target %v", d.stiffness, d.target)
	}
	if d.stiffness[2] != 0 {
		t.Errorf("ideal PD joint leaked drive stiffness %f", d.stiffness[2])
	}

	efforts := mb.effortWrites[0]
	if efforts[0] != 0 || efforts[1] != 0 {
		t.Error("implicit joints must not get explicit efforts for position targets")
	}
	// ankle: kp 10 * error 1.0 clamped to 5
	if efforts[2] != 5 {
		t.Errorf("ankle effort = %f, want 5", efforts[2])
	}
}

func TestEffortOnlyGroupSkipsDriveFlush(t *testing.T) {
	mb := newMockBridge(1, 3)
	specs := []actuator.GroupSpec{
		{Name: "all", Pattern: ".*", Model: "effort", EffortLimit: []float64{10}},
	}
	v := newTestView(t, mb, specs)

	if err := v.SetJointEffortTarget([]float64{1, 2, 3}, nil, nil); err != nil {
		t.Fatalf("set targets failed: %v", err)
	}
	if err := v.WriteDataToSim(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	if len(mb.driveWrites) != 0 {
		t.Errorf("effort-only view flushed %d drive writes", len(mb.driveWrites))
	}
	if got := mb.effortWrites[0]; got[0] != 1 || got[1] != 2 || got[2] != 3 {
		t.Errorf("efforts = %v, want [1 2 3]", got)
	}
}

func TestInstanceSubsetTargets(t *testing.T) {
	mb := newMockBridge(3, 3)
	v := newTestView(t, mb, pdSpecs())

	if err := v.SetJointEffortTarget([]float64{4}, []int{1}, []int{2}); err != nil {
		t.Fatalf("set subset target failed: %v", err)
	}
	if err := v.WriteDataToSim(); err != nil {
		t.Fatalf("flush failed: %v", err)
	}

	efforts := mb.effortWrites[0]
	for i := 0; i < 3; i++ {
		for jj := 0; jj < 3; jj++ {
			want := 0.0
			if i == 2 && jj == 1 {
				want = 4
			}
			if efforts[i*3+jj] != want {
				t.Errorf("effort[%d][%d] = %f, want %f", i, jj, efforts[i*3+jj], want)
			}
		}
	}
}
