// Package artic provides core types for batched articulation simulation.
//
// An articulation is a kinematic tree of rigid bodies connected by joints,
// simulated as N parallel instances with an identical joint count J. All
// state is stored in flat, contiguous arrays keyed by (instance, joint) so
// that synchronization with a physics backend is a single bulk copy:
//
//   - [Vec]: flat float64 vector with batched helpers
//   - [RootState]: root pose and twist for N instances
//   - [JointState]: joint position/velocity/effort, N×J
//   - [Snapshot]: copied view of a full articulation state
//   - [TargetKind]: the kind of a staged joint command
//
// # Thread Safety
//
// Buffers are NOT thread-safe. Exactly one control thread drives the
// stage → flush → step → refresh cycle; callers enforce single-writer
// discipline.
package artic
