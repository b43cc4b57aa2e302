// Package tracker implements rate-limited target tracking for structural
// control points.
//
// The package defines the core types for moving a position toward an
// operator-supplied target at a bounded rate:
//
//   - [Step]: pure one-step rate limiter
//   - [Tracker]: per-role limiter with a fixed step budget and arrival policy
//   - [Role]: the two tracked control points (cam offset, support offset)
//   - [RoleConfig]: static per-role configuration (bounds, rate, policy)
//
// # Example
//
//	trk, _ := tracker.New(cfg.Roles[tracker.RoleCam], 0.02)
//	next := trk.Next(current, target)
//
// # Thread Safety
//
// Tracker instances hold no mutable state and are safe for concurrent use.
package tracker
