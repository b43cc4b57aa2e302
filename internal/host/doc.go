// Package host adapts the rate-limited trackers to a simulation host's
// per-step callback protocol.
//
// The host owns physics, scheduling and the model object graph; this package
// is the thin boundary it calls into: [Plugin.OnInitialize] once per role at
// model start, [Plugin.OnStep] once per role per time step, and
// [Plugin.OnFinalize] at reset. The plugin polls the operator control
// surface with a bounded timeout, shares the latest targets between roles
// through a [channel.ControlChannel], and moves each position toward its
// target under the role's rate limit.
//
// Preconditions on the host: within one time step the surface-owning role is
// invoked before the other roles, in the declared order. The plugin fails
// fast with [ErrOrderViolation] when that does not hold.
package host
