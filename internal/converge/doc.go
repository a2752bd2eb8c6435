// Package converge drives one control-plane node toward the desired
// cluster configuration.
//
// The engine is level-triggered: every invocation runs the same fixed step
// sequence from scratch (install, certificate requests, credential
// materialization, signing key, auth webhook, load balancers, readiness
// gate, cluster identity, kubeconfigs, service configuration, token
// distribution). Each step is idempotent, so an interrupted or failed pass
// is corrected by simply running the next one; no step carries its own
// retry state.
//
// Readiness problems are not errors: they are recorded as waiting/blocked
// conditions and short-circuit the dependent steps, and the pass reports the
// most severe condition found. Local I/O failures are errors and abort the
// pass.
//
// Leadership is re-evaluated on every pass. Cluster-wide writes (identity,
// signing key, token handout) happen only on the leader, which is what makes
// concurrent passes on different nodes safe without any cross-node locking.
package converge
