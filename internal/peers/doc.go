// Package peers models the cluster-wide facts shared between control-plane
// peers: the cluster name and the service-account signing key.
//
// Facts live in a replicated key/value store writable only by the leader and
// readable by every peer. The single-writer discipline is enforced at the
// call site with a leadership check, not by the store itself, so both code
// paths stay visible in one function. A deprecated leader-scoped store from
// a prior protocol version is consulted once as a migration source and
// cleared immediately after its value is copied forward.
package peers
