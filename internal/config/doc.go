// Package config loads and validates the node configuration for the
// convergence engine.
//
// Configuration is a YAML file of operator-facing options (service CIDR, DNS
// domain, extra SANs, per-service extra args, taints, sysctl). Free-form
// blobs (sysctl, kubelet/proxy extra config) stay as strings in Config and
// are parsed on demand so a bad blob surfaces at validation time, not midway
// through a convergence pass.
package config
