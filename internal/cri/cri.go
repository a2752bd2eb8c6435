// Package cri is the narrow view of the container-runtime relation: where
// the runtime socket lives, and which sandbox image the runtime should pull.
package cri

// Runtime is the external container runtime relation.
type Runtime interface {
	// Connected reports whether a container runtime is related at all.
	// False means blocked.
	Connected() bool
	// Socket returns the runtime's CRI endpoint.
	Socket() string
	// SetSandboxImage publishes the pause image the runtime should use.
	SetSandboxImage(image string) error
}

// Mock is an in-memory Runtime for tests.
type Mock struct {
	Related      bool
	SocketPath   string
	SandboxImage string
}

// NewMock returns a connected mock with a containerd socket.
func NewMock() *Mock {
	return &Mock{Related: true, SocketPath: "unix:///run/containerd/containerd.sock"}
}

func (m *Mock) Connected() bool {
	return m.Related
}

func (m *Mock) Socket() string {
	return m.SocketPath
}

func (m *Mock) SetSandboxImage(image string) error {
	m.SandboxImage = image
	return nil
}
