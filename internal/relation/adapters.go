package relation

import (
	"errors"
	"slices"

	"github.com/johnbendi/kubeplane/internal/etcd"
	"github.com/johnbendi/kubeplane/internal/kubecontrol"
	"github.com/johnbendi/kubeplane/internal/lb"
	"github.com/johnbendi/kubeplane/internal/pki"
)

type caAdapter struct{ f *File }

func (a caAdapter) Connected() bool {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	return a.f.snap.CertificateAuthority != nil
}

func (a caAdapter) RequestClientCert(identity string) error {
	return a.f.update(func(s *Snapshot) {
		ca := s.CertificateAuthority
		if ca == nil {
			return
		}
		if !slices.Contains(ca.ClientRequests, identity) {
			ca.ClientRequests = append(ca.ClientRequests, identity)
		}
	})
}

func (a caAdapter) RequestServerCert(commonName string, sans []string) error {
	return a.f.update(func(s *Snapshot) {
		ca := s.CertificateAuthority
		if ca == nil {
			return
		}
		if ca.ServerRequests == nil {
			ca.ServerRequests = make(map[string][]string)
		}
		ca.ServerRequests[commonName] = sans
	})
}

func (a caAdapter) CA() string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if ca := a.f.snap.CertificateAuthority; ca != nil {
		return ca.CA
	}
	return ""
}

func (a caAdapter) ClientCert(identity string) (pki.CertPair, bool) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if ca := a.f.snap.CertificateAuthority; ca != nil {
		if cert, ok := ca.ClientCert[identity]; ok {
			return pki.CertPair{Cert: cert.Cert, Key: cert.Key}, true
		}
	}
	return pki.CertPair{}, false
}

func (a caAdapter) ServerCert(commonName string) (pki.CertPair, bool) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if ca := a.f.snap.CertificateAuthority; ca != nil {
		if cert, ok := ca.ServerCert[commonName]; ok {
			return pki.CertPair{Cert: cert.Cert, Key: cert.Key}, true
		}
	}
	return pki.CertPair{}, false
}

type etcdAdapter struct{ f *File }

func (a etcdAdapter) Connected() bool {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	return a.f.snap.Etcd != nil
}

func (a etcdAdapter) Ready() bool {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	e := a.f.snap.Etcd
	return e != nil && e.ConnectionString != "" && e.CA != ""
}

func (a etcdAdapter) ConnectionString() string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if e := a.f.snap.Etcd; e != nil {
		return e.ConnectionString
	}
	return ""
}

func (a etcdAdapter) ClientCredentials() (etcd.Credentials, error) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	e := a.f.snap.Etcd
	if e == nil {
		return etcd.Credentials{}, errors.New("etcd relation not established")
	}
	return etcd.Credentials{CA: e.CA, Cert: e.Cert, Key: e.Key}, nil
}

type kubeControlAdapter struct{ f *File }

func (a kubeControlAdapter) section() *KubeControlData {
	if a.f.snap.KubeControl == nil {
		a.f.snap.KubeControl = &KubeControlData{}
	}
	return a.f.snap.KubeControl
}

func (a kubeControlAdapter) IngressAddresses() []string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if kc := a.f.snap.KubeControl; kc != nil {
		return kc.IngressAddresses
	}
	return nil
}

func (a kubeControlAdapter) AuthRequests() ([]kubecontrol.AuthRequest, error) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if kc := a.f.snap.KubeControl; kc != nil {
		return kc.AuthRequests, nil
	}
	return nil, nil
}

func (a kubeControlAdapter) SignAuthRequest(req kubecontrol.AuthRequest, bundle kubecontrol.CredentialBundle) error {
	return a.f.update(func(s *Snapshot) {
		kc := a.section()
		if kc.Signed == nil {
			kc.Signed = make(map[string]kubecontrol.CredentialBundle)
		}
		kc.Signed[req.RequesterID] = bundle
	})
}

func (a kubeControlAdapter) ClearCreds() error {
	return a.f.update(func(s *Snapshot) {
		if kc := s.KubeControl; kc != nil {
			kc.Signed = nil
		}
	})
}

func (a kubeControlAdapter) PublishFacts(facts kubecontrol.Facts) error {
	return a.f.update(func(s *Snapshot) {
		a.section().Published = &facts
	})
}

type dnsAdapter struct{ f *File }

func (a dnsAdapter) Address() string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if d := a.f.snap.DNS; d != nil {
		return d.Address
	}
	return ""
}

func (a dnsAdapter) Domain() string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if d := a.f.snap.DNS; d != nil {
		return d.Domain
	}
	return ""
}

func (a dnsAdapter) Port() int {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if d := a.f.snap.DNS; d != nil {
		return d.Port
	}
	return 0
}

type lbAdapter struct {
	f       *File
	section func(*Snapshot) *LBData
}

func (a lbAdapter) Available() bool {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	return a.section(&a.f.snap) != nil
}

func (a lbAdapter) GetRequest(name string) (lb.Request, error) {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if data := a.section(&a.f.snap); data != nil {
		if req, ok := data.Requests[name]; ok {
			return req, nil
		}
	}
	return lb.Request{Name: name}, nil
}

func (a lbAdapter) SendRequest(req lb.Request) error {
	return a.f.update(func(s *Snapshot) {
		data := a.section(s)
		if data == nil {
			return
		}
		if data.Requests == nil {
			data.Requests = make(map[string]lb.Request)
		}
		data.Requests[req.Name] = req
	})
}

func (a lbAdapter) Address() string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if data := a.section(&a.f.snap); data != nil {
		return data.Address
	}
	return ""
}

type runtimeAdapter struct{ f *File }

func (a runtimeAdapter) Connected() bool {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	return a.f.snap.Runtime != nil
}

func (a runtimeAdapter) Socket() string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if r := a.f.snap.Runtime; r != nil {
		return r.Socket
	}
	return ""
}

func (a runtimeAdapter) SetSandboxImage(image string) error {
	return a.f.update(func(s *Snapshot) {
		if r := s.Runtime; r != nil {
			r.SandboxImage = image
		}
	})
}

type cniAdapter struct{ f *File }

func (a cniAdapter) CIDR() string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if c := a.f.snap.CNI; c != nil {
		return c.CIDR
	}
	return ""
}

func (a cniAdapter) ConfFile() string {
	a.f.mu.Lock()
	defer a.f.mu.Unlock()
	if c := a.f.snap.CNI; c != nil {
		return c.ConfFile
	}
	return ""
}

func (a cniAdapter) SetImageRegistry(registry string) error {
	return a.f.update(func(s *Snapshot) {
		if c := s.CNI; c != nil {
			c.ImageRegistry = registry
		}
	})
}

func (a cniAdapter) SetServiceCIDR(cidr string) error {
	return a.f.update(func(s *Snapshot) {
		if c := s.CNI; c != nil {
			c.ServiceCIDR = cidr
		}
	})
}

func (a cniAdapter) SetKubeconfigHash(hash string) error {
	return a.f.update(func(s *Snapshot) {
		if c := s.CNI; c != nil {
			c.KubeconfigHash = hash
		}
	})
}
