// Package dns resolves the cluster DNS facts: relation-provided values win,
// configuration supplies the fallbacks.
package dns

// Provider is the external DNS relation. Empty/zero values mean the
// relation has not published that fact.
type Provider interface {
	Address() string
	Domain() string
	Port() int
}

// Facts are the resolved DNS values handed to dependent services.
type Facts struct {
	Address string
	Domain  string
	Port    int
	Enabled bool
}

// Resolve merges relation-provided values with configured fallbacks.
// DNS is enabled exactly when an address is known.
func Resolve(provider Provider, fallbackDomain string) Facts {
	f := Facts{
		Address: provider.Address(),
		Domain:  provider.Domain(),
		Port:    provider.Port(),
	}
	if f.Domain == "" {
		f.Domain = fallbackDomain
	}
	if f.Port == 0 {
		f.Port = 53
	}
	f.Enabled = f.Address != ""
	return f
}

// None is a Provider with no relation data; all facts fall back.
type None struct{}

func (None) Address() string { return "" }
func (None) Domain() string  { return "" }
func (None) Port() int       { return 0 }

// Static is a Provider with fixed values, for tests.
type Static struct {
	Addr       string
	DomainName string
	PortNum    int
}

func (s Static) Address() string { return s.Addr }
func (s Static) Domain() string  { return s.DomainName }
func (s Static) Port() int       { return s.PortNum }
