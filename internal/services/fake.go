package services

import "context"

// Fake is an in-memory Manager that records every configure call, for
// engine tests.
type Fake struct {
	Installed      bool
	InstallChannel string
	RestartAlways  bool

	APIServer         *APIServerConfig
	ControllerManager *ControllerManagerConfig
	Scheduler         *SchedulerConfig
	Kubelet           *KubeletConfig
	Proxy             *ProxyConfig
	KernelParams      map[string]string
	DefaultCNIConf    string

	// Err, when set, is returned by every call.
	Err error
}

func (f *Fake) Install(_ context.Context, channel string) error {
	if f.Err != nil {
		return f.Err
	}
	f.Installed = true
	f.InstallChannel = channel
	return nil
}

func (f *Fake) EnsureRestartAlways() error {
	if f.Err != nil {
		return f.Err
	}
	f.RestartAlways = true
	return nil
}

func (f *Fake) ConfigureAPIServer(cfg APIServerConfig) error {
	if f.Err != nil {
		return f.Err
	}
	f.APIServer = &cfg
	return nil
}

func (f *Fake) ConfigureControllerManager(cfg ControllerManagerConfig) error {
	if f.Err != nil {
		return f.Err
	}
	f.ControllerManager = &cfg
	return nil
}

func (f *Fake) ConfigureScheduler(cfg SchedulerConfig) error {
	if f.Err != nil {
		return f.Err
	}
	f.Scheduler = &cfg
	return nil
}

func (f *Fake) ConfigureKubelet(cfg KubeletConfig) error {
	if f.Err != nil {
		return f.Err
	}
	f.Kubelet = &cfg
	return nil
}

func (f *Fake) ConfigureProxy(cfg ProxyConfig) error {
	if f.Err != nil {
		return f.Err
	}
	f.Proxy = &cfg
	return nil
}

func (f *Fake) ConfigureDefaultCNI(confFile string) error {
	if f.Err != nil {
		return f.Err
	}
	f.DefaultCNIConf = confFile
	return nil
}

func (f *Fake) ConfigureKernelParameters(params map[string]string) error {
	if f.Err != nil {
		return f.Err
	}
	f.KernelParams = params
	return nil
}

// StaticFacts is a NodeFacts with fixed values, for tests.
type StaticFacts struct {
	Host    string
	Fqdn    string
	Public  string
	Binds   []string
}

func (s StaticFacts) Hostname() string        { return s.Host }
func (s StaticFacts) FQDN() string            { return s.Fqdn }
func (s StaticFacts) PublicAddress() string   { return s.Public }
func (s StaticFacts) BindAddresses() []string { return s.Binds }
