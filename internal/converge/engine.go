package converge

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-logr/logr"

	"github.com/johnbendi/kubeplane/internal/authwebhook"
	"github.com/johnbendi/kubeplane/internal/cni"
	"github.com/johnbendi/kubeplane/internal/config"
	"github.com/johnbendi/kubeplane/internal/cri"
	"github.com/johnbendi/kubeplane/internal/dns"
	"github.com/johnbendi/kubeplane/internal/etcd"
	"github.com/johnbendi/kubeplane/internal/kubeconfig"
	"github.com/johnbendi/kubeplane/internal/kubecontrol"
	"github.com/johnbendi/kubeplane/internal/lb"
	"github.com/johnbendi/kubeplane/internal/netutil"
	"github.com/johnbendi/kubeplane/internal/peers"
	"github.com/johnbendi/kubeplane/internal/pki"
	"github.com/johnbendi/kubeplane/internal/services"
	"github.com/johnbendi/kubeplane/internal/status"
)

// Front-end request names on the load balancer relations.
const (
	externalFrontendName = "api-server-external"
	internalFrontendName = "api-server-internal"

	externalFrontendPort = 443
)

// Status reasons for missing or not-yet-ready collaborators.
const (
	reasonNoCertAuthority = "missing relation to certificate authority"
	reasonNoEtcd          = "missing relation to etcd"
	reasonNoRuntime       = "missing container-runtime integration"
	reasonCertificates    = "certificates"
	reasonEtcd            = "etcd"
	reasonDistribution    = "token distribution"
)

// Deps are the collaborators one Engine converges over. All relation-backed
// fields are interfaces so tests and disconnected topologies can substitute
// in-memory implementations.
type Deps struct {
	CertAuthority pki.CertificateAuthority
	Etcd          etcd.Client
	Authority     authwebhook.Authority
	Facts         *peers.Facts
	Leadership    peers.Leadership
	Node          services.NodeFacts
	Services      services.Manager
	Runtime       cri.Runtime
	CNI           cni.Provider
	DNS           dns.Provider
	ExternalLB    lb.Provider
	InternalLB    lb.Provider
	KubeControl   kubecontrol.Provider
	Distributor   *kubecontrol.Distributor
	Materializer  *pki.Materializer
	Kubeconfigs   kubeconfig.Paths

	// WebhookDir is where the authentication webhook configuration is
	// rendered.
	WebhookDir string

	// ExternalCloudProvider names the out-of-tree cloud provider, or ""
	// when the cluster runs without one.
	ExternalCloudProvider string
}

// Engine runs convergence passes for one control-plane node.
type Engine struct {
	cfg  *config.Config
	deps Deps
	log  logr.Logger
}

// New returns an Engine over the given configuration and collaborators.
func New(cfg *config.Config, deps Deps, log logr.Logger) *Engine {
	return &Engine{cfg: cfg, deps: deps, log: log}
}

// Converge runs one full pass and returns the node's resulting status. A
// non-nil error means a local operation failed and the pass aborted; the
// returned status then reflects whatever conditions were recorded before the
// failure. A nil error with a non-ready status means an external
// collaborator has not produced required data yet and a later pass will
// finish the job.
func (e *Engine) Converge(ctx context.Context) (status.Status, error) {
	start := time.Now()
	rec := &status.Recorder{}

	err := e.converge(ctx, rec)
	st := rec.Worst()

	passDuration.Observe(time.Since(start).Seconds())
	passesTotal.WithLabelValues(passResult(st, err)).Inc()
	if err == nil && st.Level == status.LevelReady {
		nodeReady.Set(1)
	} else {
		nodeReady.Set(0)
	}

	if err != nil {
		return st, err
	}
	e.log.Info("convergence pass complete", "status", st.String())
	return st, nil
}

func (e *Engine) converge(ctx context.Context, rec *status.Recorder) error {
	// Leadership is evaluated once per pass, never cached across passes. A
	// node that lost leadership withdraws its issued credentials before
	// anything else so no stale handout stays visible.
	leader := e.deps.Leadership.IsLeader()
	if !leader {
		if err := e.deps.Distributor.Distribute(ctx, false); err != nil {
			return err
		}
	}

	if err := e.deps.Services.Install(ctx, e.cfg.Channel); err != nil {
		return fmt.Errorf("failed to install node software: %w", err)
	}
	if err := e.deps.Services.EnsureRestartAlways(); err != nil {
		return fmt.Errorf("failed to configure service restarts: %w", err)
	}

	commonName := e.deps.Node.PublicAddress()
	if err := e.requestCertificates(commonName); err != nil {
		return err
	}

	certsReady, err := e.materializeCertificates(rec, commonName)
	if err != nil {
		return err
	}
	etcdReady, err := e.materializeEtcdCredentials(rec)
	if err != nil {
		return err
	}
	if !certsReady || !etcdReady {
		// Nothing downstream can be configured without the API
		// server's credentials; wait for the next pass.
		return nil
	}

	signingKey, err := e.deps.Facts.SigningKey(rec)
	if err != nil {
		return err
	}
	if signingKey != "" {
		if err := e.deps.Materializer.WriteServiceAccountKey(signingKey); err != nil {
			return err
		}
	}

	webhookConf, err := authwebhook.WriteWebhookConfig(e.deps.WebhookDir, e.cfg.AuthnWebhookEndpoint)
	if err != nil {
		return err
	}

	if leader {
		if err := e.ensureFrontends(); err != nil {
			return err
		}
	}

	clusterName, err := e.deps.Facts.ClusterName(rec)
	if err != nil {
		return err
	}
	if clusterName == "" {
		return nil
	}

	endpoints := e.endpointSources()
	if err := e.writeKubeconfigs(endpoints); err != nil {
		return err
	}

	dnsFacts := dns.Resolve(e.deps.DNS, e.cfg.DNSDomain)
	if err := e.configureServices(rec, clusterName, webhookConf, endpoints, dnsFacts); err != nil {
		return err
	}

	if err := e.publishFacts(clusterName, endpoints, dnsFacts); err != nil {
		return err
	}
	if leader {
		if err := e.deps.Distributor.Distribute(ctx, true); err != nil {
			// The authority or relation may be momentarily
			// unreachable; the next pass re-mints and re-answers
			// everything.
			e.log.Error(err, "credential distribution incomplete")
			rec.Add(status.Waiting(reasonDistribution))
		}
	}

	return nil
}

// requestCertificates submits this node's certificate requests. Requests are
// idempotent and cheap, so they are re-sent every pass with a freshly
// computed SAN set; a changed address or extra-SAN shows up in the next
// issued certificate without any extra bookkeeping.
func (e *Engine) requestCertificates(commonName string) error {
	if !e.deps.CertAuthority.Connected() {
		return nil
	}

	sans, err := netutil.APIServerSANs(netutil.SANInputs{
		CommonName:       commonName,
		Hostname:         e.deps.Node.Hostname(),
		FQDN:             e.deps.Node.FQDN(),
		Domain:           e.cfg.DNSDomain,
		BindAddresses:    e.deps.Node.BindAddresses(),
		IngressAddresses: e.deps.KubeControl.IngressAddresses(),
		ServiceCIDRs:     e.cfg.ServiceCIDRs(),
		ExtraSANs:        e.cfg.ExtraSANList(),
	})
	if err != nil {
		return err
	}

	if err := e.deps.CertAuthority.RequestClientCert(pki.APIServerClientIdentity); err != nil {
		return fmt.Errorf("failed to request client certificate: %w", err)
	}
	if err := e.deps.CertAuthority.RequestServerCert(commonName, sans); err != nil {
		return fmt.Errorf("failed to request server certificate: %w", err)
	}
	return nil
}

func (e *Engine) materializeCertificates(rec *status.Recorder, commonName string) (bool, error) {
	ca := e.deps.CertAuthority
	if !ca.Connected() {
		rec.Add(status.Blocked(reasonNoCertAuthority))
		return false, nil
	}

	root := ca.CA()
	client, clientOK := ca.ClientCert(pki.APIServerClientIdentity)
	server, serverOK := ca.ServerCert(commonName)
	if root == "" || !clientOK || !serverOK {
		rec.Add(status.Waiting(reasonCertificates))
		return false, nil
	}

	if err := e.deps.Materializer.WriteCertificates(root, client, server); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) materializeEtcdCredentials(rec *status.Recorder) (bool, error) {
	client := e.deps.Etcd
	if !client.Connected() {
		rec.Add(status.Blocked(reasonNoEtcd))
		return false, nil
	}
	if !client.Ready() {
		rec.Add(status.Waiting(reasonEtcd))
		return false, nil
	}

	creds, err := client.ClientCredentials()
	if err != nil {
		return false, fmt.Errorf("failed to read etcd credentials: %w", err)
	}
	if err := e.deps.Materializer.WriteEtcdCredentials(creds); err != nil {
		return false, err
	}
	return true, nil
}

// ensureFrontends upserts the API server front-ends. Leader-only: the
// balancer relations are cluster-scoped, so a single writer keeps the
// requests from flapping between nodes.
func (e *Engine) ensureFrontends() error {
	if err := lb.EnsureAPIServerFrontend(e.deps.ExternalLB, externalFrontendName,
		externalFrontendPort, netutil.APIServerPort, true); err != nil {
		return fmt.Errorf("failed to request external front-end: %w", err)
	}
	if err := lb.EnsureAPIServerFrontend(e.deps.InternalLB, internalFrontendName,
		netutil.APIServerPort, netutil.APIServerPort, false); err != nil {
		return fmt.Errorf("failed to request internal front-end: %w", err)
	}
	return nil
}

func (e *Engine) endpointSources() netutil.EndpointSources {
	return netutil.EndpointSources{
		ExternalLBAddress: e.deps.ExternalLB.Address(),
		InternalLBAddress: e.deps.InternalLB.Address(),
		IngressAddresses:  e.deps.KubeControl.IngressAddresses(),
		PublicAddress:     e.deps.Node.PublicAddress(),
	}
}

// writeKubeconfigs mints the per-component tokens and renders the client
// configuration files. Minting is idempotent per identity, so every pass
// after the first rewrites identical content. Only the bootstrap admin
// config is exempt from the overwrite: once a node has been bootstrapped,
// the file the operator may have replaced is left alone. The bootstrap
// config is created with the registered admin token, so it authenticates
// from the moment it exists.
func (e *Engine) writeKubeconfigs(endpoints netutil.EndpointSources) error {
	ca := e.deps.CertAuthority.CA()
	paths := e.deps.Kubeconfigs

	adminToken, err := e.deps.Authority.CreateToken(kubecontrol.AdminUser, kubecontrol.AdminUser,
		[]string{"system:masters"})
	if err != nil {
		return fmt.Errorf("failed to mint token for %s: %w", kubecontrol.AdminUser, err)
	}
	created, err := kubeconfig.WriteIfAbsent(kubeconfig.Params{
		Path:   paths.Bootstrap,
		CA:     ca,
		Server: endpoints.Local(),
		User:   kubecontrol.AdminUser,
		Token:  adminToken,
	})
	if err != nil {
		return err
	}
	if created {
		e.log.Info("wrote bootstrap admin kubeconfig", "path", paths.Bootstrap)
	}

	type target struct {
		path   string
		server string
		uid    string
		user   string
		groups []string
	}
	nodeUser := "system:node:" + strings.ToLower(e.deps.Node.Hostname())
	targets := []target{
		{paths.Admin, endpoints.External(), kubecontrol.AdminUser, kubecontrol.AdminUser, []string{"system:masters"}},
		{paths.ControllerManager, endpoints.Local(), "kube-controller-manager", "system:kube-controller-manager", nil},
		{paths.Scheduler, endpoints.Local(), "kube-scheduler", "system:kube-scheduler", nil},
		{paths.Kubelet, endpoints.Local(), nodeUser, nodeUser, []string{"system:nodes"}},
		{paths.Proxy, endpoints.Local(), "kube-proxy", kubecontrol.ProxyUser, nil},
	}
	for _, t := range targets {
		token, err := e.deps.Authority.CreateToken(t.uid, t.user, t.groups)
		if err != nil {
			return fmt.Errorf("failed to mint token for %s: %w", t.user, err)
		}
		err = kubeconfig.Write(kubeconfig.Params{
			Path:   t.path,
			CA:     ca,
			Server: t.server,
			User:   t.user,
			Token:  token,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) configureServices(rec *status.Recorder, clusterName, webhookConf string,
	endpoints netutil.EndpointSources, dnsFacts dns.Facts) error {

	clusterCIDR := e.deps.CNI.CIDR()
	advertise := e.advertiseAddress()
	xcp := e.deps.ExternalCloudProvider
	paths := e.deps.Kubeconfigs

	err := e.deps.Services.ConfigureAPIServer(services.APIServerConfig{
		AdvertiseAddress:      advertise,
		AuthorizationMode:     e.cfg.AuthorizationMode,
		AllowPrivileged:       e.cfg.AllowPrivileged,
		ServiceCIDR:           e.cfg.ServiceCIDR,
		ClusterCIDR:           clusterCIDR,
		EtcdConnectionString:  e.deps.Etcd.ConnectionString(),
		AuthWebhookConfFile:   webhookConf,
		AuditPolicy:           e.cfg.AuditPolicy,
		AuditWebhookConf:      e.cfg.AuditWebhookConfig,
		ExternalCloudProvider: xcp,
		ExtraArgs:             e.cfg.APIExtraArgs,
	})
	if err != nil {
		return fmt.Errorf("failed to configure api server: %w", err)
	}

	err = e.deps.Services.ConfigureControllerManager(services.ControllerManagerConfig{
		ClusterName:           clusterName,
		ClusterCIDR:           clusterCIDR,
		ServiceCIDR:           e.cfg.ServiceCIDR,
		Kubeconfig:            paths.ControllerManager,
		ExternalCloudProvider: xcp,
		ExtraArgs:             e.cfg.ControllerManagerExtraArgs,
	})
	if err != nil {
		return fmt.Errorf("failed to configure controller manager: %w", err)
	}

	err = e.deps.Services.ConfigureScheduler(services.SchedulerConfig{
		Kubeconfig: paths.Scheduler,
		ExtraArgs:  e.cfg.SchedulerExtraArgs,
	})
	if err != nil {
		return fmt.Errorf("failed to configure scheduler: %w", err)
	}

	runtimeSocket := ""
	if e.deps.Runtime.Connected() {
		runtimeSocket = e.deps.Runtime.Socket()
		image := services.SandboxImage(e.cfg.ImageRegistry)
		if err := e.deps.Runtime.SetSandboxImage(image); err != nil {
			return fmt.Errorf("failed to publish sandbox image: %w", err)
		}
	} else {
		rec.Add(status.Blocked(reasonNoRuntime))
	}

	if err := e.publishCNIFacts(paths.Kubelet); err != nil {
		return err
	}
	if err := e.deps.Services.ConfigureDefaultCNI(e.deps.CNI.ConfFile()); err != nil {
		return fmt.Errorf("failed to configure default cni: %w", err)
	}

	sysctl, err := e.cfg.SysctlValues()
	if err != nil {
		return err
	}
	if err := e.deps.Services.ConfigureKernelParameters(sysctl); err != nil {
		return fmt.Errorf("failed to configure kernel parameters: %w", err)
	}

	kubeletExtra, err := e.cfg.KubeletExtraConfigMap()
	if err != nil {
		return err
	}
	dnsAddress := ""
	if dnsFacts.Enabled {
		dnsAddress = dnsFacts.Address
	}
	err = e.deps.Services.ConfigureKubelet(services.KubeletConfig{
		ContainerRuntimeEndpoint: runtimeSocket,
		DNSDomain:                dnsFacts.Domain,
		DNSAddress:               dnsAddress,
		Kubeconfig:               paths.Kubelet,
		NodeIP:                   advertise,
		Registry:                 e.cfg.ImageRegistry,
		Taints:                   strings.Fields(e.cfg.RegisterWithTaints),
		ExternalCloudProvider:    xcp,
		ExtraArgs:                e.cfg.KubeletExtraArgs,
		ExtraConfig:              kubeletExtra,
	})
	if err != nil {
		return fmt.Errorf("failed to configure kubelet: %w", err)
	}

	proxyExtra, err := e.cfg.ProxyExtraConfigMap()
	if err != nil {
		return err
	}
	err = e.deps.Services.ConfigureProxy(services.ProxyConfig{
		ClusterCIDR:           clusterCIDR,
		Kubeconfig:            paths.Proxy,
		ExternalCloudProvider: xcp,
		ExtraArgs:             e.cfg.ProxyExtraArgs,
		ExtraConfig:           proxyExtra,
	})
	if err != nil {
		return fmt.Errorf("failed to configure proxy: %w", err)
	}
	return nil
}

// publishCNIFacts hands the network plugin what it needs: the registry, the
// service CIDR, and a digest of the kubelet kubeconfig so credential
// rotation is observable without shipping the credentials themselves.
func (e *Engine) publishCNIFacts(kubeletConfig string) error {
	if err := e.deps.CNI.SetImageRegistry(e.cfg.ImageRegistry); err != nil {
		return fmt.Errorf("failed to publish image registry: %w", err)
	}
	if err := e.deps.CNI.SetServiceCIDR(e.cfg.ServiceCIDR); err != nil {
		return fmt.Errorf("failed to publish service cidr: %w", err)
	}
	hash, err := fileDigest(kubeletConfig)
	if err != nil {
		return err
	}
	if err := e.deps.CNI.SetKubeconfigHash(hash); err != nil {
		return fmt.Errorf("failed to publish kubeconfig hash: %w", err)
	}
	return nil
}

func (e *Engine) publishFacts(clusterName string, endpoints netutil.EndpointSources, dnsFacts dns.Facts) error {
	facts := kubecontrol.Facts{
		APIEndpoints:     []string{endpoints.Internal()},
		ClusterName:      clusterName,
		DefaultCNI:       e.cfg.DefaultCNI,
		DNSAddress:       dnsFacts.Address,
		DNSDomain:        dnsFacts.Domain,
		DNSEnabled:       dnsFacts.Enabled,
		DNSPort:          dnsFacts.Port,
		HasExternalCloud: e.deps.ExternalCloudProvider != "",
		ImageRegistry:    e.cfg.ImageRegistry,
		Labels:           []string{},
		Taints:           strings.Fields(e.cfg.RegisterWithTaints),
	}
	if err := e.deps.KubeControl.PublishFacts(facts); err != nil {
		return fmt.Errorf("failed to publish cluster facts: %w", err)
	}
	return nil
}

// advertiseAddress is the address the API server advertises and the kubelet
// registers with: the relation ingress address when known, otherwise the
// node's public address.
func (e *Engine) advertiseAddress() string {
	if addrs := e.deps.KubeControl.IngressAddresses(); len(addrs) > 0 {
		return addrs[0]
	}
	return e.deps.Node.PublicAddress()
}

func fileDigest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

func passResult(st status.Status, err error) string {
	if err != nil {
		return "error"
	}
	switch st.Level {
	case status.LevelBlocked:
		return "blocked"
	case status.LevelWaiting:
		return "waiting"
	default:
		return "ready"
	}
}
