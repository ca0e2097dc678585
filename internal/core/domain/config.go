package domain

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"k8s.io/apimachinery/pkg/util/validation"
)

const (
	DefaultVersion     = "latest"
	DefaultFileMode    = "0600"
	DefaultOutputDir   = "manifests"
	DefaultImageFormat = "{{if .Registry}}{{.Registry}}/{{end}}{{if .Group}}{{.Group}}/{{end}}{{.Name}}:{{.Tag}}"
	DefaultTarget      = "kubernetes"
)

// Config is the project configuration a synthesis run is built from.
type Config struct {
	Name                 string            `yaml:"name"`
	Version              string            `yaml:"version,omitempty"`
	PartOf               string            `yaml:"partOf,omitempty"`
	Namespace            string            `yaml:"namespace,omitempty"`
	NamespaceFromContext bool              `yaml:"namespaceFromContext,omitempty"`
	Import               *string           `yaml:"import,omitempty"`
	DeploymentTargets    []string          `yaml:"deploymentTargets,omitempty"`
	DeployTarget         *string           `yaml:"deployTarget,omitempty"`
	Labels               map[string]string `yaml:"labels,omitempty"`
	Annotations          map[string]string `yaml:"annotations,omitempty"`

	Image ImageConfig `yaml:"image,omitempty"`
	Build BuildConfig `yaml:"build,omitempty"`

	Replicas *int32 `yaml:"replicas,omitempty"`

	Env              map[string]EnvConfig             `yaml:"env,omitempty"`
	Ports            map[string]PortConfig            `yaml:"ports,omitempty"`
	Mounts           map[string]MountConfig           `yaml:"mounts,omitempty"`
	SecretVolumes    map[string]SecretVolumeConfig    `yaml:"secretVolumes,omitempty"`
	ConfigMapVolumes map[string]ConfigMapVolumeConfig `yaml:"configMapVolumes,omitempty"`
	EmptyDirVolumes  []string                         `yaml:"emptyDirVolumes,omitempty"`
	PvcVolumes       map[string]PvcVolumeConfig       `yaml:"pvcVolumes,omitempty"`
	AzureFileVolumes map[string]AzureFileVolumeConfig `yaml:"azureFileVolumes,omitempty"`
	GitRepoVolumes   map[string]GitRepoVolumeConfig   `yaml:"gitRepoVolumes,omitempty"`
	HostAliases      map[string]HostAliasConfig       `yaml:"hostAliases,omitempty"`
	NodeSelector     *NodeSelectorConfig              `yaml:"nodeSelector,omitempty"`
	InitContainers   map[string]ContainerConfig       `yaml:"initContainers,omitempty"`
	Sidecars         map[string]ContainerConfig       `yaml:"sidecars,omitempty"`

	Resources      ResourcesConfig `yaml:"resources,omitempty"`
	LivenessProbe  *ProbeConfig    `yaml:"livenessProbe,omitempty"`
	ReadinessProbe *ProbeConfig    `yaml:"readinessProbe,omitempty"`
	StartupProbe   *ProbeConfig    `yaml:"startupProbe,omitempty"`

	ServiceType string            `yaml:"serviceType,omitempty"`
	Ingress     IngressConfig     `yaml:"ingress,omitempty"`
	Route       RouteConfig       `yaml:"route,omitempty"`
	Autoscaling AutoscalingConfig `yaml:"autoscaling,omitempty"`
	Knative     KnativeConfig     `yaml:"knative,omitempty"`
	RBAC        RBACConfig        `yaml:"rbac,omitempty"`

	Secrets map[string]SecretConfig `yaml:"secrets,omitempty"`
	Output  OutputConfig            `yaml:"output,omitempty"`
	Patches []PatchConfig           `yaml:"patches,omitempty"`
}

type ImageConfig struct {
	Registry    string   `yaml:"registry,omitempty"`
	Group       string   `yaml:"group,omitempty"`
	Name        string   `yaml:"name,omitempty"`
	Tag         string   `yaml:"tag,omitempty"`
	Format      string   `yaml:"format,omitempty"`
	PullPolicy  string   `yaml:"pullPolicy,omitempty"`
	PullSecrets []string `yaml:"pullSecrets,omitempty"`
	// Reference is the rendered image reference. It is computed during synthesis.
	Reference string `yaml:"-"`
}

type BuildConfig struct {
	S2I bool `yaml:"s2i,omitempty"`
}

type EnvConfig struct {
	Value     string `yaml:"value,omitempty"`
	Secret    string `yaml:"secret,omitempty"`
	ConfigMap string `yaml:"configMap,omitempty"`
	Key       string `yaml:"key,omitempty"`
	Field     string `yaml:"field,omitempty"`
}

type PortConfig struct {
	ContainerPort int32    `yaml:"containerPort"`
	HostPort      int32    `yaml:"hostPort,omitempty"`
	Protocol      Protocol `yaml:"protocol,omitempty"`
	Path          string   `yaml:"path,omitempty"`
	NodePort      int32    `yaml:"nodePort,omitempty"`
}

type MountConfig struct {
	Path     string `yaml:"path"`
	SubPath  string `yaml:"subPath,omitempty"`
	ReadOnly bool   `yaml:"readOnly,omitempty"`
}

type ItemConfig struct {
	Path string `yaml:"path"`
	Mode string `yaml:"mode,omitempty"`
}

type SecretVolumeConfig struct {
	SecretName  string                `yaml:"secretName"`
	DefaultMode string                `yaml:"defaultMode,omitempty"`
	Optional    bool                  `yaml:"optional,omitempty"`
	Items       map[string]ItemConfig `yaml:"items,omitempty"`
}

type ConfigMapVolumeConfig struct {
	ConfigMapName string                `yaml:"configMapName"`
	DefaultMode   string                `yaml:"defaultMode,omitempty"`
	Optional      bool                  `yaml:"optional,omitempty"`
	Items         map[string]ItemConfig `yaml:"items,omitempty"`
}

type PvcVolumeConfig struct {
	ClaimName   string `yaml:"claimName"`
	DefaultMode string `yaml:"defaultMode,omitempty"`
	Optional    bool   `yaml:"optional,omitempty"`
}

type AzureFileVolumeConfig struct {
	ShareName  string `yaml:"shareName"`
	SecretName string `yaml:"secretName"`
	ReadOnly   bool   `yaml:"readOnly,omitempty"`
}

type GitRepoVolumeConfig struct {
	Repository string `yaml:"repository"`
	Directory  string `yaml:"directory,omitempty"`
	Revision   string `yaml:"revision,omitempty"`
}

type HostAliasConfig struct {
	IP        string   `yaml:"ip"`
	Hostnames []string `yaml:"hostnames"`
}

type NodeSelectorConfig struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

type ContainerConfig struct {
	Image           string                 `yaml:"image"`
	Command         []string               `yaml:"command,omitempty"`
	Args            []string               `yaml:"args,omitempty"`
	WorkingDir      string                 `yaml:"workingDir,omitempty"`
	ImagePullPolicy string                 `yaml:"imagePullPolicy,omitempty"`
	Env             map[string]EnvConfig   `yaml:"env,omitempty"`
	Ports           map[string]PortConfig  `yaml:"ports,omitempty"`
	Mounts          map[string]MountConfig `yaml:"mounts,omitempty"`
}

type ResourceListConfig struct {
	CPU    string `yaml:"cpu,omitempty"`
	Memory string `yaml:"memory,omitempty"`
}

type ResourcesConfig struct {
	Limits   ResourceListConfig `yaml:"limits,omitempty"`
	Requests ResourceListConfig `yaml:"requests,omitempty"`
}

type ProbeConfig struct {
	HTTPActionPath      string   `yaml:"httpActionPath,omitempty"`
	Port                string   `yaml:"port,omitempty"`
	ExecAction          []string `yaml:"execAction,omitempty"`
	TCPSocketPort       int32    `yaml:"tcpSocketPort,omitempty"`
	InitialDelaySeconds int32    `yaml:"initialDelaySeconds,omitempty"`
	PeriodSeconds       int32    `yaml:"periodSeconds,omitempty"`
	TimeoutSeconds      int32    `yaml:"timeoutSeconds,omitempty"`
	SuccessThreshold    int32    `yaml:"successThreshold,omitempty"`
	FailureThreshold    int32    `yaml:"failureThreshold,omitempty"`
}

type IngressTLSConfig struct {
	Hosts []string `yaml:"hosts,omitempty"`
}

type IngressConfig struct {
	Expose           bool                        `yaml:"expose,omitempty"`
	Host             string                      `yaml:"host,omitempty"`
	IngressClassName string                      `yaml:"ingressClassName,omitempty"`
	TargetPort       string                      `yaml:"targetPort,omitempty"`
	TLS              map[string]IngressTLSConfig `yaml:"tls,omitempty"`
}

type RouteConfig struct {
	Expose     bool   `yaml:"expose,omitempty"`
	Host       string `yaml:"host,omitempty"`
	TargetPort string `yaml:"targetPort,omitempty"`
}

type ScalingBehaviorConfig struct {
	SelectPolicy               ScalingPolicySelect `yaml:"selectPolicy,omitempty"`
	StabilizationWindowSeconds *int32              `yaml:"stabilizationWindowSeconds,omitempty"`
}

type AutoscalingConfig struct {
	Enabled                 bool                   `yaml:"enabled,omitempty"`
	MinReplicas             *int32                 `yaml:"minReplicas,omitempty"`
	MaxReplicas             int32                  `yaml:"maxReplicas,omitempty"`
	TargetCPUUtilization    *int32                 `yaml:"targetCpuUtilization,omitempty"`
	TargetMemoryUtilization *int32                 `yaml:"targetMemoryUtilization,omitempty"`
	ScaleUp                 *ScalingBehaviorConfig `yaml:"scaleUp,omitempty"`
	ScaleDown               *ScalingBehaviorConfig `yaml:"scaleDown,omitempty"`
}

type KnativeConfig struct {
	AutoScalerClass AutoScalerClass   `yaml:"autoScalerClass,omitempty"`
	Metric          AutoScalingMetric `yaml:"metric,omitempty"`
	Target          *int32            `yaml:"target,omitempty"`
	MinScale        *int32            `yaml:"minScale,omitempty"`
	MaxScale        *int32            `yaml:"maxScale,omitempty"`
}

type PolicyRuleConfig struct {
	APIGroups     []string `yaml:"apiGroups,omitempty"`
	Resources     []string `yaml:"resources,omitempty"`
	ResourceNames []string `yaml:"resourceNames,omitempty"`
	Verbs         []string `yaml:"verbs"`
}

type RoleConfig struct {
	ClusterWide bool               `yaml:"clusterWide,omitempty"`
	Rules       []PolicyRuleConfig `yaml:"rules"`
}

type RBACConfig struct {
	ServiceAccount string                `yaml:"serviceAccount,omitempty"`
	Roles          map[string]RoleConfig `yaml:"roles,omitempty"`
}

type SecretConfig struct {
	Type string            `yaml:"type,omitempty"`
	Data map[string]string `yaml:"data"`
}

type OutputConfig struct {
	Directory string `yaml:"directory,omitempty"`
	Format    string `yaml:"format,omitempty"`
}

type PatchTargetConfig struct {
	Kind string `yaml:"kind"`
	Name string `yaml:"name,omitempty"`
}

type PatchOperationConfig struct {
	Op    string      `yaml:"op"`
	Path  string      `yaml:"path"`
	Value interface{} `yaml:"value,omitempty"`
}

type PatchConfig struct {
	Target     PatchTargetConfig      `yaml:"target"`
	Operations []PatchOperationConfig `yaml:"operations"`
}

// CreateDefaultConfig returns the sample configuration written by 'kgen initialize'.
func CreateDefaultConfig() Config {
	return Config{
		Name:              "my-app",
		Version:           "1.0.0",
		DeploymentTargets: []string{DefaultTarget},
		Labels: map[string]string{
			"team": "platform",
		},
		Image: ImageConfig{
			Registry: "quay.io",
			Group:    "my-group",
		},
		Ports: map[string]PortConfig{
			"http": {
				ContainerPort: 8080,
				Protocol:      ProtocolTCP,
			},
		},
		Mounts: map[string]MountConfig{
			"creds": {
				Path:     "/etc/creds",
				ReadOnly: true,
			},
		},
		SecretVolumes: map[string]SecretVolumeConfig{
			"creds": {
				SecretName:  "db-secret",
				DefaultMode: DefaultFileMode,
			},
		},
		ReadinessProbe: &ProbeConfig{
			HTTPActionPath: "/health/ready",
			Port:           "http",
		},
		Output: OutputConfig{
			Directory: DefaultOutputDir,
			Format:    "yaml",
		},
	}
}

// ApplyDefaults fills in the explicit per-field defaults.
func (c *Config) ApplyDefaults() {
	if c.Version == "" {
		c.Version = DefaultVersion
	}
	if len(c.DeploymentTargets) == 0 {
		c.DeploymentTargets = []string{DefaultTarget}
	}
	if c.Image.Name == "" {
		c.Image.Name = c.Name
	}
	if c.Image.Tag == "" {
		c.Image.Tag = c.Version
	}
	if c.Image.Format == "" {
		c.Image.Format = DefaultImageFormat
	}
	if c.Output.Directory == "" {
		c.Output.Directory = DefaultOutputDir
	}
	if c.Output.Format == "" {
		c.Output.Format = "yaml"
	}
	for name, v := range c.SecretVolumes {
		if v.DefaultMode == "" {
			v.DefaultMode = DefaultFileMode
			c.SecretVolumes[name] = v
		}
	}
	for name, v := range c.ConfigMapVolumes {
		if v.DefaultMode == "" {
			v.DefaultMode = DefaultFileMode
			c.ConfigMapVolumes[name] = v
		}
	}
	for name, v := range c.PvcVolumes {
		if v.DefaultMode == "" {
			v.DefaultMode = DefaultFileMode
			c.PvcVolumes[name] = v
		}
	}
}

// Clone returns a copy whose maps and slices can be mutated without touching c.
// Nested records are values, so copying the top-level maps is enough for the
// fields configurators write to.
func (c Config) Clone() Config {
	out := c
	out.DeploymentTargets = slices.Clone(c.DeploymentTargets)
	out.Labels = maps.Clone(c.Labels)
	out.Annotations = maps.Clone(c.Annotations)
	out.Image.PullSecrets = slices.Clone(c.Image.PullSecrets)
	out.Env = maps.Clone(c.Env)
	out.Ports = maps.Clone(c.Ports)
	out.Mounts = maps.Clone(c.Mounts)
	out.SecretVolumes = maps.Clone(c.SecretVolumes)
	out.ConfigMapVolumes = maps.Clone(c.ConfigMapVolumes)
	out.EmptyDirVolumes = slices.Clone(c.EmptyDirVolumes)
	out.PvcVolumes = maps.Clone(c.PvcVolumes)
	out.AzureFileVolumes = maps.Clone(c.AzureFileVolumes)
	out.GitRepoVolumes = maps.Clone(c.GitRepoVolumes)
	out.HostAliases = maps.Clone(c.HostAliases)
	out.InitContainers = maps.Clone(c.InitContainers)
	out.Sidecars = maps.Clone(c.Sidecars)
	out.RBAC.Roles = maps.Clone(c.RBAC.Roles)
	out.Patches = slices.Clone(c.Patches)
	if c.Secrets != nil {
		out.Secrets = make(map[string]SecretConfig, len(c.Secrets))
		for name, s := range c.Secrets {
			s.Data = maps.Clone(s.Data)
			out.Secrets[name] = s
		}
	}
	return out
}

// SortedKeys returns the keys of m in lexical order.
func SortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return configErrorf("name", "must not be empty")
	}
	if errs := validation.IsDNS1123Label(c.Name); len(errs) > 0 {
		return configErrorf("name", "'%s' is not a valid resource name: %s", c.Name, strings.Join(errs, ", "))
	}
	if c.Namespace != "" {
		if errs := validation.IsDNS1123Label(c.Namespace); len(errs) > 0 {
			return configErrorf("namespace", "'%s' is not a valid namespace: %s", c.Namespace, strings.Join(errs, ", "))
		}
	}
	for i, t := range c.DeploymentTargets {
		if strings.TrimSpace(t) == "" {
			return configErrorf("deploymentTargets", "entry at index %d is empty", i)
		}
	}

	for _, name := range SortedKeys(c.Ports) {
		port := c.Ports[name]
		if port.ContainerPort <= 0 || port.ContainerPort > 65535 {
			return configErrorf(fmt.Sprintf("ports.%s.containerPort", name), "must be between 1 and 65535")
		}
		if port.Protocol != "" && !port.Protocol.Valid() {
			return configErrorf(fmt.Sprintf("ports.%s.protocol", name), "unsupported protocol '%s'", port.Protocol)
		}
	}

	for _, name := range SortedKeys(c.Mounts) {
		if c.Mounts[name].Path == "" {
			return configErrorf(fmt.Sprintf("mounts.%s.path", name), "must not be empty")
		}
	}

	for _, name := range SortedKeys(c.InitContainers) {
		if name == c.Name {
			return configErrorf("initContainers."+name, "must not reuse the project name '%s'", c.Name)
		}
		if _, ok := c.Sidecars[name]; ok {
			return configErrorf("initContainers."+name, "is also declared as a sidecar")
		}
	}
	if _, ok := c.Sidecars[c.Name]; ok {
		return configErrorf("sidecars."+c.Name, "must not reuse the project name '%s'", c.Name)
	}

	if c.Autoscaling.Enabled {
		if c.Autoscaling.MaxReplicas <= 0 {
			return configErrorf("autoscaling.maxReplicas", "must be greater than zero when autoscaling is enabled")
		}
		if c.Autoscaling.MinReplicas != nil && *c.Autoscaling.MinReplicas > c.Autoscaling.MaxReplicas {
			return configErrorf("autoscaling.minReplicas", "must not exceed maxReplicas")
		}
		for _, b := range []struct {
			field    string
			behavior *ScalingBehaviorConfig
		}{
			{"autoscaling.scaleUp", c.Autoscaling.ScaleUp},
			{"autoscaling.scaleDown", c.Autoscaling.ScaleDown},
		} {
			field, behavior := b.field, b.behavior
			if behavior != nil && behavior.SelectPolicy != "" && !behavior.SelectPolicy.Valid() {
				return configErrorf(field+".selectPolicy", "unsupported value '%s'", behavior.SelectPolicy)
			}
		}
	}
	if c.Knative.AutoScalerClass != "" && !c.Knative.AutoScalerClass.Valid() {
		return configErrorf("knative.autoScalerClass", "unsupported value '%s'", c.Knative.AutoScalerClass)
	}
	if c.Knative.Metric != "" && !c.Knative.Metric.Valid() {
		return configErrorf("knative.metric", "unsupported value '%s'", c.Knative.Metric)
	}

	for _, name := range SortedKeys(c.Secrets) {
		if errs := validation.IsDNS1123Subdomain(name); len(errs) > 0 {
			return configErrorf(fmt.Sprintf("secrets.%s", name), "invalid secret name: %s", strings.Join(errs, ", "))
		}
	}

	for i, p := range c.Patches {
		if p.Target.Kind == "" {
			return configErrorf(fmt.Sprintf("patches[%d].target.kind", i), "must not be empty")
		}
		for j, op := range p.Operations {
			switch op.Op {
			case "add", "replace", "remove":
			default:
				return configErrorf(fmt.Sprintf("patches[%d].operations[%d].op", i, j), "unsupported operation '%s'", op.Op)
			}
		}
	}

	switch c.Output.Format {
	case "", "yaml", "json", "helm":
	default:
		return configErrorf("output.format", "unsupported format '%s'", c.Output.Format)
	}

	return nil
}
