package fragment

import (
	"testing"

	"kgen/internal/core/domain"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/resource"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
)

func TestParseMode(t *testing.T) {
	tests := []struct {
		mode    string
		want    int32
		wantErr bool
	}{
		{mode: "0600", want: 384},
		{mode: "600", want: 600},
		{mode: "0777", want: 511},
		{mode: "0644", want: 420},
		{mode: "420", want: 420},
		{mode: "0", want: 0},
		{mode: " 0600 ", want: 384},
		{mode: "0800", wantErr: true},
		{mode: "rw", wantErr: true},
		{mode: "", wantErr: true},
		{mode: "-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			got, err := ParseMode(tt.mode)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSecretVolumeDefaults(t *testing.T) {
	got, err := SecretVolume("creds", domain.SecretVolumeConfig{SecretName: "db-secret"})
	require.NoError(t, err)

	want := corev1.Volume{
		Name: "creds",
		VolumeSource: corev1.VolumeSource{
			Secret: &corev1.SecretVolumeSource{
				SecretName:  "db-secret",
				DefaultMode: ptr.To(int32(384)),
				Optional:    ptr.To(false),
			},
		},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("SecretVolume() mismatch (-want +got):\n%s", diff)
	}
}

func TestSecretVolumeItems(t *testing.T) {
	got, err := SecretVolume("creds", domain.SecretVolumeConfig{
		SecretName:  "db-secret",
		DefaultMode: "0400",
		Optional:    true,
		Items: map[string]domain.ItemConfig{
			"password": {Path: "db/password", Mode: "0600"},
			"user":     {Path: "db/user"},
		},
	})
	require.NoError(t, err)

	want := []corev1.KeyToPath{
		{Key: "password", Path: "db/password", Mode: ptr.To(int32(384))},
		{Key: "user", Path: "db/user"},
	}
	if diff := cmp.Diff(want, got.Secret.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, int32(256), *got.Secret.DefaultMode)
	assert.True(t, *got.Secret.Optional)
}

func TestVolumeConvertersRejectMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		field string
		run   func() error
	}{
		{
			name:  "secret without secret name",
			field: "secretVolumes.creds.secretName",
			run: func() error {
				_, err := SecretVolume("creds", domain.SecretVolumeConfig{})
				return err
			},
		},
		{
			name:  "secret with bad mode",
			field: "secretVolumes.creds.defaultMode",
			run: func() error {
				_, err := SecretVolume("creds", domain.SecretVolumeConfig{SecretName: "s", DefaultMode: "0999"})
				return err
			},
		},
		{
			name:  "config map without name",
			field: "configMapVolumes.cfg.configMapName",
			run: func() error {
				_, err := ConfigMapVolume("cfg", domain.ConfigMapVolumeConfig{})
				return err
			},
		},
		{
			name:  "item without path",
			field: "configMapVolumes.cfg.items.key.path",
			run: func() error {
				_, err := ConfigMapVolume("cfg", domain.ConfigMapVolumeConfig{
					ConfigMapName: "cfg",
					Items:         map[string]domain.ItemConfig{"key": {}},
				})
				return err
			},
		},
		{
			name:  "pvc without claim",
			field: "pvcVolumes.data.claimName",
			run: func() error {
				_, err := PvcVolume("data", domain.PvcVolumeConfig{})
				return err
			},
		},
		{
			name:  "azure file without share",
			field: "azureFileVolumes.share.shareName",
			run: func() error {
				_, err := AzureFileVolume("share", domain.AzureFileVolumeConfig{SecretName: "s"})
				return err
			},
		},
		{
			name:  "git repo without repository",
			field: "gitRepoVolumes.src.repository",
			run: func() error {
				_, err := GitRepoVolume("src", domain.GitRepoVolumeConfig{})
				return err
			},
		},
		{
			name:  "host alias without ip",
			field: "hostAliases.db.ip",
			run: func() error {
				_, err := HostAlias("db", domain.HostAliasConfig{Hostnames: []string{"db"}})
				return err
			},
		},
		{
			name:  "mount without path",
			field: "mounts.data.path",
			run: func() error {
				_, err := Mount("data", domain.MountConfig{})
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.run()
			require.Error(t, err)
			var ce *domain.ConfigurationError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.field, ce.Field)
		})
	}
}

func TestVolumesOrder(t *testing.T) {
	cfg := domain.Config{
		EmptyDirVolumes: []string{"tmp", "cache"},
		SecretVolumes: map[string]domain.SecretVolumeConfig{
			"b": {SecretName: "b"},
			"a": {SecretName: "a"},
		},
		PvcVolumes: map[string]domain.PvcVolumeConfig{
			"data": {ClaimName: "data"},
		},
		GitRepoVolumes: map[string]domain.GitRepoVolumeConfig{
			"src": {Repository: "https://example.com/repo.git"},
		},
	}

	volumes, err := Volumes(cfg)
	require.NoError(t, err)

	var names []string
	for _, v := range volumes {
		names = append(names, v.Name)
	}
	assert.Equal(t, []string{"tmp", "cache", "a", "b", "data", "src"}, names)
}

func TestPortAndServicePort(t *testing.T) {
	port, err := Port("http", domain.PortConfig{ContainerPort: 8080})
	require.NoError(t, err)
	assert.Equal(t, corev1.ContainerPort{Name: "http", ContainerPort: 8080, Protocol: corev1.ProtocolTCP}, port)

	sp, err := ServicePort("metrics", domain.PortConfig{ContainerPort: 9090, Protocol: domain.ProtocolUDP, NodePort: 30090})
	require.NoError(t, err)
	want := corev1.ServicePort{
		Name:       "metrics",
		Port:       9090,
		TargetPort: intstr.FromInt32(9090),
		Protocol:   corev1.ProtocolUDP,
		NodePort:   30090,
	}
	if diff := cmp.Diff(want, sp); diff != "" {
		t.Errorf("ServicePort() mismatch (-want +got):\n%s", diff)
	}

	_, err = Port("bad", domain.PortConfig{ContainerPort: 80, Protocol: "HTTP"})
	assert.True(t, domain.IsConfigurationError(err))
}

func TestEnvVar(t *testing.T) {
	tests := []struct {
		name    string
		cfg     domain.EnvConfig
		want    corev1.EnvVar
		wantErr bool
	}{
		{
			name: "literal",
			cfg:  domain.EnvConfig{Value: "1"},
			want: corev1.EnvVar{Name: "literal", Value: "1"},
		},
		{
			name: "secret",
			cfg:  domain.EnvConfig{Secret: "db", Key: "password"},
			want: corev1.EnvVar{Name: "secret", ValueFrom: &corev1.EnvVarSource{
				SecretKeyRef: &corev1.SecretKeySelector{
					LocalObjectReference: corev1.LocalObjectReference{Name: "db"},
					Key:                  "password",
				},
			}},
		},
		{
			name: "field",
			cfg:  domain.EnvConfig{Field: "metadata.namespace"},
			want: corev1.EnvVar{Name: "field", ValueFrom: &corev1.EnvVarSource{
				FieldRef: &corev1.ObjectFieldSelector{FieldPath: "metadata.namespace"},
			}},
		},
		{
			name:    "configmap-without-key",
			cfg:     domain.EnvConfig{ConfigMap: "cfg"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := EnvVar(tt.name, tt.cfg)
			if tt.wantErr {
				assert.True(t, domain.IsConfigurationError(err))
				return
			}
			require.NoError(t, err)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("EnvVar() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestContainer(t *testing.T) {
	got, err := Container("migrate", domain.ContainerConfig{
		Image:   "flyway:9",
		Command: []string{"flyway", "migrate"},
		Env:     map[string]domain.EnvConfig{"B": {Value: "2"}, "A": {Value: "1"}},
		Mounts:  map[string]domain.MountConfig{"sql": {Path: "/sql", ReadOnly: true}},
	})
	require.NoError(t, err)

	want := corev1.Container{
		Name:    "migrate",
		Image:   "flyway:9",
		Command: []string{"flyway", "migrate"},
		Env: []corev1.EnvVar{
			{Name: "A", Value: "1"},
			{Name: "B", Value: "2"},
		},
		VolumeMounts: []corev1.VolumeMount{{Name: "sql", MountPath: "/sql", ReadOnly: true}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Container() mismatch (-want +got):\n%s", diff)
	}

	_, err = Container("noimage", domain.ContainerConfig{})
	assert.True(t, domain.IsConfigurationError(err))
}

func TestProbe(t *testing.T) {
	http, err := Probe("readinessProbe", domain.ProbeConfig{HTTPActionPath: "/ready", Port: "http", PeriodSeconds: 5})
	require.NoError(t, err)
	assert.Equal(t, intstr.FromString("http"), http.HTTPGet.Port)
	assert.Equal(t, int32(5), http.PeriodSeconds)

	numeric, err := Probe("livenessProbe", domain.ProbeConfig{HTTPActionPath: "/live", Port: "8080"})
	require.NoError(t, err)
	assert.Equal(t, intstr.FromInt32(8080), numeric.HTTPGet.Port)

	tcp, err := Probe("startupProbe", domain.ProbeConfig{TCPSocketPort: 5432})
	require.NoError(t, err)
	assert.Equal(t, intstr.FromInt32(5432), tcp.TCPSocket.Port)

	_, err = Probe("livenessProbe", domain.ProbeConfig{})
	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "livenessProbe", ce.Field)
}

func TestResources(t *testing.T) {
	got, err := Resources(domain.ResourcesConfig{
		Limits:   domain.ResourceListConfig{CPU: "500m", Memory: "256Mi"},
		Requests: domain.ResourceListConfig{CPU: "100m"},
	})
	require.NoError(t, err)

	assert.True(t, got.Limits.Cpu().Equal(resource.MustParse("500m")))
	assert.True(t, got.Limits.Memory().Equal(resource.MustParse("256Mi")))
	assert.True(t, got.Requests.Cpu().Equal(resource.MustParse("100m")))
	assert.NotContains(t, got.Requests, corev1.ResourceMemory)

	empty, err := Resources(domain.ResourcesConfig{})
	require.NoError(t, err)
	assert.Nil(t, empty.Limits)

	_, err = Resources(domain.ResourcesConfig{Limits: domain.ResourceListConfig{Memory: "lots"}})
	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "resources.limits.memory", ce.Field)
}

func TestPolicyRule(t *testing.T) {
	rule, err := PolicyRule("rbac.roles.reader.rules[0]", domain.PolicyRuleConfig{
		Resources: []string{"pods"},
		Verbs:     []string{"get", "list"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"get", "list"}, rule.Verbs)
	assert.Nil(t, rule.APIGroups)

	_, err = PolicyRule("rbac.roles.reader.rules[0]", domain.PolicyRuleConfig{})
	assert.True(t, domain.IsConfigurationError(err))
}

func TestConvertAll(t *testing.T) {
	cfg := domain.Config{
		Ports:          map[string]domain.PortConfig{"http": {ContainerPort: 8080}},
		Mounts:         map[string]domain.MountConfig{"creds": {Path: "/etc/creds"}},
		SecretVolumes:  map[string]domain.SecretVolumeConfig{"creds": {SecretName: "db-secret"}},
		Env:            map[string]domain.EnvConfig{"MODE": {Value: "prod"}},
		NodeSelector:   &domain.NodeSelectorConfig{Key: "disktype", Value: "ssd"},
		ReadinessProbe: &domain.ProbeConfig{HTTPActionPath: "/ready", Port: "http"},
		Sidecars:       map[string]domain.ContainerConfig{"proxy": {Image: "envoy:1"}},
	}

	set, err := ConvertAll(cfg)
	require.NoError(t, err)

	assert.Len(t, set.Volumes, 1)
	assert.Len(t, set.Mounts, 1)
	assert.Len(t, set.Ports, 1)
	assert.Len(t, set.ServicePorts, 1)
	assert.Len(t, set.Env, 1)
	assert.Len(t, set.Sidecars, 1)
	assert.Equal(t, map[string]string{"disktype": "ssd"}, set.NodeSelector)
	assert.Contains(t, set.Probes, "readinessProbe")
	assert.NotContains(t, set.Probes, "livenessProbe")

	cfg.SecretVolumes["bad"] = domain.SecretVolumeConfig{}
	_, err = ConvertAll(cfg)
	assert.True(t, domain.IsConfigurationError(err))
}

func TestConvertAllReportsEarliestGroupError(t *testing.T) {
	cfg := domain.Config{
		SecretVolumes: map[string]domain.SecretVolumeConfig{"creds": {}},
		Mounts:        map[string]domain.MountConfig{"data": {}},
		Env:           map[string]domain.EnvConfig{"MODE": {}},
		Resources:     domain.ResourcesConfig{Limits: domain.ResourceListConfig{CPU: "fast"}},
	}

	for i := 0; i < 50; i++ {
		_, err := ConvertAll(cfg)
		var ce *domain.ConfigurationError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, "secretVolumes.creds.secretName", ce.Field)
	}
}

func TestResourcesReportsCPUBeforeMemory(t *testing.T) {
	for i := 0; i < 50; i++ {
		_, err := Resources(domain.ResourcesConfig{Limits: domain.ResourceListConfig{CPU: "fast", Memory: "lots"}})
		var ce *domain.ConfigurationError
		require.ErrorAs(t, err, &ce)
		require.Equal(t, "resources.limits.cpu", ce.Field)
	}
}
