package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/util/intstr"
	"k8s.io/utils/ptr"
)

func newDeployment(t *testing.T) *Resource {
	t.Helper()
	r := NewModel().GetOrCreate("Deployment", "web")
	require.NoError(t, r.UpsertContainer(corev1.Container{Name: "web", Image: "web:1"}))
	return r
}

func TestResourceWorkloadDetection(t *testing.T) {
	m := NewModel()

	tests := []struct {
		name     string
		resource *Resource
		workload bool
		replicas bool
		podSpec  []string
	}{
		{name: "deployment", resource: m.GetOrCreate("Deployment", "a"), workload: true, replicas: true, podSpec: []string{"spec", "template", "spec"}},
		{name: "deployment config", resource: m.GetOrCreate("DeploymentConfig", "a"), workload: true, replicas: true, podSpec: []string{"spec", "template", "spec"}},
		{name: "knative service", resource: m.Create("serving.knative.dev/v1", "Service", "k"), workload: true, podSpec: []string{"spec", "template", "spec"}},
		{name: "core service", resource: m.GetOrCreate("Service", "a")},
		{name: "cron job", resource: m.GetOrCreate("CronJob", "a"), workload: true, podSpec: []string{"spec", "jobTemplate", "spec", "template", "spec"}},
		{name: "secret", resource: m.GetOrCreate("Secret", "a")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.workload, tt.resource.IsWorkload())
			assert.Equal(t, tt.replicas, tt.resource.HasReplicas())
			assert.Equal(t, tt.podSpec, tt.resource.PodSpecPath())
		})
	}
}

func TestResourceLabelsAndSelector(t *testing.T) {
	r := newDeployment(t)

	require.NoError(t, r.AddLabel("app", "web"))
	require.NoError(t, r.AddLabel("app", "web"))
	require.NoError(t, r.AddSelectorLabel("app", "web"))
	require.NoError(t, r.AddSelectorLabel("version", "1"))
	require.NoError(t, r.AddPodTemplateLabel("app", "web"))

	assert.Equal(t, map[string]string{"app": "web"}, r.Labels())
	assert.Equal(t, map[string]string{"app": "web", "version": "1"}, r.SelectorLabels())

	require.NoError(t, r.RemoveSelectorLabel("version"))
	assert.Equal(t, map[string]string{"app": "web"}, r.SelectorLabels())

	labels, ok := r.Field("spec", "template", "metadata", "labels")
	require.True(t, ok)
	assert.Equal(t, map[string]interface{}{"app": "web"}, labels)
}

func TestResourceSelectorOnServiceAndSecret(t *testing.T) {
	m := NewModel()
	svc := m.GetOrCreate("Service", "web")
	require.NoError(t, svc.AddSelectorLabel("app", "web"))
	assert.Equal(t, map[string]string{"app": "web"}, svc.SelectorLabels())

	secret := m.GetOrCreate("Secret", "creds")
	assert.ErrorIs(t, secret.AddSelectorLabel("app", "web"), ErrNoSelector)
	assert.ErrorIs(t, secret.SetReplicas(1), ErrNoReplicas)
	assert.ErrorIs(t, secret.AddVolume(corev1.Volume{Name: "x"}), ErrNotWorkload)
}

func TestResourceUpsertsNamedEntries(t *testing.T) {
	r := newDeployment(t)

	require.NoError(t, r.AddVolume(corev1.Volume{Name: "data", VolumeSource: corev1.VolumeSource{EmptyDir: &corev1.EmptyDirVolumeSource{}}}))
	require.NoError(t, r.AddVolume(corev1.Volume{Name: "data", VolumeSource: corev1.VolumeSource{Secret: &corev1.SecretVolumeSource{SecretName: "s"}}}))
	require.NoError(t, r.AddEnvVar("web", corev1.EnvVar{Name: "A", Value: "1"}))
	require.NoError(t, r.AddEnvVar("web", corev1.EnvVar{Name: "A", Value: "2"}))
	require.NoError(t, r.AddContainerPort("web", corev1.ContainerPort{Name: "http", ContainerPort: 8080}))
	require.NoError(t, r.AddVolumeMount("web", corev1.VolumeMount{Name: "data", MountPath: "/data"}))
	require.NoError(t, r.AddVolumeMount("web", corev1.VolumeMount{Name: "data", MountPath: "/data", ReadOnly: true}))
	require.NoError(t, r.UpsertContainer(corev1.Container{Name: "sidecar", Image: "proxy:1"}))

	volumes, err := r.Query("$.spec.template.spec.volumes[*].name")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"data"}, volumes)

	secretName, err := r.Query("$.spec.template.spec.volumes[0].secret.secretName")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"s"}, secretName)

	env, err := r.Query("$.spec.template.spec.containers[0].env[*].value")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"2"}, env)

	port, err := r.Query("$.spec.template.spec.containers[0].ports[0].containerPort")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(8080)}, port)

	readOnly, err := r.Query("$.spec.template.spec.containers[0].volumeMounts[*].readOnly")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{true}, readOnly)

	assert.Equal(t, []string{"web", "sidecar"}, r.Containers())
}

func TestResourceContainerAccessors(t *testing.T) {
	r := newDeployment(t)

	require.NoError(t, r.SetContainerImage("web", "quay.io/acme/web:2"))
	require.NoError(t, r.SetContainerPullPolicy("web", corev1.PullAlways))
	require.NoError(t, r.SetProbe("web", ReadinessProbe, corev1.Probe{
		ProbeHandler: corev1.ProbeHandler{HTTPGet: &corev1.HTTPGetAction{Path: "/ready", Port: intstr.FromString("http")}},
	}))

	c, ok := r.Container("web")
	require.True(t, ok)
	assert.Equal(t, "quay.io/acme/web:2", c["image"])
	assert.Equal(t, "Always", c["imagePullPolicy"])

	path, err := r.Query("$.spec.template.spec.containers[0].readinessProbe.httpGet.path")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"/ready"}, path)

	err = r.SetContainerImage("missing", "x")
	assert.ErrorIs(t, err, ErrContainerNotFound)
}

func TestResourcePodSpecFields(t *testing.T) {
	r := newDeployment(t)

	require.NoError(t, r.SetNodeSelector("disktype", "ssd"))
	require.NoError(t, r.SetServiceAccount("web"))
	require.NoError(t, r.AddImagePullSecret("pull"))
	require.NoError(t, r.AddImagePullSecret("pull"))
	require.NoError(t, r.AddHostAlias(corev1.HostAlias{IP: "10.0.0.1", Hostnames: []string{"db"}}))

	sa, ok := r.Field("spec", "template", "spec", "serviceAccountName")
	require.True(t, ok)
	assert.Equal(t, "web", sa)

	secrets, err := r.Query("$.spec.template.spec.imagePullSecrets[*].name")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"pull"}, secrets)

	hosts, err := r.Query("$.spec.template.spec.hostAliases[0].hostnames")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{[]interface{}{"db"}}, hosts)
}

func TestResourceHostAliasesMergeBySameIP(t *testing.T) {
	r := newDeployment(t)

	require.NoError(t, r.AddHostAlias(corev1.HostAlias{IP: "10.0.0.1", Hostnames: []string{"alpha"}}))
	require.NoError(t, r.AddHostAlias(corev1.HostAlias{IP: "10.0.0.1", Hostnames: []string{"beta", "alpha"}}))
	require.NoError(t, r.AddHostAlias(corev1.HostAlias{IP: "10.0.0.2", Hostnames: []string{"gamma"}}))

	aliases, ok := r.Field("spec", "template", "spec", "hostAliases")
	require.True(t, ok)
	assert.Equal(t, []interface{}{
		map[string]interface{}{"ip": "10.0.0.1", "hostnames": []interface{}{"alpha", "beta"}},
		map[string]interface{}{"ip": "10.0.0.2", "hostnames": []interface{}{"gamma"}},
	}, aliases)
}

func TestResourceSetFieldNormalisesValues(t *testing.T) {
	r := NewModel().GetOrCreate("HorizontalPodAutoscaler", "web")

	require.NoError(t, r.SetField(int32(3), "spec", "minReplicas"))
	require.NoError(t, r.SetField(map[string]string{"a": "b"}, "metadata", "labels"))
	require.NoError(t, r.SetField([]string{"x"}, "spec", "list"))
	require.NoError(t, r.SetField(ptr.To(corev1.LocalObjectReference{Name: "ref"}), "spec", "ref"))

	v, ok := r.Field("spec", "minReplicas")
	require.True(t, ok)
	assert.Equal(t, int64(3), v)
	assert.Equal(t, map[string]string{"a": "b"}, r.Labels())

	name, err := r.Query("$.spec.ref.name")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"ref"}, name)

	require.NoError(t, r.RemoveField("spec", "list"))
	_, ok = r.Field("spec", "list")
	assert.False(t, ok)

	assert.Error(t, r.SetField(make(chan int), "spec", "bad"))
}

func TestResourceQueryRejectsInvalidPath(t *testing.T) {
	r := NewModel().GetOrCreate("Service", "web")
	_, err := r.Query("$[")
	assert.Error(t, err)
}

func TestResourceServicePorts(t *testing.T) {
	svc := NewModel().GetOrCreate("Service", "web")

	require.NoError(t, svc.AddServicePort(corev1.ServicePort{Name: "http", Port: 80, TargetPort: intstr.FromInt32(8080)}))
	require.NoError(t, svc.AddServicePort(corev1.ServicePort{Name: "http", Port: 8080, TargetPort: intstr.FromInt32(8080)}))

	ports, err := svc.Query("$.spec.ports[*].port")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(8080)}, ports)
}
