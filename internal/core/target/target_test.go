package target

import (
	"testing"

	"kgen/internal/core/domain"
	"kgen/internal/core/resource"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"k8s.io/utils/ptr"
)

func TestSelect(t *testing.T) {
	all := []Entry{
		{Name: "low", Priority: 10},
		{Name: "high", Priority: 20},
		{Name: "high-too", Priority: 20},
	}

	tests := []struct {
		name     string
		eligible []string
		explicit string
		want     string
	}{
		{name: "highest priority wins", eligible: []string{"low", "high"}, want: "high"},
		{name: "declaration order is irrelevant to priority", eligible: []string{"high", "low"}, want: "high"},
		{name: "ties go to the first eligible entry", eligible: []string{"high-too", "high"}, want: "high-too"},
		{name: "explicit selection wins", eligible: []string{"low", "high"}, explicit: "low", want: "low"},
		{name: "explicit selection need not be eligible", eligible: []string{"high"}, explicit: "low", want: "low"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(all, tt.eligible, tt.explicit)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Name)
		})
	}
}

func TestSelectErrors(t *testing.T) {
	all := Entries()

	_, err := Select(all, []string{Kubernetes}, "nomad")
	var te *domain.TargetResolutionError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "nomad", te.Name)

	_, err = Select(all, nil, "")
	assert.True(t, domain.IsTargetResolutionError(err))

	_, err = Select(all, []string{"swarm"}, "")
	assert.True(t, domain.IsTargetResolutionError(err))
}

func TestRegisteredEntries(t *testing.T) {
	got, err := Select(Entries(), []string{Kubernetes, Minikube}, "")
	require.NoError(t, err)
	assert.Equal(t, Minikube, got.Name)
	assert.True(t, got.LocalCluster())

	openshift, ok := Lookup(Entries(), OpenShift)
	require.True(t, ok)
	assert.True(t, openshift.IsOpenShift())
	assert.False(t, openshift.LocalCluster())

	knative, ok := Lookup(Entries(), Knative)
	require.True(t, ok)
	assert.True(t, knative.IsKnative())
	assert.Equal(t, "Service", knative.Kind)
}

func TestSelectionPrefersOverride(t *testing.T) {
	cfg := domain.Config{DeploymentTargets: []string{Kubernetes}, DeployTarget: ptr.To(OpenShift)}

	got, err := Selection(cfg, "")
	require.NoError(t, err)
	assert.Equal(t, OpenShift, got.Name)

	got, err = Selection(cfg, Knative)
	require.NoError(t, err)
	assert.Equal(t, Knative, got.Name)
}

func baselineConfig() domain.Config {
	return domain.Config{
		Name: "web",
		Ports: map[string]domain.PortConfig{
			"http": {ContainerPort: 8080, Path: "/api"},
		},
		Ingress: domain.IngressConfig{
			Expose: true,
			Host:   "web.example.com",
			TLS:    map[string]domain.IngressTLSConfig{"web-tls": {Hosts: []string{"web.example.com"}}},
		},
		Route: domain.RouteConfig{Expose: true},
		Autoscaling: domain.AutoscalingConfig{
			Enabled:              true,
			MinReplicas:          ptr.To(int32(2)),
			MaxReplicas:          5,
			TargetCPUUtilization: ptr.To(int32(75)),
		},
		RBAC: domain.RBACConfig{
			Roles: map[string]domain.RoleConfig{
				"reader": {Rules: []domain.PolicyRuleConfig{{Resources: []string{"pods"}, Verbs: []string{"get"}}}},
				"nodes":  {ClusterWide: true, Rules: []domain.PolicyRuleConfig{{Resources: []string{"nodes"}, Verbs: []string{"list"}}}},
			},
		},
		Secrets: map[string]domain.SecretConfig{
			"db": {Data: map[string]string{"password": "s3cr3t"}},
		},
	}
}

func keys(m *resource.Model) []string {
	var out []string
	for _, r := range m.All() {
		out = append(out, r.Key().String())
	}
	return out
}

func TestBaselinePerTarget(t *testing.T) {
	tests := []struct {
		target string
		want   []string
	}{
		{
			target: Kubernetes,
			want: []string{
				"Deployment/web", "Service/web", "Ingress/web", "HorizontalPodAutoscaler/web",
				"ServiceAccount/web", "ClusterRole/nodes", "ClusterRoleBinding/web-nodes",
				"Role/reader", "RoleBinding/web-reader", "Secret/db",
			},
		},
		{
			target: OpenShift,
			want: []string{
				"DeploymentConfig/web", "Service/web", "Route/web", "HorizontalPodAutoscaler/web",
				"ServiceAccount/web", "ClusterRole/nodes", "ClusterRoleBinding/web-nodes",
				"Role/reader", "RoleBinding/web-reader", "Secret/db",
			},
		},
		{
			target: Knative,
			want: []string{
				"Service/web",
				"ServiceAccount/web", "ClusterRole/nodes", "ClusterRoleBinding/web-nodes",
				"Role/reader", "RoleBinding/web-reader", "Secret/db",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			e, ok := Lookup(Entries(), tt.target)
			require.True(t, ok)
			m := resource.NewModel()

			require.NoError(t, Baseline(m, baselineConfig(), e))

			assert.Equal(t, tt.want, keys(m))
			workload := m.Get(e.Kind, "web")
			assert.Equal(t, e.APIVersion, workload.APIVersion())
			assert.True(t, workload.IsWorkload())
			assert.Equal(t, []string{"web"}, workload.Containers())
		})
	}
}

func TestBaselineResourceContents(t *testing.T) {
	e, _ := Lookup(Entries(), Kubernetes)
	m := resource.NewModel()
	require.NoError(t, Baseline(m, baselineConfig(), e))

	path, err := m.Get("Ingress", "web").Query("$.spec.rules[0].http.paths[0].path")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"/api"}, path)

	port, err := m.Get("Ingress", "web").Query("$.spec.rules[0].http.paths[0].backend.service.port.name")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"http"}, port)

	ref, err := m.Get("HorizontalPodAutoscaler", "web").Query("$.spec.scaleTargetRef.kind")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"Deployment"}, ref)

	utilization, err := m.Get("HorizontalPodAutoscaler", "web").Query("$.spec.metrics[0].resource.target.averageUtilization")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{int64(75)}, utilization)

	roleRef, err := m.Get("RoleBinding", "web-reader").Query("$.roleRef.name")
	require.NoError(t, err)
	assert.Equal(t, []interface{}{"reader"}, roleRef)

	secretType, _ := m.Get("Secret", "db").Field("type")
	assert.Equal(t, "Opaque", secretType)
}

func TestBaselineRejectsUnknownTargetPort(t *testing.T) {
	cfg := baselineConfig()
	cfg.Ingress.TargetPort = "grpc"
	e, _ := Lookup(Entries(), Kubernetes)

	err := Baseline(resource.NewModel(), cfg, e)

	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "ingress.targetPort", ce.Field)
}

func TestBaselineMinimal(t *testing.T) {
	e, _ := Lookup(Entries(), Kubernetes)
	m := resource.NewModel()

	require.NoError(t, Baseline(m, domain.Config{Name: "job"}, e))

	assert.Equal(t, []string{"Deployment/job"}, keys(m))
}
