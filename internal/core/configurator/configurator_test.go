package configurator

import (
	"errors"
	"testing"

	"kgen/internal/core/domain"
	"kgen/internal/core/ordering"
	"kgen/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApplyImageGroupConfigurator(t *testing.T) {
	cfg := &domain.Config{}
	require.NoError(t, ApplyImageGroupConfigurator{Group: "JDoe"}.Configure(cfg))
	assert.Equal(t, "jdoe", cfg.Image.Group)

	cfg = &domain.Config{Image: domain.ImageConfig{Group: "team"}}
	require.NoError(t, ApplyImageGroupConfigurator{Group: "jdoe"}.Configure(cfg))
	assert.Equal(t, "team", cfg.Image.Group, "configured group wins")
}

func TestApplyImageRegistryConfigurator(t *testing.T) {
	tests := []struct {
		name       string
		configured string
		fallback   string
		want       string
	}{
		{name: "fallback used", fallback: "quay.io", want: "quay.io"},
		{name: "configured wins", configured: "ghcr.io", fallback: "quay.io", want: "ghcr.io"},
		{name: "scheme and slash stripped", configured: "https://registry.local:5000/", want: "registry.local:5000"},
		{name: "nothing set", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &domain.Config{Image: domain.ImageConfig{Registry: tt.configured}}
			require.NoError(t, ApplyImageRegistryConfigurator{Registry: tt.fallback}.Configure(cfg))
			assert.Equal(t, tt.want, cfg.Image.Registry)
		})
	}
}

func TestApplyS2IImageConfigurator(t *testing.T) {
	tests := []struct {
		name         string
		target       string
		cfg          domain.Config
		wantRegistry string
		wantGroup    string
	}{
		{
			name:         "openshift with s2i uses namespace",
			target:       "openshift",
			cfg:          domain.Config{Name: "web", Namespace: "shop", Build: domain.BuildConfig{S2I: true}, Image: domain.ImageConfig{Registry: "quay.io", Group: "me"}},
			wantRegistry: OpenShiftInternalRegistry,
			wantGroup:    "shop",
		},
		{
			name:         "openshift with s2i falls back to project name",
			target:       "openshift",
			cfg:          domain.Config{Name: "web", Build: domain.BuildConfig{S2I: true}},
			wantRegistry: OpenShiftInternalRegistry,
			wantGroup:    "web",
		},
		{
			name:         "openshift without s2i is untouched",
			target:       "openshift",
			cfg:          domain.Config{Name: "web", Image: domain.ImageConfig{Registry: "quay.io", Group: "me"}},
			wantRegistry: "quay.io",
			wantGroup:    "me",
		},
		{
			name:         "other targets are untouched",
			target:       "kubernetes",
			cfg:          domain.Config{Name: "web", Build: domain.BuildConfig{S2I: true}, Image: domain.ImageConfig{Registry: "quay.io"}},
			wantRegistry: "quay.io",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			require.NoError(t, ApplyS2IImageConfigurator{Target: tt.target}.Configure(&cfg))
			assert.Equal(t, tt.wantRegistry, cfg.Image.Registry)
			assert.Equal(t, tt.wantGroup, cfg.Image.Group)
		})
	}
}

func TestS2ISupersedesRegistryAndGroupInAnyRegistrationOrder(t *testing.T) {
	templater := &testutil.MockTemplater{}
	configurators := []Configurator{
		ApplyS2IImageConfigurator{Target: "openshift"},
		NewApplyImageNameConfigurator(templater),
		ApplyImageGroupConfigurator{Group: "me"},
		ApplyImageRegistryConfigurator{Registry: "quay.io"},
	}

	resolved, err := ordering.Resolve(configurators)
	require.NoError(t, err)
	assert.Equal(t, []string{ApplyImageGroupTag, ApplyImageRegistryTag, ApplyS2IImageTag, ApplyImageNameTag}, ordering.Tags(resolved))

	templater.On("Render", domain.DefaultImageFormat, "image", map[string]interface{}{
		"Registry": OpenShiftInternalRegistry,
		"Group":    "web",
		"Name":     "web",
		"Tag":      "latest",
	}).Return(OpenShiftInternalRegistry+"/web/web:latest", nil)

	cfg := &domain.Config{Name: "web", Build: domain.BuildConfig{S2I: true}}
	for _, c := range resolved {
		require.NoError(t, c.Configure(cfg))
	}

	assert.Equal(t, OpenShiftInternalRegistry, cfg.Image.Registry)
	assert.Equal(t, "web", cfg.Image.Group)
	assert.Equal(t, OpenShiftInternalRegistry+"/web/web:latest", cfg.Image.Reference)
	templater.AssertExpectations(t)
}

func TestApplyImageNameConfigurator(t *testing.T) {
	templater := &testutil.MockTemplater{}
	templater.On("Render", "{{.Name}}:{{.Tag}}", "image", mock.Anything).Return(" web:1.0 \n", nil)

	cfg := &domain.Config{Name: "web", Image: domain.ImageConfig{Format: "{{.Name}}:{{.Tag}}", Tag: "1.0"}}
	require.NoError(t, NewApplyImageNameConfigurator(templater).Configure(cfg))
	assert.Equal(t, "web:1.0", cfg.Image.Reference)
}

func TestApplyImageNameConfiguratorReportsTemplateErrors(t *testing.T) {
	templater := &testutil.MockTemplater{}
	templater.On("Render", mock.Anything, "image", mock.Anything).Return("", errors.New("bad template"))

	err := NewApplyImageNameConfigurator(templater).Configure(&domain.Config{Name: "web"})

	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "image.format", ce.Field)
}

func TestApplyNamespaceFromContextConfigurator(t *testing.T) {
	t.Run("reads the context namespace", func(t *testing.T) {
		kube := &testutil.MockKubeContext{}
		kube.On("CurrentNamespace").Return("dev", nil)

		cfg := &domain.Config{NamespaceFromContext: true}
		require.NoError(t, NewApplyNamespaceFromContextConfigurator(kube).Configure(cfg))
		assert.Equal(t, "dev", cfg.Namespace)
	})

	t.Run("configured namespace wins", func(t *testing.T) {
		kube := &testutil.MockKubeContext{}

		cfg := &domain.Config{NamespaceFromContext: true, Namespace: "prod"}
		require.NoError(t, NewApplyNamespaceFromContextConfigurator(kube).Configure(cfg))
		assert.Equal(t, "prod", cfg.Namespace)
		kube.AssertNotCalled(t, "CurrentNamespace")
	})

	t.Run("disabled", func(t *testing.T) {
		kube := &testutil.MockKubeContext{}

		cfg := &domain.Config{}
		require.NoError(t, NewApplyNamespaceFromContextConfigurator(kube).Configure(cfg))
		assert.Empty(t, cfg.Namespace)
		kube.AssertNotCalled(t, "CurrentNamespace")
	})

	t.Run("kubeconfig error", func(t *testing.T) {
		kube := &testutil.MockKubeContext{}
		kube.On("CurrentNamespace").Return("", errors.New("no kubeconfig"))

		err := NewApplyNamespaceFromContextConfigurator(kube).Configure(&domain.Config{NamespaceFromContext: true})
		assert.True(t, domain.IsConfigurationError(err))
	})
}

func TestResolveSecretValuesConfigurator(t *testing.T) {
	keyring := &testutil.MockKeyring{}
	keyring.On("HasKey", "db-password").Return(true, nil)
	keyring.On("GetKey", "db-password").Return("s3cr3t", nil)

	cfg := &domain.Config{
		Secrets: map[string]domain.SecretConfig{
			"db": {Data: map[string]string{
				"password": "keyring:db-password",
				"user":     "app",
			}},
		},
	}

	require.NoError(t, NewResolveSecretValuesConfigurator(keyring).Configure(cfg))
	assert.Equal(t, map[string]string{"password": "s3cr3t", "user": "app"}, cfg.Secrets["db"].Data)
	keyring.AssertExpectations(t)
}

func TestResolveSecretValuesConfiguratorMissingEntry(t *testing.T) {
	keyring := &testutil.MockKeyring{}
	keyring.On("HasKey", "missing").Return(false, nil)

	cfg := &domain.Config{
		Secrets: map[string]domain.SecretConfig{
			"db": {Data: map[string]string{"password": "keyring:missing"}},
		},
	}

	err := NewResolveSecretValuesConfigurator(keyring).Configure(cfg)

	var ce *domain.ConfigurationError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "secrets.db.data.password", ce.Field)
	keyring.AssertNotCalled(t, "GetKey", mock.Anything)
}
