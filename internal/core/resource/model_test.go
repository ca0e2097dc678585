package resource

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModelGetOrCreateIsIdempotent(t *testing.T) {
	m := NewModel()

	first := m.GetOrCreate("Deployment", "web")
	second := m.GetOrCreate("Deployment", "web")

	assert.Same(t, first, second)
	assert.Equal(t, 1, m.Len())
	assert.Equal(t, "apps/v1", first.APIVersion())
}

func TestModelKeepsOneResourcePerKey(t *testing.T) {
	m := NewModel()

	m.GetOrCreate("Deployment", "web")
	m.GetOrCreate("Service", "web")
	m.Create("serving.knative.dev/v1", "Service", "web")
	m.GetOrCreate("Deployment", "worker")
	m.GetOrCreate("Deployment", "web")

	seen := make(map[Key]bool)
	for _, r := range m.All() {
		assert.False(t, seen[r.Key()], "duplicate resource %s", r.Key())
		seen[r.Key()] = true
	}
	assert.Equal(t, 3, m.Len())
	assert.Equal(t, "v1", m.Get("Service", "web").APIVersion(), "first creation wins")
}

func TestModelAllReturnsCreationOrder(t *testing.T) {
	m := NewModel()
	m.GetOrCreate("Service", "b")
	m.GetOrCreate("Deployment", "a")
	m.GetOrCreate("Secret", "c")

	var keys []string
	for _, r := range m.All() {
		keys = append(keys, r.Key().String())
	}
	assert.Equal(t, []string{"Service/b", "Deployment/a", "Secret/c"}, keys)
}

func TestModelSelect(t *testing.T) {
	m := NewModel()
	m.GetOrCreate("Deployment", "web")
	m.GetOrCreate("Service", "web")
	m.GetOrCreate("Deployment", "worker")

	tests := []struct {
		name     string
		selector Selector
		want     []string
	}{
		{name: "kind and name", selector: Selector{Kind: "Deployment", Name: "web"}, want: []string{"Deployment/web"}},
		{name: "kind only", selector: Selector{Kind: "Deployment"}, want: []string{"Deployment/web", "Deployment/worker"}},
		{name: "name only", selector: Selector{Name: "web"}, want: []string{"Deployment/web", "Service/web"}},
		{name: "absent kind", selector: Selector{Kind: "HorizontalPodAutoscaler"}, want: nil},
		{name: "absent name", selector: Selector{Kind: "Deployment", Name: "db"}, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, r := range m.Select(tt.selector) {
				got = append(got, r.Key().String())
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectorString(t *testing.T) {
	assert.Equal(t, "*/*", Selector{}.String())
	assert.Equal(t, "Deployment/*", Selector{Kind: "Deployment"}.String())
	assert.Equal(t, "Deployment/web", Selector{Kind: "Deployment", Name: "web"}.String())
}

func TestModelSeal(t *testing.T) {
	m := NewModel()
	r := m.GetOrCreate("Deployment", "web")
	require.NoError(t, r.AddLabel("app", "web"))

	m.Seal()

	assert.True(t, m.Sealed())
	assert.ErrorIs(t, r.AddLabel("team", "x"), ErrSealed)
	assert.ErrorIs(t, r.SetReplicas(3), ErrSealed)
	assert.ErrorIs(t, r.SetNamespace("prod"), ErrSealed)
	assert.Same(t, r, m.GetOrCreate("Deployment", "web"), "existing resources stay reachable")
	assert.Panics(t, func() { m.GetOrCreate("Service", "web") })
	assert.Equal(t, map[string]string{"app": "web"}, r.Labels())
}

func TestModelDocumentsAreCopies(t *testing.T) {
	m := NewModel()
	r := m.GetOrCreate("Deployment", "web")
	require.NoError(t, r.SetReplicas(2))

	docs := m.Documents()
	require.Len(t, docs, 1)
	docs[0]["spec"].(map[string]interface{})["replicas"] = int64(9)

	replicas, ok := r.Replicas()
	assert.True(t, ok)
	assert.Equal(t, int32(2), replicas)
}

func TestModelLeavesAbsentTargetsAbsent(t *testing.T) {
	m := NewModel()
	m.GetOrCreate("Deployment", "web")

	assert.Empty(t, m.Select(Selector{Kind: "HorizontalPodAutoscaler", Name: "web"}))
	assert.Nil(t, m.Get("HorizontalPodAutoscaler", "web"))
	assert.Equal(t, 1, m.Len())
}
