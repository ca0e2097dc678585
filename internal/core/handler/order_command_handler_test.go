package handler

import (
	"strings"
	"testing"

	"kgen/internal/core/decorator"
	"kgen/internal/core/synth"
	"kgen/internal/core/target"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderCommandHandler_PrintsResolvedOrder(t *testing.T) {
	f := newFixture(t, projectConfig())
	sut := ProvideOrderCommandHandler(f.configRepository, f.engine)

	out := strings.Builder{}
	err := sut.Handle(&out, configPath, "", logr.Discard())

	require.NoError(t, err)
	text := out.String()
	assert.True(t, strings.HasPrefix(text, "target: kubernetes\nconfigurators:\n  1. "))
	assert.Contains(t, text, "decorators:\n")
	assert.Contains(t, text, decorator.ApplyImageTag+" Deployment/web\n")
	assert.Less(t, strings.Index(text, "configurators:"), strings.Index(text, "decorators:"))
}

func TestPrintOrder_MarksSkippedDecorators(t *testing.T) {
	result := &synth.Result{
		Target:            target.Entry{Name: target.Kind},
		ConfiguratorOrder: []string{"ApplyImageNameConfigurator"},
		DecoratorOrder: []synth.Step{
			{Tag: decorator.AddLabelTag, Target: "*/*", Visited: 2},
			{Tag: decorator.ApplyHPABehaviorTag, Target: "HorizontalPodAutoscaler/web"},
		},
	}

	out := strings.Builder{}
	printOrder(&out, result)

	assert.Equal(t, `target: kind
configurators:
  1. ApplyImageNameConfigurator
decorators:
  1. AddLabelDecorator */*
  2. ApplyHPABehaviorDecorator HorizontalPodAutoscaler/web (skipped)
`, out.String())
}
