package decorator

import (
	"fmt"
	"strconv"

	"kgen/internal/core/domain"
	"kgen/internal/core/ordering"
	"kgen/internal/core/resource"

	autoscalingv2 "k8s.io/api/autoscaling/v2"
)

const (
	KnativeClassAnnotation    = "autoscaling.knative.dev/class"
	KnativeMetricAnnotation   = "autoscaling.knative.dev/metric"
	KnativeTargetAnnotation   = "autoscaling.knative.dev/target"
	KnativeMinScaleAnnotation = "autoscaling.knative.dev/min-scale"
	KnativeMaxScaleAnnotation = "autoscaling.knative.dev/max-scale"
)

var knativeClasses = map[domain.AutoScalerClass]string{
	domain.AutoScalerClassKPA: "kpa.autoscaling.knative.dev",
	domain.AutoScalerClassHPA: "hpa.autoscaling.knative.dev",
}

var knativeMetrics = map[domain.AutoScalingMetric]string{
	domain.AutoScalingMetricConcurrency: "concurrency",
	domain.AutoScalingMetricRPS:         "rps",
	domain.AutoScalingMetricCPU:         "cpu",
}

var policySelects = map[domain.ScalingPolicySelect]autoscalingv2.ScalingPolicySelect{
	domain.ScalingPolicySelectMax:      autoscalingv2.MaxChangePolicySelect,
	domain.ScalingPolicySelectMin:      autoscalingv2.MinChangePolicySelect,
	domain.ScalingPolicySelectDisabled: autoscalingv2.DisabledPolicySelect,
}

func init() {
	mustCover("knative autoscaler class", knativeClasses, domain.AutoScalerClasses)
	mustCover("knative autoscaling metric", knativeMetrics, domain.AutoScalingMetrics)
	mustCover("scaling policy select", policySelects, domain.ScalingPolicySelects)
}

// mustCover panics unless table maps every value.
func mustCover[K comparable, V any](name string, table map[K]V, values []K) {
	for _, v := range values {
		if _, ok := table[v]; !ok {
			panic(fmt.Sprintf("no %s mapping for %v", name, v))
		}
	}
	if len(table) != len(values) {
		panic(fmt.Sprintf("%s mapping has %d entries for %d values", name, len(table), len(values)))
	}
}

// ApplyKnativeAutoscalingDecorator writes the Knative autoscaling annotations on
// the revision template.
type ApplyKnativeAutoscalingDecorator struct {
	Scope
	Class             domain.AutoScalerClass
	Metric            domain.AutoScalingMetric
	ConcurrencyTarget *int32
	MinScale          *int32
	MaxScale          *int32
}

func (d ApplyKnativeAutoscalingDecorator) Tag() string                 { return ApplyKnativeAutoscalingTag }
func (d ApplyKnativeAutoscalingDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d ApplyKnativeAutoscalingDecorator) Visit(r *resource.Resource) error {
	if !r.IsWorkload() {
		return nil
	}
	annotations := map[string]string{}
	if d.Class != "" {
		class, ok := knativeClasses[d.Class]
		if !ok {
			return domain.NewConfigurationError("knative.autoScalerClass", "unsupported value '%s'", d.Class)
		}
		annotations[KnativeClassAnnotation] = class
	}
	if d.Metric != "" {
		metric, ok := knativeMetrics[d.Metric]
		if !ok {
			return domain.NewConfigurationError("knative.metric", "unsupported value '%s'", d.Metric)
		}
		annotations[KnativeMetricAnnotation] = metric
	}
	if d.ConcurrencyTarget != nil {
		annotations[KnativeTargetAnnotation] = strconv.Itoa(int(*d.ConcurrencyTarget))
	}
	if d.MinScale != nil {
		annotations[KnativeMinScaleAnnotation] = strconv.Itoa(int(*d.MinScale))
	}
	if d.MaxScale != nil {
		annotations[KnativeMaxScaleAnnotation] = strconv.Itoa(int(*d.MaxScale))
	}
	for _, key := range domain.SortedKeys(annotations) {
		if err := r.AddPodTemplateAnnotation(key, annotations[key]); err != nil {
			return err
		}
	}
	return nil
}

// ApplyHPABehaviorDecorator writes the scale-up and scale-down rules of a
// HorizontalPodAutoscaler.
type ApplyHPABehaviorDecorator struct {
	Scope
	ScaleUp   *domain.ScalingBehaviorConfig
	ScaleDown *domain.ScalingBehaviorConfig
}

func (d ApplyHPABehaviorDecorator) Tag() string                 { return ApplyHPABehaviorTag }
func (d ApplyHPABehaviorDecorator) Ordering() ordering.Ordering { return ordering.Ordering{} }

func (d ApplyHPABehaviorDecorator) Visit(r *resource.Resource) error {
	if r.Kind() != "HorizontalPodAutoscaler" {
		return nil
	}
	for field, behavior := range map[string]*domain.ScalingBehaviorConfig{
		"scaleUp":   d.ScaleUp,
		"scaleDown": d.ScaleDown,
	} {
		if behavior == nil {
			continue
		}
		rules, err := scalingRules(field, behavior)
		if err != nil {
			return err
		}
		if err := r.SetField(rules, "spec", "behavior", field); err != nil {
			return err
		}
	}
	return nil
}

func scalingRules(field string, cfg *domain.ScalingBehaviorConfig) (autoscalingv2.HPAScalingRules, error) {
	rules := autoscalingv2.HPAScalingRules{
		StabilizationWindowSeconds: cfg.StabilizationWindowSeconds,
	}
	if cfg.SelectPolicy != "" {
		selectPolicy, ok := policySelects[cfg.SelectPolicy]
		if !ok {
			return rules, domain.NewConfigurationError("autoscaling."+field+".selectPolicy", "unsupported value '%s'", cfg.SelectPolicy)
		}
		rules.SelectPolicy = &selectPolicy
	}
	return rules, nil
}
