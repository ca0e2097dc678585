package domain

type Protocol string

const (
	ProtocolTCP  Protocol = "TCP"
	ProtocolUDP  Protocol = "UDP"
	ProtocolSCTP Protocol = "SCTP"
)

func (p Protocol) Valid() bool {
	switch p {
	case ProtocolTCP, ProtocolUDP, ProtocolSCTP:
		return true
	}
	return false
}

// AutoScalerClass selects the Knative autoscaler implementation.
type AutoScalerClass string

const (
	AutoScalerClassKPA AutoScalerClass = "kpa"
	AutoScalerClassHPA AutoScalerClass = "hpa"
)

// AutoScalerClasses lists every AutoScalerClass value.
var AutoScalerClasses = []AutoScalerClass{AutoScalerClassKPA, AutoScalerClassHPA}

func (c AutoScalerClass) Valid() bool {
	for _, v := range AutoScalerClasses {
		if v == c {
			return true
		}
	}
	return false
}

// AutoScalingMetric is the metric a Knative autoscaler scales on.
type AutoScalingMetric string

const (
	AutoScalingMetricConcurrency AutoScalingMetric = "concurrency"
	AutoScalingMetricRPS         AutoScalingMetric = "rps"
	AutoScalingMetricCPU         AutoScalingMetric = "cpu"
)

var AutoScalingMetrics = []AutoScalingMetric{
	AutoScalingMetricConcurrency,
	AutoScalingMetricRPS,
	AutoScalingMetricCPU,
}

func (m AutoScalingMetric) Valid() bool {
	for _, v := range AutoScalingMetrics {
		if v == m {
			return true
		}
	}
	return false
}

// ScalingPolicySelect chooses between multiple horizontal autoscaler policies.
type ScalingPolicySelect string

const (
	ScalingPolicySelectMax      ScalingPolicySelect = "max"
	ScalingPolicySelectMin      ScalingPolicySelect = "min"
	ScalingPolicySelectDisabled ScalingPolicySelect = "disabled"
)

var ScalingPolicySelects = []ScalingPolicySelect{
	ScalingPolicySelectMax,
	ScalingPolicySelectMin,
	ScalingPolicySelectDisabled,
}

func (s ScalingPolicySelect) Valid() bool {
	for _, v := range ScalingPolicySelects {
		if v == s {
			return true
		}
	}
	return false
}
