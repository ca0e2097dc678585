package resource

import (
	"k8s.io/apimachinery/pkg/runtime/schema"
)

const (
	GroupApps      = "apps"
	GroupBatch     = "batch"
	GroupOpenShift = "apps.openshift.io"
	GroupKnative   = "serving.knative.dev"
)

// APIVersionForKind returns the default apiVersion for kinds kgen knows about.
// Kinds that share a name across groups (Knative Service) must be created with an
// explicit apiVersion.
func APIVersionForKind(kind string) string {
	switch kind {
	case "Deployment", "StatefulSet", "DaemonSet", "ReplicaSet":
		return "apps/v1"
	case "Service", "ConfigMap", "Secret", "Namespace", "ServiceAccount", "PersistentVolumeClaim", "Pod":
		return "v1"
	case "Ingress":
		return "networking.k8s.io/v1"
	case "Job", "CronJob":
		return "batch/v1"
	case "Role", "RoleBinding", "ClusterRole", "ClusterRoleBinding":
		return "rbac.authorization.k8s.io/v1"
	case "HorizontalPodAutoscaler":
		return "autoscaling/v2"
	case "DeploymentConfig":
		return "apps.openshift.io/v1"
	case "Route":
		return "route.openshift.io/v1"
	case "ImageStream":
		return "image.openshift.io/v1"
	default:
		return "v1"
	}
}

// ClusterScoped reports whether kind is not namespaced.
func ClusterScoped(kind string) bool {
	switch kind {
	case "Namespace", "ClusterRole", "ClusterRoleBinding", "PersistentVolume", "StorageClass", "CustomResourceDefinition":
		return true
	}
	return false
}

type workloadPaths struct {
	podTemplate []string
	selector    []string
	replicas    bool
}

var workloads = map[schema.GroupKind]workloadPaths{
	{Group: GroupApps, Kind: "Deployment"}: {
		podTemplate: []string{"spec", "template"},
		selector:    []string{"spec", "selector", "matchLabels"},
		replicas:    true,
	},
	{Group: GroupApps, Kind: "StatefulSet"}: {
		podTemplate: []string{"spec", "template"},
		selector:    []string{"spec", "selector", "matchLabels"},
		replicas:    true,
	},
	{Group: GroupApps, Kind: "ReplicaSet"}: {
		podTemplate: []string{"spec", "template"},
		selector:    []string{"spec", "selector", "matchLabels"},
		replicas:    true,
	},
	{Group: GroupApps, Kind: "DaemonSet"}: {
		podTemplate: []string{"spec", "template"},
		selector:    []string{"spec", "selector", "matchLabels"},
	},
	{Group: GroupOpenShift, Kind: "DeploymentConfig"}: {
		podTemplate: []string{"spec", "template"},
		selector:    []string{"spec", "selector"},
		replicas:    true,
	},
	{Group: GroupKnative, Kind: "Service"}: {
		podTemplate: []string{"spec", "template"},
	},
	{Group: GroupBatch, Kind: "Job"}: {
		podTemplate: []string{"spec", "template"},
	},
	{Group: GroupBatch, Kind: "CronJob"}: {
		podTemplate: []string{"spec", "jobTemplate", "spec", "template"},
	},
}

func join(path []string, more ...string) []string {
	out := make([]string, 0, len(path)+len(more))
	out = append(out, path...)
	return append(out, more...)
}
