package ports

// KubeContext reads the current kubeconfig context.
type KubeContext interface {
	// CurrentContext returns the name of the current context.
	CurrentContext() (string, error)
	// CurrentNamespace returns the namespace of the current context, or "" when
	// the context does not set one.
	CurrentNamespace() (string, error)
}
