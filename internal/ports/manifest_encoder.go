package ports

// ManifestEncoder converts resource documents to and from their wire formats.
type ManifestEncoder interface {
	// Encode renders docs as a multi-document YAML stream ("yaml") or a v1 List ("json").
	Encode(docs []map[string]interface{}, format string) ([]byte, error)
	// DecodeYAML splits a multi-document YAML stream into documents.
	DecodeYAML(data []byte) ([]map[string]interface{}, error)
}
