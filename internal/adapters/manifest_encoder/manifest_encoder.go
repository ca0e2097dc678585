package manifest_encoder

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"kgen/internal/ports"

	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	utilyaml "k8s.io/apimachinery/pkg/util/yaml"
	"sigs.k8s.io/yaml"
)

var _ ports.ManifestEncoder = (*Encoder)(nil)

const documentSeparator = "---\n"

// Encoder renders documents with sigs.k8s.io/yaml, so YAML and JSON output share
// the field ordering and number handling of the Kubernetes JSON codec.
type Encoder struct{}

func ProvideManifestEncoder() *Encoder {
	return &Encoder{}
}

func (e *Encoder) Encode(docs []map[string]interface{}, format string) ([]byte, error) {
	switch format {
	case "", "yaml", "helm":
		return encodeYAML(docs)
	case "json":
		return encodeList(docs)
	default:
		return nil, fmt.Errorf("unsupported manifest format '%s'", format)
	}
}

func encodeYAML(docs []map[string]interface{}) ([]byte, error) {
	var buf bytes.Buffer
	for i, doc := range docs {
		out, err := yaml.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("failed to encode document %d: %w", i, err)
		}
		if i > 0 {
			buf.WriteString(documentSeparator)
		}
		buf.Write(out)
	}
	return buf.Bytes(), nil
}

func encodeList(docs []map[string]interface{}) ([]byte, error) {
	list := &unstructured.UnstructuredList{
		Object: map[string]interface{}{"apiVersion": "v1", "kind": "List"},
		Items:  make([]unstructured.Unstructured, 0, len(docs)),
	}
	for _, doc := range docs {
		list.Items = append(list.Items, unstructured.Unstructured{Object: doc})
	}
	compact, err := list.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("failed to encode list: %w", err)
	}

	var buf bytes.Buffer
	if err := json.Indent(&buf, bytes.TrimSpace(compact), "", "  "); err != nil {
		return nil, fmt.Errorf("failed to indent list: %w", err)
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

func (e *Encoder) DecodeYAML(data []byte) ([]map[string]interface{}, error) {
	reader := utilyaml.NewYAMLReader(bufio.NewReader(bytes.NewReader(data)))

	var docs []map[string]interface{}
	for {
		chunk, err := reader.Read()
		if errors.Is(err, io.EOF) {
			return docs, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to split manifests: %w", err)
		}
		if len(bytes.TrimSpace(chunk)) == 0 {
			continue
		}

		var doc map[string]interface{}
		if err := yaml.Unmarshal(chunk, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode document %d: %w", len(docs), err)
		}
		if len(doc) == 0 {
			continue
		}
		docs = append(docs, doc)
	}
}
