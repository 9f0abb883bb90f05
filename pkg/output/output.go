package output

import (
	"bytes"
	"encoding/json"
	"fmt"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/cli-runtime/pkg/printers"
	yml "sigs.k8s.io/yaml"
)

var Yaml = &yaml{}

var Json = &jsonOutput{}

var Table = &table{}

type Output interface {
	// GetName returns the name of the output format, will be used by the CLI to identify the output format.
	GetName() string
	// Print renders the given tool response as a string.
	Print(v any) (string, error)
}

// Tabular is implemented by responses that can be rendered as rows and columns.
type Tabular interface {
	TableColumns() []string
	TableRows() [][]any
}

var Outputs = []Output{
	Yaml,
	Json,
	Table,
}

var Names []string

func FromString(name string) Output {
	for _, output := range Outputs {
		if output.GetName() == name {
			return output
		}
	}
	return nil
}

type yaml struct{}

func (p *yaml) GetName() string {
	return "yaml"
}
func (p *yaml) Print(v any) (string, error) {
	return MarshalYaml(v, WithCleanMetadata())
}

type jsonOutput struct{}

func (p *jsonOutput) GetName() string {
	return "json"
}
func (p *jsonOutput) Print(v any) (string, error) {
	ret, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}
	return string(ret), nil
}

type table struct{}

func (p *table) GetName() string {
	return "table"
}

// Print renders Tabular values with the kubectl table printer, other values fall back to YAML.
func (p *table) Print(v any) (string, error) {
	tabular, ok := v.(Tabular)
	if !ok {
		return Yaml.Print(v)
	}
	t := &metav1.Table{}
	for _, column := range tabular.TableColumns() {
		t.ColumnDefinitions = append(t.ColumnDefinitions, metav1.TableColumnDefinition{Name: column, Type: "string"})
	}
	for _, row := range tabular.TableRows() {
		if len(row) != len(t.ColumnDefinitions) {
			return "", fmt.Errorf("table row has %d cells, expected %d", len(row), len(t.ColumnDefinitions))
		}
		t.Rows = append(t.Rows, metav1.TableRow{Cells: row})
	}
	buf := new(bytes.Buffer)
	// TablePrinter is mutable and not thread-safe, must create a new instance each time.
	printer := printers.NewTablePrinter(printers.PrintOptions{})
	err := printer.PrintObj(t, buf)
	return buf.String(), err
}

func MarshalYaml(v any, opts ...MarshalOption) (string, error) {
	var cfg marshalConfig
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.clean {
		switch t := v.(type) {
		case *unstructured.UnstructuredList:
			for i := range t.Items {
				cleanMetadata(&t.Items[i])
			}
		case *unstructured.Unstructured:
			cleanMetadata(t)
		}
	}
	switch t := v.(type) {
	case *unstructured.UnstructuredList:
		v = t.Items
	}
	ret, err := yml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(ret), nil
}

type marshalConfig struct {
	clean bool
}

// MarshalOption configures MarshalYaml behaviour.
type MarshalOption func(*marshalConfig)

// WithCleanMetadata strips verbose metadata (managedFields, resourceVersion, uid, etc.)
// that provides no diagnostic value to the LLM.
func WithCleanMetadata() MarshalOption {
	return func(c *marshalConfig) { c.clean = true }
}

// CleanMetadata strips verbose metadata that provides no diagnostic value to the LLM.
func CleanMetadata(obj *unstructured.Unstructured) {
	cleanMetadata(obj)
}

func cleanMetadata(obj *unstructured.Unstructured) {
	obj.SetManagedFields(nil)
	obj.SetResourceVersion("")
	obj.SetUID("")
	obj.SetGeneration(0)

	annotations := obj.GetAnnotations()
	if annotations != nil {
		delete(annotations, "kubectl.kubernetes.io/last-applied-configuration")
		if len(annotations) == 0 {
			obj.SetAnnotations(nil)
		} else {
			obj.SetAnnotations(annotations)
		}
	}
}

func init() {
	Names = make([]string, 0)
	for _, output := range Outputs {
		Names = append(Names, output.GetName())
	}
}
