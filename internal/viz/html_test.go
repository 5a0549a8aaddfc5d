package viz

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func sampleData() *GraphData {
	return &GraphData{
		Title: "Citations <of> Ada",
		Nodes: []Node{
			{ID: "W1", Kind: KindWork, Label: "First", Size: 1},
			{ID: "W2", Kind: KindWork, Label: "Second"},
		},
		Edges: []Edge{{Source: "W2", Target: "W1", Weight: 1}},
	}
}

func TestGenerateHTML(t *testing.T) {
	html, err := GenerateHTML(sampleData(), DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}

	for _, want := range []string{
		"<title>Citations &lt;of&gt; Ada</title>",
		CytoscapeURL,
		`"id":"W1"`,
		`"source":"W2","target":"W1"`,
		`const layout = "cose"`,
		"2 nodes, 1 edges",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML missing %q", want)
		}
	}
}

func TestGenerateHTML_Layouts(t *testing.T) {
	tests := []struct {
		layout  string
		want    string
		wantErr bool
	}{
		{"", "cose", false},
		{"force", "cose", false},
		{"circle", "circle", false},
		{"grid", "grid", false},
		{"concentric", "concentric", false},
		{"spiral", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.layout, func(t *testing.T) {
			html, err := GenerateHTML(sampleData(), HTMLOptions{Layout: tt.layout})
			if tt.wantErr {
				if err == nil {
					t.Errorf("GenerateHTML(%q) expected error", tt.layout)
				}
				return
			}
			if err != nil {
				t.Fatalf("GenerateHTML(%q) error = %v", tt.layout, err)
			}
			if !strings.Contains(html, `const layout = "`+tt.want+`"`) {
				t.Errorf("GenerateHTML(%q) should use layout %q", tt.layout, tt.want)
			}
		})
	}
}

func TestGenerateHTML_Empty(t *testing.T) {
	html, err := GenerateHTML(&GraphData{}, DefaultOptions())
	if err != nil {
		t.Fatalf("GenerateHTML() error = %v", err)
	}
	if !strings.Contains(html, "No graph data") {
		t.Error("empty graph should render the empty state")
	}
	if strings.Contains(html, "cytoscape(") {
		t.Error("empty graph should not load Cytoscape")
	}
}

func TestGenerateHTML_Nil(t *testing.T) {
	if _, err := GenerateHTML(nil, DefaultOptions()); err == nil {
		t.Error("GenerateHTML(nil) expected error")
	}
}

func TestWriteHTMLAndFile(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteHTML(&buf, sampleData(), DefaultOptions()); err != nil {
		t.Fatalf("WriteHTML() error = %v", err)
	}

	path := filepath.Join(t.TempDir(), "graph.html")
	if err := WriteFile(path, sampleData(), DefaultOptions()); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != buf.String() {
		t.Error("WriteFile() and WriteHTML() output differ")
	}
}

func TestToCytoscapeJSON(t *testing.T) {
	out, err := sampleData().ToCytoscapeJSON()
	if err != nil {
		t.Fatalf("ToCytoscapeJSON() error = %v", err)
	}

	var elements []struct {
		Group string         `json:"group"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal([]byte(out), &elements); err != nil {
		t.Fatalf("output is not a JSON array: %v", err)
	}

	var got []string
	for _, e := range elements {
		got = append(got, e.Group+":"+e.Data["id"].(string))
	}
	want := "nodes:W1 nodes:W2 edges:e0"
	if strings.Join(got, " ") != want {
		t.Errorf("elements = %v, want %s", got, want)
	}
}
