package viz

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"os"
)

// CytoscapeURL is the Cytoscape.js build loaded by the page.
const CytoscapeURL = "https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"

// ValidLayouts lists the accepted layout names.
var ValidLayouts = []string{"force", "circle", "grid", "concentric"}

// cytoscapeLayouts maps layout names to Cytoscape.js layout algorithms.
var cytoscapeLayouts = map[string]string{
	"":           "cose",
	"force":      "cose",
	"circle":     "circle",
	"grid":       "grid",
	"concentric": "concentric",
}

var pageTemplate = template.Must(template.New("page").Parse(pageHTML))

// HTMLOptions configures the generated page.
type HTMLOptions struct {
	Layout string // one of ValidLayouts; empty means "force"
}

// DefaultOptions returns the force-directed layout.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force"}
}

type pageData struct {
	Title        string
	CytoscapeURL string
	Elements     template.JS
	Layout       string
	Nodes, Edges int
	MaxSize      int
	MaxWeight    float64
}

// GenerateHTML renders g as a standalone HTML page.
func GenerateHTML(g *GraphData, opts HTMLOptions) (string, error) {
	if g == nil {
		return "", errors.New("graph cannot be nil")
	}
	layout, ok := cytoscapeLayouts[opts.Layout]
	if !ok {
		return "", fmt.Errorf("invalid layout %q: must be force, circle, grid or concentric", opts.Layout)
	}

	data := pageData{
		Title: g.Title,
		Nodes: len(g.Nodes),
		Edges: len(g.Edges),
	}
	if data.Title == "" {
		data.Title = "Citation graph"
	}

	name := "empty"
	if !g.IsEmpty() {
		elements, err := g.ToCytoscapeJSON()
		if err != nil {
			return "", err
		}
		name = "graph"
		data.CytoscapeURL = CytoscapeURL
		data.Elements = template.JS(elements)
		data.Layout = layout
		data.MaxSize, data.MaxWeight = bounds(g)
	}

	var buf bytes.Buffer
	if err := pageTemplate.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// WriteHTML writes the page for g to w.
func WriteHTML(w io.Writer, g *GraphData, opts HTMLOptions) error {
	page, err := GenerateHTML(g, opts)
	if err != nil {
		return err
	}
	_, err = io.WriteString(w, page)
	return err
}

// WriteFile writes the page for g to path. Nothing is written if the page
// cannot be generated.
func WriteFile(path string, g *GraphData, opts HTMLOptions) error {
	page, err := GenerateHTML(g, opts)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, []byte(page), 0644); err != nil {
		return fmt.Errorf("writing output file: %w", err)
	}
	return nil
}

// bounds returns the largest node size and edge weight, each at least 1, for
// the style mappings.
func bounds(g *GraphData) (size int, weight float64) {
	size, weight = 1, 1
	for _, n := range g.Nodes {
		size = max(size, n.Size)
	}
	for _, e := range g.Edges {
		weight = max(weight, e.Weight)
	}
	return size, weight
}

const pageHTML = `{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}}</title>
  <style>
    html, body { margin: 0; height: 100%; font: 13px/1.4 system-ui, sans-serif; color: #222; }
    header { display: flex; gap: 16px; align-items: center; padding: 8px 14px; background: #23313f; color: #eef; }
    header h1 { font-size: 15px; margin: 0; font-weight: 600; }
    header .counts { opacity: 0.7; }
    header input { margin-left: auto; padding: 3px 8px; border: 0; border-radius: 3px; width: 220px; }
    main { display: flex; height: calc(100% - 38px); }
    #graph { flex: 1; background: #fcfcfa; }
    aside { width: 300px; overflow-y: auto; padding: 12px; border-left: 1px solid #ddd; background: #fff; }
    aside .kind { color: #889; font-size: 11px; letter-spacing: 0.05em; }
    aside h2 { font-size: 14px; margin: 4px 0 10px; }
    aside dl { margin: 0; }
    aside dt { color: #667; margin-top: 6px; }
    aside dd { margin: 0; word-break: break-word; }
    .hint { color: #889; }
    .empty { display: flex; height: calc(100% - 38px); align-items: center; justify-content: center; color: #667; }
  </style>
</head>
<body>
  <header>
    <h1>{{.Title}}</h1>
    <span class="counts">{{.Nodes}} nodes, {{.Edges}} edges</span>
{{end}}

{{define "empty"}}{{template "head" .}}  </header>
  <div class="empty">
    <div>
      <h2>No graph data</h2>
      <p>The input has no works with an id.</p>
    </div>
  </div>
</body>
</html>
{{end}}

{{define "graph"}}{{template "head" .}}    <input id="search" type="search" placeholder="Find by label or id">
  </header>
  <main>
    <div id="graph"></div>
    <aside id="info"><p class="hint">Click a node or an edge to see its details.</p></aside>
  </main>
  <script src="{{.CytoscapeURL}}"></script>
  <script>
  (function() {
    const elements = {{.Elements}};
    const layout = "{{.Layout}}";
    const maxSize = {{.MaxSize}};
    const maxWeight = {{.MaxWeight}};
    const nodeSize = 'mapData(size, 0, ' + maxSize + ', 16, 56)';

    const cy = cytoscape({
      container: document.getElementById('graph'),
      elements: elements,
      layout: { name: layout, animate: false, nodeRepulsion: 9000, idealEdgeLength: 90 },
      style: [
        { selector: 'node', style: {
            'label': 'data(label)', 'font-size': 9, 'color': '#334',
            'text-valign': 'bottom', 'text-margin-y': 4,
            'width': nodeSize, 'height': nodeSize } },
        { selector: 'node[kind="work"]', style: { 'background-color': '#3c7dbf' } },
        { selector: 'node[kind="author"]', style: { 'background-color': '#c8692c', 'shape': 'round-rectangle' } },
        { selector: 'edge', style: {
            'width': 'mapData(weight, 0, ' + maxWeight + ', 0.8, 5)',
            'line-color': '#a9b3bc', 'target-arrow-color': '#a9b3bc',
            'target-arrow-shape': 'vee', 'curve-style': 'bezier', 'arrow-scale': 0.8 } },
        { selector: 'edge[source = target]', style: { 'loop-direction': '0deg', 'loop-sweep': '50deg' } },
        { selector: '.faded', style: { 'opacity': 0.15 } },
        { selector: 'node.focus', style: { 'border-width': 3, 'border-color': '#e0412f' } },
        { selector: 'node.match', style: { 'border-width': 3, 'border-color': '#f2b705' } }
      ]
    });

    const info = document.getElementById('info');

    function text(s) {
      const span = document.createElement('span');
      span.textContent = s == null ? '' : String(s);
      return span.innerHTML;
    }

    function describe(kind, title, rows) {
      let html = '<div class="kind">' + text(kind) + '</div><h2>' + text(title) + '</h2><dl>';
      rows.forEach(function(r) {
        html += '<dt>' + text(r[0]) + '</dt><dd>' + text(r[1]) + '</dd>';
      });
      info.innerHTML = html + '</dl>';
    }

    function focus(eles) {
      cy.elements().removeClass('faded focus');
      if (!eles) return;
      cy.elements().not(eles).addClass('faded');
    }

    cy.on('tap', 'node', function(evt) {
      const n = evt.target, d = n.data();
      const rows = [['id', d.id], [d.kind === 'author' ? 'works' : 'cited by', d.size]];
      (d.details || []).forEach(function(x) { rows.push([x.key, x.value]); });
      describe(d.kind, d.label || d.id, rows);
      focus(n.closedNeighborhood());
      n.addClass('focus');
    });

    cy.on('tap', 'edge', function(evt) {
      const e = evt.target, d = e.data();
      const rows = [['from', e.source().data('label') || d.source], ['to', e.target().data('label') || d.target]];
      if (d.summary) rows.push(['', d.summary]);
      describe('edge', d.source + ' → ' + d.target, rows);
      focus(e.connectedNodes().union(e));
    });

    cy.on('tap', function(evt) {
      if (evt.target === cy) {
        focus(null);
        info.innerHTML = '<p class="hint">Click a node or an edge to see its details.</p>';
      }
    });

    document.getElementById('search').addEventListener('input', function(evt) {
      const q = evt.target.value.trim().toLowerCase();
      cy.nodes().removeClass('match');
      if (!q) return;
      const hits = cy.nodes().filter(function(n) {
        return String(n.data('label')).toLowerCase().includes(q) || n.id().toLowerCase().includes(q);
      });
      hits.addClass('match');
      if (hits.length > 0) cy.fit(hits, 80);
    });
  })();
  </script>
</body>
</html>
{{end}}`
