package viz

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Both pages are parsed at init time to fail fast on template errors.
var (
	pageTemplate  = template.Must(template.New("page").Parse(pageHTML))
	emptyTemplate = template.Must(template.New("empty").Parse(emptyHTML))
)

// HTMLOptions configures HTML generation.
type HTMLOptions struct {
	Layout string // "force", "circle", or "grid"
}

// DefaultOptions returns default HTML generation options.
func DefaultOptions() HTMLOptions {
	return HTMLOptions{Layout: "force"}
}

// ValidLayouts lists the supported layout algorithm names.
var ValidLayouts = []string{"force", "circle", "grid"}

// Topic colours, cycled by topic index.
var palette = []string{
	"#4A90D9", "#E8923A", "#27AE60", "#9B59B6", "#E74C3C",
	"#1ABC9C", "#F1C40F", "#34495E", "#D35400", "#16A085",
}

// outsideColor fills keywords that belong to no topic.
const outsideColor = "#BDC3C7"

// legendEntry is one topic in the sidebar.
type legendEntry struct {
	Index    int
	Color    string
	Keywords string
	Size     int
}

type pageData struct {
	Year      int
	Elements  template.JS
	Layout    string
	MaxWeight float64
	Palette   []string
	Outside   string
	Legend    []legendEntry
	Seeds     []string
	Keywords  int
	EdgeCount int
}

// GenerateHTML generates a self-contained HTML file for the graph visualization.
func GenerateHTML(graph *GraphData, opts HTMLOptions) (string, error) {
	if graph == nil {
		return "", fmt.Errorf("graph cannot be nil")
	}

	layout, err := cytoscapeLayout(opts.Layout)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if graph.IsEmpty() {
		if err := emptyTemplate.Execute(&buf, graph.Year); err != nil {
			return "", fmt.Errorf("rendering empty page: %w", err)
		}
		return buf.String(), nil
	}

	elements, err := graph.ToCytoscapeJSON()
	if err != nil {
		return "", err
	}

	data := pageData{
		Year:      graph.Year,
		Elements:  template.JS(elements),
		Layout:    layout,
		MaxWeight: graph.maxWeight(),
		Palette:   palette,
		Outside:   outsideColor,
		Legend:    legend(graph),
		Seeds:     graph.seeds(),
		Keywords:  len(graph.Nodes),
		EdgeCount: len(graph.Edges),
	}
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering page: %w", err)
	}
	return buf.String(), nil
}

// cytoscapeLayout maps a layout name onto the Cytoscape.js algorithm.
func cytoscapeLayout(layout string) (string, error) {
	switch layout {
	case "", "force":
		return "cose", nil
	case "circle", "grid":
		return layout, nil
	default:
		return "", fmt.Errorf("invalid layout %q: must be force, circle, or grid", layout)
	}
}

func legend(g *GraphData) []legendEntry {
	entries := make([]legendEntry, len(g.Topics))
	for i, t := range g.Topics {
		entries[i] = legendEntry{
			Index:    i,
			Color:    palette[i%len(palette)],
			Keywords: strings.Join(t, ", "),
			Size:     t.Len(),
		}
	}
	return entries
}

func (g *GraphData) seeds() []string {
	var seeds []string
	for _, n := range g.Nodes {
		if n.Seed {
			seeds = append(seeds, n.ID)
		}
	}
	return seeds
}

const emptyHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Keyword Graph {{.}} - Empty</title>
  <style>
    body { font-family: system-ui, sans-serif; display: grid; place-items: center; height: 100vh; margin: 0; background: #fafafa; color: #555; }
    code { background: #eee; padding: 1px 5px; border-radius: 3px; }
  </style>
</head>
<body>
  <main>
    <h2>No keywords for {{.}}</h2>
    <p>The record cache has no co-citations for this year. Reload it with <code>tt rebuild</code>.</p>
  </main>
</body>
</html>`

const pageHTML = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <title>Keyword Graph {{.Year}}</title>
  <script src="https://unpkg.com/cytoscape@3/dist/cytoscape.min.js"></script>
  <style>
    body { font-family: system-ui, sans-serif; margin: 0; display: flex; height: 100vh; color: #2c3e50; }
    aside { width: 280px; overflow-y: auto; padding: 14px; border-right: 1px solid #ddd; background: #fafafa; font-size: 13px; }
    aside h1 { font-size: 17px; margin: 0 0 4px; }
    aside h2 { font-size: 13px; text-transform: uppercase; color: #7f8c8d; margin: 16px 0 6px; }
    .stats { color: #7f8c8d; }
    .topic { display: flex; gap: 8px; padding: 5px; border-radius: 4px; cursor: pointer; }
    .topic:hover, .topic.active { background: #ecf0f1; }
    .swatch { flex: none; width: 12px; height: 12px; border-radius: 50%; margin-top: 2px; }
    #details:empty { display: none; }
    #details { margin-top: 16px; padding: 8px; background: white; border: 1px solid #ddd; border-radius: 4px; }
    #cy { flex: 1; }
  </style>
</head>
<body>
  <aside>
    <h1>Keywords {{.Year}}</h1>
    <div class="stats">{{.Keywords}} keywords, {{.EdgeCount}} co-citation edges</div>
    {{if .Seeds}}<h2>Seeds</h2>
    <div>{{range $i, $s := .Seeds}}{{if $i}}, {{end}}{{$s}}{{end}}</div>{{end}}
    <h2>Topics ({{len .Legend}})</h2>
    {{range .Legend}}<div class="topic" data-topic="{{.Index}}">
      <span class="swatch" style="background: {{.Color}}"></span>
      <span>#{{.Index}} ({{.Size}}): {{.Keywords}}</span>
    </div>
    {{else}}<div class="stats">No topics</div>{{end}}
    <div id="details"></div>
  </aside>
  <div id="cy"></div>
  <script>
    (function() {
      const palette = {{.Palette}};
      const outside = {{.Outside}};
      const maxWeight = {{.MaxWeight}};

      const cy = cytoscape({
        container: document.getElementById('cy'),
        elements: {{.Elements}},
        layout: { name: {{.Layout}}, animate: false, nodeRepulsion: 8000, idealEdgeLength: 90 },
        style: [
          { selector: 'node', style: {
              'background-color': function(n) { const t = n.data('topic'); return t < 0 ? outside : palette[t % palette.length]; },
              'label': 'data(label)',
              'font-size': '10px',
              'text-valign': 'bottom',
              'width': 'mapData(degree, 0, 20, 18, 48)',
              'height': 'mapData(degree, 0, 20, 18, 48)' } },
          { selector: 'node[?seed]', style: { 'border-width': 4, 'border-color': '#2c3e50' } },
          { selector: 'edge', style: {
              'line-color': '#95a5a6',
              'width': 'mapData(weight, 0, ' + maxWeight + ', 1, 6)' } },
          { selector: '.faded', style: { 'opacity': 0.15 } }
        ]
      });

      const details = document.getElementById('details');
      const topicRows = document.querySelectorAll('.topic');

      function text(s) {
        const el = document.createElement('div');
        el.textContent = s;
        return el;
      }

      function focus(eles) {
        cy.elements().addClass('faded');
        eles.removeClass('faded');
      }

      function reset() {
        cy.elements().removeClass('faded');
        topicRows.forEach(function(r) { r.classList.remove('active'); });
        details.replaceChildren();
      }

      topicRows.forEach(function(row) {
        row.addEventListener('click', function() {
          reset();
          row.classList.add('active');
          const t = Number(row.dataset.topic);
          const members = cy.nodes().filter(function(n) { return n.data('topics').indexOf(t) >= 0; });
          focus(members.union(members.edgesWith(members)));
        });
      });

      cy.on('tap', 'node', function(evt) {
        reset();
        const d = evt.target.data();
        focus(evt.target.closedNeighborhood());
        details.append(text(d.label), text('degree ' + d.degree + (d.seed ? ', seed' : '')));
        if (d.topics.length) {
          details.append(text('topics ' + d.topics.map(function(t) { return '#' + t; }).join(', ')));
        }
      });

      cy.on('tap', 'edge', function(evt) {
        reset();
        const d = evt.target.data();
        focus(evt.target.union(evt.target.connectedNodes()));
        details.append(text(d.source + ' - ' + d.target), text('weight ' + d.weight.toFixed(3)));
      });

      cy.on('tap', function(evt) {
        if (evt.target === cy) reset();
      });
    })();
  </script>
</body>
</html>`
