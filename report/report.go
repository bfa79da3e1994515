// Package report renders the static status page and serves the JSON
// artifacts over HTTP.
package report

import (
	"html/template"
	"os"
	"path/filepath"

	"github.com/use-agent/pricetrack/history"
	"github.com/use-agent/pricetrack/models"
)

// reportDays is how much of the series the page shows, newest last.
const reportDays = 30

var pageTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"deref": func(p *float64) float64 {
		if p == nil {
			return 0
		}
		return *p
	},
	"stock": func(p *bool) string {
		switch {
		case p == nil:
			return "unknown"
		case *p:
			return "in stock"
		default:
			return "out of stock"
		}
	},
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.ProductID}} price report</title>
<style>
body { font-family: system-ui, sans-serif; max-width: 48rem; margin: 2rem auto; padding: 0 1rem; color: #222; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #ddd; }
.lowest { background: #e8f6e8; }
.err { color: #a33; }
.muted { color: #888; }
</style>
</head>
<body>
<h1>{{.ProductID}}</h1>
<p class="muted">Last run: {{.TS}}</p>

{{if .Lowest}}
<p>Lowest price: <strong>${{printf "%.2f" (deref .Lowest.Price)}}</strong> at
<a href="{{.Lowest.URL}}">{{.Lowest.Store}}</a></p>
{{else}}
<p class="err">No store produced a plausible price this run.</p>
{{end}}

<h2>Stores</h2>
<table>
<tr><th>Store</th><th>Price</th><th>Stock</th><th>Status</th></tr>
{{range .Stores}}
<tr{{if and $.Lowest (eq .Store $.Lowest.Store)}} class="lowest"{{end}}>
<td><a href="{{.URL}}">{{.Store}}</a></td>
<td>{{with .Price}}${{printf "%.2f" (deref .)}}{{else}}&mdash;{{end}}</td>
<td>{{stock .InStock}}</td>
<td>{{if .Error}}<span class="err">{{.Error}}</span>{{else}}ok{{end}}</td>
</tr>
{{end}}
</table>

{{if .History}}
<h2>Last {{len .History}} days</h2>
<table>
<tr><th>Date</th><th>Lowest</th></tr>
{{range .History}}
<tr><td>{{.Date}}</td>
<td>{{with .LowestPrice}}${{printf "%.2f" (deref .)}}{{else}}&mdash;{{end}}</td></tr>
{{end}}
</table>
{{end}}
</body>
</html>
`))

type pageData struct {
	ProductID string
	TS        string
	Lowest    *models.ExtractionResult
	Stores    []models.ExtractionResult
	History   []history.Entry
}

// Write renders the status page into dir as index.html.
func Write(dir string, snap *models.Snapshot, series history.Series) error {
	tail := series
	if len(tail) > reportDays {
		tail = tail[len(tail)-reportDays:]
	}
	data := pageData{
		ProductID: snap.ProductID,
		TS:        snap.TS,
		Lowest:    snap.Lowest,
		Stores:    snap.Stores,
		History:   tail,
	}

	f, err := os.Create(filepath.Join(dir, "index.html"))
	if err != nil {
		return err
	}
	defer f.Close()
	return pageTmpl.Execute(f, data)
}
