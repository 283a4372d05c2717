// Package renderer turns book data into markdown reports.
//
// Each report has a view-model type built from engine snapshots, and a main
// template assembled from partials. Rendering never computes: the view
// models carry pre-formatted strings so the templates stay dumb.
package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"
)

//go:embed templates/*.md
var templates embed.FS

// RenderLedger renders an account ledger to a markdown string.
func RenderLedger(l *Ledger) string {
	partials := map[string]string{
		"ledger_title": "templates/ledger_title.md",
		"ledger_rows":  "templates/ledger_rows.md",
	}
	return renderTemplate("ledger", "templates/ledger.md", partials, l)
}

// RenderChart renders the chart of accounts to a markdown string.
func RenderChart(c *Chart) string {
	return renderTemplate("chart", "templates/chart.md", nil, c)
}

// RenderSplits renders a list of query results to a markdown string.
func RenderSplits(s *SplitList) string {
	return renderTemplate("splits", "templates/splits.md", nil, s)
}

// RenderInvoice renders an invoice document to a markdown string.
func RenderInvoice(doc *InvoiceDoc) string {
	partials := map[string]string{
		"invoice_title":  "templates/invoice_title.md",
		"invoice_lines":  "templates/invoice_lines.md",
		"invoice_totals": "templates/invoice_totals.md",
	}
	return renderTemplate("invoice", "templates/invoice.md", partials, doc)
}

// renderTemplate is a generic utility to render a main template that depends
// on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		content, err := fs.ReadFile(templates, file)
		if err != nil {
			return fmt.Sprintf("error reading partial template %q: %v", file, err)
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
