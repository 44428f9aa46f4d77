// Package views renders the HTML pages of the control tower with templ
// components.
package views

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/controltower/internal/core"
)

// UploadForm is one tracker upload form on the dashboard.
type UploadForm struct {
	Label  string
	Action string // POST endpoint
}

// DashboardData is what the dashboard page shows.
type DashboardData struct {
	User     string // signed-in email, "" in legacy mode
	Customer string // active customer view, "" for all customers
	Forms    []UploadForm
	Runs     []core.IngestRun
}

// Dashboard renders the upload forms and recent ingestion runs.
func Dashboard(d DashboardData) templ.Component {
	return Layout("Control Tower", templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder

		b.WriteString(`<header class="bar"><h1>GCC Control Tower</h1>`)
		if d.User != "" {
			fmt.Fprintf(&b, `<span class="user">%s</span>`, templ.EscapeString(d.User))
		}
		b.WriteString(`</header>`)

		if d.Customer != "" {
			fmt.Fprintf(&b, `<p class="view">Customer view: <strong>%s</strong></p>`, templ.EscapeString(d.Customer))
		} else {
			b.WriteString(`<p class="view">Customer view: all customers</p>`)
		}

		b.WriteString(`<section class="uploads">`)
		for _, f := range d.Forms {
			action := f.Action
			if d.Customer != "" {
				action += "?customerName=" + url.QueryEscape(d.Customer)
			}
			fmt.Fprintf(&b, `<form method="post" enctype="multipart/form-data" action="%s">`+
				`<h2>%s</h2><input type="file" name="file" accept=".xlsx" required>`+
				`<button type="submit">Replace</button></form>`,
				templ.EscapeString(action), templ.EscapeString(f.Label))
		}
		b.WriteString(`</section>`)

		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
		return RunsTable(d.Runs).Render(ctx, w)
	}))
}

// RunsTable renders ingestion runs, newest first.
func RunsTable(runs []core.IngestRun) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<section class="history"><h2>Recent uploads</h2>`)
		if len(runs) == 0 {
			b.WriteString(`<p class="empty">No uploads yet.</p></section>`)
			_, err := io.WriteString(w, b.String())
			return err
		}

		b.WriteString(`<table><thead><tr><th>When</th><th>Tracker</th><th>File</th><th>Scope</th>` +
			`<th>Outcome</th><th>Deleted</th><th>Inserted</th><th>By</th><th>Message</th></tr></thead><tbody>`)
		for _, run := range runs {
			fmt.Fprintf(&b, `<tr class="%s"><td>%s</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td>`+
				`<td>%d</td><td>%d</td><td>%s</td><td>%s</td></tr>`,
				templ.EscapeString(string(run.Outcome)),
				run.CreatedAt.UTC().Format("2006-01-02 15:04"),
				templ.EscapeString(run.Tracker),
				templ.EscapeString(run.FileName),
				templ.EscapeString(run.Scope),
				templ.EscapeString(string(run.Outcome)),
				run.Deleted,
				run.Inserted,
				templ.EscapeString(run.UserEmail),
				templ.EscapeString(run.Message),
			)
		}
		b.WriteString(`</tbody></table></section>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

// Layout wraps body in the page skeleton.
func Layout(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		if _, err := fmt.Fprintf(w, `<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`+
			`<meta name="viewport" content="width=device-width, initial-scale=1"><title>%s</title>`+
			`<style>%s</style></head><body><main>`, templ.EscapeString(title), styles); err != nil {
			return err
		}
		if err := body.Render(ctx, w); err != nil {
			return err
		}
		_, err := io.WriteString(w, `</main></body></html>`)
		return err
	})
}

const styles = `body{font-family:system-ui,sans-serif;margin:0;background:#f6f7f9;color:#1f2328}` +
	`main{max-width:1100px;margin:0 auto;padding:24px}` +
	`.bar{display:flex;justify-content:space-between;align-items:center}` +
	`.uploads{display:grid;grid-template-columns:repeat(auto-fit,minmax(240px,1fr));gap:16px}` +
	`form{background:#fff;border:1px solid #d0d7de;border-radius:6px;padding:12px}` +
	`table{width:100%;border-collapse:collapse;background:#fff}` +
	`th,td{border-bottom:1px solid #d0d7de;padding:6px 8px;text-align:left;font-size:14px}` +
	`tr.rejected td{color:#9a6700}tr.failed td{color:#cf222e}`
