package report

import (
	"html/template"
	"io"
	"time"
)

type page struct {
	Title         string
	Generated     string
	Total         int
	Passed        int
	Failed        int
	PassedPercent float64
	DurationSec   float64
	Tests         []pageTest
}

type pageTest struct {
	Name        string
	Unit        string
	Tags        []string
	StatusClass string
	DurationMs  int64
	Error       string
	Message     string
}

func newPage(title string, records []TestRecord, now time.Time) page {
	p := page{
		Title:     title,
		Generated: now.Format("2006-01-02 15:04:05"),
		Total:     len(records),
		Tests:     make([]pageTest, 0, len(records)),
	}

	var first, last time.Time
	for _, rec := range records {
		if rec.Status == StatusPassed {
			p.Passed++
		} else {
			p.Failed++
		}
		if first.IsZero() || rec.Start.Before(first) {
			first = rec.Start
		}
		if rec.Stop.After(last) {
			last = rec.Stop
		}

		p.Tests = append(p.Tests, pageTest{
			Name:        rec.Name,
			Unit:        rec.Unit,
			Tags:        rec.Tags,
			StatusClass: string(rec.Status),
			DurationMs:  rec.Duration().Milliseconds(),
			Error:       rec.Error,
			Message:     rec.Message,
		})
	}

	if p.Total > 0 {
		p.PassedPercent = float64(p.Passed) / float64(p.Total) * 100
		p.DurationSec = last.Sub(first).Seconds()
	}
	return p
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>{{.Title}}</title>
    <style>
        :root {
            --bg-primary: #1a1a2e;
            --bg-secondary: #16213e;
            --text-primary: #eee;
            --text-secondary: #aaa;
            --success: #00d26a;
            --error: #ff4757;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg-primary);
            color: var(--text-primary);
            margin: 0;
            padding: 2rem;
        }
        .container { max-width: 1100px; margin: 0 auto; }
        .meta { color: var(--text-secondary); margin-bottom: 2rem; }
        .summary { display: grid; grid-template-columns: repeat(auto-fit, minmax(140px, 1fr)); gap: 1rem; margin-bottom: 2rem; }
        .card { background: var(--bg-secondary); padding: 1rem; border-radius: 8px; text-align: center; }
        .card .value { font-size: 1.5rem; font-weight: bold; }
        .card.passed .value, td.passed { color: var(--success); }
        .card.failed .value, td.failed { color: var(--error); }
        table { width: 100%; border-collapse: collapse; background: var(--bg-secondary); border-radius: 8px; overflow: hidden; }
        th, td { padding: 0.75rem 1rem; text-align: left; vertical-align: top; }
        th { background: #0f3460; }
        tr:not(:last-child) { border-bottom: 1px solid #2d3748; }
        .tag { font-size: 0.8rem; color: var(--text-secondary); margin-right: 0.4rem; }
        pre { white-space: pre-wrap; margin: 0; font-size: 0.85rem; }
    </style>
</head>
<body>
    <div class="container">
        <h1>{{.Title}}</h1>
        <div class="meta">Generated {{.Generated}}</div>
        <div class="summary">
            <div class="card"><div class="value">{{.Total}}</div><div>Total</div></div>
            <div class="card passed"><div class="value">{{.Passed}}</div><div>Passed</div></div>
            <div class="card failed"><div class="value">{{.Failed}}</div><div>Failed</div></div>
            <div class="card"><div class="value">{{printf "%.1f" .PassedPercent}}%</div><div>Pass rate</div></div>
            <div class="card"><div class="value">{{printf "%.2f" .DurationSec}}s</div><div>Duration</div></div>
        </div>
        {{if .Tests}}
        <table>
            <thead>
                <tr><th>Test</th><th>Unit</th><th>Status</th><th>Duration (ms)</th><th>Details</th></tr>
            </thead>
            <tbody>
                {{range .Tests}}
                <tr>
                    <td>{{.Name}}{{if .Tags}}<div>{{range .Tags}}<span class="tag">#{{.}}</span>{{end}}</div>{{end}}</td>
                    <td>{{.Unit}}</td>
                    <td class="{{.StatusClass}}">{{.StatusClass}}</td>
                    <td>{{.DurationMs}}</td>
                    <td>{{if .Error}}<pre>{{.Error}}</pre>{{else}}{{.Message}}{{end}}</td>
                </tr>
                {{end}}
            </tbody>
        </table>
        {{else}}
        <p class="meta">No results were recorded.</p>
        {{end}}
    </div>
</body>
</html>`))

func renderHTML(w io.Writer, p page) error {
	return reportTemplate.Execute(w, p)
}
