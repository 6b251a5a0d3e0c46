package report

import (
	"bytes"
	"io"
	"os"
	"text/template"
	"time"

	"github.com/rustyeddy/clo/journal"
)

// RunOrg is the data behind an org-mode run summary.
type RunOrg struct {
	Run      journal.RunRecord
	Tranches []TrancheTotal
	Notes    []string
}

var orgFuncs = template.FuncMap{
	"money": money,
	"pct":   pct,
	"day":   day,
	"irr":   irr,
	"orTime": func(t time.Time) time.Time {
		if t.IsZero() {
			return time.Now()
		}
		return t
	},
}

var orgTemplate = template.Must(template.New("run").Funcs(orgFuncs).Parse(RunOrgTemplate))

// Render writes the org summary to w.
func (v RunOrg) Render(w io.Writer) error {
	return orgTemplate.Execute(w, v)
}

// WriteFile renders the summary to path.
func (v RunOrg) WriteFile(path string) error {
	buf := new(bytes.Buffer)
	if err := v.Render(buf); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

const RunOrgTemplate = `
* CLO RUN: {{.Run.Deal}} {{if .Run.SweepID}}(sweep {{.Run.SweepID}}){{end}}
:PROPERTIES:
:RUN_ID:      {{.Run.RunID}}
:DEAL:        {{.Run.Deal}}
:AS_OF:       {{day .Run.AsOf}}
:FREQUENCY:   {{.Run.Frequency}}
:CDR:         {{pct .Run.CDR}}
:CPR:         {{pct .Run.CPR}}
:RECOVERY:    {{pct .Run.RecoveryRate}}
:WAS:         {{pct .Run.WAS}}
:CALL_DATE:   {{day .Run.CallDate}}
:PRICE:       {{pct .Run.Price}}
:LIQUIDATION: {{.Run.Liquidation}}
:TERMINATION: {{if .Run.Error}}error{{else}}{{.Run.Termination}}{{end}}
:IRR:         {{irr .Run}}
:CREATED:     [{{(orTime .Run.Created).Format "2006-01-02 Mon 15:04"}}]
:END:
{{- if .Run.Error }}

** Error
{{.Run.Error}}
{{- else }}

** Outcome
- Terminated:  *{{.Run.Termination}}* in period {{.Run.TerminationPeriod}} ({{day .Run.TerminationDate}})
- Equity IRR:  *{{irr .Run}}*
{{- if .Run.IRRError }}
- IRR note:    {{.Run.IRRError}}
{{- end }}
{{- end }}
{{- if .Tranches }}

** Tranches
| Rank | Tranche | Notional | Interest | Principal | Residual | Closing |
|------+---------+----------+----------+-----------+----------+---------|
{{- range .Tranches }}
| {{.Rank}} | {{.Name}} | {{money .Notional}} | {{money .Interest}} | {{money .Principal}} | {{money .Residual}} | {{money .Closing}} |
{{- end }}
{{- end }}
{{- if .Notes }}

** Notes
{{- range .Notes }}
- {{.}}
{{- end }}
{{- end }}
`
