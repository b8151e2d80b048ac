package cli

import "fmt"

// Single-record outputs render as a FIELD/VALUE table in --format text.

type versionInfo struct {
	Version string `json:"version"`
	Go      string `json:"go"`
}

type versionOutput struct {
	Data versionInfo `json:"data"`
}

func (o versionOutput) Header() []any { return fieldHeader() }

func (o versionOutput) Rows() [][]any {
	return fieldRows("version", o.Data.Version, "go", o.Data.Go)
}

type snapshotResult struct {
	Out     string `json:"out"`
	Source  string `json:"source"`
	Groups  int    `json:"groups"`
	Overall int    `json:"overall"`
}

type snapshotOutput struct {
	Data snapshotResult `json:"data"`
}

func (o snapshotOutput) Header() []any { return fieldHeader() }

func (o snapshotOutput) Rows() [][]any {
	d := o.Data
	return fieldRows("out", d.Out, "source", d.Source, "groups", d.Groups, "overall", fmt.Sprintf("%d%%", d.Overall))
}

type serveInfo struct {
	Addr      string `json:"addr"`
	URL       string `json:"url"`
	Source    string `json:"source"`
	Groups    int    `json:"groups"`
	Overall   int    `json:"overall"`
	StartedAt string `json:"startedAt"`
}

type serveOutput struct {
	Data serveInfo `json:"data"`
}

func (o serveOutput) Header() []any { return fieldHeader() }

func (o serveOutput) Rows() [][]any {
	d := o.Data
	return fieldRows("addr", d.Addr, "url", d.URL, "source", d.Source, "groups", d.Groups,
		"overall", fmt.Sprintf("%d%%", d.Overall), "startedAt", d.StartedAt)
}

func fieldHeader() []any { return []any{"FIELD", "VALUE"} }

// fieldRows pairs up name, value arguments.
func fieldRows(kv ...any) [][]any {
	rows := make([][]any, 0, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		rows = append(rows, []any{kv[i], kv[i+1]})
	}
	return rows
}
