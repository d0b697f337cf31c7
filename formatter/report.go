package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	tt "github.com/gnoverse/ccheck/internal/types"
)

var (
	errorStyle   = color.New(color.FgRed, color.Bold)
	warningStyle = color.New(color.FgHiYellow, color.Bold)
	okStyle      = color.New(color.FgGreen, color.Bold)
	methodStyle  = color.New(color.FgYellow, color.Bold)
	fileStyle    = color.New(color.FgCyan, color.Bold)
	lineStyle    = color.New(color.FgHiBlue, color.Bold)
	messageStyle = color.New(color.FgRed, color.Bold)
	noStyle      = color.New(color.FgWhite)
)

var outcomeStyles = map[string]*color.Color{
	"true":        okStyle,
	"false":       errorStyle,
	"unproven":    warningStyle,
	"unreachable": lineStyle,
}

const reportTemplate = `{{header .Severity .Method .Filename}}
{{- range .Lines}}
{{obligation .}}
{{- end}}
{{- if .Err}}
{{failure .Err}}
{{- end}}

`

var reportTmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"header":     header,
	"obligation": obligation,
	"failure":    failure,
}).Parse(reportTemplate))

type reportData struct {
	Severity string
	Method   string
	Filename string
	Lines    []string
	Err      string
}

// Severity classifies a method report: "error" when an obligation is
// false or the method could not be analyzed, "warning" when something is
// unproven or the precondition is unsatisfiable, "ok" otherwise.
func Severity(r tt.MethodReport) string {
	if r.Failed() {
		return "error"
	}
	if r.Unsatisfiable || r.Counts()["unproven"] > 0 {
		return "warning"
	}
	return "ok"
}

// GenerateFormattedReport renders method reports for a terminal.
func GenerateFormattedReport(reports []tt.MethodReport) string {
	var builder strings.Builder
	for _, r := range reports {
		builder.WriteString(buildReport(r))
	}
	return builder.String()
}

func buildReport(r tt.MethodReport) string {
	data := reportData{
		Severity: Severity(r),
		Method:   r.Method,
		Filename: r.Filename,
		Lines:    r.Lines,
		Err:      r.Err,
	}

	var buf bytes.Buffer
	if err := reportTmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting report: %v", err)
	}
	return buf.String()
}

func header(severity, method, filename string) string {
	var s string
	switch severity {
	case "error":
		s = errorStyle.Sprint("error: ")
	case "warning":
		s = warningStyle.Sprint("warning: ")
	default:
		s = okStyle.Sprint("ok: ")
	}
	s += methodStyle.Sprint(method)
	if filename != "" {
		s += "\n" + lineStyle.Sprint(" --> ") + fileStyle.Sprint(filename)
	}
	return s
}

// obligation colors the outcome at the end of a report line.
func obligation(line string) string {
	prefix := lineStyle.Sprint("  | ")
	i := strings.LastIndex(line, ": ")
	if i < 0 {
		return prefix + warningStyle.Sprint(line)
	}
	outcome := line[i+2:]
	style, ok := outcomeStyles[outcome]
	if !ok {
		style = noStyle
	}
	return prefix + line[:i+2] + style.Sprint(outcome)
}

func failure(err string) string {
	return lineStyle.Sprint("  = ") + messageStyle.Sprint(err)
}
