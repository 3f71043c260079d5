package orion

import (
	"io"

	"github.com/fatih/color"
	"github.com/oliverbestmann/tessel/pulse"
)

var reportTitle = color.New(color.FgCyan, color.Bold)
var reportBody = color.New(color.FgWhite)

func printReport(out io.Writer, base *pulse.Base) {
	_, _ = reportTitle.Fprintln(out, "Instance report")
	_, _ = reportBody.Fprintln(out, base.Report())
}
