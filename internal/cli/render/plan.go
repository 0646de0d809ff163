package render

import (
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/catapult/internal/domain/models"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// PlanRenderer renders the projected state of a plan as a table
type PlanRenderer struct {
	out io.Writer
}

var _ Renderer[*usecase.PlanStatus] = (*PlanRenderer)(nil)

// NewPlanRenderer creates a new plan renderer
func NewPlanRenderer(out io.Writer) *PlanRenderer {
	return &PlanRenderer{out: out}
}

// Render prints the signer summary followed by one row per step
func (r *PlanRenderer) Render(status *usecase.PlanStatus) error {
	RenderSignerReport(r.out, status.Report)
	fmt.Fprintln(r.out)

	if len(status.Steps) == 0 {
		fmt.Fprintln(r.out, "No matching steps")
		return nil
	}

	headerStyle.Fprintf(r.out, "Plan %s (%d steps)\n", status.Plan.Name, len(status.Plan.Steps))

	checked := false
	for _, row := range status.Steps {
		if row.HasCode != nil {
			checked = true
			break
		}
	}

	t := newTable()
	t.SetOutputMirror(r.out)
	header := table.Row{"SLOT", "STEP", "KIND", "ADDRESS", "STATE"}
	if checked {
		header = append(header, "CODE")
	}
	t.AppendHeader(header)

	for _, row := range status.Steps {
		address := addressStyle.Sprint(row.Predicted.Hex())
		if row.Step.Kind == models.StepCall {
			address = presumedStyle.Sprintf("→ %s", row.Step.Target)
		}
		line := table.Row{
			row.Step.Slot,
			row.Step.Name,
			titleCase.String(string(row.Step.Kind)),
			address,
			stateStyle(row.State),
		}
		if checked {
			line = append(line, codeCell(row.HasCode))
		}
		t.AppendRow(line)
	}
	t.Render()

	pending := 0
	for _, row := range status.Steps {
		if row.State == models.StepPending {
			pending++
		}
	}
	fmt.Fprintln(r.out)
	if pending == 0 {
		fmt.Fprintln(r.out, FormatSuccess("Nothing left to deploy"))
	} else {
		fmt.Fprintf(r.out, "%d step(s) pending from nonce %d\n", pending, status.Report.Nonce)
	}
	return nil
}

// RenderSignerReport prints the startup summary of the signer account
func RenderSignerReport(out io.Writer, report *usecase.SignerReport) {
	if report == nil {
		return
	}
	fmt.Fprintf(out, "%s %d\n", labelStyle.Sprint("Chain:  "), report.ChainID)
	fmt.Fprintf(out, "%s %s\n", labelStyle.Sprint("Signer: "), report.Signer.Hex())
	fmt.Fprintf(out, "%s %s ETH\n", labelStyle.Sprint("Balance:"), usecase.FormatEther(report.Balance))
	fmt.Fprintf(out, "%s %d\n", labelStyle.Sprint("Nonce:  "), report.Nonce)
}

func stateStyle(state models.StepState) string {
	switch state {
	case models.StepConfirmed:
		return confirmedStyle.Sprint(state)
	case models.StepPresumed:
		return presumedStyle.Sprint(state)
	case models.StepFaulted:
		return faultedStyle.Sprint(state)
	default:
		return pendingStyle.Sprint(state)
	}
}

func codeCell(hasCode *bool) string {
	switch {
	case hasCode == nil:
		return ""
	case *hasCode:
		return confirmedStyle.Sprint("yes")
	default:
		return faultedStyle.Sprint("no")
	}
}
