package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/trebuchet-org/catapult/internal/domain/models"
	"github.com/trebuchet-org/catapult/internal/usecase"
)

// DeployRenderer renders the summary of a deployment run
type DeployRenderer struct {
	out io.Writer
}

var _ Renderer[*usecase.OrchestrationResult] = (*DeployRenderer)(nil)

// NewDeployRenderer creates a new deploy renderer
func NewDeployRenderer(out io.Writer) *DeployRenderer {
	return &DeployRenderer{out: out}
}

// Render prints the deployed addresses and, when present, the liquidity audit
func (r *DeployRenderer) Render(result *usecase.OrchestrationResult) error {
	if result == nil {
		return nil
	}
	if result.Cancelled {
		fmt.Fprintln(r.out, FormatWarning("Deployment cancelled"))
		return nil
	}
	if result.Deploy != nil {
		r.renderDeploy(result.Deploy)
	}
	if result.Liquidity != nil {
		fmt.Fprintln(r.out)
		(&LiquidityRenderer{out: r.out}).render(result.Liquidity)
	}
	return nil
}

func (r *DeployRenderer) renderDeploy(result *models.DeployResult) {
	fmt.Fprintln(r.out)
	headerStyle.Fprintf(r.out, "Deployment Summary: %s on chain %d\n", result.Plan, result.ChainID)
	fmt.Fprintln(r.out, strings.Repeat("─", 60))

	t := newTable()
	t.SetOutputMirror(r.out)
	t.AppendHeader(table.Row{"SLOT", "STEP", "ADDRESS", "STATE", "TX"})
	for _, o := range result.Steps {
		address := ""
		if o.Kind == models.StepDeploy {
			address = addressStyle.Sprint(o.Address.Hex())
			if o.Address == (common.Address{}) {
				address = presumedStyle.Sprint(o.Predicted.Hex())
			}
		}
		tx := ""
		if o.Receipt != nil {
			tx = shortHash(o.Receipt.TxHash.Hex())
		}
		t.AppendRow(table.Row{o.Slot, o.Name, address, stateStyle(o.State), tx})
	}
	t.Render()

	fmt.Fprintln(r.out)
	if faulted, ok := result.Faulted(); ok {
		fmt.Fprintln(r.out, FormatWarning(fmt.Sprintf("Stopped at %s (slot %d). Re-run the same command to resume from the current nonce.", faulted.Name, faulted.Slot)))
		return
	}
	fmt.Fprintln(r.out, FormatSuccess(fmt.Sprintf("%d confirmed, %d presumed",
		result.Count(models.StepConfirmed), result.Count(models.StepPresumed))))
}

// LiquidityRenderer renders the audit lines of a liquidity bootstrap
type LiquidityRenderer struct {
	out io.Writer
}

var _ Renderer[*models.BootstrapResult] = (*LiquidityRenderer)(nil)

// NewLiquidityRenderer creates a new liquidity renderer
func NewLiquidityRenderer(out io.Writer) *LiquidityRenderer {
	return &LiquidityRenderer{out: out}
}

// Render prints the bootstrap audit
func (r *LiquidityRenderer) Render(result *models.BootstrapResult) error {
	if result != nil {
		r.render(result)
	}
	return nil
}

func (r *LiquidityRenderer) render(result *models.BootstrapResult) {
	headerStyle.Fprintln(r.out, "Liquidity")
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("Venue:"), result.Venue)
	fmt.Fprintf(r.out, "  %s %#v\n", labelStyle.Sprint("Token A:"), result.SideA.Token)
	fmt.Fprintf(r.out, "  %s %#v\n", labelStyle.Sprint("Token B:"), result.SideB.Token)

	pair := result.Pair.Hex()
	if result.PairCreated {
		pair += " (created)"
	}
	fmt.Fprintf(r.out, "  %s %s\n", labelStyle.Sprint("Pair:"), pair)

	for _, a := range result.Approvals {
		if a.Succeeded() {
			fmt.Fprintf(r.out, "  %s %s for %s\n", confirmedStyle.Sprint("approved"), a.Token.Symbol(), a.Spender.Hex())
			continue
		}
		reason := "reverted"
		if a.Err != nil {
			reason = a.Err.Error()
		}
		fmt.Fprintln(r.out, "  "+FormatWarning(fmt.Sprintf("approve %s failed: %s", a.Token.Symbol(), reason)))
	}

	fmt.Fprintf(r.out, "  %s %s + %s\n", labelStyle.Sprint("Deposited:"), result.SideA, result.SideB)
	if result.Deposit != nil {
		fmt.Fprintf(r.out, "  %s %s (block %d)\n", labelStyle.Sprint("Tx:"), result.Deposit.TxHash.Hex(), result.Deposit.BlockNumber)
	}
}

func shortHash(h string) string {
	if len(h) <= 14 {
		return h
	}
	return h[:10] + "…" + h[len(h)-4:]
}
