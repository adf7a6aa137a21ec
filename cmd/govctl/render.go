package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	com "github.com/oceanguard/govclient/internal/common"
	"github.com/oceanguard/govclient/pkg/commands"
	"github.com/oceanguard/govclient/pkg/governance"
	"github.com/oceanguard/govclient/pkg/market"
	"github.com/oceanguard/govclient/pkg/viewmodel"
)

var (
	titleStyle   = color.New(color.FgCyan, color.Bold)
	labelStyle   = color.New(color.FgWhite, color.Bold)
	addressStyle = color.New(color.FgGreen)
	errorStyle   = color.New(color.FgRed, color.Bold)
	successStyle = color.New(color.FgGreen, color.Bold)
	mutedStyle   = color.New(color.FgHiBlack)
)

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusStyle(s governance.Status) *color.Color {
	switch s {
	case governance.StatusActive:
		return color.New(color.FgCyan)
	case governance.StatusPassed:
		return color.New(color.FgGreen)
	case governance.StatusFailed:
		return color.New(color.FgRed)
	default:
		return mutedStyle
	}
}

func newTable(w io.Writer) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.Style().Options.DrawBorder = false
	t.Style().Options.SeparateColumns = false
	return t
}

func renderProposals(w io.Writer, proposals []*governance.Proposal) {
	if len(proposals) == 0 {
		fmt.Fprintln(w, mutedStyle.Sprint("no proposals"))
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Title", "Category", "Status", "For", "Against", "Abstain", "Remaining"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 40},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})

	for _, p := range proposals {
		t.AppendRow(table.Row{
			p.ID,
			p.Title,
			p.Category.String(),
			statusStyle(p.Status).Sprint(p.Status.String()),
			fmt.Sprintf("%d%%", p.Votes.For),
			fmt.Sprintf("%d%%", p.Votes.Against),
			fmt.Sprintf("%d%%", p.Votes.Abstain),
			p.TimeRemaining,
		})
	}

	t.Render()
}

// renderProposal prints one proposal. The creator is marked when it is the
// connected account.
func renderProposal(w io.Writer, p *governance.Proposal, account *common.Address) {
	creator := addressStyle.Sprint(p.Creator)
	if account != nil && com.IsSameHexAddress(p.Creator, account.Hex()) {
		creator += mutedStyle.Sprint(" (you)")
	}

	fmt.Fprintf(w, "%s %s\n\n", titleStyle.Sprintf("#%d", p.ID), titleStyle.Sprint(p.Title))
	fmt.Fprintln(w, p.Description)
	fmt.Fprintln(w)

	rows := [][2]string{
		{"Creator", creator},
		{"Category", p.Category.String()},
		{"Status", statusStyle(p.Status).Sprint(p.Status.String())},
		{"Voting", fmt.Sprintf("%s to %s (%s)", p.StartTime.Format("2006-01-02 15:04"), p.EndTime.Format("2006-01-02 15:04"), p.TimeRemaining)},
		{"For", fmt.Sprintf("%s (%d%%)", p.ForVotes, p.Votes.For)},
		{"Against", fmt.Sprintf("%s (%d%%)", p.AgainstVotes, p.Votes.Against)},
		{"Abstain", fmt.Sprintf("%s (%d%%)", p.AbstainVotes, p.Votes.Abstain)},
		{"Executed", fmt.Sprintf("%t", p.Executed)},
	}
	if p.HasTarget {
		rows = append(rows, [2]string{"Target", addressStyle.Sprint(p.TargetContract)})
	}

	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Sprintf("%-9s", r[0]+":"), r[1])
	}
}

func renderVoteInfo(w io.Writer, id uint64, info governance.VoteInfo) {
	if !info.HasVoted {
		fmt.Fprintf(w, "not voted on #%d (weight %s)\n", id, info.Weight)
		return
	}

	fmt.Fprintf(w, "voted %s on #%d with weight %s\n", successStyle.Sprint(info.VoteType.String()), id, info.Weight)
}

// readValue renders a polled value with its loading and error markers.
func readValue(r viewmodel.Read[string]) string {
	var b strings.Builder
	b.WriteString(r.Value)
	if r.Loading {
		b.WriteString(mutedStyle.Sprint(" (loading)"))
	}
	if r.Error != "" {
		b.WriteString(errorStyle.Sprintf(" (%s)", r.Error))
	}
	return b.String()
}

func renderStatus(w io.Writer, s viewmodel.Snapshot) {
	account := mutedStyle.Sprint("not connected")
	if s.Connected && s.Address != nil {
		account = addressStyle.Sprintf("%s (%s)", com.ShortenAddress(s.Address.Hex()), s.Address.Hex())
	}

	rows := [][2]string{
		{"Account", account},
		{"Balance", readValue(s.TokenBalance)},
		{"Staked", readValue(s.StakedBalance)},
		{"Power", readValue(s.VotingPower)},
		{"Total", readValue(s.TotalStaked)},
		{"Active", fmt.Sprintf("%d proposals", len(s.ActiveProposals.Value))},
	}

	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Sprintf("%-8s", r[0]+":"), r[1])
	}
}

func renderCommand(w io.Writer, name string, s commands.State) {
	switch {
	case s.IsSuccess:
		fmt.Fprintf(w, "%s %s", successStyle.Sprint("✓"), name)
	case s.IsError:
		fmt.Fprintf(w, "%s %s: %s", errorStyle.Sprint("✗"), name, s.Error)
	case s.IsLoading:
		fmt.Fprintf(w, "… %s", name)
		if s.Phase != commands.PhaseIdle {
			fmt.Fprintf(w, " (%s)", s.Phase)
		}
	default:
		fmt.Fprintf(w, "%s", name)
	}

	if s.TxHash != nil {
		fmt.Fprintf(w, " %s", mutedStyle.Sprint(s.TxHash.Hex()))
	}
	fmt.Fprintln(w)
}

func renderRates(w io.Writer, r market.Rates) {
	rows := [][2]string{
		{market.PlasticRemoval.String(), r.PlasticRemoval},
		{market.ReefRestoration.String(), r.ReefRestoration},
		{market.CarbonSequestration.String(), r.CarbonSequestration},
	}

	for _, row := range rows {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Sprintf("%-20s", row[0]+":"), row[1])
	}
}

func projectState(p *market.Project) string {
	switch {
	case p.TokensIssued:
		return successStyle.Sprint("issued")
	case p.IsValidated:
		return color.New(color.FgCyan).Sprint("validated")
	default:
		return mutedStyle.Sprint("pending")
	}
}

func renderProjects(w io.Writer, projects []*market.Project) {
	if len(projects) == 0 {
		fmt.Fprintln(w, mutedStyle.Sprint("no projects"))
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Name", "Type", "Impact", "State"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 40},
		{Number: 4, Align: text.AlignRight},
	})

	for _, p := range projects {
		t.AppendRow(table.Row{
			p.ID,
			p.Name,
			p.Type.String(),
			fmt.Sprintf("%s %s", p.ImpactMetric, p.Type.ImpactUnit()),
			projectState(p),
		})
	}

	t.Render()
}

func renderProject(w io.Writer, p *market.Project) {
	fmt.Fprintf(w, "%s %s\n\n", titleStyle.Sprintf("#%d", p.ID), titleStyle.Sprint(p.Name))
	if p.Description != "" {
		fmt.Fprintln(w, p.Description)
		fmt.Fprintln(w)
	}

	rows := [][2]string{
		{"Creator", addressStyle.Sprint(p.Creator)},
		{"Type", p.Type.String()},
		{"Impact", fmt.Sprintf("%s %s", p.ImpactMetric, p.Type.ImpactUnit())},
		{"State", projectState(p)},
	}

	for _, r := range rows {
		fmt.Fprintf(w, "%s %s\n", labelStyle.Sprintf("%-8s", r[0]+":"), r[1])
	}
}

func renderCredits(w io.Writer, credits []*market.Credit) {
	if len(credits) == 0 {
		fmt.Fprintln(w, mutedStyle.Sprint("no credits for sale"))
		return
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"ID", "Owner", "Tons", "Price (ETH)"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
	})

	for _, c := range credits {
		t.AppendRow(table.Row{
			c.ID,
			addressStyle.Sprint(com.ShortenAddress(c.Owner)),
			c.Amount,
			c.PriceEth,
		})
	}

	t.Render()
}
