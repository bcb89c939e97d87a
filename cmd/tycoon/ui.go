package main

import (
	"bufio"
	"fmt"
	"maps"
	"math"
	"os"
	"slices"
	"strconv"
	"strings"

	"tycoon/internal/game"

	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"golang.org/x/term"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	stdinReader = bufio.NewReader(os.Stdin)
	numbers     = message.NewPrinter(language.English)
	accent      = color.New(color.FgCyan, color.Bold)
	success     = color.New(color.FgGreen, color.Bold)
	warn        = color.New(color.FgYellow, color.Bold)
	danger      = color.New(color.FgRed, color.Bold)
	neutral     = color.New(color.FgHiWhite)

	panel = lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("6")).
		Padding(0, 1)
	panelTitle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("14"))
	eventPanel = panel.BorderForeground(lipgloss.Color("11"))
)

func printSuccess(msg string) {
	success.Println(msg)
}

func printWarn(msg string) {
	warn.Println(msg)
}

func printError(msg string) {
	danger.Println(msg)
}

func printInfo(msg string) {
	neutral.Println(msg)
}

func interactive() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

func promptRequired(label string) (string, error) {
	for {
		fmt.Printf("%s: ", label)
		text, err := stdinReader.ReadString('\n')
		if err != nil {
			return "", err
		}
		text = strings.TrimSpace(text)
		if text != "" {
			return text, nil
		}
		printWarn(label + " is required.")
	}
}

func promptIndex(label string, n int) (int, error) {
	for {
		text, err := promptRequired(label)
		if err != nil {
			return 0, err
		}
		v, err := strconv.Atoi(text)
		if err != nil || v < 1 || v > n {
			printWarn(fmt.Sprintf("Enter a number between 1 and %d.", n))
			continue
		}
		return v - 1, nil
	}
}

func money(v float64) string {
	if v < 0 {
		return numbers.Sprintf("-$%d", int64(math.Round(-v)))
	}
	return numbers.Sprintf("$%d", int64(math.Round(v)))
}

func count(v int64) string {
	return numbers.Sprintf("%d", v)
}

func percent(v float64) string {
	return fmt.Sprintf("%.1f%%", v*100)
}

func colorizeMoney(v float64) string {
	text := money(v)
	if v > 0 {
		text = "+" + text
	}
	switch {
	case v > 0:
		return success.Sprint(text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func colorizeCount(v int64) string {
	text := count(v)
	switch {
	case v > 0:
		return success.Sprint("+" + text)
	case v < 0:
		return danger.Sprint(text)
	default:
		return neutral.Sprint(text)
	}
}

func runway(months int) string {
	if months < 0 {
		return "profitable"
	}
	return fmt.Sprintf("%d turns", months)
}

func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	if n <= 0 || len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

func box(title string, lines ...string) string {
	body := append([]string{panelTitle.Render(title)}, lines...)
	return panel.Render(strings.Join(body, "\n"))
}

func renderStatus(v game.View) {
	c := v.Company
	head := fmt.Sprintf("%s (%s, %s)", c.Name, c.Industry, v.Settings.Difficulty)
	if v.State.GameOver {
		head += " - game over: " + v.State.GameOverReason
	}
	inDev := 0
	for _, f := range c.Product.Features {
		if !f.Completed {
			inDev++
		}
	}
	fmt.Println(box(head,
		fmt.Sprintf("Turn:        %d / %d", v.State.CurrentTurn, v.Settings.MaxTurns),
		fmt.Sprintf("Cash:        %s", money(c.Cash)),
		fmt.Sprintf("Revenue:     %s / turn", money(c.Revenue)),
		fmt.Sprintf("Burn:        %s", colorizeMoney(c.BurnRate)),
		fmt.Sprintf("Runway:      %s", runway(c.Runway)),
		fmt.Sprintf("Valuation:   %s", money(c.Valuation)),
		fmt.Sprintf("Users:       %s (churn %s)", count(c.Users), percent(c.ChurnRate)),
		fmt.Sprintf("Equity:      %s (round %s)", percent(c.Equity.Player), c.FundingRound),
		fmt.Sprintf("Quality:     %s  Brand: %s  Morale: %s", percent(c.Product.Quality), percent(c.Marketing.Brand), percent(c.Team.Morale)),
		fmt.Sprintf("Features:    %d built, %d in development", len(c.Product.Features)-inDev, inDev),
		fmt.Sprintf("Difficulty:  x%.2f", v.Difficulty.Multiplier),
	))

	accent.Println("Team")
	fmt.Printf("%-10s %-22s %-12s %10s %6s\n", "ID", "NAME", "ROLE", "SALARY", "PERF")
	for _, emp := range c.Team.Employees {
		fmt.Printf("%-10s %-22s %-12s %10s %6.2f\n", truncate(emp.ID, 10), truncate(emp.Name, 22), emp.Role, money(emp.Salary), emp.Performance)
	}

	if len(c.Product.Features) > 0 {
		fmt.Println()
		accent.Println("Product")
		for _, f := range c.Product.Features {
			state := success.Sprint("done")
			if !f.Completed {
				state = warn.Sprintf("%.0f%%", f.Progress*100)
			}
			fmt.Printf("  %-30s %-8s %-14s %s\n", truncate(f.Name, 30), f.Complexity, f.Category, state)
		}
	}
	fmt.Println()
}

func renderMarket(v game.View) {
	m := v.Market
	lines := []string{
		fmt.Sprintf("Cycle:       %s (%.0f%% through %d turns)", m.Cycle.Phase, m.Cycle.Progress*100, m.Cycle.Length),
		fmt.Sprintf("Sentiment:   %s", game.SentimentDescription(m.SentimentIndex)),
		fmt.Sprintf("Funding:     %s", game.FundingDescription(m.FundingAvailability)),
		fmt.Sprintf("Growth:      %s", percent(m.GrowthRate)),
		fmt.Sprintf("Valuations:  x%.2f", m.ValuationMultiplier),
	}
	fmt.Println(box("Market", lines...))

	if len(m.Trends) > 0 {
		accent.Println("Trends")
		for _, t := range m.Trends {
			fmt.Printf("  %-28s growth %+.2f  revenue %+.2f  %d/%d turns  (%s)\n",
				truncate(t.Name, 28), t.GrowthEffect, t.RevenueEffect, int(t.Progress*float64(t.Duration)), t.Duration, strings.Join(t.Industries, ", "))
		}
		fmt.Println()
	}

	accent.Println("Industries")
	fmt.Printf("%-12s %8s %10s %8s %10s\n", "INDUSTRY", "GROWTH", "VOLATILITY", "COMPET.", "MULTIPLE")
	for _, id := range slices.Sorted(maps.Keys(m.Industries)) {
		ind := m.Industries[id]
		fmt.Printf("%-12s %8s %10s %8.2f %10.2f\n", id, percent(ind.GrowthRate), percent(ind.Volatility), ind.Competitiveness, ind.RevenueMultiple)
	}
	fmt.Println()
}

func renderRivals(v game.View) {
	if len(v.Competitors) == 0 {
		printInfo("No competitors in this market.")
		return
	}
	fmt.Printf("%-10s %-24s %-12s %-14s %14s %12s %8s %s\n", "ID", "NAME", "TYPE", "STRATEGY", "VALUATION", "USERS", "QUALITY", "STATUS")
	for _, c := range v.Competitors {
		status := success.Sprint("active")
		if !c.Active {
			status = danger.Sprint("bankrupt")
		}
		fmt.Printf("%-10s %-24s %-12s %-14s %14s %12s %8s %s\n",
			c.ID, truncate(c.Name, 24), c.Type, c.Strategy, money(c.Valuation), count(c.Users), percent(c.Product.Quality), status)
		if n := len(c.Decisions); n > 0 {
			d := c.Decisions[n-1]
			neutral.Printf("           last move (turn %d): %s, marketing %s, product %s\n", d.Turn, d.Strategy, money(d.Marketing), money(d.Product))
		}
	}
	fmt.Println()
}

func renderEvent(ev game.Event) {
	lines := []string{ev.Description, ""}
	for i, ch := range ev.Choices {
		lines = append(lines, fmt.Sprintf("%d) %s", i+1, ch.Text))
	}
	lines = append(lines, "", neutral.Sprintf("event id: %s", ev.ID))
	fmt.Println(eventPanel.Render(panelTitle.Render(ev.Title) + "\n" + strings.Join(lines, "\n")))
}

func renderSummary(s game.TurnSummary) {
	c := s.Company
	lines := []string{
		fmt.Sprintf("Cash:       %s (%s)", money(c.Cash), colorizeMoney(c.CashDelta)),
		fmt.Sprintf("Revenue:    %s (%s)", money(c.Revenue), colorizeMoney(c.RevenueDelta)),
		fmt.Sprintf("Valuation:  %s (%s)", money(c.Valuation), colorizeMoney(c.ValuationDelta)),
		fmt.Sprintf("Users:      %s (%s)", count(c.Users), colorizeCount(c.UsersDelta)),
		fmt.Sprintf("Runway:     %s", runway(c.Runway)),
		fmt.Sprintf("Market:     %s, %s", s.Market.Phase, s.Market.Sentiment),
	}
	for _, f := range s.CompletedFeatures {
		lines = append(lines, success.Sprintf("Shipped:    %s", f.Name))
	}
	fmt.Println(box(fmt.Sprintf("Turn %d summary", s.Turn), lines...))
}

func renderResult(res game.Result, okMessage string) {
	switch res.Outcome {
	case game.OutcomeApplied:
		printSuccess(okMessage)
	case game.OutcomeFailedRoll:
		printWarn(res.Reason)
	default:
		printError(res.Reason)
	}
}

// console prints engine emissions as they happen.
type console struct{}

func (console) Notification(n game.Notification) {
	switch n.Type {
	case game.NotifySuccess:
		success.Printf("* %s\n", n.Message)
	case game.NotifyWarning:
		warn.Printf("! %s\n", n.Message)
	case game.NotifyNegative:
		danger.Printf("! %s\n", n.Message)
	case game.NotifyEvent, game.NotifyMarket:
		accent.Printf("~ %s\n", n.Message)
	default:
		neutral.Printf("- %s\n", n.Message)
	}
}

func (console) EventModal(ev game.Event)       { renderEvent(ev) }
func (console) TurnSummary(s game.TurnSummary) { renderSummary(s) }

func (console) GameOver(reason string, data map[string]any) {
	fmt.Println()
	danger.Printf("GAME OVER: %s\n", reason)
	for _, k := range slices.Sorted(maps.Keys(data)) {
		switch v := data[k].(type) {
		case float64:
			fmt.Printf("  %-10s %s\n", k, numbers.Sprintf("%.2f", v))
		default:
			fmt.Printf("  %-10s %v\n", k, v)
		}
	}
}
