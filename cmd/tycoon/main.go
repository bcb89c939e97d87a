package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"tycoon/internal/cli"
	"tycoon/internal/config"
	"tycoon/internal/game"

	"github.com/spf13/cobra"
)

type globals struct {
	apiBase     string
	saveDir     string
	balanceFile string
}

func main() {
	cfg := config.LoadCLIFromEnv()
	g := &globals{apiBase: cfg.APIBaseURL, saveDir: cfg.SaveDir}

	root := &cobra.Command{
		Use:          "tycoon",
		Short:        "Run a startup, one turn at a time",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&g.apiBase, "api", g.apiBase, "tycoon-api base URL; plays locally when empty")
	root.PersistentFlags().StringVar(&g.saveDir, "dir", g.saveDir, "directory for the local save and journal")
	root.PersistentFlags().StringVar(&g.balanceFile, "balance", "", "YAML balance overrides for local games")

	root.AddCommand(
		newNewCmd(g),
		newStatusCmd(g),
		newMarketCmd(g),
		newRivalsCmd(g),
		newEndTurnCmd(g),
		newChooseCmd(g),
		newMarketSpendCmd(g),
		newHireCmd(g),
		newFireCmd(g),
		newFeatureCmd(g),
		newFundCmd(g),
		newLogCmd(g),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func openBackend(g *globals) (cli.Backend, error) {
	if base := strings.TrimSpace(g.apiBase); base != "" {
		r, err := cli.OpenRemote(g.saveDir, base, console{})
		if err != nil {
			return nil, err
		}
		return r, nil
	}
	balance, err := config.LoadBalance(g.balanceFile)
	if err != nil {
		return nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
	l, err := cli.OpenLocal(g.saveDir, logger, &balance, console{})
	if err != nil {
		return nil, err
	}
	return l, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 30*time.Second)
}

func newNewCmd(g *globals) *cobra.Command {
	var opts game.Options
	cmd := &cobra.Command{
		Use:   "new [company name]",
		Short: "Start a new company, replacing the current game",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				opts.CompanyName = args[0]
			} else if interactive() {
				name, err := promptRequired("Company name")
				if err != nil {
					return err
				}
				opts.CompanyName = name
			}
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			view, err := b.NewGame(ctx, opts)
			if err != nil {
				return err
			}
			renderStatus(view)
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.Industry, "industry", "saas", "saas, ecommerce, fintech or social")
	cmd.Flags().StringVar(&opts.Difficulty, "difficulty", "normal", "easy, normal or hard")
	cmd.Flags().IntVar(&opts.MaxTurns, "turns", 0, "game length in turns (0 uses the default)")
	cmd.Flags().Int64Var(&opts.Seed, "seed", 0, "random seed for a reproducible game")
	return cmd
}

func viewCommand(g *globals, use, short string, render func(game.View)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			view, err := b.View(ctx)
			if err != nil {
				return err
			}
			render(view)
			return nil
		},
	}
}

func newStatusCmd(g *globals) *cobra.Command {
	return viewCommand(g, "status", "Show the company", func(v game.View) {
		renderStatus(v)
		for _, ev := range v.State.Events {
			if ev.ID == v.State.PendingEvent && ev.Pending() {
				renderEvent(ev)
			}
		}
	})
}

func newMarketCmd(g *globals) *cobra.Command {
	return viewCommand(g, "market", "Show market conditions", renderMarket)
}

func newRivalsCmd(g *globals) *cobra.Command {
	return viewCommand(g, "rivals", "Show competitors", renderRivals)
}

func newEndTurnCmd(g *globals) *cobra.Command {
	var turns int
	cmd := &cobra.Command{
		Use:   "end-turn",
		Short: "Let the market, your rivals and your company move",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			for i := 0; i < max(turns, 1); i++ {
				ctx, cancel := commandContext(cmd)
				_, err := b.EndTurn(ctx)
				cancel()
				if err != nil {
					return err
				}
				if err := answerPending(cmd, b); err != nil {
					return err
				}
				view, err := viewNow(cmd, b)
				if err != nil {
					return err
				}
				if view.State.GameOver {
					return nil
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&turns, "turns", "n", 1, "number of turns to play")
	return cmd
}

func viewNow(cmd *cobra.Command, b cli.Backend) (game.View, error) {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	return b.View(ctx)
}

// answerPending asks for a decision on a terminal, otherwise it tells the
// player how to answer later.
func answerPending(cmd *cobra.Command, b cli.Backend) error {
	ctx, cancel := commandContext(cmd)
	defer cancel()
	ev, err := b.PendingEvent(ctx)
	if err != nil || ev == nil {
		return err
	}
	if !interactive() {
		printInfo(fmt.Sprintf("Decide with: tycoon choose %s <1-%d>", ev.ID, len(ev.Choices)))
		return nil
	}
	idx, err := promptIndex("Your choice", len(ev.Choices))
	if err != nil {
		return err
	}
	res, err := b.Choose(ctx, ev.ID, idx)
	if err != nil {
		return err
	}
	renderResult(res, "Decision made: "+ev.Choices[idx].Text)
	return nil
}

func newChooseCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "choose [event-id] [choice]",
		Short: "Answer the pending event",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			if len(args) < 2 {
				return answerPending(cmd, b)
			}
			n, err := strconv.Atoi(args[1])
			if err != nil || n < 1 {
				return fmt.Errorf("choice must be a number starting at 1")
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			res, err := b.Choose(ctx, args[0], n-1)
			if err != nil {
				return err
			}
			renderResult(res, "Decision made")
			return nil
		},
	}
}

func newMarketSpendCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "market-spend <channel> <amount>",
		Short: "Set this turn's budget for a marketing channel",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := strconv.ParseFloat(strings.ReplaceAll(args[1], ",", ""), 64)
			if err != nil {
				return fmt.Errorf("amount must be a number: %w", err)
			}
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			res, err := b.AllocateMarketing(ctx, args[0], amount)
			if err != nil {
				return err
			}
			renderResult(res, fmt.Sprintf("%s budget set to %s", args[0], money(res.Amount)))
			return nil
		},
	}
}

func newHireCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "hire <role>",
		Short: "Hire a developer, designer, marketer, salesperson or operations lead",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			res, err := b.Hire(ctx, args[0])
			if err != nil {
				return err
			}
			msg := "Hired"
			if res.Employee != nil {
				msg = fmt.Sprintf("Hired %s (%s) at %s per turn, id %s", res.Employee.Name, res.Employee.Role, money(res.Employee.Salary), res.Employee.ID)
			}
			renderResult(res, msg)
			return nil
		},
	}
}

func newFireCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "fire <employee-id>",
		Short: "Let an employee go",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			res, err := b.Fire(ctx, args[0])
			if err != nil {
				return err
			}
			renderResult(res, "Employee let go")
			return nil
		},
	}
}

func newFeatureCmd(g *globals) *cobra.Command {
	var spec game.FeatureSpec
	cmd := &cobra.Command{
		Use:   "feature [name]",
		Short: "Start building a feature; without a name the next catalog feature is picked",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				spec.Name = args[0]
			}
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			res, err := b.DevelopFeature(ctx, spec)
			if err != nil {
				return err
			}
			msg := "Development started"
			if res.Feature != nil {
				msg = fmt.Sprintf("Started %s (%s, %d turns, %s)", res.Feature.Name, res.Feature.Complexity, res.Feature.TimeRequired, money(res.Feature.Cost))
			}
			renderResult(res, msg)
			return nil
		},
	}
	cmd.Flags().StringVar(&spec.Complexity, "complexity", "", "simple, medium or complex")
	cmd.Flags().StringVar(&spec.Category, "category", "", "core, growth, monetization or infrastructure")
	cmd.Flags().StringSliceVar(&spec.Dependencies, "depends", nil, "features that must ship first")
	return cmd
}

func newFundCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "fund <round>",
		Short: "Pitch investors for seed, series_a, series_b, series_c, or go public with ipo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			ctx, cancel := commandContext(cmd)
			defer cancel()
			res, err := b.RaiseFunding(ctx, args[0])
			if err != nil {
				return err
			}
			msg := "Funding closed"
			switch {
			case res.Funding != nil:
				msg = fmt.Sprintf("%s led by %s: %s for %s", res.Funding.Round, res.Funding.Investor, money(res.Funding.Amount), percent(res.Funding.Equity))
			case res.Amount > 0:
				msg = fmt.Sprintf("IPO payout: %s", money(res.Amount))
			}
			renderResult(res, msg)
			return nil
		},
	}
}

func newLogCmd(g *globals) *cobra.Command {
	var n int
	cmd := &cobra.Command{
		Use:   "log",
		Short: "Show the game journal",
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := openBackend(g)
			if err != nil {
				return err
			}
			entries := b.Journal().Tail(n)
			if len(entries) == 0 {
				printInfo("Nothing recorded yet.")
				return nil
			}
			for _, e := range entries {
				fmt.Printf("%4d  %-13s %s\n", e.Turn, e.Kind, e.Message)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&n, "lines", "n", 30, "number of entries to show")
	return cmd
}
