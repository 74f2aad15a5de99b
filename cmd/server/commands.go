package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/chronolog/internal/history"
)

func importCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.tsv>",
		Short: "Replace the activity log with the contents of a TSV export",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open import file: %w", err)
			}
			defer f.Close()

			log, err := history.ReadTSV(f, a.logs.Now().Unix())
			if err != nil {
				return fmt.Errorf("read %s: %w", args[0], err)
			}
			if _, err := a.logs.Replace(log); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d entries\n", log.Len())
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export [file.tsv]",
		Short: "Write the activity log as TSV to a file or stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			var out io.Writer = cmd.OutOrStdout()
			if len(args) == 1 {
				f, err := os.Create(args[0])
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				out = f
			}

			w := bufio.NewWriter(out)
			if err := history.WriteTSV(w, a.logs.Snapshot()); err != nil {
				return fmt.Errorf("write tsv: %w", err)
			}
			return w.Flush()
		},
	}
}

func classifyCmd() *cobra.Command {
	var explain bool
	cmd := &cobra.Command{
		Use:   "classify <text...>",
		Short: "Show the category predicted for an activity name",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			text := strings.Join(args, " ")
			out := cmd.OutOrStdout()
			p := a.classify.Classify(text)
			fmt.Fprintf(out, "%s %s (%.2f, %s)\n", p.Icon, p.Category, p.Confidence, p.Source)
			if explain {
				_, scores := a.classify.Explain(text)
				for _, s := range scores {
					fmt.Fprintf(out, "  %-14s %.3f\n", s.Category, s.Score)
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&explain, "explain", false, "print the score of every category")
	return cmd
}

func insightsCmd() *cobra.Command {
	var date string
	cmd := &cobra.Command{
		Use:   "insights",
		Short: "Print this week's insights",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			ref := a.logs.Now()
			if date != "" {
				day, err := time.ParseInLocation("2006-01-02", date, ref.Location())
				if err != nil {
					return fmt.Errorf("invalid --date %q: %w", date, err)
				}
				if end := day.AddDate(0, 0, 1).Add(-time.Second); end.Before(ref) {
					ref = end
				}
			}

			for _, in := range a.analytics.Insights(ref) {
				fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", in.Rank, in.Text)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "reference day (YYYY-MM-DD), defaults to now")
	return cmd
}
