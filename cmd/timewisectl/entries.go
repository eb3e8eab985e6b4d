package main

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/timewise/timewise/client"
	"github.com/timewise/timewise/internal/model"
)

func newEntriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "entries",
		Short: "List and edit timeline entries",
	}
	cmd.AddCommand(newEntriesListCmd(a))
	cmd.AddCommand(newEntriesAddCmd(a))
	cmd.AddCommand(newEntriesEditCmd(a))
	cmd.AddCommand(newEntriesDeleteCmd(a))
	return cmd
}

func newEntriesListCmd(a *app) *cobra.Command {
	var from, to string
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List entries, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, toDate, err := parseRange(from, to)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			entries, err := c.ListEntries(ctx, fromDate, toDate)
			if err != nil {
				return err
			}
			return printEntries(cmd.OutOrStdout(), entries)
		},
	}
	cmd.Flags().StringVar(&from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include (YYYY-MM-DD)")
	return cmd
}

// draftFlags are the editable entry fields shared by add and edit.
type draftFlags struct {
	date, client, task, docket, description, timeSpent string
}

func (f *draftFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.date, "date", "", "Entry day (YYYY-MM-DD, default today)")
	cmd.Flags().StringVar(&f.client, "client", "", "Client id (required)")
	cmd.Flags().StringVar(&f.task, "task", "", "Task id (required)")
	cmd.Flags().StringVar(&f.docket, "docket", "", "Docket number")
	cmd.Flags().StringVar(&f.description, "description", "", "What was done (required)")
	cmd.Flags().StringVar(&f.timeSpent, "time", "", "Time spent as HH:MM (required)")
}

func (f *draftFlags) draft() (model.EntryDraft, error) {
	d := model.DateOf(time.Now())
	if f.date != "" {
		parsed, err := model.ParseDate(f.date)
		if err != nil {
			return model.EntryDraft{}, fmt.Errorf("--date: %w", err)
		}
		d = parsed
	}
	return model.EntryDraft{
		Date:         d,
		Client:       f.client,
		Task:         f.task,
		DocketNumber: f.docket,
		Description:  f.description,
		TimeSpent:    f.timeSpent,
	}, nil
}

func newEntriesAddCmd(a *app) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add an entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.draft()
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			res, err := c.CreateEntry(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.Message, res.Entry.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEntriesEditCmd(a *app) *cobra.Command {
	var f draftFlags
	cmd := &cobra.Command{
		Use:   "edit ENTRY_ID",
		Short: "Replace the fields of an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := f.draft()
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			res, err := c.UpdateEntry(ctx, args[0], d)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", res.Message, res.Entry.ID)
			return nil
		},
	}
	f.register(cmd)
	return cmd
}

func newEntriesDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ENTRY_ID",
		Short: "Delete an entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			res, err := c.DeleteEntry(ctx, args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), res.Message)
			return nil
		},
	}
}

func printEntries(out io.Writer, entries []model.TimelineEntry) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(out, "No entries.")
		return err
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCLIENT\tTASK\tDOCKET\tTIME\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ID, e.Date, e.Client, e.Task, e.DocketNumber, e.TimeSpent, e.Description)
	}
	return tw.Flush()
}

func parseRange(from, to string) (model.Date, model.Date, error) {
	var fromDate, toDate model.Date
	var err error
	if from != "" {
		if fromDate, err = model.ParseDate(from); err != nil {
			return fromDate, toDate, fmt.Errorf("--from: %w", err)
		}
	}
	if to != "" {
		if toDate, err = model.ParseDate(to); err != nil {
			return fromDate, toDate, fmt.Errorf("--to: %w", err)
		}
	}
	return fromDate, toDate, nil
}

func newCalendarCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "calendar [YYYY-MM]",
		Short: "Show entry days and missed weekdays of a month",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			month := ""
			if len(args) == 1 {
				month = args[0]
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			view, err := c.Calendar(ctx, month)
			if err != nil {
				return err
			}
			printCalendar(cmd.OutOrStdout(), view)
			return nil
		},
	}
}

func printCalendar(out io.Writer, v *client.CalendarView) {
	fmt.Fprintf(out, "%04d-%02d: %d entry days, %d missed\n",
		v.Month.Year, int(v.Month.Month), v.Summary.EntryDays, v.Summary.MissedDays)
	for _, d := range v.MissedDays {
		fmt.Fprintf(out, "  missed %s (%s)\n", d, d.Weekday())
	}
}

func newExportCmd(a *app) *cobra.Command {
	var format, outPath, from, to string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Download entries as CSV or TSV",
		RunE: func(cmd *cobra.Command, args []string) error {
			fromDate, toDate, err := parseRange(from, to)
			if err != nil {
				return err
			}
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			dl, err := c.Export(ctx, format, fromDate, toDate)
			if err != nil {
				return err
			}
			if outPath == "" {
				outPath = dl.Filename
			}
			if outPath == "-" {
				_, err := cmd.OutOrStdout().Write(dl.Body)
				return err
			}
			if err := os.WriteFile(outPath, dl.Body, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "csv", "csv or tsv")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Output file ('-' for stdout, default the server's file name)")
	cmd.Flags().StringVar(&from, "from", "", "First day to include (YYYY-MM-DD)")
	cmd.Flags().StringVar(&to, "to", "", "Last day to include (YYYY-MM-DD)")
	return cmd
}

func newSuggestCmd(a *app) *cobra.Command {
	var editing string
	cmd := &cobra.Command{
		Use:   "suggest TEXT",
		Short: "Suggest descriptions and docket numbers for the text typed so far",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()
			out, err := c.Suggest(ctx, args[0], editing)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			if out.IsEmpty() {
				fmt.Fprintln(w, "No suggestions.")
				return nil
			}
			for _, d := range out.SuggestedDescriptions {
				fmt.Fprintf(w, "description: %s\n", d)
			}
			for _, d := range out.SuggestedDocketNumbers {
				fmt.Fprintf(w, "docket: %s\n", d)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&editing, "editing", "", "Id of the entry being edited, excluded from context")
	return cmd
}

func newLookupCmd(a *app, kind string) *cobra.Command {
	return &cobra.Command{
		Use:   kind,
		Short: "List known " + kind,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := a.client()
			if err != nil {
				return err
			}
			ctx, cancel := withTimeout(cmd)
			defer cancel()

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			if kind == "clients" {
				list, err := c.Clients(ctx)
				if err != nil {
					return err
				}
				for _, it := range list {
					fmt.Fprintf(tw, "%s\t%s\n", it.ID, it.Name)
				}
			} else {
				list, err := c.Tasks(ctx)
				if err != nil {
					return err
				}
				for _, it := range list {
					fmt.Fprintf(tw, "%s\t%s\n", it.ID, it.Name)
				}
			}
			return tw.Flush()
		},
	}
}
