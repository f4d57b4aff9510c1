package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/arnavshah/scheduler-dashboard-go/pkg/config"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/models"
	"github.com/arnavshah/scheduler-dashboard-go/pkg/timeline"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "timelinectl",
		Short:        "Inspect weekly schedule timelines offline",
		SilenceUsage: true,
	}
	root.AddCommand(newLayoutCmd(), newWeekCmd())
	return root
}

// layoutOutput is what `layout` prints
type layoutOutput struct {
	Layout    timeline.View   `json:"layout"`
	Selection *selectedOutput `json:"selection,omitempty"`
}

type selectedOutput struct {
	Bar    timeline.Bar  `json:"bar"`
	Anchor timeline.Rect `json:"anchor"`
}

func newLayoutCmd() *cobra.Command {
	var (
		file       string
		zoom       float64
		configPath string
		jobID      string
	)
	cmd := &cobra.Command{
		Use:   "layout",
		Short: "Print the computed layout of a schedule JSON file",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := timeline.DefaultOptions()
			if configPath != "" {
				tc, err := config.LoadTimelineConfig(configPath)
				if err != nil {
					return err
				}
				if err := tc.Validate(); err != nil {
					return err
				}
				if opts, err = tc.Options(); err != nil {
					return err
				}
			}

			schedule, err := readSchedule(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			tl, err := timeline.New(schedule, opts)
			if err != nil {
				return errors.New(timeline.NoValidWeekMessage)
			}

			state := timeline.NewState(tl.Options())
			if cmd.Flags().Changed("zoom") {
				state.Zoom.Set(zoom)
			}
			out := layoutOutput{Layout: tl.Render(state.Zoom.PixelsPerMinute())}
			if jobID != "" {
				bar, anchor, ok := out.Layout.Anchor(jobID)
				if !ok {
					return fmt.Errorf("job %q is not shown on the timeline", jobID)
				}
				out.Selection = &selectedOutput{Bar: bar, Anchor: anchor}
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(out)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Schedule JSON file (- for stdin)")
	cmd.Flags().Float64Var(&zoom, "zoom", 1, "Pixels per minute, clamped to the configured bounds")
	cmd.Flags().StringVar(&configPath, "config", "", "Timeline YAML config")
	cmd.Flags().StringVar(&jobID, "job", "", "Also print the anchor box of this scheduled job")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readSchedule(stdin io.Reader, file string) (*models.Schedule, error) {
	var r io.Reader = stdin
	if file != "-" {
		f, err := os.Open(file)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	var schedule models.Schedule
	if err := json.NewDecoder(r).Decode(&schedule); err != nil {
		return nil, fmt.Errorf("decode schedule: %w", err)
	}
	return &schedule, nil
}

func newWeekCmd() *cobra.Command {
	var (
		date string
		week int
		year int
	)
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Resolve an ISO week from a date or from a week number and year",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			if date != "" {
				monday, ok := timeline.ResolveWeekStart(date)
				if !ok {
					return fmt.Errorf("invalid date %q", date)
				}
				iso, _ := timeline.ISOWeekOfDate(monday)
				week, year = iso.Week, iso.Year
			}
			if week == 0 || year == 0 {
				return errors.New("either --date or both --week and --year are required")
			}

			start, end, err := timeline.ISOWeekBounds(week, year)
			if err != nil {
				return err
			}
			days, _ := timeline.WeekDays(start.Format("2006-01-02"))
			fmt.Fprintf(w, "week:  %s\n", timeline.ISOWeek{Week: week, Year: year})
			fmt.Fprintf(w, "start: %s\n", start.Format("2006-01-02"))
			fmt.Fprintf(w, "end:   %s (exclusive)\n", end.Format("2006-01-02"))
			for _, d := range days {
				fmt.Fprintf(w, "  %s  %s\n", d.ISODate, d.Label)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&date, "date", "", "Any date or timestamp inside the week")
	cmd.Flags().IntVar(&week, "week", 0, "ISO week number")
	cmd.Flags().IntVar(&year, "year", 0, "ISO week-numbering year")
	cmd.MarkFlagsMutuallyExclusive("date", "week")
	return cmd
}
