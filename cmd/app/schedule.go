package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/domain"
	"github.com/suchimauz/practitioner-slot-scheduler/internal/core/json_types"
)

func scheduleCmd() *cobra.Command {
	var (
		dateStr   string
		available bool
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Print the merged schedule of a date",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, false, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer a.close()

			location, err := a.cfg.Location()
			if err != nil {
				return err
			}
			date := json_types.DateOf(time.Now().In(location))
			if dateStr != "" {
				date, err = json_types.ParseDate(dateStr)
				if err != nil {
					return err
				}
			}

			var slots []domain.Slot
			if available {
				slots, err = a.service.AvailableSlots(ctx, date)
			} else {
				slots, err = a.service.GetSchedule(ctx, date)
			}
			if err != nil {
				return err
			}

			if asJSON {
				encoder := json.NewEncoder(cmd.OutOrStdout())
				encoder.SetIndent("", "  ")
				return encoder.Encode(slots)
			}
			return printSchedule(cmd.OutOrStdout(), slots, a.service.DisplayState)
		},
	}

	cmd.Flags().StringVar(&dateStr, "date", "", "date in YYYY-MM-DD, today by default")
	cmd.Flags().BoolVar(&available, "available", false, "only bookable slots")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")

	return cmd
}

func printSchedule(w io.Writer, slots []domain.Slot, displayState func(domain.Slot) domain.SlotState) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATE\tPATIENT\tBACKEND ID")
	for _, slot := range slots {
		patient := ""
		if slot.Patient != nil {
			patient = slot.Patient.FullName()
		}
		backendID := ""
		if slot.BackendID != nil {
			backendID = slot.BackendID.String()
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", slot.Time, displayState(slot), patient, backendID)
	}
	return tw.Flush()
}
