package commands

import (
	"errors"

	"github.com/spf13/cobra"
	"go.trai.ch/delta/internal/app"
	"go.trai.ch/delta/internal/core/domain"
)

func (c *CLI) newCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <depot.yaml>",
		Short: "Match dependency sets against a candidate version",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			at, _ := cmd.Flags().GetString("at")
			sets, _ := cmd.Flags().GetStringSlice("set")

			version, err := domain.ParseVersion(at)
			if err != nil {
				return err
			}

			reports, checkErr := c.app.Check(cmd.Context(), args[0], app.CheckOptions{
				Version: version,
				Sets:    sets,
			})
			if err := app.RenderReports(cmd.OutOrStdout(), reports); err != nil {
				return errors.Join(checkErr, err)
			}
			return checkErr
		},
	}
	cmd.Flags().String("at", "", "Candidate version to match the sets at")
	cmd.Flags().StringSliceP("set", "s", nil, "Set to match (repeatable, defaults to every set)")
	_ = cmd.MarkFlagRequired("at")
	return cmd
}

func (c *CLI) newSetsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sets <depot.yaml>",
		Short: "List the dependency sets a depot declares",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			names, err := c.app.Sets(args[0])
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			for _, name := range names {
				if _, err := out.Write([]byte(name + "\n")); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
