package commands

import (
	"github.com/spf13/cobra"

	"github.com/Sumatoshi-tech/resample/internal/report"
	"github.com/Sumatoshi-tech/resample/pkg/statistic"
)

// NewStatisticsCommand creates the statistics command.
func NewStatisticsCommand() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:     "statistics",
		Aliases: []string{"stats"},
		Short:   "List the statistics bootstrap can estimate",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			f, err := report.ParseFormat(format)
			if err != nil {
				return err
			}

			return report.WriteStatistics(out(cmd), f, statistic.DefaultRegistry().All())
		},
	}

	registerFormatFlag(cmd, &format)

	return cmd
}
