package commands

import (
	"fmt"

	"github.com/benvon/begone/internal/blocklist"
	"github.com/benvon/begone/internal/config"
	logpkg "github.com/benvon/begone/internal/logger"
	"github.com/benvon/begone/internal/output"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// NewRootCmd creates the conversion command
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}
	var format string

	cmd := &cobra.Command{
		Use:   "begone [flags] <input> <output> <tag> [tag...]",
		Short: "Convert a YAML blocklist into a Begone property list",
		Long: `Reads a YAML list of entries, expands operator mnemonics into number
ranges from the numbering registry, and writes the records of the requested
tags as a property list Begone can import. The "all" tag selects every record.`,
		Args:          cobra.MinimumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			input, outputPath, tags := args[0], args[1], args[2:]

			rt, err := newRuntime(cmd.Context(), opts, func(cfg *config.Config) {
				if cmd.Flags().Changed("format") {
					cfg.Output.Format = format
				}
			})
			if err != nil {
				return err
			}
			defer rt.close()

			outFormat, err := output.ParseFormat(rt.cfg.Output.Format)
			if err != nil {
				return err
			}

			ctx, span := otel.Tracer("github.com/benvon/begone/cmd/begone").Start(cmd.Context(), "begone.convert",
				trace.WithAttributes(attribute.StringSlice("begone.tags", tags)),
			)
			defer span.End()

			entries, err := blocklist.LoadEntriesFile(input)
			if err != nil {
				return fmt.Errorf("failed to load blocklist: %w", err)
			}

			groups, err := blocklist.NewBuilder(rt.fetcher, rt.logger).Build(ctx, entries)
			if err != nil {
				span.RecordError(err)
				return fmt.Errorf("failed to build tag groups: %w", err)
			}

			for _, tag := range blocklist.UnknownTags(groups, tags) {
				rt.logger.Warn("unknown_tag",
					zap.String("tag", logpkg.SanitizeString(tag, 0)),
					zap.Strings("known_tags", groups.Tags()),
				)
			}

			records := blocklist.Project(groups, tags)
			if err := output.WriteFile(outputPath, records, outFormat); err != nil {
				return fmt.Errorf("failed to write %s: %w", outputPath, err)
			}

			rt.logger.Info("blocklist_written",
				zap.String("output", logpkg.SanitizeString(outputPath, 0)),
				zap.String("format", string(outFormat)),
				zap.Int("entries", len(entries)),
				zap.Int("records", len(records)),
			)
			return nil
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVar(&format, "format", "", "output encoding: binary or xml (default from config, binary)")
	return cmd
}
