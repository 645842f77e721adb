package blocklist

import (
	"context"
	"errors"
	"fmt"

	logpkg "github.com/benvon/begone/internal/logger"
	"github.com/benvon/begone/internal/models"
	"github.com/benvon/begone/internal/phone"
	"github.com/benvon/begone/internal/validation"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// ErrNoFetcher is returned when an entry has a mnemonic but no range fetcher is configured
var ErrNoFetcher = errors.New("entry has a mnemonic but no range fetcher is configured")

// RangeFetcher resolves a registry mnemonic into formatted range patterns
type RangeFetcher interface {
	FetchRanges(ctx context.Context, mnemonic string) ([]string, error)
}

// Builder turns entries into tag groups
type Builder struct {
	fetcher RangeFetcher
	tracer  trace.Tracer
	logger  *zap.Logger
}

// NewBuilder creates a builder. fetcher may be nil when no entry uses a mnemonic.
func NewBuilder(fetcher RangeFetcher, logger *zap.Logger) *Builder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{
		fetcher: fetcher,
		tracer:  otel.Tracer("github.com/benvon/begone/internal/blocklist"),
		logger:  logger,
	}
}

// Records builds the records of a single entry: its literal numbers followed
// by the patterns of its mnemonic, all sanitized.
func (b *Builder) Records(ctx context.Context, entry *models.Entry) ([]models.NumberRecord, error) {
	numbers := make([]string, 0, len(entry.Numbers))
	numbers = append(numbers, entry.Numbers...)

	if entry.Mnemonic != "" {
		if b.fetcher == nil {
			return nil, ErrNoFetcher
		}
		patterns, err := b.fetcher.FetchRanges(ctx, entry.Mnemonic)
		if err != nil {
			return nil, err
		}
		numbers = append(numbers, patterns...)
	}

	records := make([]models.NumberRecord, 0, len(numbers))
	for _, number := range numbers {
		record := models.NewBlockedRecord(entry.Title, phone.Sanitize(number))
		if err := validation.ValidateRecord(&record); err != nil {
			return nil, fmt.Errorf("number %q: %w", number, err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Build groups the records of every entry by tag. Every record also lands in
// the models.AllGroupTag group, which always exists.
func (b *Builder) Build(ctx context.Context, entries []models.Entry) (models.TagGroups, error) {
	ctx, span := b.tracer.Start(ctx, "blocklist.Build",
		trace.WithAttributes(attribute.Int("blocklist.entries", len(entries))),
	)
	defer span.End()

	groups := models.TagGroups{models.AllGroupTag: {}}
	for i := range entries {
		entry := &entries[i]
		records, err := b.Records(ctx, entry)
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("entry %d (%q): %w", i, entry.Title, err)
		}

		for _, tag := range entry.DistinctTags() {
			groups.Add(tag, records)
		}
		groups.Add(models.AllGroupTag, records)

		b.logger.Debug("built_entry_records",
			zap.String("title", logpkg.SanitizeTitle(entry.Title)),
			zap.Int("records", len(records)),
			zap.Strings("tags", entry.DistinctTags()),
		)
	}

	span.SetAttributes(attribute.Int("blocklist.records", len(groups[models.AllGroupTag])))
	return groups, nil
}

// Project concatenates the groups of the requested tags in request order.
// Records are not deduplicated and unknown tags contribute nothing.
func Project(groups models.TagGroups, tags []string) []models.NumberRecord {
	var out []models.NumberRecord
	for _, tag := range tags {
		out = append(out, groups[tag]...)
	}
	return out
}

// UnknownTags returns the requested tags that have no group
func UnknownTags(groups models.TagGroups, tags []string) []string {
	var unknown []string
	for _, tag := range tags {
		if _, ok := groups[tag]; !ok {
			unknown = append(unknown, tag)
		}
	}
	return unknown
}
