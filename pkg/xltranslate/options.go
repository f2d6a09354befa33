// Package xltranslate translates the text of xlsx workbooks through a
// completion provider.
package xltranslate

import (
	"fmt"
	"log/slog"

	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/collector"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/workbook"
)

// Mode represents what parts of a workbook are translated.
type Mode string

const (
	// ModeCells translates cell text only.
	ModeCells Mode = "cells"
	// ModeStandard translates cell text and chart text.
	ModeStandard Mode = "standard"
	// ModeFull translates cell text, chart text and sheet names.
	ModeFull Mode = "full"
)

// DefaultSuffix is appended to the input file name to build the output name.
const DefaultSuffix = "_cn"

// DefaultAttempts is the number of times a failed translation pass is tried.
const DefaultAttempts = 1

// Options configures a translation run.
type Options struct {
	// Mode specifies what is translated (cells, standard, full).
	Mode Mode
	// IncludeCharts specifies whether chart text is translated.
	// If nil, defaults to false for cells mode, true otherwise.
	IncludeCharts *bool
	// TranslateSheetNames specifies whether sheet names are translated.
	// If nil, defaults to true for full mode only.
	TranslateSheetNames *bool
	// Font is the font family applied to translated cells. If nil, the
	// workbook default is used; an empty string keeps existing fonts.
	Font *string
	// Attempts is how many times the translation pass is tried when the
	// provider fails. Values below 1 mean a single attempt.
	Attempts int
	// MinLength overrides the minimum text length. Zero keeps the default.
	MinLength int
	// KeepFormulas includes formula-derived cells.
	KeepFormulas bool
	// Logger receives progress and warning records. Nil discards them.
	Logger *slog.Logger
}

// DefaultOptions returns default translation options.
func DefaultOptions() Options {
	return Options{
		Mode:     ModeStandard,
		Attempts: DefaultAttempts,
	}
}

// ParseMode parses a mode name.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeCells, ModeStandard, ModeFull:
		return m, nil
	}
	return "", fmt.Errorf("invalid mode: %s (must be cells, standard, or full)", s)
}

// ShouldIncludeCharts returns whether to translate chart text.
func (o Options) ShouldIncludeCharts() bool {
	if o.IncludeCharts != nil {
		return *o.IncludeCharts
	}
	return o.Mode != ModeCells
}

// ShouldTranslateSheetNames returns whether to translate sheet names.
func (o Options) ShouldTranslateSheetNames() bool {
	if o.TranslateSheetNames != nil {
		return *o.TranslateSheetNames
	}
	return o.Mode == ModeFull
}

// FontFamily returns the font family applied to translated cells.
func (o Options) FontFamily() string {
	if o.Font != nil {
		return *o.Font
	}
	return workbook.DefaultFont
}

// Filters returns the collector filters for these options.
func (o Options) Filters() collector.Filters {
	f := collector.DefaultFilters()
	f.IncludeCharts = o.ShouldIncludeCharts()
	f.SkipFormulas = !o.KeepFormulas
	if o.MinLength > 0 {
		f.MinLength = o.MinLength
	}
	return f
}

func (o Options) attempts() int {
	if o.Attempts < 1 {
		return 1
	}
	return o.Attempts
}

func (o Options) logger() *slog.Logger {
	if o.Logger != nil {
		return o.Logger
	}
	return slog.New(slog.DiscardHandler)
}
