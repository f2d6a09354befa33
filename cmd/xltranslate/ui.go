package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/schollz/progressbar/v3"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate"
	"github.com/ukaji3/xltranslate-go/pkg/xltranslate/translate"
)

var (
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Width(16)
	valueStyle = lipgloss.NewStyle().Bold(true)
)

// batchBar shows dispatch progress. A new bar is started for every dispatch
// call because the batch count is only known once the first batch returns.
type batchBar struct {
	bar *progressbar.ProgressBar
}

func newBatchBar() *batchBar {
	return &batchBar{}
}

func (b *batchBar) observe(r translate.BatchReport) {
	if verbose {
		return
	}
	if r.Batch == 0 || b.bar == nil {
		b.finish()
		b.bar = progressbar.NewOptions(r.Batches,
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionEnableColorCodes(true),
			progressbar.OptionSetDescription("[cyan]translating[reset]"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}
	b.bar.Add(1)
}

func (b *batchBar) finish() {
	if b.bar == nil {
		return
	}
	b.bar.Finish()
	fmt.Fprintln(os.Stderr)
	b.bar = nil
}

func printReport(w io.Writer, r *xltranslate.Report) {
	fmt.Fprintf(w, "%s %s -> %s\n", okStyle.Render("✓"), r.Input, r.Output)

	row := func(label, value string) {
		fmt.Fprintf(w, "  %s%s\n", labelStyle.Render(label), valueStyle.Render(value))
	}
	row("Sheets", fmt.Sprint(r.Sheets))
	row("Locations", fmt.Sprint(r.Units))
	row("Unique texts", fmt.Sprint(r.UniqueTexts))
	if len(r.RenamedSheets) > 0 {
		names := make([]string, 0, len(r.RenamedSheets))
		for old, name := range r.RenamedSheets {
			names = append(names, old+" -> "+name)
		}
		sort.Strings(names)
		row("Renamed sheets", strings.Join(names, ", "))
	}
	row("Tokens", fmt.Sprintf("%d in / %d out", r.Usage.PromptTokens, r.Usage.CompletionTokens))
	row("Cost", fmt.Sprintf("$%.4f", r.Cost))
	row("Duration", r.Duration.Round(10*time.Millisecond).String())

	for _, e := range r.ApplyErrors {
		fmt.Fprintln(w, warnStyle.Render("  warning: "+e.Error()))
	}
}

func printError(err error) {
	msg := err.Error()
	var apiErr *translate.APIError
	switch {
	case errors.Is(err, xltranslate.ErrCancelled):
		msg = "cancelled, no output written"
	case errors.Is(err, xltranslate.ErrFileNotFound):
		msg = "input not found: " + msg
	case errors.Is(err, xltranslate.ErrInvalidFormat):
		msg = "not a readable .xlsx workbook: " + msg
	case errors.As(err, &apiErr):
		msg = "provider call failed, no output written: " + msg
	}
	fmt.Fprintln(os.Stderr, errStyle.Render("error:")+" "+msg)
}
