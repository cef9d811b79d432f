// Package console renders status lines and progress on the terminal. All
// output goes to one writer, normally stderr, so stdout carries only results.
package console

import (
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Console writes colored messages and progress indicators.
type Console struct {
	w      io.Writer
	red    *color.Color
	yellow *color.Color
	quiet  bool

	// mpb only renders on its own to terminals.
	autoRefresh bool
}

// New returns a Console writing to w, or stderr when w is nil.
func New(w io.Writer) *Console {
	if w == nil {
		w = os.Stderr
	}
	return &Console{
		w:      w,
		red:    color.New(color.FgRed),
		yellow: color.New(color.FgYellow),

		autoRefresh: !isTerminal(w),
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (c *Console) progressOptions(opts ...mpb.ContainerOption) []mpb.ContainerOption {
	opts = append([]mpb.ContainerOption{mpb.WithOutput(c.w)}, opts...)
	if c.autoRefresh {
		opts = append(opts, mpb.WithAutoRefresh())
	}
	return opts
}

// SetQuiet disables progress indicators. Error and warning lines are still printed.
func (c *Console) SetQuiet(quiet bool) {
	c.quiet = quiet
}

// Errorf prints a red line.
func (c *Console) Errorf(format string, args ...any) {
	c.red.Fprintf(c.w, format+"\n", args...)
}

// Warnf prints a yellow line.
func (c *Console) Warnf(format string, args ...any) {
	c.yellow.Fprintf(c.w, format+"\n", args...)
}

// Progress is a running bar or spinner. Finish must be called exactly once.
type Progress struct {
	p   *mpb.Progress
	bar *mpb.Bar
}

// NewBar starts a bar with total steps, labelled with name.
func (c *Console) NewBar(name string, total int) *Progress {
	if c.quiet {
		return &Progress{}
	}

	p := mpb.New(c.progressOptions(mpb.WithWidth(64))...)
	bar := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name+": "),
			decor.CountersNoUnit("%d / %d"),
		),
		mpb.AppendDecorators(
			decor.Percentage(),
		),
	)
	return &Progress{p: p, bar: bar}
}

// NewSpinner starts an indeterminate spinner labelled with name.
func (c *Console) NewSpinner(name string) *Progress {
	if c.quiet {
		return &Progress{}
	}

	p := mpb.New(c.progressOptions()...)
	bar := p.AddSpinner(1,
		mpb.PrependDecorators(
			decor.Name(name+" "),
		),
		mpb.AppendDecorators(
			decor.Elapsed(decor.ET_STYLE_GO),
		),
		mpb.BarRemoveOnComplete(),
	)
	return &Progress{p: p, bar: bar}
}

// Update sets the bar to done steps. It matches audio.ProgressFunc.
func (pr *Progress) Update(done, _ int) {
	if pr.bar == nil {
		return
	}
	pr.bar.SetCurrent(int64(done))
}

// Finish completes the indicator when ok, otherwise aborts it, and waits for
// the final render.
func (pr *Progress) Finish(ok bool) {
	if pr.bar == nil {
		return
	}
	if ok {
		pr.bar.SetTotal(-1, true)
	} else {
		pr.bar.Abort(false)
	}
	pr.p.Wait()
}
