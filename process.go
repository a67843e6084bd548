package main

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/hako/durafmt"
	"github.com/remeh/sizedwaitgroup"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

// Options control a run over one or more files
type Options struct {
	Config     *Config
	Seed       uint64 // 0 picks a time based seed for every file
	Jobs       int    // files processed at the same time
	DryRun     bool   // transform and report without writing
	ShowLyrics bool
	Verbose    bool
}

// FileReport is the outcome of processing a single file
type FileReport struct {
	Path         string
	Result       *RewriteResult
	BytesWritten int64
	Skipped      bool // nothing to rewrite, the file was left alone
	Err          error
}

// Failed reports whether the file could not be processed
func (r *FileReport) Failed() bool {
	return r.Err != nil
}

// ProcessFile rewrites the vocals track of a MIDI file or of the chart inside
// an SNG package. The file on disk is only replaced after the whole rewrite
// succeeded. Panics are returned as errors.
func ProcessFile(path string, opts Options) (report *FileReport) {
	report = &FileReport{Path: path}

	defer func() {
		if r := recover(); r != nil {
			report.Err = fmt.Errorf("panic while processing: %v", r)
		}
	}()

	cfg := opts.Config
	if cfg == nil {
		cfg = DefaultConfig()
	}
	words := NewWordSource(cfg.Lexicon, opts.Seed)

	if strings.ToLower(filepath.Ext(path)) == ".sng" {
		processSngFile(report, cfg, words, opts.DryRun)
	} else {
		processMidiFile(report, cfg, words, opts.DryRun)
	}

	return report
}

func processMidiFile(report *FileReport, cfg *Config, words WordSource, dryRun bool) {
	info, err := os.Stat(report.Path)
	if err != nil {
		report.Err = err
		return
	}

	data, err := os.ReadFile(report.Path)
	if err != nil {
		report.Err = fmt.Errorf("error reading file: %w", err)
		return
	}

	out, result, err := RewriteMidiBytes(data, cfg, words)
	report.Result = result
	if errors.Is(err, ErrVocalsTrackNotFound) {
		report.Skipped = true
		return
	}
	if err != nil {
		report.Err = err
		return
	}

	if dryRun {
		return
	}

	report.BytesWritten, report.Err = writeFileAtomic(report.Path, info.Mode().Perm(), func(w io.Writer) (int64, error) {
		n, err := w.Write(out)
		return int64(n), err
	})
}

func processSngFile(report *FileReport, cfg *Config, words WordSource, dryRun bool) {
	info, err := os.Stat(report.Path)
	if err != nil {
		report.Err = err
		return
	}

	sng, err := OpenSngFile(report.Path)
	if err != nil {
		report.Err = fmt.Errorf("error opening SNG file: %w", err)
		return
	}
	defer sng.Close()

	if !sng.HasFile(sngChartFile) {
		report.Err = fmt.Errorf("no %s found in SNG package", sngChartFile)
		return
	}

	midiData, err := sng.ReadFile(sngChartFile)
	if err != nil {
		report.Err = fmt.Errorf("error reading %s: %w", sngChartFile, err)
		return
	}

	out, result, err := RewriteMidiBytes(midiData, cfg, words)
	report.Result = result
	if errors.Is(err, ErrVocalsTrackNotFound) {
		report.Skipped = true
		return
	}
	if err != nil {
		report.Err = err
		return
	}

	if dryRun {
		return
	}

	report.BytesWritten, report.Err = writeFileAtomic(report.Path, info.Mode().Perm(), func(w io.Writer) (int64, error) {
		return sng.WriteTo(w, map[string][]byte{sngChartFile: out})
	})
}

// writeFileAtomic writes destPath through a temporary file in the same
// directory that is renamed over it once complete
func writeFileAtomic(destPath string, perm os.FileMode, write func(w io.Writer) (int64, error)) (int64, error) {
	dir := filepath.Dir(destPath)
	tmpName := filepath.Join(dir, ".lazylip-"+uuid.NewString()+".tmp")

	tmp, err := os.OpenFile(tmpName, os.O_WRONLY|os.O_CREATE|os.O_EXCL, perm)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	// cleanup on failure, both calls are no-ops after the rename
	defer func() {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
	}()

	n, err := write(tmp)
	if err != nil {
		return n, fmt.Errorf("write temp file: %w", err)
	}

	if err := tmp.Sync(); err != nil {
		return n, fmt.Errorf("sync temp file: %w", err)
	}

	if err := tmp.Close(); err != nil {
		return n, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, destPath); err != nil {
		return n, fmt.Errorf("rename temp file: %w", err)
	}

	return n, nil
}

// RunBatch processes every path, at most opts.Jobs at a time, then logs the
// reports in input order. A failing file never stops the batch.
func RunBatch(paths []string, opts Options) []*FileReport {
	started := time.Now()
	reports := make([]*FileReport, len(paths))

	var progress *mpb.Progress
	var bar *mpb.Bar
	if len(paths) > 1 {
		progress = mpb.New(mpb.WithWidth(64), mpb.WithOutput(os.Stderr))
		bar = progress.AddBar(int64(len(paths)),
			mpb.PrependDecorators(
				decor.Name("Rewriting: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
			),
		)
	}

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}

	wg := sizedwaitgroup.New(jobs)
	for i, path := range paths {
		wg.Add()
		go func(i int, path string) {
			defer wg.Done()
			reports[i] = ProcessFile(path, opts)
			if bar != nil {
				bar.Increment()
			}
		}(i, path)
	}
	wg.Wait()

	if progress != nil {
		progress.Wait()
	}

	var rewritten, failed int
	var written int64
	for _, report := range reports {
		logReport(report, opts)

		switch {
		case report.Failed():
			failed++
		case !report.Skipped:
			rewritten++
			written += report.BytesWritten
		}
	}

	elapsed := durafmt.Parse(time.Since(started)).LimitFirstN(2).String()
	if opts.DryRun {
		log.Printf("Dry run: %d of %d files would be rewritten, %d failed (%s)", rewritten, len(reports), failed, elapsed)
	} else {
		log.Printf("Rewrote %d of %d files, %d failed, %s written (%s)", rewritten, len(reports), failed, humanize.Bytes(uint64(written)), elapsed)
	}

	return reports
}

func logReport(report *FileReport, opts Options) {
	if report.Result != nil {
		for _, d := range report.Result.Diagnostics.Records {
			if d.Severity == SeverityWarning || opts.Verbose {
				log.Printf("%s: %s", report.Path, d)
			}
		}
	}

	if report.Failed() {
		log.Printf("%s: error: %v", report.Path, report.Err)
		return
	}

	if report.Skipped {
		log.Printf("%s: no vocals track, left unmodified", report.Path)
		return
	}

	result := report.Result
	if opts.Verbose {
		log.Printf("%s: %d notes, %d phrases, %d labels, %d simultaneous notes removed",
			report.Path, len(result.Notes), len(result.Phrases), len(result.Labels), result.RemovedNotes)
	}

	if opts.ShowLyrics {
		cfg := opts.Config
		if cfg == nil {
			cfg = DefaultConfig()
		}
		fmt.Printf("Lyrics for: %s\n", report.Path)
		for _, line := range trackLyrics(result.Track, cfg) {
			fmt.Printf("  [%s] %s\n", line.Phrase, line.Text)
		}
	}
}
