// internal/app/app.go
package app

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"github.com/sirupsen/logrus"

	"contactmap/internal/cli"
	"contactmap/internal/cmdutil"
	"contactmap/internal/config"
	"contactmap/internal/dataset"
	"contactmap/internal/fasta"
	"contactmap/internal/pipeline"
	"contactmap/internal/version"
	"contactmap/internal/writers"
)

// uploader copies finished artifacts somewhere else.
type uploader interface {
	Upload(ctx context.Context, files []string) ([]string, error)
}

// newUploader is replaced in tests.
var newUploader = func(target writers.S3Target, opts writers.S3Options) (uploader, error) {
	return writers.NewS3Uploader(target, opts)
}

// RunContext runs the contact-map tool and returns the process exit code:
// 0 ok, NoMatchExitCode when nothing was kept, 2 usage or config errors,
// 3 I/O errors, 130 cancelled.
func RunContext(parent context.Context, argv []string, stdout, stderr io.Writer) int {
	outw := bufio.NewWriter(stdout)
	defer func() { _ = outw.Flush() }()

	fs := cli.NewFlagSet("contactmap")
	fs.SetOutput(io.Discard)

	if len(argv) == 0 {
		argv = []string{"-h"}
	}

	opts, err := cli.ParseArgs(fs, argv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			fs.SetOutput(outw)
			fs.Usage()
			return flushCode(outw, stderr, 0)
		}
		_, _ = fmt.Fprintln(stderr, err)
		fs.SetOutput(outw)
		fs.Usage()
		return flushCode(outw, stderr, 2)
	}

	if opts.Version {
		_, _ = fmt.Fprintf(outw, "contactmap version %s\n", version.Version)
		return flushCode(outw, stderr, 0)
	}

	log := cmdutil.NewLogger(stderr, opts.Quiet, opts.Verbose)

	cfg, err := config.Load(opts.ConfigFile)
	if err == nil {
		cfg, err = config.ApplyEnv(cfg, opts.EnvFiles...)
	}
	if err != nil {
		log.Error(err)
		return 2
	}
	cfg = opts.Overlay(cfg)
	if err := cfg.Validate(); err != nil {
		log.Errorf("config: %v", err)
		return 2
	}

	var target writers.S3Target
	if opts.Upload != "" {
		if target, err = writers.ParseS3URL(opts.Upload); err != nil {
			log.Error(err)
			return 2
		}
	}

	var loadOpts []dataset.Option
	if opts.Sequences != "" {
		seqs, err := fasta.ReadFile(opts.Sequences)
		if err != nil {
			log.Error(err)
			return 3
		}
		loadOpts = append(loadOpts, dataset.WithSequences(seqs))
	}
	ds, err := dataset.LoadFile(opts.Dataset, dataset.DefaultColumns(), loadOpts...)
	if err != nil {
		log.Error(err)
		if errors.Is(err, dataset.ErrMissingColumn) {
			return 2
		}
		return 3
	}
	if ds.Filled > 0 {
		log.WithField("rows", ds.Filled).Info("sequences filled from FASTA")
	}
	for _, d := range ds.Dropped {
		log.WithFields(logrus.Fields{"id": d.ID, "line": d.Line}).Warnf("dropped row: %s", d.Reason)
	}

	thr := opts.Threads
	if thr <= 0 {
		thr = runtime.NumCPU()
	}

	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		log.Error(err)
		return 3
	}
	skipFile, err := os.Create(filepath.Join(opts.OutDir, writers.SkipsFile))
	if err != nil {
		log.Error(err)
		return 3
	}
	defer skipFile.Close()
	skips, skipErr := writers.StartSkipWriter(skipFile, thr*4)
	for _, d := range ds.Dropped {
		skips <- writers.Skip{ID: d.ID, Reason: d.Reason}
	}

	inputs := ds.Inputs(dataset.Layout{PDBDir: opts.PDBDir, AFDir: opts.AFDir})
	log.WithFields(logrus.Fields{
		"records": len(inputs), "threads": thr, "classes": ds.Classes.Len(),
	}).Info("processing dataset")

	bar := cmdutil.StartProgress(stderr, len(inputs), opts.Progress && !opts.Quiet)
	recs, sum, runErr := pipeline.Run(parent, pipeline.Config{
		Threads: thr,
		OnResult: func(r pipeline.Result) {
			bar.Increment()
			if f := r.Failure; f != nil {
				log.WithFields(logrus.Fields{
					"id": r.Input.ID, "side": f.Side, "reason": f.Reason,
				}).Debugf("skipped: %v", f.Err)
				skips <- writers.SkipFromResult(r)
			}
		},
	}, inputs, pipeline.NewChain(cfg, opts.MaxOpen))
	bar.Finish()

	close(skips)
	if werr := <-skipErr; werr != nil {
		log.Errorf("skip log: %v", werr)
		return 3
	}
	if runErr != nil {
		if errors.Is(runErr, context.Canceled) || errors.Is(runErr, context.DeadlineExceeded) {
			log.Warn("cancelled")
			return 130
		}
		log.Error(runErr)
		return 3
	}

	set := &writers.Set{
		Records: recs,
		Classes: ds.Classes,
		Size:    cfg.TargetSize,
		Manifest: writers.NewManifest(version.Version, opts.Dataset, cfg, sum,
			len(ds.Dropped), ds.Classes.Names()),
	}
	paths, err := writers.WriteSet(parent, opts.OutDir, set)
	if err != nil {
		log.Errorf("write artifacts: %v", err)
		return 3
	}

	if opts.Upload != "" {
		up, err := newUploader(target, writers.S3Options{
			Region:    opts.Region,
			AccessKey: config.Lookup("AWS_ACCESS_KEY_ID", opts.EnvFiles...),
			SecretKey: config.Lookup("AWS_SECRET_ACCESS_KEY", opts.EnvFiles...),
		})
		if err == nil {
			_, err = up.Upload(parent, append(paths, filepath.Join(opts.OutDir, writers.SkipsFile)))
		}
		if err != nil {
			log.Errorf("upload: %v", err)
			return 3
		}
		log.WithField("target", target.String()).Info("uploaded artifacts")
	}

	log.WithFields(logrus.Fields{
		"kept": sum.Kept, "skipped": sum.Skipped + len(ds.Dropped), "run_id": set.Manifest.RunID,
	}).Info("done")
	writeSummary(outw, set.Manifest)
	if code := flushCode(outw, stderr, 0); code != 0 {
		return code
	}
	if sum.Kept == 0 {
		return opts.NoMatchExitCode
	}
	return 0
}

// Run is RunContext without cancellation.
func Run(argv []string, stdout, stderr io.Writer) int {
	return RunContext(context.Background(), argv, stdout, stderr)
}

// writeSummary prints the end-of-run counts as tab-separated lines.
func writeSummary(w io.Writer, m writers.Manifest) {
	fmt.Fprintf(w, "run_id\t%s\n", m.RunID)
	fmt.Fprintf(w, "total\t%d\n", m.Total)
	fmt.Fprintf(w, "kept\t%d\n", m.Kept)
	fmt.Fprintf(w, "skipped\t%d\n", m.Skipped)
	if m.Dropped > 0 {
		fmt.Fprintf(w, "skipped.missing_sequence\t%d\n", m.Dropped)
	}
	reasons := make([]string, 0, len(m.Reasons))
	for r := range m.Reasons {
		reasons = append(reasons, r)
	}
	sort.Strings(reasons)
	for _, r := range reasons {
		fmt.Fprintf(w, "skipped.%s\t%d\n", r, m.Reasons[r])
	}
}

// flushCode flushes w and maps the result to an exit code; a broken pipe
// is not an error.
func flushCode(w *bufio.Writer, stderr io.Writer, code int) int {
	if err := w.Flush(); writers.IsBrokenPipe(err) {
		return 0
	} else if err != nil {
		_, _ = fmt.Fprintln(stderr, err)
		return 3
	}
	return code
}
