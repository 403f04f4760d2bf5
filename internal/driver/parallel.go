package driver

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"ren/internal/core"
	"ren/internal/observ"
	"ren/internal/project"
	"ren/internal/source"
	"ren/internal/trace"
	"ren/internal/vm"
)

// ScriptExt is the extension ListScripts looks for.
const ScriptExt = ".r"

// Options configures a batch run.
type Options struct {
	// Jobs bounds how many scripts run at once; 0 uses GOMAXPROCS.
	Jobs int
	// Runtime is copied for every interpreter. Its Files and Stdout are
	// replaced by the ones below.
	Runtime vm.Config
	// Stdout receives PRINT output of all scripts; writes are serialized.
	Stdout io.Writer
	Files  *source.FileSet
	Cache  *DiskCache
	Sink   ProgressSink
}

// Result is the outcome of one script.
type Result struct {
	Path   string
	FileID source.FileID
	// Value is the molded result of the script, empty on error.
	Value  string
	Err    error
	Cached bool
	Stats  core.HeapStats
	Timing observ.Report
}

// ListScripts returns the *.r files under dir, sorted.
func ListScripts(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(path, ScriptExt) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// RunFiles runs each script in its own interpreter, several at a time.
// Script failures are reported in the results; the returned error is
// only set when ctx ends the batch early.
func RunFiles(ctx context.Context, paths []string, opts Options) ([]Result, error) {
	if opts.Files == nil {
		opts.Files = source.NewFileSet()
	}
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	opts.Stdout = &lockedWriter{w: opts.Stdout}
	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	tracer := opts.Runtime.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
		opts.Runtime.Tracer = tracer
	}
	span := trace.Begin(tracer, trace.ScopeSession, "run_files", trace.ParentSpan(ctx))
	span.WithExtra("files", fmt.Sprint(len(paths)))
	defer span.End("")

	results := make([]Result, len(paths))
	if len(paths) == 0 {
		return results, nil
	}
	for _, p := range paths {
		emit(opts.Sink, Event{File: p, Stage: StageLoad, Status: StatusQueued})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(paths)))
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				results[i] = Result{Path: path, Err: err}
				return err
			}
			results[i] = runOne(gctx, path, opts)
			return nil
		})
	}
	err := g.Wait()
	status := StatusDone
	if err != nil {
		status = StatusError
	}
	emit(opts.Sink, Event{Stage: StageEval, Status: status, Err: err})
	return results, err
}

func runOne(ctx context.Context, path string, opts Options) (res Result) {
	res.Path = path
	timer := observ.NewTimer()
	start := time.Now()
	stage := StageLoad
	defer func() {
		res.Timing = timer.Report()
		evt := Event{File: path, Stage: stage, Status: StatusDone, Elapsed: time.Since(start)}
		if res.Err != nil {
			evt.Status, evt.Err = StatusError, res.Err
		}
		emit(opts.Sink, evt)
	}()

	emit(opts.Sink, Event{File: path, Stage: stage, Status: StatusWorking})
	idx := timer.Begin(observ.PhaseLoad)
	id, err := opts.Files.Load(path)
	timer.End(idx, "")
	if err != nil {
		res.Err = fmt.Errorf("load %s: %w", path, err)
		return res
	}
	res.FileID = id
	file := opts.Files.Get(id)

	cfg := opts.Runtime
	cfg.Files = opts.Files
	cfg.Stdout = opts.Stdout
	cfg.Tracer = trace.WithLane(cfg.Tracer, filepath.Base(path))
	in := vm.New(cfg)
	defer func() {
		if err := in.Close(); err != nil && res.Err == nil {
			res.Err = err
		}
	}()

	stage = StageScan
	emit(opts.Sink, Event{File: path, Stage: stage, Status: StatusWorking})
	idx = timer.Begin(observ.PhaseScan)
	code, cached, err := scanFile(in, file, opts.Cache, cfg.Tracer)
	note := ""
	if cached {
		note = "cached"
	}
	timer.End(idx, note)
	if err != nil {
		res.Err = err
		return res
	}
	res.Cached = cached

	stage = StageEval
	emit(opts.Sink, Event{File: path, Stage: stage, Status: StatusWorking})
	idx = timer.Begin(observ.PhaseEval)
	v, err := in.Eval(ctx, "do", in.R(code))
	timer.End(idx, "")
	res.Stats = in.Heap().Stats()
	timer.Add(observ.PhaseRecycle, res.Stats.RecycleTime, fmt.Sprintf("%d cycles, %d swept", res.Stats.Recycles, res.Stats.TotalSwept))
	if err != nil {
		res.Err = err
		return res
	}
	res.Value = in.Mold(v)
	if v != nil {
		in.Release(v)
	}
	return res
}

// scanFile returns the scanned block of a file, from the cache when an
// entry for the same path and text exists.
func scanFile(in *vm.Interp, file *source.File, cache *DiskCache, tracer trace.Tracer) (*vm.Value, bool, error) {
	key := KeyFor(project.Digest(file.Hash), file.Path)
	if cache != nil {
		var p ScanPayload
		ok, err := cache.Get(key, &p)
		if err == nil && ok && p.Hash == project.Digest(file.Hash) {
			if v, err := in.LoadImage(p.Image); err == nil {
				return v, true, nil
			}
		}
		if err != nil && tracer != nil {
			trace.Point(tracer, trace.ScopeSession, "scan_cache_error", err.Error())
		}
	}
	v, err := in.Transcode(string(file.Content), file.Path)
	if err != nil {
		return nil, false, err
	}
	if cache != nil {
		img, err := in.ImageOf(v)
		if err == nil {
			err = cache.Put(key, &ScanPayload{Path: file.Path, Hash: project.Digest(file.Hash), Image: img})
		}
		if err != nil {
			in.Release(v)
			return nil, false, fmt.Errorf("scan cache: %w", err)
		}
	}
	return v, false, nil
}

// ScanResult is the outcome of Scan.
type ScanResult struct {
	Path   string
	Molded string
	Cached bool
}

// Scan loads and scans one script without running it.
func Scan(path string, opts Options) (ScanResult, error) {
	if opts.Files == nil {
		opts.Files = source.NewFileSet()
	}
	id, err := opts.Files.Load(path)
	if err != nil {
		return ScanResult{}, fmt.Errorf("load %s: %w", path, err)
	}
	cfg := opts.Runtime
	cfg.Files = opts.Files
	in := vm.New(cfg)
	defer func() { _ = in.Close() }()
	v, cached, err := scanFile(in, opts.Files.Get(id), opts.Cache, cfg.Tracer)
	if err != nil {
		return ScanResult{}, err
	}
	defer in.Release(v)
	return ScanResult{Path: path, Molded: in.Mold(v), Cached: cached}, nil
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}
