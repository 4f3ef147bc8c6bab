package coupling

import (
	"context"
	"runtime"
	"sort"
	"sync"

	pycmerrors "pycm/internal/errors"
	"pycm/internal/locator"
	"pycm/internal/logging"
	"pycm/internal/pyimports"
)

// defaultExcludePatterns is the metric layer's minimal exclusion set;
// callers normally pass the fuller configured list.
var defaultExcludePatterns = []string{"__pycache__", ".git", ".pytest_cache", "node_modules"}

// Options configures a coupling analysis run.
type Options struct {
	// ExcludePatterns are substrings of relative paths to skip.
	ExcludePatterns []string
	// MaxFileSizeBytes skips larger files; 0 means no limit.
	MaxFileSizeBytes int
	// Workers bounds the extraction pool; 0 means runtime.NumCPU.
	Workers int
}

// Analyzer performs structural coupling analysis over a project.
type Analyzer struct {
	projectRoot string
	logger      *logging.Logger
	store       map[string]*pyimports.ModuleRecord
}

// NewAnalyzer creates a new coupling analyzer
func NewAnalyzer(projectRoot string, logger *logging.Logger) *Analyzer {
	return &Analyzer{
		projectRoot: projectRoot,
		logger:      logger,
		store:       make(map[string]*pyimports.ModuleRecord),
	}
}

// Analyze locates sources, extracts their imports and computes per-module
// and project-wide coupling metrics. Extraction fans out over a worker
// pool; afferent coupling needs the complete dependency store, so a join
// barrier separates the two phases. A cancelled context aborts the whole
// run rather than returning partial data.
func (a *Analyzer) Analyze(ctx context.Context, opts Options) (*ProjectMetric, error) {
	if opts.ExcludePatterns == nil {
		opts.ExcludePatterns = defaultExcludePatterns
	}

	loc := locator.NewLocator(a.projectRoot, opts.ExcludePatterns, int64(opts.MaxFileSizeBytes), a.logger)
	files, err := loc.Locate(ctx)
	if err != nil {
		return nil, err
	}

	if err := a.collectDependencies(ctx, files, opts.Workers); err != nil {
		return nil, err
	}

	metrics := a.computeModuleMetrics()

	a.logger.Info("coupling analysis completed", map[string]interface{}{
		"project": a.projectRoot,
		"modules": len(metrics),
	})

	return a.aggregate(metrics), nil
}

// collectDependencies extracts every file into the dependency store. The
// store is key-unique and insensitive to completion order; after the
// WaitGroup join it is treated as read-only.
func (a *Analyzer) collectDependencies(ctx context.Context, files []locator.SourceFile, workers int) error {
	a.store = make(map[string]*pyimports.ModuleRecord, len(files))
	if len(files) == 0 {
		return nil
	}

	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan locator.SourceFile)
	var (
		mu       sync.Mutex
		firstErr error
		wg       sync.WaitGroup
	)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			// Tree-sitter parsers are not safe for concurrent use;
			// each worker owns one.
			extractor := pyimports.NewExtractor(a.projectRoot)
			for file := range jobs {
				record, err := extractor.ExtractFile(runCtx, file.Path, file.AbsPath)
				if err != nil {
					if pycmerrors.CodeOf(err) == pycmerrors.UnreadableFile {
						a.logger.Warn("excluding unreadable file", map[string]interface{}{
							"file":  file.Path,
							"error": err.Error(),
						})
						continue
					}
					mu.Lock()
					if firstErr == nil {
						firstErr = err
					}
					mu.Unlock()
					cancel()
					continue
				}
				mu.Lock()
				a.store[record.ModulePath] = record
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, file := range files {
			select {
			case jobs <- file:
			case <-runCtx.Done():
				return
			}
		}
	}()

	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	if err := ctx.Err(); err != nil {
		return pycmerrors.Wrap(pycmerrors.AnalysisFailed, "analysis aborted", err)
	}
	return nil
}

// computeModuleMetrics derives Ca, Ce and the dependent metrics for every
// stored module, sorted by module path for stable output.
func (a *Analyzer) computeModuleMetrics() []CouplingMetric {
	metrics := make([]CouplingMetric, 0, len(a.store))
	for path, record := range a.store {
		efferent := len(record.InternalImports)
		afferent := a.afferentCoupling(path)
		metrics = append(metrics, NewCouplingMetric(path, afferent, efferent, record.LinesOfCode))
	}

	sort.Slice(metrics, func(i, j int) bool {
		return metrics[i].ModulePath < metrics[j].ModulePath
	})
	return metrics
}

// afferentCoupling counts the other modules whose internal imports refer
// to the target, each at most once.
func (a *Analyzer) afferentCoupling(target string) int {
	targetNorm := NormalizeModuleIdentifier(target)

	count := 0
	for path, record := range a.store {
		if path == target {
			continue
		}
		for _, imported := range record.InternalImports {
			if modulesMatch(NormalizeModuleIdentifier(imported), targetNorm) {
				count++
				break
			}
		}
	}
	return count
}

// aggregate reduces module metrics into the project metric. An empty
// store yields a genuinely empty result, which is distinct from failure.
func (a *Analyzer) aggregate(metrics []CouplingMetric) *ProjectMetric {
	project := &ProjectMetric{
		ProjectPath:   a.projectRoot,
		ModuleCount:   len(metrics),
		ModuleMetrics: metrics,
	}
	if len(metrics) == 0 {
		return project
	}

	totalInstability := 0.0
	for _, m := range metrics {
		project.TotalInternalDependencies += m.EfferentCoupling
		totalInstability += m.Instability
		if m.AfferentCoupling > project.MaxAfferentCoupling {
			project.MaxAfferentCoupling = m.AfferentCoupling
		}
		if m.EfferentCoupling > project.MaxEfferentCoupling {
			project.MaxEfferentCoupling = m.EfferentCoupling
		}
	}

	project.AverageInstability = totalInstability / float64(len(metrics))
	project.DependencyDensity = dependencyDensity(project.TotalInternalDependencies, len(metrics))
	return project
}

// DependencyGraph returns the internal-import adjacency map built by the
// last Analyze call. Edge lists are sorted for stable output.
func (a *Analyzer) DependencyGraph() map[string][]string {
	graph := make(map[string][]string, len(a.store))
	for path, record := range a.store {
		edges := make([]string, len(record.InternalImports))
		copy(edges, record.InternalImports)
		sort.Strings(edges)
		graph[path] = edges
	}
	return graph
}

// Record returns the stored extraction record for a module path, if any.
func (a *Analyzer) Record(modulePath string) (*pyimports.ModuleRecord, bool) {
	record, ok := a.store[modulePath]
	return record, ok
}
