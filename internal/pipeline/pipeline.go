// Package pipeline runs the two-stage document generation: fetch content for
// every selected file, summarize each file (map), then synthesize one
// Markdown document from the ordered summaries (reduce).
package pipeline

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/repodoc/internal/ai"
	"github.com/repodoc/internal/logging"
	"github.com/repodoc/internal/prompts"
	"github.com/repodoc/internal/tree"
	"github.com/repodoc/pkg/models"
)

// State names the pipeline's position in a run.
type State string

const (
	StateIdle         State = "idle"
	StateFetching     State = "fetching-content"
	StateSummarizing  State = "summarizing"
	StateSynthesizing State = "synthesizing"
	StateDone         State = "done"
	StateFailed       State = "failed"
)

const defaultAICallInterval = time.Second

// FileReader resolves one selected file's body, normally through the cached
// provider client.
type FileReader interface {
	ReadFileRevision(ctx context.Context, repo models.RepositoryID, path, revision string) (*models.FileContent, error)
}

// Options tune a Generator.
type Options struct {
	// LogDir receives the run transcript files; empty keeps transcripts
	// in memory only.
	LogDir string
	// AICallInterval is the fixed delay between summarization calls.
	AICallInterval time.Duration
}

// Generator owns the generation state machine. A new Generate call
// supersedes any in-flight run: stage results are committed only by the run
// that still owns the current generation number, so late results from a
// superseded run are discarded instead of racing the new run's state.
type Generator struct {
	reader    FileReader
	provider  ai.Provider
	builder   *prompts.Builder
	aiLimiter *rate.Limiter
	logDir    string

	generation atomic.Uint64

	mu           sync.Mutex
	state        State
	interactions []models.Interaction
	document     *models.Document
}

// NewGenerator creates a pipeline over the given content reader and AI
// provider.
func NewGenerator(reader FileReader, provider ai.Provider, opts Options) *Generator {
	interval := opts.AICallInterval
	if interval <= 0 {
		interval = defaultAICallInterval
	}
	return &Generator{
		reader:    reader,
		provider:  provider,
		builder:   prompts.NewBuilder(),
		aiLimiter: rate.NewLimiter(rate.Every(interval), 1),
		logDir:    opts.LogDir,
		state:     StateIdle,
	}
}

// State returns the pipeline's current state.
func (g *Generator) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Document returns the document from the last successful run, or nil.
func (g *Generator) Document() *models.Document {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.document
}

// Interactions returns a copy of the AI interaction record for the current
// or last run.
func (g *Generator) Interactions() []models.Interaction {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Interaction, len(g.interactions))
	copy(out, g.interactions)
	return out
}

// Generate runs the full pipeline for the given selection, in selection
// order, and returns the synthesized document. Starting a new run clears the
// previous run's document and interaction record immediately.
func (g *Generator) Generate(ctx context.Context, files []tree.SelectedFile, goal string) (*models.Document, error) {
	gen := g.generation.Add(1)

	g.mu.Lock()
	g.document = nil
	g.interactions = nil
	g.state = StateFetching
	g.mu.Unlock()

	runID := uuid.NewString()[:8]
	logger, err := logging.StartRunLogging(runID, g.logDir)
	if err != nil {
		log.Warn().Err(err).Msg("run transcript file unavailable, keeping transcript in memory")
		logger = logging.NewMemoryLogger(runID)
		logging.SetCurrentLogger(logger)
	}
	defer logger.Close()
	logger.LogSection("FETCHING CONTENT")
	logger.Log("Run %s: %d files selected", runID, len(files))

	contents, err := g.fetchContents(ctx, gen, logger, files)
	if err != nil {
		return nil, g.fail(gen, logger, err)
	}

	if !g.setState(gen, StateSummarizing) {
		return nil, ErrSuperseded
	}
	logger.LogSection("SUMMARIZING")

	summaries, err := g.summarize(ctx, gen, logger, contents)
	if err != nil {
		return nil, g.fail(gen, logger, err)
	}

	if !g.setState(gen, StateSynthesizing) {
		return nil, ErrSuperseded
	}
	logger.LogSection("SYNTHESIZING")

	document, err := g.synthesize(ctx, gen, logger, files, summaries, goal)
	if err != nil {
		return nil, g.fail(gen, logger, err)
	}

	g.mu.Lock()
	if g.generation.Load() != gen {
		g.mu.Unlock()
		logger.Log("Run %s superseded; discarding document", runID)
		return nil, ErrSuperseded
	}
	g.state = StateDone
	g.document = document
	g.mu.Unlock()

	logger.LogSection("DONE")
	logger.Log("Document generated: %d chars from %d files", len(document.Markdown), len(summaries))
	return document, nil
}

// fetchContents resolves every selected file serially. Per-file failures are
// logged and skipped; an empty batch fails the run.
func (g *Generator) fetchContents(ctx context.Context, gen uint64, logger *logging.RunLogger, files []tree.SelectedFile) ([]*models.FileContent, error) {
	contents := make([]*models.FileContent, 0, len(files))
	for _, file := range files {
		if g.generation.Load() != gen {
			return nil, ErrSuperseded
		}

		content, err := g.reader.ReadFileRevision(ctx, file.Repo, file.Path, file.Revision)
		if err != nil {
			logger.Log("SKIP %s:%s: %v", file.Repo, file.Path, err)
			log.Warn().Str("repo", string(file.Repo)).Str("path", file.Path).Err(err).Msg("file fetch failed")
			continue
		}
		logger.Log("Fetched %s:%s (%d bytes)", file.Repo, file.Path, content.Size)
		contents = append(contents, content)
	}

	if len(contents) == 0 {
		return nil, ErrNoContentFetched
	}
	logger.Log("Content fetched for %d/%d files", len(contents), len(files))
	return contents, nil
}

// summarize runs the map stage: one AI call per fetched file, in order, with
// a fixed delay before each call. Any failure is fatal to the run.
func (g *Generator) summarize(ctx context.Context, gen uint64, logger *logging.RunLogger, contents []*models.FileContent) ([]models.FileSummary, error) {
	summaries := make([]models.FileSummary, 0, len(contents))
	for _, content := range contents {
		if g.generation.Load() != gen {
			return nil, ErrSuperseded
		}
		if err := g.aiLimiter.Wait(ctx); err != nil {
			return nil, err
		}

		prompt := g.builder.BuildSummaryPrompt(*content)
		summary, raw, err := g.provider.Summarize(ctx, prompt)
		g.record(gen, prompt, raw)
		if err != nil {
			return nil, &GenerationError{
				Stage:           "summarization",
				Path:            content.Path,
				ProviderMessage: err.Error(),
				Err:             err,
			}
		}

		logger.Log("Summarized %s (%d chars)", content.Path, len(summary))
		summaries = append(summaries, models.FileSummary{Path: content.Path, Summary: summary})
	}
	return summaries, nil
}

// synthesize runs the reduce stage: exactly one AI call over the ordered
// summaries and the goal prompt.
func (g *Generator) synthesize(ctx context.Context, gen uint64, logger *logging.RunLogger, files []tree.SelectedFile, summaries []models.FileSummary, goal string) (*models.Document, error) {
	if g.generation.Load() != gen {
		return nil, ErrSuperseded
	}

	prompt := g.builder.BuildSynthesisPrompt(summaries, goal)
	markdown, raw, err := g.provider.Synthesize(ctx, prompt)
	g.record(gen, prompt, raw)
	if err != nil {
		return nil, &GenerationError{
			Stage:           "synthesis",
			ProviderMessage: err.Error(),
			Err:             err,
		}
	}
	if markdown == "" {
		return nil, ErrEmptyDocument
	}

	logger.Log("Synthesis complete (%d chars)", len(markdown))
	return &models.Document{
		Markdown:    markdown,
		SourceRepos: sourceRepoURLs(files),
		GeneratedAt: time.Now(),
	}, nil
}

// record appends one AI exchange to the interaction record, unless the run
// has been superseded.
func (g *Generator) record(gen uint64, request, response string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.generation.Load() != gen {
		return
	}
	g.interactions = append(g.interactions, models.Interaction{Request: request, Response: response})
}

// setState advances the state machine if this run still owns the current
// generation.
func (g *Generator) setState(gen uint64, state State) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.generation.Load() != gen {
		return false
	}
	g.state = state
	return true
}

func (g *Generator) fail(gen uint64, logger *logging.RunLogger, err error) error {
	logger.LogError("generation", err)
	g.setState(gen, StateFailed)
	return err
}

func sourceRepoURLs(files []tree.SelectedFile) []string {
	seen := make(map[models.RepositoryID]bool)
	var urls []string
	for _, file := range files {
		if seen[file.Repo] {
			continue
		}
		seen[file.Repo] = true
		urls = append(urls, file.Repo.URL())
	}
	return urls
}
