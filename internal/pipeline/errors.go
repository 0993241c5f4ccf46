package pipeline

import (
	"errors"
	"fmt"
)

// ErrNoContentFetched means every selected file failed to fetch, so the run
// has nothing to work with.
var ErrNoContentFetched = errors.New("no file content could be fetched")

// ErrEmptyDocument means synthesis succeeded but produced an empty
// documentation field, which is useless to the user.
var ErrEmptyDocument = errors.New("synthesis produced an empty document")

// ErrSuperseded means a newer generation run took over while this one was
// in flight; its results were discarded.
var ErrSuperseded = errors.New("generation run superseded by a newer run")

// GenerationError is a fatal AI-stage failure carrying the provider's
// message. Summarization and synthesis failures are never recovered.
type GenerationError struct {
	Stage           string
	Path            string
	ProviderMessage string
	Err             error
}

func (e *GenerationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s failed for %s: %s", e.Stage, e.Path, e.ProviderMessage)
	}
	return fmt.Sprintf("%s failed: %s", e.Stage, e.ProviderMessage)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
