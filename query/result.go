package query

import (
	"fmt"

	"github.com/poiesic/quaero/core"
)

// Stage names the step of answering that failed.
type Stage string

const (
	StageRequest    Stage = "request"
	StageRetrieval  Stage = "retrieval"
	StagePrompt     Stage = "prompt"
	StageGeneration Stage = "generation"
)

// NoResultsAnswer is returned when no chunk passes the relevance threshold.
const NoResultsAnswer = "I haven't found relevant documents to answer this question."

// Result is the outcome of answering one question. It is one of
// Answered, NoResults or Failed.
type Result interface {
	result()
}

// Answered carries a generated answer and the documents it drew on,
// one source per document, best first.
type Answered struct {
	Answer  string
	Sources []*core.Source
}

// NoResults means retrieval found nothing relevant. The generator was not called.
type NoResults struct {
	Answer string
}

// Failed means a stage returned an error. No partial answer is produced.
type Failed struct {
	Stage Stage
	Err   error
}

func (Answered) result()  {}
func (NoResults) result() {}
func (Failed) result()    {}

func (f Failed) Error() string {
	return fmt.Sprintf("query %s failed: %v", f.Stage, f.Err)
}

func (f Failed) Unwrap() error {
	return f.Err
}
