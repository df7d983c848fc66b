package ports

import (
	"context"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/domain"
)

// GoalResult is the judgment category returned by the goal evaluator.
type GoalResult string

const (
	// GoalOutcome means a specific declared outcome label matched; the label
	// is carried in GoalVerdict.Outcome.
	GoalOutcome     GoalResult = "outcome"
	GoalAchieved    GoalResult = "goal_achieved"
	GoalNotAchieved GoalResult = "goal_not_achieved"
	// GoalInconclusive means the judge could not decide; the milestone stays
	// on the current node and awaits another inbound message.
	GoalInconclusive GoalResult = "inconclusive"
)

// GoalVerdict is the structured judgment for one milestone evaluation.
type GoalVerdict struct {
	Result  GoalResult
	Outcome string
}

// GoalRequest is the input contract of the judgment collaborator.
type GoalRequest struct {
	GoalDescription   string
	ExtraInstructions string
	History           []domain.HistoryEntry
	PossibleOutcomes  []string
}

// GoalJudge is the external judgment collaborator deciding whether a
// milestone's goal has been achieved.
type GoalJudge interface {
	EvaluateGoal(ctx context.Context, req GoalRequest) (GoalVerdict, error)
}

// GenerateRequest is the input contract of the language-generation
// collaborator used by ai nodes.
type GenerateRequest struct {
	SystemPrompt string
	Temperature  float64
	MaxTokens    int
	History      []domain.HistoryEntry
	UserMessage  string
}

// TextGenerator produces conversational text for ai nodes.
type TextGenerator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
}
