package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/shared"

	"github.com/mistermakeithappen/jobconversiontracker-sub000/pkg/ports"
)

// Verdict keywords the judge prompt asks the model to answer with.
const (
	tokenAchieved     = "GOAL_ACHIEVED"
	tokenNotAchieved  = "GOAL_NOT_ACHIEVED"
	tokenInconclusive = "INCONCLUSIVE"
)

// EvaluateGoal implements ports.GoalJudge. The model is asked to reply with a
// single token: one of the declared outcome labels or a verdict keyword. An
// unparseable reply is treated as inconclusive rather than an error so the
// milestone simply stays on its node.
func (c *Client) EvaluateGoal(ctx context.Context, req ports.GoalRequest) (ports.GoalVerdict, error) {
	params := openai.ChatCompletionNewParams{
		Model:       shared.ChatModel(c.model),
		Temperature: openai.Float(0),
	}
	params.Messages = append(params.Messages, openai.SystemMessage(judgePrompt(req)))
	params.Messages = append(params.Messages, historyMessages(req.History)...)

	completion, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return ports.GoalVerdict{}, fmt.Errorf("goal evaluation request: %w", err)
	}
	if len(completion.Choices) == 0 {
		return ports.GoalVerdict{}, errors.New("goal evaluation returned no choices")
	}

	return parseVerdict(completion.Choices[0].Message.Content, req.PossibleOutcomes), nil
}

func judgePrompt(req ports.GoalRequest) string {
	var b strings.Builder
	b.WriteString("You judge whether a conversation goal has been achieved.\n")
	b.WriteString("Goal: ")
	b.WriteString(req.GoalDescription)
	b.WriteString("\n")
	if req.ExtraInstructions != "" {
		b.WriteString("Additional instructions: ")
		b.WriteString(req.ExtraInstructions)
		b.WriteString("\n")
	}
	if len(req.PossibleOutcomes) > 0 {
		b.WriteString("Possible outcomes: ")
		b.WriteString(strings.Join(req.PossibleOutcomes, ", "))
		b.WriteString("\n")
		b.WriteString("If the conversation clearly matches one outcome, reply with that outcome label exactly as written.\n")
	}
	fmt.Fprintf(&b, "Otherwise reply with exactly one of: %s, %s, %s.\n", tokenAchieved, tokenNotAchieved, tokenInconclusive)
	b.WriteString("Reply with the label only, nothing else.")
	return b.String()
}

// parseVerdict maps the model reply to a structured verdict. Outcome labels
// match exactly and case-sensitively, mirroring edge matching.
func parseVerdict(reply string, outcomes []string) ports.GoalVerdict {
	reply = strings.TrimSpace(reply)
	for _, outcome := range outcomes {
		if reply == outcome {
			return ports.GoalVerdict{Result: ports.GoalOutcome, Outcome: outcome}
		}
	}
	switch strings.ToUpper(reply) {
	case tokenAchieved:
		return ports.GoalVerdict{Result: ports.GoalAchieved}
	case tokenNotAchieved:
		return ports.GoalVerdict{Result: ports.GoalNotAchieved}
	default:
		return ports.GoalVerdict{Result: ports.GoalInconclusive}
	}
}
