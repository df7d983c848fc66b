package domain

import (
	"fmt"

	"github.com/mitchellh/mapstructure"
)

// NodeType identifies the behavior of a workflow step.
type NodeType string

// Closed set of node types understood by the engine.
const (
	NodeTypeStart           NodeType = "start"
	NodeTypeMessage         NodeType = "message"
	NodeTypeMilestone       NodeType = "milestone"
	NodeTypeBookAppointment NodeType = "book_appointment"
	NodeTypeCondition       NodeType = "condition"
	NodeTypeAction          NodeType = "action"
	NodeTypeVariable        NodeType = "variable"
	NodeTypeAI              NodeType = "ai"
	NodeTypeEnd             NodeType = "end"
)

// KnownNodeTypes lists every type the engine can dispatch on.
var KnownNodeTypes = []NodeType{
	NodeTypeStart,
	NodeTypeMessage,
	NodeTypeMilestone,
	NodeTypeBookAppointment,
	NodeTypeCondition,
	NodeTypeAction,
	NodeTypeVariable,
	NodeTypeAI,
	NodeTypeEnd,
}

// Valid reports whether t is a member of the closed node-type set.
func (t NodeType) Valid() bool {
	for _, k := range KnownNodeTypes {
		if t == k {
			return true
		}
	}
	return false
}

// Position is the 2-D layout coordinate owned by the external editor.
// It has no effect on execution.
type Position struct {
	X float64 `json:"x" yaml:"x" mapstructure:"x"`
	Y float64 `json:"y" yaml:"y" mapstructure:"y"`
}

// Node is one step in the conversation graph.
//
// Config holds the raw type-specific settings as produced by the editor.
// Handlers decode it into the matching typed config struct on demand; unknown
// keys survive the editor's partial-update merge and are simply ignored here.
type Node struct {
	ID       string         `json:"id" yaml:"id" mapstructure:"id"`
	Type     NodeType       `json:"type" yaml:"type" mapstructure:"type"`
	Title    string         `json:"title,omitempty" yaml:"title,omitempty" mapstructure:"title"`
	Config   map[string]any `json:"config,omitempty" yaml:"config,omitempty" mapstructure:"config"`
	Position Position       `json:"position" yaml:"position,omitempty" mapstructure:"position"`
}

// Name returns the display label, falling back to the node ID.
func (n *Node) Name() string {
	if n.Title != "" {
		return n.Title
	}
	return n.ID
}

// StartConfig configures a start node.
type StartConfig struct {
	WelcomeMessage string `mapstructure:"welcome_message"`
	SkipWelcome    bool   `mapstructure:"skip_welcome"`
}

// MessageConfig configures a message node.
type MessageConfig struct {
	Text string `mapstructure:"text"`
}

// MilestoneConfig configures a milestone node whose transition is decided by
// an AI judgment of goal achievement.
type MilestoneConfig struct {
	GoalDescription   string   `mapstructure:"goal_description"`
	ExtraInstructions string   `mapstructure:"extra_instructions"`
	PossibleOutcomes  []string `mapstructure:"possible_outcomes"`
}

// CustomCondition is an extra named comparison declared on a condition node.
// A matching custom condition routes to the conditional edge carrying its label.
type CustomCondition struct {
	Label    string `mapstructure:"label"`
	Field    string `mapstructure:"field"`
	Operator string `mapstructure:"operator"`
	Value    string `mapstructure:"value"`
}

// ConditionConfig configures a condition node. The primary comparison yields
// the "true"/"false" branches; custom conditions are checked first, in
// declaration order.
type ConditionConfig struct {
	Field    string            `mapstructure:"field"`
	Operator string            `mapstructure:"operator"`
	Value    string            `mapstructure:"value"`
	Custom   []CustomCondition `mapstructure:"custom_conditions"`
}

// ActionNodeConfig configures an action node: an ordered list of side effects.
type ActionNodeConfig struct {
	Actions []Action `mapstructure:"actions"`
}

// VariableConfig configures a variable node.
type VariableConfig struct {
	Name  string `mapstructure:"name"`
	Value any    `mapstructure:"value"`
}

// AIConfig configures an ai node whose message is produced by a
// language-generation collaborator.
type AIConfig struct {
	SystemPrompt   string  `mapstructure:"system_prompt"`
	Temperature    float64 `mapstructure:"temperature"`
	MaxTokens      int     `mapstructure:"max_tokens"`
	IncludeHistory bool    `mapstructure:"include_history"`
}

// BookingConfig configures a book_appointment node.
type BookingConfig struct {
	CalendarID          string `mapstructure:"calendar_id"`
	ConfirmationMessage string `mapstructure:"confirmation_message"`
}

// EndConfig configures an end node.
type EndConfig struct {
	Message     string `mapstructure:"message"`
	SaveHistory bool   `mapstructure:"save_history"`
}

// DecodeConfig decodes the node's raw config map into the typed struct for
// its kind. Unknown keys are ignored so editor-side extensions do not break
// execution.
func (n *Node) DecodeConfig(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return fmt.Errorf("config decoder for node %s: %w", n.ID, err)
	}
	if err := dec.Decode(n.Config); err != nil {
		return fmt.Errorf("decode config of node %s (%s): %w", n.ID, n.Type, err)
	}
	return nil
}
