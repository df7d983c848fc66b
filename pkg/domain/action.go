package domain

// ActionType identifies a side-effecting instruction attached to a node.
type ActionType string

const (
	ActionAddTag            ActionType = "add_tag"
	ActionRemoveTag         ActionType = "remove_tag"
	ActionSendWebhook       ActionType = "send_webhook"
	ActionSendEmail         ActionType = "send_email"
	ActionSendSMS           ActionType = "send_sms"
	ActionUpdateCustomField ActionType = "update_custom_field"
	ActionCreateOpportunity ActionType = "create_opportunity"
	ActionCustom            ActionType = "custom"
)

// Action is a single side-effecting instruction. String values inside Data may
// contain {{variable}} placeholders resolved at execution time.
type Action struct {
	Type ActionType     `json:"type" yaml:"type" mapstructure:"type"`
	Data map[string]any `json:"data,omitempty" yaml:"data,omitempty" mapstructure:"data"`
}

// ActionResult reports the outcome of one executed action. Actions are
// best-effort: a failed action is reported and execution moves on to the next.
type ActionResult struct {
	Type    ActionType `json:"type"`
	Success bool       `json:"success"`
	Output  any        `json:"output,omitempty"`
	Error   string     `json:"error,omitempty"`
}
