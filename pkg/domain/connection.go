package domain

// ConnectionType classifies a directed edge between two nodes.
type ConnectionType string

const (
	// ConnectionStandard is the fallback edge used when no other edge matches.
	ConnectionStandard ConnectionType = "standard"
	// ConnectionGoalAchieved is followed when a milestone's goal is judged met.
	ConnectionGoalAchieved ConnectionType = "goal_achieved"
	// ConnectionGoalNotAchieved is followed when the goal is judged not met.
	ConnectionGoalNotAchieved ConnectionType = "goal_not_achieved"
	// ConnectionConditional is tied to one named outcome or condition branch
	// declared on the source node's config.
	ConnectionConditional ConnectionType = "conditional"
)

// Reserved branch identifiers used on conditional edges.
const (
	BranchTrue    = "true"
	BranchFalse   = "false"
	BranchDefault = "default"
	// BranchBooked routes a book_appointment node after a successful booking.
	BranchBooked = "booked"
)

// Connection is a directed, typed transition between two nodes.
type Connection struct {
	ID           string         `json:"id" yaml:"id" mapstructure:"id"`
	SourceNodeID string         `json:"source_node_id" yaml:"source" mapstructure:"source_node_id"`
	TargetNodeID string         `json:"target_node_id" yaml:"target" mapstructure:"target_node_id"`
	Type         ConnectionType `json:"connection_type" yaml:"type" mapstructure:"connection_type"`
	// Condition names the outcome/condition branch this edge serves.
	// Only meaningful for conditional edges.
	Condition string `json:"condition,omitempty" yaml:"condition,omitempty" mapstructure:"condition"`
	// Label is display only.
	Label string `json:"label,omitempty" yaml:"label,omitempty" mapstructure:"label"`
}
