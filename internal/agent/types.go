// Package agent is the autonomous loop: it drives the model against the
// tool registry until the objective is answered, the iteration budget
// runs out, or something asks it to stop.
package agent

// Command is a tool invocation the model asked for.
type Command struct {
	Name   string                 `json:"name"`
	Params map[string]interface{} `json:"params,omitempty"`
}

// ParsedResponse is the structured form of one model turn. At least one
// field is set; when both Answer and Command are present, Answer wins
// and the command is never dispatched.
type ParsedResponse struct {
	Thought string   `json:"thought,omitempty"`
	Command *Command `json:"command,omitempty"`
	Answer  string   `json:"answer,omitempty"`
}

// Status classifies how a run ended.
type Status string

const (
	// StatusCompleted means the model produced a final answer, either
	// directly or through the finish tool.
	StatusCompleted Status = "completed"
	// StatusInterrupted means an interrupt message or queue-level
	// failure stopped the run.
	StatusInterrupted Status = "interrupted"
	// StatusMaxIterations means the iteration budget was exhausted.
	StatusMaxIterations Status = "max_iterations"
	// StatusLoopDetected means the model kept issuing the identical
	// command and the stall detector cut the run short.
	StatusLoopDetected Status = "loop_detected"
	// StatusUnsure means a well-formed response carried neither an
	// answer nor a command.
	StatusUnsure Status = "unsure"
	// StatusError means an unrecoverable failure (provider outage,
	// tool panic) ended the run.
	StatusError Status = "error"
)

// RunResult is the terminal outcome of one run. Answer is the text shown
// to the user: the model's answer for StatusCompleted, a fixed notice
// otherwise.
type RunResult struct {
	Status Status
	Answer string
}
