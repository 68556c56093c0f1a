package analysis

// ImageDetail is the fidelity hint forwarded to the inference service.
type ImageDetail string

const (
	DetailHigh ImageDetail = "high"
	DetailLow  ImageDetail = "low"
)

// Attempt is one rung of the escalation ladder: a fully rendered prompt pair
// plus the call parameters for that rung. Attempts are static configuration
// data; the orchestrator iterates them in ordinal order and never mutates them.
type Attempt struct {
	Ordinal      int
	SystemPrompt string
	UserPrompt   string
	Detail       ImageDetail
	Temperature  float32
}

// Ladder builds the ordered attempt sequence for a product type.
type Ladder func(ProductType) []Attempt
