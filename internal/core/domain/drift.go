package domain

// OptionDrift describes an option whose counter disagrees with the number
// of audit records pointing at it. A positive Missing means votes were
// counted without a matching audit record.
type OptionDrift struct {
	PollID   string `json:"poll_id"`
	OptionID string `json:"option_id"`
	Counted  int64  `json:"counted"`
	Audited  int64  `json:"audited"`
	Missing  int64  `json:"missing"`
}
