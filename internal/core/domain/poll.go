package domain

const (
	MinPollOptions = 2
	MaxPollOptions = 7
)

// Poll is a question together with the snapshot of its options taken when
// the poll was created. Live vote counts are never read from here.
type Poll struct {
	ID       string            `json:"id"`
	Question string            `json:"question"`
	Options  map[string]string `json:"options"`
}

// HasValidOptionCount reports whether the poll carries between
// MinPollOptions and MaxPollOptions options.
func (p *Poll) HasValidOptionCount() bool {
	n := len(p.Options)
	return n >= MinPollOptions && n <= MaxPollOptions
}

type Option struct {
	ID     string `json:"id"`
	PollID string `json:"poll_id"`
	Text   string `json:"text"`
	Votes  int64  `json:"votes"`
}
