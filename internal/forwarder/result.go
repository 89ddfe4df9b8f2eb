package forwarder

// Outcome is what happened to a single notification.
type Outcome string

const (
	OutcomeForwarded Outcome = "forwarded"
	OutcomeSkipped   Outcome = "skipped"
	OutcomeFailed    Outcome = "failed"
)

// Stage names the step a failed notification stopped at.
type Stage string

const (
	StageDecodeKey  Stage = "decode_key"
	StageFetch      Stage = "fetch"
	StageDecompress Stage = "decompress"
	StagePublish    Stage = "publish"
	StageInternal   Stage = "internal"
)

// Result describes the processing of one S3 object.
type Result struct {
	Bucket  string
	Key     string
	Outcome Outcome
	Stage   Stage  // set for OutcomeFailed
	Reason  string // set for OutcomeSkipped and OutcomeFailed
	Err     error

	Stream         string
	Events         int
	MalformedLines int
	FilteredLines  int
}

// Summary collects the results of one invocation in notification order.
type Summary struct {
	Results []Result
}

// Counts is an aggregate view of a Summary.
type Counts struct {
	Forwarded      int
	Skipped        int
	Failed         int
	Events         int
	MalformedLines int
	FilteredLines  int
}

func (s Summary) Counts() Counts {
	var c Counts
	for _, r := range s.Results {
		switch r.Outcome {
		case OutcomeForwarded:
			c.Forwarded++
		case OutcomeSkipped:
			c.Skipped++
		case OutcomeFailed:
			c.Failed++
		}
		c.Events += r.Events
		c.MalformedLines += r.MalformedLines
		c.FilteredLines += r.FilteredLines
	}
	return c
}
