package domain

// IngestOptions selects which manifest rows a pipeline run processes.
type IngestOptions struct {
	ManifestPath string
	MaxResults   int // 0 = unlimited
	AgentFilter  string
	YearsBack    int
	TargetYear   int // 0 = unset
}

// IngestSummary is the end-of-run accounting printed to the operator.
type IngestSummary struct {
	Processed int
	Stored    int
	Created   int
	Updated   int
	Failed    int
	Fallbacks int
}
