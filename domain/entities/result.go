package entities

// ResultStatus represents the outcome of installing or updating one plugin.
type ResultStatus string

const (
	ResultInstalled ResultStatus = "installed"
	ResultUpdated   ResultStatus = "updated"
	ResultSkipped   ResultStatus = "skipped"
	ResultPlanned   ResultStatus = "planned"
	ResultFailed    ResultStatus = "failed"
)

// PluginResult reports what happened to a single plugin.
type PluginResult struct {
	Plugin      string
	Status      ResultStatus
	Registry    string
	FromVersion string
	ToVersion   string
	Err         error
}

// Summary tallies a batch of plugin results.
type Summary struct {
	Results []PluginResult
}

// Count returns the number of results with the given status.
func (s Summary) Count(status ResultStatus) int {
	n := 0
	for _, r := range s.Results {
		if r.Status == status {
			n++
		}
	}
	return n
}

// Failed reports whether any plugin in the batch failed.
func (s Summary) Failed() bool {
	return s.Count(ResultFailed) > 0
}
