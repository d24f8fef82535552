package mqtt

import "fmt"

// Topic prefixes for the simeval topic tree.
//
//	simeval/system/status                  online/offline (retained, LWT)
//	simeval/evaluation/latest              summary of the most recent run (retained)
//	simeval/evaluation/runs/<run>/report   full report JSON (retained)
//	simeval/evaluation/energy/<location>   per-location Wh of the latest run (retained)
const (
	// TopicPrefix is the root of every topic this service publishes.
	TopicPrefix = "simeval"

	// TopicPrefixSystem is the base for system topics.
	TopicPrefixSystem = TopicPrefix + "/system"

	// TopicPrefixEvaluation is the base for evaluation results.
	TopicPrefixEvaluation = TopicPrefix + "/evaluation"
)

// Topics provides builders for simeval MQTT topics.
//
//	topic := mqtt.Topics{}.EvaluationReport(runID)
//	// Returns: "simeval/evaluation/runs/<runID>/report"
type Topics struct{}

// SystemStatus returns the topic for service online/offline status.
//
// Example: simeval/system/status
func (Topics) SystemStatus() string {
	return TopicPrefixSystem + "/status"
}

// EvaluationReport returns the topic carrying the report of one run.
//
// Example: simeval/evaluation/runs/4f1c.../report
func (Topics) EvaluationReport(runID string) string {
	return fmt.Sprintf("%s/runs/%s/report", TopicPrefixEvaluation, runID)
}

// LocationEnergy returns the topic carrying the consumption of one location.
//
// Example: simeval/evaluation/energy/RwnD0_RwD3_sub
func (Topics) LocationEnergy(location string) string {
	return fmt.Sprintf("%s/energy/%s", TopicPrefixEvaluation, location)
}

// EvaluationLatest returns the topic carrying the latest run summary.
func (Topics) EvaluationLatest() string {
	return TopicPrefixEvaluation + "/latest"
}
