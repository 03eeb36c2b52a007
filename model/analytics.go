package model

import "time"

// OperationEvent records one pattern operation run through the engine.
type OperationEvent struct {
	Operation  string        `json:"operation"` // match, search, findall, sub, split or corpus
	Pattern    string        `json:"pattern"`
	SentenceID string        `json:"sentence_id,omitempty"`
	Matched    bool          `json:"matched"`
	Failed     bool          `json:"failed"`
	Took       time.Duration `json:"took"`
	Timestamp  time.Time     `json:"timestamp"`
}

// AnalyticsDashboard summarizes recent pattern operations.
type AnalyticsDashboard struct {
	TotalOperations          int                          `json:"total_operations"`
	OperationsChangePercent  float64                      `json:"operations_change_percent"`
	AvgResponseTime          int64                        `json:"avg_response_time_us"`
	ResponseTimeChange       string                       `json:"response_time_change"` // "up", "down" or "stable"
	MatchRate                float64                      `json:"match_rate"`           // percent of successful operations that matched
	FailureRate              float64                      `json:"failure_rate"`         // percent of operations that failed
	StoredSentences          int                          `json:"stored_sentences"`
	Performance24h           []OperationPerformanceHourly `json:"performance_24h"`
	PopularPatterns          []PopularPattern             `json:"popular_patterns"`
	OperationUsage           []OperationUsage             `json:"operation_usage"`
	ResponseTimeDistribution ResponseTimeDistribution     `json:"response_time_distribution"`
	SystemHealth             SystemHealth                 `json:"system_health"`
}

// OperationPerformanceHourly is the load of one hour of the day.
type OperationPerformanceHourly struct {
	Hour            int   `json:"hour"`
	OperationCount  int   `json:"operation_count"`
	AvgResponseTime int64 `json:"avg_response_time_us"`
}

// PopularPattern is a frequently run pattern.
type PopularPattern struct {
	Pattern   string  `json:"pattern"`
	RunCount  int     `json:"run_count"`
	MatchRate float64 `json:"match_rate"`
}

// OperationUsage counts the runs of one operation.
type OperationUsage struct {
	Operation string `json:"operation"`
	RunCount  int    `json:"run_count"`
	Matched   int    `json:"matched"`
	Failed    int    `json:"failed"`
}

// ResponseTimeDistribution buckets operation latencies.
type ResponseTimeDistribution struct {
	Bucket0To100us       int     `json:"bucket_0_100us"`
	Bucket100usTo1ms     int     `json:"bucket_100us_1ms"`
	Bucket1To10ms        int     `json:"bucket_1_10ms"`
	Bucket10msPlus       int     `json:"bucket_10ms_plus"`
	Percentage0To100us   float64 `json:"percentage_0_100us"`
	Percentage100usTo1ms float64 `json:"percentage_100us_1ms"`
	Percentage1To10ms    float64 `json:"percentage_1_10ms"`
	Percentage10msPlus   float64 `json:"percentage_10ms_plus"`
}

// SystemHealth is a snapshot of the process.
type SystemHealth struct {
	MemoryUsage float64 `json:"memory_usage"` // percent of memory obtained from the OS that is allocated
	Goroutines  int     `json:"goroutines"`
}
