// Package analytics records pattern operations and summarizes them for the
// dashboard route.
package analytics

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/gcbaptista/go-natex/model"
)

const (
	// DataFileName is the analytics file inside the data directory.
	DataFileName    = "analytics.json"
	maxEventsToKeep = 10000 // Keep last 10k events for performance
	popularPatterns = 5
)

// Service implements analytics tracking and reporting
type Service struct {
	mutex        sync.RWMutex
	events       []model.OperationEvent
	dataFilePath string
	now          func() time.Time
}

// NewService creates an analytics service. Events are kept in memory and
// written to dataFilePath by Flush; an empty path keeps them in memory only.
func NewService(dataFilePath string) (*Service, error) {
	service := &Service{
		events:       make([]model.OperationEvent, 0),
		dataFilePath: dataFilePath,
		now:          time.Now,
	}

	// Load existing analytics data
	if err := service.loadData(); err != nil {
		return nil, err
	}
	return service, nil
}

// Track records an operation. A zero timestamp is set to the current time.
func (s *Service) Track(event model.OperationEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if event.Timestamp.IsZero() {
		event.Timestamp = s.now()
	}
	s.events = append(s.events, event)

	// Keep only the latest events to prevent unbounded growth
	if len(s.events) > maxEventsToKeep {
		s.events = s.events[len(s.events)-maxEventsToKeep:]
	}
}

// Len returns the number of recorded events.
func (s *Service) Len() int {
	s.mutex.RLock()
	defer s.mutex.RUnlock()
	return len(s.events)
}

// Dashboard summarizes the last 24 hours against the 24 hours before, and
// the last week for pattern and operation usage.
func (s *Service) Dashboard() model.AnalyticsDashboard {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	now := s.now()
	yesterday := now.Add(-24 * time.Hour)
	lastWeek := now.Add(-7 * 24 * time.Hour)

	// Filter events for different time periods
	last24hEvents := filterEventsByTimeRange(s.events, yesterday, now)
	prev24hEvents := filterEventsByTimeRange(s.events, yesterday.Add(-24*time.Hour), yesterday)
	lastWeekEvents := filterEventsByTimeRange(s.events, lastWeek, now)

	matchRate, failureRate := rates(last24hEvents)
	return model.AnalyticsDashboard{
		TotalOperations:          len(last24hEvents),
		OperationsChangePercent:  calculateChangePercent(len(last24hEvents), len(prev24hEvents)),
		AvgResponseTime:          calculateAvgResponseTime(last24hEvents),
		ResponseTimeChange:       calculateResponseTimeChange(last24hEvents, prev24hEvents),
		MatchRate:                matchRate,
		FailureRate:              failureRate,
		Performance24h:           getHourlyPerformance(last24hEvents),
		PopularPatterns:          getPopularPatterns(lastWeekEvents),
		OperationUsage:           getOperationUsage(lastWeekEvents),
		ResponseTimeDistribution: getResponseTimeDistribution(last24hEvents),
		SystemHealth:             getSystemHealth(),
	}
}

// filterEventsByTimeRange returns events in (start, end]
func filterEventsByTimeRange(events []model.OperationEvent, start, end time.Time) []model.OperationEvent {
	var filtered []model.OperationEvent
	for _, event := range events {
		if event.Timestamp.After(start) && !event.Timestamp.After(end) {
			filtered = append(filtered, event)
		}
	}
	return filtered
}

// calculateChangePercent calculates percentage change between current and previous values
func calculateChangePercent(current, previous int) float64 {
	if previous == 0 {
		if current > 0 {
			return 100.0
		}
		return 0.0
	}
	return float64(current-previous) / float64(previous) * 100.0
}

// calculateAvgResponseTime calculates average response time in microseconds
func calculateAvgResponseTime(events []model.OperationEvent) int64 {
	if len(events) == 0 {
		return 0
	}

	var total time.Duration
	for _, event := range events {
		total += event.Took
	}
	return (total / time.Duration(len(events))).Microseconds()
}

// calculateResponseTimeChange compares average latencies with a 10% margin
func calculateResponseTimeChange(current, previous []model.OperationEvent) string {
	currentAvg := calculateAvgResponseTime(current)
	previousAvg := calculateAvgResponseTime(previous)

	if previousAvg == 0 {
		return "stable"
	}

	change := float64(currentAvg-previousAvg) / float64(previousAvg)
	if change > 0.1 {
		return "up"
	} else if change < -0.1 {
		return "down"
	}
	return "stable"
}

// rates returns the match rate of successful operations and the failure
// rate of all operations, both in percent.
func rates(events []model.OperationEvent) (float64, float64) {
	if len(events) == 0 {
		return 0, 0
	}
	var matched, failed int
	for _, event := range events {
		switch {
		case event.Failed:
			failed++
		case event.Matched:
			matched++
		}
	}
	failureRate := float64(failed) / float64(len(events)) * 100
	if failed == len(events) {
		return 0, failureRate
	}
	return float64(matched) / float64(len(events)-failed) * 100, failureRate
}

// getHourlyPerformance returns the operation count and latency per hour of the day
func getHourlyPerformance(events []model.OperationEvent) []model.OperationPerformanceHourly {
	hourlyData := make(map[int][]model.OperationEvent)

	for _, event := range events {
		hour := event.Timestamp.Hour()
		hourlyData[hour] = append(hourlyData[hour], event)
	}

	performance := make([]model.OperationPerformanceHourly, 0, 24)
	for hour := 0; hour < 24; hour++ {
		events := hourlyData[hour]
		performance = append(performance, model.OperationPerformanceHourly{
			Hour:            hour,
			OperationCount:  len(events),
			AvgResponseTime: calculateAvgResponseTime(events),
		})
	}

	return performance
}

// getPopularPatterns returns the most frequently run patterns
func getPopularPatterns(events []model.OperationEvent) []model.PopularPattern {
	type patternCount struct {
		pattern string
		runs    int
		done    int
		matched int
	}

	counts := make(map[string]*patternCount)
	for _, event := range events {
		if event.Pattern == "" {
			continue
		}
		pc, ok := counts[event.Pattern]
		if !ok {
			pc = &patternCount{pattern: event.Pattern}
			counts[event.Pattern] = pc
		}
		pc.runs++
		if !event.Failed {
			pc.done++
			if event.Matched {
				pc.matched++
			}
		}
	}

	patterns := make([]*patternCount, 0, len(counts))
	for _, pc := range counts {
		patterns = append(patterns, pc)
	}

	// Sort by count descending
	sort.Slice(patterns, func(i, j int) bool {
		if patterns[i].runs != patterns[j].runs {
			return patterns[i].runs > patterns[j].runs
		}
		return patterns[i].pattern < patterns[j].pattern
	})

	popular := make([]model.PopularPattern, 0, popularPatterns)
	for i, pc := range patterns {
		if i >= popularPatterns {
			break
		}
		var matchRate float64
		if pc.done > 0 {
			matchRate = float64(pc.matched) / float64(pc.done) * 100
		}
		popular = append(popular, model.PopularPattern{
			Pattern:   pc.pattern,
			RunCount:  pc.runs,
			MatchRate: matchRate,
		})
	}

	return popular
}

// getOperationUsage counts runs per operation, sorted by operation name
func getOperationUsage(events []model.OperationEvent) []model.OperationUsage {
	usage := make(map[string]*model.OperationUsage)
	for _, event := range events {
		u, ok := usage[event.Operation]
		if !ok {
			u = &model.OperationUsage{Operation: event.Operation}
			usage[event.Operation] = u
		}
		u.RunCount++
		switch {
		case event.Failed:
			u.Failed++
		case event.Matched:
			u.Matched++
		}
	}

	out := make([]model.OperationUsage, 0, len(usage))
	for _, u := range usage {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Operation < out[j].Operation })
	return out
}

// getResponseTimeDistribution returns response time distribution
func getResponseTimeDistribution(events []model.OperationEvent) model.ResponseTimeDistribution {
	dist := model.ResponseTimeDistribution{}
	total := len(events)

	if total == 0 {
		return dist
	}

	for _, event := range events {
		switch {
		case event.Took <= 100*time.Microsecond:
			dist.Bucket0To100us++
		case event.Took <= time.Millisecond:
			dist.Bucket100usTo1ms++
		case event.Took <= 10*time.Millisecond:
			dist.Bucket1To10ms++
		default:
			dist.Bucket10msPlus++
		}
	}

	// Calculate percentages
	dist.Percentage0To100us = float64(dist.Bucket0To100us) / float64(total) * 100
	dist.Percentage100usTo1ms = float64(dist.Bucket100usTo1ms) / float64(total) * 100
	dist.Percentage1To10ms = float64(dist.Bucket1To10ms) / float64(total) * 100
	dist.Percentage10msPlus = float64(dist.Bucket10msPlus) / float64(total) * 100

	return dist
}

// getSystemHealth returns current process metrics
func getSystemHealth() model.SystemHealth {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	return model.SystemHealth{
		MemoryUsage: float64(m.Alloc) / float64(m.Sys) * 100,
		Goroutines:  runtime.NumGoroutine(),
	}
}

// loadData loads analytics data from file
func (s *Service) loadData() error {
	if s.dataFilePath == "" {
		return nil
	}

	data, err := os.ReadFile(s.dataFilePath)
	if os.IsNotExist(err) {
		return nil // File doesn't exist yet, that's okay
	}
	if err != nil {
		return fmt.Errorf("failed to read analytics file: %w", err)
	}

	if err := json.Unmarshal(data, &s.events); err != nil {
		return fmt.Errorf("failed to unmarshal analytics data: %w", err)
	}
	return nil
}

// Flush saves analytics data to file
func (s *Service) Flush() error {
	if s.dataFilePath == "" {
		return nil
	}

	s.mutex.RLock()
	data, err := json.MarshalIndent(s.events, "", "  ")
	s.mutex.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to marshal analytics data: %w", err)
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(filepath.Dir(s.dataFilePath), 0755); err != nil {
		return fmt.Errorf("failed to create analytics directory: %w", err)
	}
	if err := os.WriteFile(s.dataFilePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write analytics file: %w", err)
	}
	return nil
}
