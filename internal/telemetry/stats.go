package telemetry

import (
	"encoding/json"
	"time"
)

type Stats struct {
	Period            string            `json:"period"`
	EventCounts       map[EventType]int `json:"event_counts"`
	TaskCompletions   int               `json:"task_completions"`
	TaskReversals     int               `json:"task_reversals"`
	CompletionsByCat  map[string]int    `json:"completions_by_category"`
	QuestsCompleted   int               `json:"quests_completed"`
	RelicsUnlocked    int               `json:"relics_unlocked"`
	DreamsAdded       int               `json:"dreams_added"`
	IconSuccessRate   float64           `json:"icon_success_rate"`
	CountriesVisited  int               `json:"countries_visited"`
	SyncBatches       int               `json:"sync_batches"`
	SyncFailures      int               `json:"sync_failures"`
	ActiveDays        int               `json:"active_days"`
	CompletionsPerDay float64           `json:"completions_per_day"`
}

// CalculateStats summarizes events recorded since the given time.
func CalculateStats(events []Event, since time.Time) (Stats, error) {
	stats := Stats{
		Period:           since.Format("2006-01-02"),
		EventCounts:      make(map[EventType]int),
		CompletionsByCat: make(map[string]int),
	}
	days := map[string]bool{}
	iconsReady, iconsFailed := 0, 0

	for _, event := range events {
		stats.EventCounts[event.Type]++
		days[event.Timestamp.UTC().Format("2006-01-02")] = true

		var metadata EventMetadata
		if err := json.Unmarshal([]byte(event.Metadata), &metadata); err != nil {
			continue
		}

		switch event.Type {
		case EventTaskToggled:
			if done, _ := metadata["completed"].(bool); done {
				stats.TaskCompletions++
				if cat, ok := metadata["category"].(string); ok {
					stats.CompletionsByCat[cat]++
				}
			} else {
				stats.TaskReversals++
			}
		case EventQuestCompleted:
			stats.QuestsCompleted++
		case EventRelicUnlocked:
			stats.RelicsUnlocked++
		case EventDreamAdded:
			stats.DreamsAdded++
		case EventDreamIconReady:
			iconsReady++
		case EventDreamIconFailed:
			iconsFailed++
		case EventCountryVisited:
			stats.CountriesVisited++
		case EventSyncFlushed:
			stats.SyncBatches++
		case EventSyncFailed:
			stats.SyncBatches++
			stats.SyncFailures++
		}
	}

	if n := iconsReady + iconsFailed; n > 0 {
		stats.IconSuccessRate = float64(iconsReady) / float64(n)
	}
	stats.ActiveDays = len(days)
	if stats.ActiveDays > 0 {
		stats.CompletionsPerDay = float64(stats.TaskCompletions) / float64(stats.ActiveDays)
	}
	return stats, nil
}
