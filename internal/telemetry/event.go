package telemetry

import "time"

type EventType string

const (
	EventTaskToggled      EventType = "task_toggled"
	EventQuestCompleted   EventType = "quest_completed"
	EventQuestAdded       EventType = "quest_added"
	EventRelicUnlocked    EventType = "relic_unlocked"
	EventDreamAdded       EventType = "dream_added"
	EventDreamIconReady   EventType = "dream_icon_ready"
	EventDreamIconFailed  EventType = "dream_icon_failed"
	EventCountryVisited   EventType = "country_visited"
	EventNavigatorApplied EventType = "navigator_applied"
	EventSyncFlushed      EventType = "sync_flushed"
	EventSyncFailed       EventType = "sync_failed"
)

// Tracked lists the store actions that become events; anything else is ignored.
var Tracked = map[string]EventType{
	string(EventTaskToggled):      EventTaskToggled,
	string(EventQuestCompleted):   EventQuestCompleted,
	string(EventQuestAdded):       EventQuestAdded,
	string(EventRelicUnlocked):    EventRelicUnlocked,
	string(EventDreamAdded):       EventDreamAdded,
	string(EventDreamIconReady):   EventDreamIconReady,
	string(EventDreamIconFailed):  EventDreamIconFailed,
	string(EventCountryVisited):   EventCountryVisited,
	string(EventNavigatorApplied): EventNavigatorApplied,
}

type Event struct {
	ID        int       `json:"id"`
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Metadata  string    `json:"metadata"`
}

type EventMetadata map[string]interface{}
