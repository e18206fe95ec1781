package telemetry

import (
	"log"
	"strings"

	"terranova/internal/game"
	"terranova/internal/mirror"
)

// Recorder turns store changes and sync batches into events.
type Recorder struct {
	repo   Repository
	logger *log.Logger
}

func NewRecorder(repo Repository, logger *log.Logger) *Recorder {
	if logger == nil {
		logger = log.Default()
	}
	return &Recorder{repo: repo, logger: logger}
}

func (r *Recorder) record(t EventType, md EventMetadata) {
	if err := r.repo.RecordEvent(t, md); err != nil {
		r.logger.Printf("telemetry record failed type=%s err=%v", t, err)
	}
}

// OnChange is a game.Store subscriber.
func (r *Recorder) OnChange(st game.State, ch game.Change) {
	t, ok := Tracked[ch.Action]
	if !ok {
		return
	}
	md := EventMetadata{"seq": ch.Seq}
	if ch.Subject != "" {
		md["subject"] = ch.Subject
	}
	if t == EventTaskToggled {
		for _, tk := range st.Tasks {
			if tk.ID == ch.Subject {
				md["completed"] = tk.IsCompleted
				md["category"] = string(tk.Category)
			}
		}
	}
	r.record(t, md)
}

// OnBatch is a mirror.Options.OnBatch hook.
func (r *Recorder) OnBatch(b mirror.Batch) {
	docs := make([]string, 0, len(b.Written))
	for _, sl := range b.Written {
		docs = append(docs, string(sl))
	}
	if b.Err != nil {
		r.record(EventSyncFailed, EventMetadata{"written": strings.Join(docs, ","), "error": b.Err.Error()})
		return
	}
	r.record(EventSyncFlushed, EventMetadata{"written": strings.Join(docs, ",")})
}
