package task

import "time"

// Samples is the task list a fresh profile starts with.
func Samples(now time.Time) []Task {
	start := now.UTC()
	return []Task{
		{ID: "1", Title: "Complete Project Proposal", Category: CategoryWork, Duration: 60, StartTime: &start},
		{ID: "2", Title: "Morning Gym Session", Category: CategoryHealth, Duration: 45, IsCompleted: true, StartTime: &start},
		{ID: "3", Title: "Read 20 pages", Category: CategoryStudy, Duration: 30, StartTime: &start},
	}
}
