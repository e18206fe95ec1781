package quest

import "time"

func Seeds(now time.Time) []Quest {
	at := now.UTC()
	return []Quest{
		{
			ID:          "1",
			Title:       "The Bureaucrat's Maze",
			Description: "Navigate the complex web of administrative tasks to establish your sovereignty.",
			XP:          100,
			Gold:        50,
			Type:        "main",
			Status:      StatusActive,
			CreatedAt:   at,
		},
		{
			ID:          "2",
			Title:       "Deep Work Sprint",
			Description: `Complete 3 tasks in the "Work" category to boost your productivity.`,
			XP:          50,
			Gold:        25,
			Type:        "daily",
			Status:      StatusActive,
			CreatedAt:   at,
		},
	}
}
