package task

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseImport_AppliesDefaults(t *testing.T) {
	tasks, err := ParseImport([]byte(`[{"title":"Standup"}]`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)

	got := tasks[0]
	assert.NotEmpty(t, got.ID)
	assert.Equal(t, "Standup", got.Title)
	assert.Equal(t, CategoryOther, got.Category)
	assert.Equal(t, 30, got.Duration)
	assert.False(t, got.IsCompleted)
	assert.False(t, got.IsAllDay)
}

func TestParseImport_SingleObject(t *testing.T) {
	tasks, err := ParseImport([]byte(`{"id":"abc","title":"Deep Work","category":"work","duration":60}`))
	require.NoError(t, err)
	require.Len(t, tasks, 1)
	assert.Equal(t, "abc", tasks[0].ID)
	assert.Equal(t, CategoryWork, tasks[0].Category)
	assert.Equal(t, 60, tasks[0].Duration)
}

func TestParseImport_Coercions(t *testing.T) {
	tasks, err := ParseImport([]byte(`[
		{"title":"", "duration":0, "isAllDay":1, "isCompleted":"yes", "category":"unknown"},
		{"title":"b", "duration":"45", "isAllDay":0, "isCompleted":null},
		{"title":"c", "duration":"soon", "startTime":"2026-05-01T09:00:00Z", "endTime":"garbage", "notes":"bring laptop"}
	]`))
	require.NoError(t, err)
	require.Len(t, tasks, 3)

	assert.Equal(t, "Untitled Task", tasks[0].Title)
	assert.Equal(t, 30, tasks[0].Duration)
	assert.True(t, tasks[0].IsAllDay)
	assert.True(t, tasks[0].IsCompleted)
	assert.Equal(t, CategoryOther, tasks[0].Category)

	assert.Equal(t, 45, tasks[1].Duration)
	assert.False(t, tasks[1].IsAllDay)
	assert.False(t, tasks[1].IsCompleted)

	assert.Equal(t, 30, tasks[2].Duration)
	require.NotNil(t, tasks[2].StartTime)
	assert.Equal(t, time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC), tasks[2].StartTime.UTC())
	assert.Nil(t, tasks[2].EndTime)
	assert.Equal(t, "bring laptop", tasks[2].Notes)
}

func TestParseImport_GeneratesDistinctIDs(t *testing.T) {
	tasks, err := ParseImport([]byte(`[{"title":"a"},{"title":"b"}]`))
	require.NoError(t, err)
	assert.NotEqual(t, tasks[0].ID, tasks[1].ID)
}

func TestParseImport_Rejects(t *testing.T) {
	cases := map[string]string{
		"malformed":  `[{"title":`,
		"empty":      ``,
		"scalar":     `42`,
		"non-object": `[{"title":"ok"}, 7]`,
		"null item":  `[null]`,
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseImport([]byte(in))
			assert.ErrorIs(t, err, ErrInvalidImport)
		})
	}
}
