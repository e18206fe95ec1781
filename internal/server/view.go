package server

import (
	"time"

	"terranova/internal/avatar"
	"terranova/internal/dream"
	"terranova/internal/game"
	"terranova/internal/stat"
	"terranova/internal/travel"
)

type statView struct {
	Value int     `json:"value"`
	Max   int     `json:"max"`
	Fill  float64 `json:"fill"`
}

type avatarView struct {
	avatar.Avatar
	Title       string  `json:"title"`
	TotalPoints float64 `json:"totalPoints"`
}

// StateView is the snapshot plus everything the UI derives from it.
type StateView struct {
	game.State
	Legacy          map[string]int         `json:"legacyStats"`
	StatBars        map[stat.Name]statView `json:"statBars"`
	AvatarView      avatarView             `json:"avatarView"`
	VisibleDreams   []dream.Dream          `json:"visibleDreams"`
	ArchivedDreams  []dream.Dream          `json:"archivedDreams"`
	PinnedDreams    int                    `json:"pinnedDreams"`
	Trinkets        []travel.Trinket       `json:"trinkets"`
	FreedomProgress float64                `json:"freedomProgress"`
	DaysToFreedom   int                    `json:"daysToFreedom"`
}

func newStateView(st game.State, now time.Time) StateView {
	bars := make(map[stat.Name]statView, len(stat.All))
	for n, r := range st.Stats.Readings() {
		bars[n] = statView{Value: r.Value, Max: r.Max, Fill: st.Stats.Fill(n)}
	}
	days := game.DaysUntil(now, st.FreedomDate)
	return StateView{
		State:    st,
		Legacy:   st.Stats.Legacy(),
		StatBars: bars,
		AvatarView: avatarView{
			Avatar:      st.Avatar,
			Title:       avatar.Title(st.Avatar.Appearance.Clothes),
			TotalPoints: avatar.TotalPoints(st.Stats),
		},
		VisibleDreams:   dream.Visible(st.Dreams),
		ArchivedDreams:  dream.Archived(st.Dreams),
		PinnedDreams:    dream.PinnedCount(st.Dreams),
		Trinkets:        travel.Trinkets(st.Visited),
		FreedomProgress: travel.FreedomProgress(st.Stats.Capital, st.TravelDreams),
		DaysToFreedom:   days,
	}
}
