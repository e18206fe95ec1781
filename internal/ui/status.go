package ui

import (
	"fmt"
	"strings"
	"time"

	"terranova/internal/avatar"
	"terranova/internal/dream"
	"terranova/internal/game"
	"terranova/internal/quest"
	"terranova/internal/stat"
	"terranova/internal/travel"
)

const barWidth = 20

// RenderStatus is the terminal overview printed by `terranova status`.
func RenderStatus(st game.State, now time.Time) string {
	var b strings.Builder

	clothes := st.Avatar.Appearance.Clothes
	b.WriteString(Heading("", "Terra Nova"))
	b.WriteString("  ")
	b.WriteString(Muted.Render(fmt.Sprintf("level %d · %s · %.0f points", st.Avatar.Level, avatar.Title(clothes), avatar.TotalPoints(st.Stats))))
	b.WriteString("\n")
	if lu := st.PendingLevelUp; lu != nil {
		fmt.Fprintf(&b, "%s %s %s\n", BadgeLevelUp, IconRelic, Gold.Render(lu.Relic.Name))
	}
	b.WriteString("\n")

	var vitals []string
	for _, n := range stat.All {
		p, _ := stat.PolicyFor(n)
		vitals = append(vitals, fmt.Sprintf("%-12s %s %6d / %d", n, Bar(st.Stats.Fill(n), barWidth), st.Stats.Get(n), p.Max))
	}
	b.WriteString(Panel.Render(strings.Join(vitals, "\n")))
	b.WriteString("\n\n")

	days := game.DaysUntil(now, st.FreedomDate)
	progress := travel.FreedomProgress(st.Stats.Capital, st.TravelDreams)
	fmt.Fprintf(&b, "%s %s %.0f%%  %s\n", IconTravel, Bar(progress, barWidth), progress,
		Muted.Render(fmt.Sprintf("%d days to %s, %d countries", days, st.FreedomDate.Format("2006-01-02"), len(st.Visited))))

	active := quest.Active(st.Quests)
	b.WriteString("\n" + H2.Render(fmt.Sprintf("%s Quests (%d active)", IconQuest, len(active))) + "\n")
	for _, q := range active {
		fmt.Fprintf(&b, "  %s %s\n", q.Title, Gold.Render(fmt.Sprintf("+%d", q.Gold)))
	}

	visible := dream.Visible(st.Dreams)
	if len(visible) > 0 {
		b.WriteString("\n" + H2.Render(IconDream+" Dreams") + "\n")
		for _, d := range visible {
			mark := ""
			if d.IsPinned {
				mark = " " + IconPin
			}
			fmt.Fprintf(&b, "  %s%s\n", d.Title, mark)
		}
	}

	done := 0
	for _, t := range st.Tasks {
		if t.IsCompleted {
			done++
		}
	}
	b.WriteString("\n" + LabelValue("Tasks", fmt.Sprintf("%d/%d done", done, len(st.Tasks))) + "\n")
	return b.String()
}
