package tree

// Statistic is the derived progress snapshot for one learning path.
type Statistic struct {
	TotalLessons     int `json:"total_lessons"`
	CompletedLessons int `json:"completed_lessons"`
	RemainingLessons int `json:"remaining_lessons"`
	OverallProgress  int `json:"overall_progress"`
}

// ReduceStatistic folds a single lesson status transition into the snapshot.
// Only transitions crossing the COMPLETED boundary move the counters; the
// overall percentage is recomputed from the resulting counts.
func ReduceStatistic(prev Statistic, transition Transition) Statistic {
	next := prev

	switch {
	case transition.EntersCompleted():
		next.CompletedLessons++
		next.RemainingLessons--
	case transition.LeavesCompleted():
		next.CompletedLessons--
		next.RemainingLessons++
	default:
		return prev
	}

	if next.CompletedLessons < 0 {
		next.CompletedLessons = 0
	}
	if next.CompletedLessons > next.TotalLessons {
		next.CompletedLessons = next.TotalLessons
	}
	next.RemainingLessons = next.TotalLessons - next.CompletedLessons

	next.OverallProgress = overallProgress(next.CompletedLessons, next.TotalLessons)
	return next
}

// NewStatistic builds a snapshot from raw counts.
func NewStatistic(total, completed int) Statistic {
	if total < 0 {
		total = 0
	}
	if completed < 0 {
		completed = 0
	}
	if completed > total {
		completed = total
	}
	return Statistic{
		TotalLessons:     total,
		CompletedLessons: completed,
		RemainingLessons: total - completed,
		OverallProgress:  overallProgress(completed, total),
	}
}

func overallProgress(completed, total int) int {
	if total == 0 {
		return 0
	}
	return completed * 100 / total
}
