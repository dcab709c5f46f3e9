package costing

import "sort"

// RecoveryActivity describes a debt-reducing activity the service can
// suggest scheduling.
type RecoveryActivity struct {
	Kind            string `json:"activity_type"`
	Name            string `json:"name"`
	PointValue      int    `json:"point_value"`
	DurationMinutes int    `json:"duration_minutes"`
	Description     string `json:"description"`
}

// SuggestRecoveryActivities returns the recovery catalog for a given
// overdraft, strongest offsets first. A non-positive overdraft yields none.
func SuggestRecoveryActivities(overdraft int) []RecoveryActivity {
	if overdraft <= 0 {
		return nil
	}

	activities := []RecoveryActivity{
		{
			Kind:            "micro_break",
			Name:            "Micro Break",
			PointValue:      RecoveryMicroBreak,
			DurationMinutes: 10,
			Description:     "Quick 5-10 minute reset to reduce overload.",
		},
		{
			Kind:            "walk_30min",
			Name:            "30 Min Walk",
			PointValue:      RecoveryWalk,
			DurationMinutes: 30,
			Description:     "Light movement to restore focus and reduce stress.",
		},
		{
			Kind:            "deep_rest_60min",
			Name:            "Deep Rest Block",
			PointValue:      RecoveryDeepRest,
			DurationMinutes: 60,
			Description:     "Protected quiet time to rebuild cognitive surplus.",
		},
		{
			Kind:            "exercise",
			Name:            "Exercise Session",
			PointValue:      RecoveryExercise,
			DurationMinutes: 45,
			Description:     "Moderate workout to reset stress and recovery.",
		},
		{
			Kind:            "nature_2hr",
			Name:            "Nature Recharge",
			PointValue:      RecoveryNature,
			DurationMinutes: 120,
			Description:     "Extended outdoor time for full mental reset.",
		},
	}

	sort.Slice(activities, func(i, j int) bool {
		return activities[i].PointValue < activities[j].PointValue
	})
	return activities
}
