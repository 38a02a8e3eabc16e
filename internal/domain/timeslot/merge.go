package timeslot

// ===============================
// Merge Engine
// ===============================

// MergePlan is the outcome of coalescing a target interval with its
// time-adjacent same-kind neighbors. Result carries the target's identity and
// metadata widened to the merged span; Absorbed lists the neighbors that
// become redundant once Result is persisted.
type MergePlan struct {
	Result   Interval
	Absorbed []Interval
}

// Merged reports whether the plan changes anything.
func (p MergePlan) Merged() bool {
	return len(p.Absorbed) > 0
}

// PlanMerge coalesces target with every chain of same-kind intervals whose
// boundaries touch it exactly (end == other.start), on both sides. Booked
// appointments never merge. The computation is pure; the caller applies the
// plan atomically with the create/update that triggered it.
func PlanMerge(existing []Interval, target Interval) MergePlan {
	plan := MergePlan{Result: target}
	if target.Kind == KindAppointment {
		return plan
	}

	for {
		grew := false
		for _, e := range existing {
			if e.Kind != plan.Result.Kind || sameRecord(e, plan.Result) || absorbed(plan.Absorbed, e) {
				continue
			}
			switch {
			case e.End.Equal(plan.Result.Start):
				plan.Result.Start = e.Start
			case e.Start.Equal(plan.Result.End):
				plan.Result.End = e.End
			default:
				continue
			}
			plan.Absorbed = append(plan.Absorbed, e)
			grew = true
		}
		if !grew {
			return plan
		}
	}
}

func absorbed(list []Interval, e Interval) bool {
	for _, a := range list {
		if a.ID == e.ID && a.Start.Equal(e.Start) && a.End.Equal(e.End) {
			return true
		}
	}
	return false
}
