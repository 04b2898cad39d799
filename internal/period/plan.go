package period

// Plan computes which periods must be fetched to catch up from lastChecked to
// current.
//
// A device with no checkpoint fetches exactly the current period; there is no
// unbounded backfill on first run. Otherwise the plan covers every period
// strictly after lastChecked up to and including current-1 — the current
// period is still open and never fetched as complete data. The result is
// capped to the most recent maxLookback periods to bound request volume.
//
// Plan is deterministic: same inputs, same ordered plan.
func Plan(lastChecked *Period, current Period, maxLookback int) []Period {
	if lastChecked == nil {
		return []Period{current}
	}

	first := *lastChecked + 1
	last := current - 1
	if first > last {
		return nil
	}

	plan := make([]Period, 0, last-first+1)
	for p := first; p <= last; p++ {
		plan = append(plan, p)
	}
	if maxLookback > 0 && len(plan) > maxLookback {
		plan = plan[len(plan)-maxLookback:]
	}
	return plan
}
