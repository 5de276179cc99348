package reconcile

import (
	"fmt"
	"sort"
	"strings"
)

// Plan compares the desired state against the indexed target state and
// produces the actions needed to converge. Planning is pure: it never
// touches the target and is safe to run for preview.
//
// Hosts referencing a cluster the catalog does not know fail planning
// individually; the rest of the plan is unaffected.
func Plan(desired []*DesiredHost, existing map[Key]ExistingHost, clusters ClusterCatalog) *SyncPlan {
	plan := &SyncPlan{}

	// Deterministic action order regardless of fetch order.
	ordered := make([]*DesiredHost, len(desired))
	copy(ordered, desired)
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].ExternalID != ordered[j].ExternalID {
			return ordered[i].ExternalID < ordered[j].ExternalID
		}
		return ordered[i].Name < ordered[j].Name
	})

	claimed := make(map[Key]struct{}, len(ordered))

	for _, d := range ordered {
		key := d.Key()

		if !clusters.Contains(d.Cluster) {
			plan.Errors = append(plan.Errors, &UnknownClusterError{Key: key, Cluster: d.Cluster})
			continue
		}

		current, found := existing[key]
		if !found {
			plan.Actions = append(plan.Actions, SyncAction{
				Type:    ActionCreate,
				Key:     key,
				Desired: d,
				Reason:  "host not present in target",
			})
			continue
		}
		claimed[key] = struct{}{}

		diff := Diff(*d, current)
		if diff.Empty() {
			plan.Actions = append(plan.Actions, SyncAction{
				Type:     ActionNoop,
				Key:      key,
				Desired:  d,
				Existing: &current,
				Reason:   "in sync",
			})
			continue
		}

		plan.Actions = append(plan.Actions, SyncAction{
			Type:     ActionUpdate,
			Key:      key,
			Desired:  d,
			Existing: &current,
			Diff:     &diff,
			Reason:   fmt.Sprintf("differs: %s", strings.Join(diff.Fields(), ", ")),
		})
	}

	for key := range existing {
		if _, ok := claimed[key]; !ok {
			plan.Unmatched = append(plan.Unmatched, key)
		}
	}
	sort.Slice(plan.Unmatched, func(i, j int) bool { return plan.Unmatched[i] < plan.Unmatched[j] })

	return plan
}

// Diff computes the field-level differences between a desired host and
// its existing counterpart.
func Diff(desired DesiredHost, existing ExistingHost) FieldDiff {
	var d FieldDiff

	if desired.Cluster != existing.Cluster {
		d.ClusterChanged = true
		d.ClusterFrom = existing.Cluster
		d.ClusterTo = desired.Cluster
	}

	d.HashtagsAdded, d.HashtagsRemoved = diffSets(desired.Hashtags, existing.Hashtags)
	d.TemplatesAdded, d.TemplatesRemoved = diffSets(desired.HostTemplates, existing.HostTemplates)

	// Template order is meaningful in the target: same set but a
	// different sequence still counts as a change.
	if len(d.TemplatesAdded) == 0 && len(d.TemplatesRemoved) == 0 {
		if len(desired.HostTemplates) != len(existing.HostTemplates) {
			d.TemplatesReordered = true
		} else {
			for i := range desired.HostTemplates {
				if desired.HostTemplates[i] != existing.HostTemplates[i] {
					d.TemplatesReordered = true
					break
				}
			}
		}
	}

	return d
}

// diffSets returns the elements only in want and only in have, both
// sorted. Order within the inputs is ignored.
func diffSets(want, have []string) (added, removed []string) {
	haveSet := make(map[string]struct{}, len(have))
	for _, v := range have {
		haveSet[v] = struct{}{}
	}
	wantSet := make(map[string]struct{}, len(want))
	for _, v := range want {
		wantSet[v] = struct{}{}
		if _, ok := haveSet[v]; !ok {
			added = append(added, v)
		}
	}
	for _, v := range have {
		if _, ok := wantSet[v]; !ok {
			removed = append(removed, v)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
