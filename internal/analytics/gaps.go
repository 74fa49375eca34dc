package analytics

import (
	"sort"
	"strings"
	"time"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// Remediation gap reasons, a fixed closed set.
const (
	ReasonMissingEvidence       = "missing-evidence"
	ReasonOwnerNotAssigned      = "owner-not-assigned"
	ReasonOutdatedPolicy        = "outdated-policy"
	ReasonControlNotTested      = "control-not-tested"
	ReasonControlNotImplemented = "control-not-implemented"
)

var gapLabels = map[string]string{
	ReasonMissingEvidence:       "Missing evidence",
	ReasonOwnerNotAssigned:      "Owner not assigned",
	ReasonOutdatedPolicy:        "Outdated policy",
	ReasonControlNotTested:      "Control not tested",
	ReasonControlNotImplemented: "Control not implemented",
}

// gapPriority orders reasons for deterministic tie-breaking when counts
// are equal. The order mirrors classification priority.
var gapPriority = map[string]int{
	ReasonMissingEvidence:       0,
	ReasonOwnerNotAssigned:      1,
	ReasonOutdatedPolicy:        2,
	ReasonControlNotTested:      3,
	ReasonControlNotImplemented: 4,
}

// classifyGap assigns exactly one remediation-gap reason to a control whose
// resolved status is not COMPLIANT. Rules are an explicit priority list;
// the first match wins. A control with no evidence and no owner reports
// only missing-evidence.
func (e *Engine) classifyGap(idx *index, c catalog.Control, rec ControlStatusRecord, now time.Time) string {
	docs := idx.docsByControl[c.ID]
	if len(docs) == 0 {
		return ReasonMissingEvidence
	}
	if !c.HasOwner() {
		return ReasonOwnerNotAssigned
	}
	if e.policyEvidence(c, docs) && rec.LastEvidence != nil &&
		ageDays(*rec.LastEvidence, now) >= e.opts.PolicyStaleDays {
		return ReasonOutdatedPolicy
	}
	if _, evaluated := idx.latestEvaluation(c.ID); !evaluated || rec.Status == catalog.StatusUnknown {
		return ReasonControlNotTested
	}
	return ReasonControlNotImplemented
}

// policyEvidence reports whether the control's evidence implies a policy
// document, either by document type/name keyword or because a mapped
// evidence request asks for one.
func (e *Engine) policyEvidence(c catalog.Control, docs []catalog.EvidenceDocument) bool {
	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.DocType+" "+doc.DisplayName), "policy") {
			return true
		}
	}
	for _, ref := range c.Refs {
		if strings.Contains(strings.ToLower(ref.EvidenceRequest), "policy") {
			return true
		}
	}
	return false
}

// classifyGaps tallies gap reasons over all non-compliant controls and
// returns the top reasons by count, capped at maxGapReasons.
func (e *Engine) classifyGaps(idx *index, records map[string]ControlStatusRecord, now time.Time) []ReasonCount {
	tally := make(map[string]int)
	for _, c := range idx.controls {
		rec := records[c.ID]
		if rec.Status == catalog.StatusCompliant {
			continue
		}
		tally[e.classifyGap(idx, c, rec, now)]++
	}
	return rankReasons(tally, maxGapReasons)
}

// rankDrivers is the simplified three-reason variant used for dominant risk
// drivers. Same non-compliant population, same ordering; anything left over
// defaults to missing-evidence.
func (e *Engine) rankDrivers(idx *index, records map[string]ControlStatusRecord) []ReasonCount {
	tally := make(map[string]int)
	for _, c := range idx.controls {
		rec := records[c.ID]
		if rec.Status == catalog.StatusCompliant {
			continue
		}
		switch {
		case len(idx.docsByControl[c.ID]) == 0:
			tally[ReasonMissingEvidence]++
		case !c.HasOwner():
			tally[ReasonOwnerNotAssigned]++
		default:
			if _, evaluated := idx.latestEvaluation(c.ID); !evaluated {
				tally[ReasonControlNotTested]++
			} else {
				tally[ReasonMissingEvidence]++
			}
		}
	}
	return rankReasons(tally, maxDriverReasons)
}

const (
	maxGapReasons    = 5
	maxDriverReasons = 3
)

func rankReasons(tally map[string]int, limit int) []ReasonCount {
	out := make([]ReasonCount, 0, len(tally))
	for reason, count := range tally {
		out = append(out, ReasonCount{ReasonID: reason, Label: gapLabels[reason], Count: count})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return gapPriority[out[i].ReasonID] < gapPriority[out[j].ReasonID]
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}
