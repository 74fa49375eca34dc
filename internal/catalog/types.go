// Package catalog defines the record types consumed by the analytics engine:
// controls, evaluation events, evidence documents, and frameworks. All rows
// arriving from upstream collaborators pass through a validated construction
// step here, so the analytics packages never see malformed fields.
package catalog

import (
	"errors"
	"strings"
	"time"
)

// Status is the four-way compliance status of a control.
type Status string

const (
	StatusCompliant    Status = "COMPLIANT"
	StatusPartial      Status = "PARTIAL"
	StatusNotCompliant Status = "NOT_COMPLIANT"
	StatusUnknown      Status = "UNKNOWN"
)

// ParseStatus normalizes a raw status string. Unrecognized or empty input
// maps to StatusUnknown rather than an error; sparse upstream data must
// never fault the engine.
func ParseStatus(raw string) Status {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "COMPLIANT", "PASS", "PASSED":
		return StatusCompliant
	case "PARTIAL", "PARTIALLY_COMPLIANT":
		return StatusPartial
	case "NOT_COMPLIANT", "NON_COMPLIANT", "FAIL", "FAILED":
		return StatusNotCompliant
	default:
		return StatusUnknown
	}
}

// Common errors.
var (
	ErrMissingControlID = errors.New("control id is required")
	ErrMissingFramework = errors.New("framework name is required")
)

// FrameworkRef maps a control to one external framework requirement.
type FrameworkRef struct {
	Framework       string `json:"framework"`
	RefCode         string `json:"ref_code"`
	EvidenceRequest string `json:"evidence_request,omitempty"`
}

// Control is a single compliance requirement from the external catalog.
// Immutable within a request.
type Control struct {
	ID        string         `json:"id"`
	Code      string         `json:"code"`
	Title     string         `json:"title"`
	OwnerRole string         `json:"owner_role,omitempty"`
	Topic     string         `json:"topic"`
	Refs      []FrameworkRef `json:"refs,omitempty"`
}

// NewControl validates and normalizes a control row.
func NewControl(id, code, title, ownerRole, topic string, refs []FrameworkRef) (Control, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Control{}, ErrMissingControlID
	}
	return Control{
		ID:        id,
		Code:      strings.TrimSpace(code),
		Title:     strings.TrimSpace(title),
		OwnerRole: strings.TrimSpace(ownerRole),
		Topic:     strings.TrimSpace(topic),
		Refs:      refs,
	}, nil
}

// HasOwner reports whether an owning role is assigned.
func (c Control) HasOwner() bool {
	return c.OwnerRole != ""
}

// MappedTo reports whether the control maps to the named framework.
func (c Control) MappedTo(framework string) bool {
	for _, ref := range c.Refs {
		if strings.EqualFold(ref.Framework, framework) {
			return true
		}
	}
	return false
}

// IsGovernance reports whether the control belongs to a governance area.
// Governance controls upgrade medium-quality evidence to high.
func (c Control) IsGovernance() bool {
	code := strings.ToLower(c.Code)
	topic := strings.ToLower(c.Topic)
	return strings.Contains(code, "governance") ||
		strings.Contains(topic, "governance") ||
		strings.HasPrefix(code, "gov") ||
		strings.Contains(topic, "risk management")
}

// EvaluationEvent is one entry in the append-only evaluation history.
type EvaluationEvent struct {
	ControlID string    `json:"control_id"`
	Status    Status    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// NewEvaluationEvent validates and normalizes an evaluation row.
func NewEvaluationEvent(controlID, status string, ts time.Time) (EvaluationEvent, error) {
	controlID = strings.TrimSpace(controlID)
	if controlID == "" {
		return EvaluationEvent{}, ErrMissingControlID
	}
	return EvaluationEvent{
		ControlID: controlID,
		Status:    ParseStatus(status),
		Timestamp: ts.UTC(),
	}, nil
}

// EvidenceDocument is an uploaded artifact owned by the upload collaborator.
// ControlID is empty for documents not yet matched to a control.
type EvidenceDocument struct {
	ControlID   string     `json:"control_id,omitempty"`
	MatchStatus Status     `json:"match_status"`
	DocType     string     `json:"doc_type"`
	DisplayName string     `json:"display_name"`
	CreatedAt   time.Time  `json:"created_at"`
	ReviewedAt  *time.Time `json:"reviewed_at,omitempty"`
	SubmittedAt *time.Time `json:"submitted_at,omitempty"`
}

// NewEvidenceDocument normalizes an evidence row. An unmatched document
// (empty control id) is valid.
func NewEvidenceDocument(controlID, matchStatus, docType, displayName string, createdAt time.Time, reviewedAt, submittedAt *time.Time) EvidenceDocument {
	return EvidenceDocument{
		ControlID:   strings.TrimSpace(controlID),
		MatchStatus: ParseStatus(matchStatus),
		DocType:     strings.TrimSpace(docType),
		DisplayName: strings.TrimSpace(displayName),
		CreatedAt:   createdAt.UTC(),
		ReviewedAt:  normalizeTime(reviewedAt),
		SubmittedAt: normalizeTime(submittedAt),
	}
}

// EffectiveTime is the document's authoritative timestamp, an explicit
// priority chain: reviewed, then submitted, then created.
func (d EvidenceDocument) EffectiveTime() time.Time {
	if d.ReviewedAt != nil {
		return *d.ReviewedAt
	}
	if d.SubmittedAt != nil {
		return *d.SubmittedAt
	}
	return d.CreatedAt
}

// Matched reports whether the document is attached to a control.
func (d EvidenceDocument) Matched() bool {
	return d.ControlID != ""
}

// Reviewed reports whether the document has been reviewed.
func (d EvidenceDocument) Reviewed() bool {
	return d.ReviewedAt != nil
}

// Framework is an entry from the framework registry, used only to scope
// which controls are in view.
type Framework struct {
	Name      string    `json:"name"`
	Active    bool      `json:"active"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewFramework validates a framework row.
func NewFramework(name string, active bool, updatedAt time.Time) (Framework, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return Framework{}, ErrMissingFramework
	}
	return Framework{Name: name, Active: active, UpdatedAt: updatedAt.UTC()}, nil
}

func normalizeTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
