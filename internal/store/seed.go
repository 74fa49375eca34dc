package store

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lvonguyen/complyforge/internal/catalog"
)

// Seed file row shapes. Rows pass through the catalog constructors so
// defaulting and status normalization happen exactly once, at this
// boundary.

type seedFile struct {
	Frameworks  []seedFramework  `yaml:"frameworks"`
	Controls    []seedControl    `yaml:"controls"`
	Evaluations []seedEvaluation `yaml:"evaluations"`
	Evidence    []seedEvidence   `yaml:"evidence"`
}

type seedFramework struct {
	Name      string    `yaml:"name"`
	Active    bool      `yaml:"active"`
	UpdatedAt time.Time `yaml:"updated_at"`
}

type seedControl struct {
	ID        string    `yaml:"id"`
	Code      string    `yaml:"code"`
	Title     string    `yaml:"title"`
	OwnerRole string    `yaml:"owner_role"`
	Topic     string    `yaml:"topic"`
	Refs      []seedRef `yaml:"refs"`
}

type seedRef struct {
	Framework       string `yaml:"framework"`
	RefCode         string `yaml:"ref_code"`
	EvidenceRequest string `yaml:"evidence_request"`
}

type seedEvaluation struct {
	ControlID string    `yaml:"control_id"`
	Status    string    `yaml:"status"`
	Timestamp time.Time `yaml:"timestamp"`
}

type seedEvidence struct {
	ControlID   string     `yaml:"control_id"`
	MatchStatus string     `yaml:"match_status"`
	DocType     string     `yaml:"doc_type"`
	DisplayName string     `yaml:"display_name"`
	CreatedAt   time.Time  `yaml:"created_at"`
	ReviewedAt  *time.Time `yaml:"reviewed_at"`
	SubmittedAt *time.Time `yaml:"submitted_at"`
}

// LoadSeed reads a YAML seed file into a MemorySource.
func LoadSeed(path string) (*MemorySource, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed seedFile
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}

	src := NewMemorySource()
	for _, row := range seed.Frameworks {
		fw, err := catalog.NewFramework(row.Name, row.Active, row.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("seed framework: %w", err)
		}
		src.AddFramework(fw)
	}
	for _, row := range seed.Controls {
		refs := make([]catalog.FrameworkRef, 0, len(row.Refs))
		for _, r := range row.Refs {
			refs = append(refs, catalog.FrameworkRef{
				Framework:       r.Framework,
				RefCode:         r.RefCode,
				EvidenceRequest: r.EvidenceRequest,
			})
		}
		c, err := catalog.NewControl(row.ID, row.Code, row.Title, row.OwnerRole, row.Topic, refs)
		if err != nil {
			return nil, fmt.Errorf("seed control: %w", err)
		}
		src.AddControl(c)
	}
	for _, row := range seed.Evaluations {
		ev, err := catalog.NewEvaluationEvent(row.ControlID, row.Status, row.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("seed evaluation: %w", err)
		}
		src.AddEvaluation(ev)
	}
	for _, row := range seed.Evidence {
		src.AddEvidence(catalog.NewEvidenceDocument(
			row.ControlID, row.MatchStatus, row.DocType, row.DisplayName,
			row.CreatedAt, row.ReviewedAt, row.SubmittedAt,
		))
	}
	return src, nil
}
