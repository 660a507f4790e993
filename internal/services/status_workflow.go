// internal/services/status_workflow.go
package services

import (
	"fmt"

	"github.com/casaprime/realty-backend/internal/models"
)

const (
	WorkflowFree   = "free"
	WorkflowStrict = "strict"
)

// Workflow is an explicit table of allowed status transitions.
type Workflow struct {
	name    string
	allowed map[models.PropertyStatus][]models.PropertyStatus
}

// NewWorkflow returns the named transition table. "free" lets any status
// follow any other; "strict" walks available, negotiating, sold and keeps
// sold terminal.
func NewWorkflow(name string) (*Workflow, error) {
	switch name {
	case WorkflowFree, "":
		return &Workflow{name: WorkflowFree}, nil
	case WorkflowStrict:
		return &Workflow{
			name: WorkflowStrict,
			allowed: map[models.PropertyStatus][]models.PropertyStatus{
				models.PropertyStatusAvailable:   {models.PropertyStatusAvailable, models.PropertyStatusNegotiating},
				models.PropertyStatusNegotiating: {models.PropertyStatusNegotiating, models.PropertyStatusAvailable, models.PropertyStatusSold},
				models.PropertyStatusSold:        {models.PropertyStatusSold},
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown status workflow %q", name)
}

func (w *Workflow) Name() string {
	return w.name
}

// Allows reports whether a property may move from one status to another.
func (w *Workflow) Allows(from, to models.PropertyStatus) bool {
	if !from.IsValid() || !to.IsValid() {
		return false
	}
	if w.allowed == nil {
		return true
	}
	for _, next := range w.allowed[from] {
		if next == to {
			return true
		}
	}
	return false
}
