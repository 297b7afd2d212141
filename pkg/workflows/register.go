package workflows

import (
	"github.com/ordinoproj/ordino/pkg/protocol"
	"github.com/ordinoproj/ordino/pkg/registry"
	"github.com/ordinoproj/ordino/pkg/taskfile"
)

// Deps carries the shared infrastructure the domain actions close over.
type Deps struct {
	TaskFiles taskfile.Store
	Confirmer protocol.Confirmer
}

// Register installs every domain action this package provides.
func Register(r *registry.Registry, deps Deps) {
	r.RegisterAction(NewResolveDocumentFactory())
	r.RegisterAction(NewRecordReviewFactory(deps.TaskFiles))
	r.RegisterAction(NewCreateTaskFileFactory(deps.TaskFiles))
	r.RegisterAction(NewConfirmFixesFactory(deps.Confirmer))
	r.RegisterAction(NewRecordFixesFactory(deps.TaskFiles))
	r.RegisterAction(NewRecordQualityFactory())
	r.RegisterAction(NewRecordSkeletonsFactory())
	r.RegisterAction(NewRecordTestReviewFactory(deps.TaskFiles))
}
