package bodyloading

import (
	"orrery/backend/internal/core/domain/entity"
	"orrery/backend/internal/world"
)

// LoadPort is what the configuration side and the stages use to queue bodies
type LoadPort interface {
	// ScheduleLoad enqueues a batch for the next scheduling pass
	ScheduleLoad(descriptors ...*entity.BodyDescriptor)

	// EnqueueAdditional queues a body discovered mid-pass; it is built in the following pass
	EnqueueAdditional(descriptor *entity.BodyDescriptor)
}

// QuantumPort wires decorative prop clusters into quantum groups
type QuantumPort interface {
	BuildQuantumGroup(group entity.QuantumGroupInfo, parent world.NodeID, members []world.NodeID) (*entity.QuantumHandle, error)
}
