package entity

import (
	"time"

	"github.com/iudanet/fleetsync/internal/crdt"
)

const (
	FieldPriority    = "priority"
	FieldActualStart = "actual_start"
	FieldActualEnd   = "actual_end"
	FieldTasks       = "tasks"
)

// WorkOrder is a replicated maintenance work order.
// Scalar fields are LWW registers; the task list is an OR-Set.
type WorkOrder struct {
	status      *crdt.LWWRegister
	priority    *crdt.LWWRegister
	actualStart *crdt.LWWRegister
	actualEnd   *crdt.LWWRegister
	tasks       *crdt.ORSet
	clock       crdt.VectorClock
	id          string
	deviceID    string
}

// WorkOrderUpdate is the mutation payload of a workorder_update operation.
type WorkOrderUpdate struct {
	Status      *string    `json:"status,omitempty"`
	Priority    *string    `json:"priority,omitempty"`
	ActualStart *time.Time `json:"actual_start,omitempty"`
	ActualEnd   *time.Time `json:"actual_end,omitempty"`
	AddTasks    []string   `json:"add_tasks,omitempty"`
	RemoveTasks []string   `json:"remove_tasks,omitempty"`
}

// NewWorkOrder creates an empty work order replica.
func NewWorkOrder(id, deviceID string) *WorkOrder {
	return &WorkOrder{
		id:          id,
		deviceID:    deviceID,
		clock:       crdt.NewVectorClock(),
		status:      crdt.NewLWWRegister(deviceID),
		priority:    crdt.NewLWWRegister(deviceID),
		actualStart: crdt.NewLWWRegister(deviceID),
		actualEnd:   crdt.NewLWWRegister(deviceID),
		tasks:       crdt.NewORSet(deviceID),
	}
}

func (w *WorkOrder) isEntity() {}

// EntityType returns TypeWorkOrder.
func (w *WorkOrder) EntityType() Type { return TypeWorkOrder }

// EntityID returns the work order ID.
func (w *WorkOrder) EntityID() string { return w.id }

// DeviceID returns the owning device.
func (w *WorkOrder) DeviceID() string { return w.deviceID }

// Clock returns a copy of the entity clock.
func (w *WorkOrder) Clock() crdt.VectorClock { return w.clock.Clone() }

func (w *WorkOrder) Status() string   { return stringValue(w.status) }
func (w *WorkOrder) Priority() string { return stringValue(w.priority) }

// Tasks returns the live task IDs in sorted order.
func (w *WorkOrder) Tasks() []string { return w.tasks.Elements() }

// HasTask reports whether task is on the work order.
func (w *WorkOrder) HasTask(task string) bool { return w.tasks.Contains(task) }

// ActualStart returns the recorded start time, if any.
func (w *WorkOrder) ActualStart() (time.Time, bool) { return timeValue(w.actualStart) }

// ActualEnd returns the recorded completion time, if any.
func (w *WorkOrder) ActualEnd() (time.Time, bool) { return timeValue(w.actualEnd) }

// UpdateStatus sets the status at ts.
func (w *WorkOrder) UpdateStatus(status string, ts time.Time) {
	w.Update(WorkOrderUpdate{Status: &status}, ts)
}

// AddTask attaches a task to the work order.
func (w *WorkOrder) AddTask(task string, ts time.Time) {
	w.Update(WorkOrderUpdate{AddTasks: []string{task}}, ts)
}

// RemoveTask detaches a task observed on this replica.
func (w *WorkOrder) RemoveTask(task string, ts time.Time) {
	w.Update(WorkOrderUpdate{RemoveTasks: []string{task}}, ts)
}

// Update applies u as one mutation. Removals are applied after additions.
func (w *WorkOrder) Update(u WorkOrderUpdate, ts time.Time) {
	if u.Status != nil {
		w.status.Set(*u.Status, ts)
	}
	if u.Priority != nil {
		w.priority.Set(*u.Priority, ts)
	}
	if u.ActualStart != nil {
		w.actualStart.Set(u.ActualStart.UTC().Format(time.RFC3339Nano), ts)
	}
	if u.ActualEnd != nil {
		w.actualEnd.Set(u.ActualEnd.UTC().Format(time.RFC3339Nano), ts)
	}
	for _, task := range u.AddTasks {
		w.tasks.Add(task)
	}
	for _, task := range u.RemoveTasks {
		w.tasks.Remove(task)
	}
	w.clock.Increment(w.deviceID)
}

func (u WorkOrderUpdate) empty() bool {
	return u.Status == nil && u.Priority == nil && u.ActualStart == nil &&
		u.ActualEnd == nil && len(u.AddTasks) == 0 && len(u.RemoveTasks) == 0
}

// Merge returns a new work order with every field merged.
func (w *WorkOrder) Merge(other *WorkOrder) *WorkOrder {
	return &WorkOrder{
		id:          w.id,
		deviceID:    w.deviceID,
		clock:       w.clock.Merge(other.clock),
		status:      w.status.Merge(other.status),
		priority:    w.priority.Merge(other.priority),
		actualStart: w.actualStart.Merge(other.actualStart),
		actualEnd:   w.actualEnd.Merge(other.actualEnd),
		tasks:       w.tasks.Merge(other.tasks),
	}
}

func (w *WorkOrder) fields() map[string]crdt.Value {
	return map[string]crdt.Value{
		FieldStatus:      w.status,
		FieldPriority:    w.priority,
		FieldActualStart: w.actualStart,
		FieldActualEnd:   w.actualEnd,
		FieldTasks:       w.tasks,
	}
}

// MarshalJSON implements json.Marshaler.
func (w *WorkOrder) MarshalJSON() ([]byte, error) {
	return marshalEnvelope(TypeWorkOrder, w.id, w.deviceID, w.clock, w.fields())
}

func decodeWorkOrder(env *envelope) (*WorkOrder, error) {
	d := &fieldDecoder{env: env}
	w := &WorkOrder{
		id:          env.EntityID,
		deviceID:    env.DeviceID,
		clock:       env.Clock,
		status:      d.lww(FieldStatus),
		priority:    d.lww(FieldPriority),
		actualStart: d.lww(FieldActualStart),
		actualEnd:   d.lww(FieldActualEnd),
		tasks:       d.orSet(FieldTasks),
	}
	if d.err != nil {
		return nil, d.err
	}
	return w, nil
}

func timeValue(r *crdt.LWWRegister) (time.Time, bool) {
	s, ok := r.Get().(string)
	if !ok {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
