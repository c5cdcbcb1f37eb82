package domain

// Change event types as delivered by the catalog's row-change triggers.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// ChangeEvent is the envelope a database trigger posts to the webhook.
type ChangeEvent struct {
	Type      string `json:"type"`
	Table     string `json:"table,omitempty"`
	Record    *Track `json:"record"`
	OldRecord *Track `json:"old_record"`
}

// Subject returns the track a notification about this event should
// describe: the deleted row for DELETE, the current row otherwise. Returns
// nil when the envelope carries no usable record.
func (e *ChangeEvent) Subject() *Track {
	if e.Type == EventDelete {
		return e.OldRecord
	}
	return e.Record
}
