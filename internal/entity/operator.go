package entity

import "time"

// OperatorRecord is the matching target handed to enrichment.
type OperatorRecord struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}

// Operator is a stored operator row. A nil UserID marks a global operator.
type Operator struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	UserID      *int64    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IsGlobal reports whether the operator is shared by all users.
func (o Operator) IsGlobal() bool {
	return o.UserID == nil
}

// Record converts the stored row into the enrichment DTO.
func (o Operator) Record() OperatorRecord {
	return OperatorRecord{ID: o.ID, Name: o.Name, Description: o.Description}
}

// OperatorRecords converts stored rows, keeping their order.
func OperatorRecords(ops []Operator) []OperatorRecord {
	out := make([]OperatorRecord, 0, len(ops))
	for _, o := range ops {
		out = append(out, o.Record())
	}
	return out
}
