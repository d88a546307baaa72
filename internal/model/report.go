package model

import (
	"encoding/json"
	"time"
)

// Report is an ad-hoc aggregate snapshot computed on demand. The computed
// numbers are stored as an opaque JSON blob; reports are never recomputed
// after creation.
type Report struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	OwnerRole   Role       `json:"owner_role" gorm:"type:varchar(20);index;not null"`
	OwnerID     uint       `json:"owner_id" gorm:"index;not null"`
	ReportType  string     `json:"report_type" gorm:"type:varchar(50);not null"`
	Title       string     `json:"title" gorm:"type:varchar(100);not null"`
	Description string     `json:"description" gorm:"type:text"`
	DateFrom    *time.Time `json:"date_from,omitempty"`
	DateTo      *time.Time `json:"date_to,omitempty"`
	Data        string     `json:"-" gorm:"type:text"`
	CreatedAt   time.Time  `json:"created_at"`
}

// GetData decodes the stored report payload
func (r *Report) GetData() map[string]interface{} {
	if r.Data == "" {
		return map[string]interface{}{}
	}
	var data map[string]interface{}
	if err := json.Unmarshal([]byte(r.Data), &data); err != nil {
		return map[string]interface{}{}
	}
	return data
}

// SetData encodes and stores the report payload
func (r *Report) SetData(data map[string]interface{}) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return
	}
	r.Data = string(encoded)
}

// MarshalJSON includes the decoded payload in API responses
func (r Report) MarshalJSON() ([]byte, error) {
	type alias Report
	return json.Marshal(struct {
		alias
		Payload map[string]interface{} `json:"data"`
	}{
		alias:   alias(r),
		Payload: r.GetData(),
	})
}
