package entity

import (
	"time"

	"gorm.io/datatypes"
)

// AuditLog represents a system audit trail entry
type AuditLog struct {
	ID        int64             `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID    *uint             `gorm:"index" json:"user_id,omitempty"`
	Action    string            `gorm:"type:varchar(100);not null;index" json:"action"`
	Metadata  datatypes.JSONMap `json:"metadata,omitempty"`
	CreatedAt time.Time         `gorm:"autoCreateTime;index" json:"created_at"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}

// Common audit actions
const (
	AuditActionUserRegister    = "user.register"
	AuditActionUserCreate      = "user.create"
	AuditActionUserUpdate      = "user.update"
	AuditActionUserDelete      = "user.delete"
	AuditActionHospitalCreate  = "hospital.create"
	AuditActionHospitalUpdate  = "hospital.update"
	AuditActionHospitalDelete  = "hospital.delete"
	AuditActionSpecialtyCreate = "specialty.create"
	AuditActionSpecialtyUpdate = "specialty.update"
	AuditActionSpecialtyDelete = "specialty.delete"
	AuditActionTemplateCreate  = "template.create"
	AuditActionTemplateUpdate  = "template.update"
	AuditActionTemplateDelete  = "template.delete"
	AuditActionCheckupCreate   = "checkup.create"
	AuditActionCheckupDelete   = "checkup.delete"
)
