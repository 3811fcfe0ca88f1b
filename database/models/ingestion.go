package models

import "gorm.io/gorm"

// IngestionState 上传流水线的最终状态
type IngestionState string

const (
	IngestionStateDone   IngestionState = "done"
	IngestionStateFailed IngestionState = "failed"
)

// Ingestion 上传日志，每次上传尝试一行
type Ingestion struct {
	gorm.Model
	StoredFilename string         `gorm:"index:idx_ingestion_filename;size:255"`
	OriginalName   string         `gorm:"size:255"`
	RecordID       string         `gorm:"index:idx_ingestion_record;size:255"`
	State          IngestionState `gorm:"index:idx_ingestion_state_stage,priority:1;size:16;not null"`
	FailedStage    string         `gorm:"index:idx_ingestion_state_stage,priority:2;size:16"`
	BlobPersisted  bool           `gorm:"default:false;not null"`
	Error          string         `gorm:"type:text"`
}
