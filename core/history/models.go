package history

import "time"

// Run is the persisted summary of one sync run.
type Run struct {
	ID             string    `gorm:"primaryKey;column:id;type:varchar(36)" json:"id" yaml:"id"`
	Instance       string    `gorm:"column:instance;type:varchar(255);index" json:"instance" yaml:"instance"`
	StartedAt      time.Time `gorm:"column:started_at;index" json:"started_at" yaml:"started_at"`
	FinishedAt     time.Time `gorm:"column:finished_at" json:"finished_at" yaml:"finished_at"`
	DryRun         bool      `gorm:"column:dry_run;type:tinyint(1);default:0" json:"dry_run" yaml:"dry_run"`
	Created        int       `gorm:"column:created;default:0" json:"created" yaml:"created"`
	Updated        int       `gorm:"column:updated;default:0" json:"updated" yaml:"updated"`
	Noops          int       `gorm:"column:noops;default:0" json:"noops" yaml:"noops"`
	SkippedInvalid int       `gorm:"column:skipped_invalid;default:0" json:"skipped_invalid" yaml:"skipped_invalid"`
	Failed         int       `gorm:"column:failed;default:0" json:"failed" yaml:"failed"`
	Warnings       int       `gorm:"column:warnings;default:0" json:"warnings" yaml:"warnings"`
	Unmatched      int       `gorm:"column:unmatched;default:0" json:"unmatched" yaml:"unmatched"`
	ReloadIssued   bool      `gorm:"column:reload_issued;type:tinyint(1);default:0" json:"reload_issued" yaml:"reload_issued"`
	ArchiveObject  string    `gorm:"column:archive_object;type:varchar(512)" json:"archive_object,omitempty" yaml:"archive_object,omitempty"`

	Failures []RunFailure `gorm:"foreignKey:RunID" json:"failures,omitempty" yaml:"failures,omitempty"`
}

func (Run) TableName() string {
	return "sync_runs"
}

// RunFailure is one host-level failure belonging to a run.
type RunFailure struct {
	ID      uint   `gorm:"primaryKey;column:id;autoIncrement" json:"-" yaml:"-"`
	RunID   string `gorm:"column:run_id;type:varchar(36);index" json:"-" yaml:"-"`
	HostKey string `gorm:"column:host_key;type:varchar(255)" json:"host_key" yaml:"host_key"`
	Stage   string `gorm:"column:stage;type:varchar(32)" json:"stage" yaml:"stage"`
	Cause   string `gorm:"column:cause;type:varchar(1024)" json:"cause" yaml:"cause"`
}

func (RunFailure) TableName() string {
	return "sync_run_failures"
}
