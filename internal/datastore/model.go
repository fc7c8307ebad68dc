// model.go defines the tables of the local store and run ledger
package datastore

import "time"

// LocalRecord is a building document kept locally. Fields holds the
// document's field map as JSON.
type LocalRecord struct {
	ID        uint   `gorm:"primaryKey"`
	Path      string `gorm:"uniqueIndex;not null"`
	DocID     string `gorm:"index"`
	Name      string `gorm:"index:idx_local_records_name_year"`
	Year      string `gorm:"index:idx_local_records_name_year"`
	Fields    string `gorm:"type:text"`
	UpdatedAt time.Time
}

// Run is one command execution that changed or rehearsed changes to a store.
type Run struct {
	ID         uint      `gorm:"primaryKey"`
	Kind       string    `gorm:"index"` // update or pull
	Target     string    // firestore or local
	DryRun     bool
	StartedAt  time.Time `gorm:"index"`
	FinishedAt *time.Time
	Total      int
	Updated    int
	NotFound   int
	Failed     int
	Error      string
	Items      []RunItem `gorm:"foreignKey:RunID;constraint:OnDelete:CASCADE"`
}

// RunItem is the outcome for one building within a run
type RunItem struct {
	ID         uint   `gorm:"primaryKey"`
	RunID      uint   `gorm:"index;not null"`
	Building   string `gorm:"index"`
	FileName   string
	Outcome    string
	DocumentID string
	Devices    int
	Lights     int
	Notes      int
	Error      string
}

// Snapshot is a building document as it was before a run wrote it.
type Snapshot struct {
	ID       uint   `gorm:"primaryKey"`
	RunID    uint   `gorm:"index;not null"`
	Path     string `gorm:"index"`
	Building string
	Fields   string `gorm:"type:text"`
	TakenAt  time.Time
}

// Run kinds
const (
	RunKindUpdate = "update"
	RunKindPull   = "pull"
)
