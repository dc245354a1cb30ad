package db

// Event is one kernel lifecycle event: spawn, ready, exit, close.
// CreatedAt holds unix nanoseconds so insertion order survives sorting.
type Event struct {
	ID        string `gorm:"primaryKey;column:id"`
	Kind      string `gorm:"column:kind;index"`
	Port      int    `gorm:"column:port"`
	Detail    string `gorm:"column:detail"`
	CreatedAt int64  `gorm:"column:created_at;index"`
}

func (Event) TableName() string {
	return "kernel_events"
}
