package entity

// Connection is one API Gateway WebSocket connection of a signed in user.
// Progress events of running analyses are pushed to every connection of the owner.
type Connection struct {
	ConnectionID    string `gorm:"primaryKey;autoIncrement:false"`
	UserID          int64  `gorm:"not null;index"`
	ExpiresAt       int64  `gorm:"not null;index"`
	LastHeartbeatAt int64  `gorm:"not null;index"`
	CreatedAt       int64  `gorm:"not null;autoCreateTime:false"`
}

// HeartbeatTimeoutMillis is how long a connection may stay silent before the
// cleaner drops it. Clients ping every 60 seconds.
const HeartbeatTimeoutMillis = int64(70 * 1000)

