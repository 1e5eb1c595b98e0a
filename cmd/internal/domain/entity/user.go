package entity

// User is the account that owns saved company analyses.
type User struct {
	ID            int64      `gorm:"primaryKey"`
	SubUUID       string     `gorm:"not null;uniqueIndex"`
	Username      string     `gorm:"not null"`
	Email         string     `gorm:"not null;index"`
	EmailVerified bool       `gorm:"not null"`
	Permissions   Permission `gorm:"not null;type:bigint;default:0"`
	Active        bool       `gorm:"not null;default:true"`
	Suspended     bool       `gorm:"not null;default:false"`
	CreatedAt     int64      `gorm:"not null;autoCreateTime:false"`
	UpdatedAt     int64      `gorm:"not null;autoUpdateTime:false"`
}
