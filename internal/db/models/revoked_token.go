package models

// RevokedToken is a key/value row of the database backed token revocation store.
// Columns follow the k/v/e layout of the gofiber storage drivers.
// Exp is a unix timestamp, 0 means the row never expires.
type RevokedToken struct {
	Key   string `gorm:"column:k;primaryKey;size:64"`
	Value []byte `gorm:"column:v"`
	Exp   int64  `gorm:"column:e;not null;default:0;index"`
}

// TableName specifies the database table name for the RevokedToken model.
func (RevokedToken) TableName() string {
	return "revoked_tokens"
}
