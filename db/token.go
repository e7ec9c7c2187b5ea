package db

// TokenRecord is the single-row persisted form of the current token set plus
// the last authenticated username. A refresh overwrites the whole row.
type TokenRecord struct {
	ID            uint   `gorm:"primaryKey" json:"-"`
	AccessToken   string `json:"access_token"`
	IDToken       string `json:"id_token,omitempty"`
	RefreshToken  string `json:"refresh_token,omitempty"`
	ClockDrift    int64  `json:"clock_drift"`
	SignInDetails string `json:"sign_in_details,omitempty"` // JSON-encoded auth.SignInDetails
	LastAuthUser  string `json:"last_auth_user,omitempty"`
}

// DeviceRecord holds the opaque device-bound-authentication metadata for one
// username. The orchestrator passes it through unchanged.
type DeviceRecord struct {
	Username       string `gorm:"primaryKey" json:"username"`
	DeviceKey      string `json:"device_key"`
	DeviceGroupKey string `json:"device_group_key,omitempty"`
	DevicePassword string `json:"device_password,omitempty"`
}
