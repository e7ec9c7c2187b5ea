package auth

// Token is a compact JWT held by the client. Its claims are read without
// signature verification since the client carries no verification keys;
// freshness is the only thing evaluated locally.
type Token struct {
	Raw string `json:"raw"`
}

// SignInDetails describes how the session was established. The orchestrator
// does not interpret it; it is carried alongside the tokens and handed back
// to callers unchanged.
type SignInDetails struct {
	LoginID      string `json:"login_id,omitempty"`
	AuthFlowType string `json:"auth_flow_type,omitempty"`
}

// TokenSet is the unit of credential state. It is either fully absent
// (no session) or carries a well-formed access token; the ID token is
// optional. A refresh replaces the whole set, never individual fields.
type TokenSet struct {
	IDToken      *Token `json:"id_token,omitempty"`
	AccessToken  Token  `json:"access_token"`
	RefreshToken string `json:"refresh_token,omitempty"`

	// ClockDrift is the client clock's lead over the server's, in seconds,
	// applied when evaluating token expiry.
	ClockDrift int64 `json:"clock_drift"`

	SignInDetails *SignInDetails `json:"sign_in_details,omitempty"`
}

// DeviceMetadata is the per-username record used by device-bound
// authentication flows. It is opaque to the orchestrator and passed
// through the store unchanged.
type DeviceMetadata struct {
	DeviceKey      string `json:"device_key"`
	DeviceGroupKey string `json:"device_group_key,omitempty"`
	DevicePassword string `json:"device_password,omitempty"`
}

// Session is what GetTokens hands to callers: a nil Session means there is
// no usable session and the user must sign in.
type Session struct {
	AccessToken   string
	IDToken       string // empty when the set carries no ID token
	SignInDetails *SignInDetails
}
