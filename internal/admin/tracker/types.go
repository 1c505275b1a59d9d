package tracker

// Credentials carries a sign-in attempt. Instances are transient and must
// never be persisted or logged.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResult is the backend's response to a successful sign-in.
type SignInResult struct {
	Token    string `json:"token"`
	UserID   string `json:"uuid"`
	Email    string `json:"email"`
	Nickname string `json:"nickname"`
}

// Device is one row of the backend's admin device listing.
type Device struct {
	DeviceID string `json:"device_id"`
	OwnerUID string `json:"owner_uuid"`
	Name     string `json:"device_name"`
}

// User is one row of the backend's admin user listing. Timestamps arrive as
// opaque strings and are rendered verbatim.
type User struct {
	UID       string `json:"uuid"`
	Email     string `json:"email"`
	CreatedAt string `json:"created_at"`
	LastSeen  string `json:"last_seen"`
	Role      string `json:"role"`
}
