package domain

// Identity is the persisted part of a session.
type Identity struct {
	Name      string `json:"name"`
	LoginName string `json:"username"`
}

type Session struct {
	Identity      *Identity `json:"identity,omitempty"`
	Authenticated bool      `json:"authenticated"`
}
