package model

import "time"

// DefaultPrioridad is the priority a fresh draft starts with.
const DefaultPrioridad = "normal"

type Task struct {
	ID         string `json:"id"`
	UserID     string `json:"userId"`
	Nombre     string `json:"nombre"`
	Fecha      string `json:"fecha"`
	Prioridad  string `json:"prioridad"`
	Nota       string `json:"nota"`
	Completada bool   `json:"completada"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Disabled     bool      `json:"disabled"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is the authentication state consumed by the task views and the editor.
//
// Checked reports whether the session was resolved at all (a missing or expired
// session file still yields Checked=true, LoggedIn=false).
type Session struct {
	LoggedIn bool   `json:"loggedIn"`
	Checked  bool   `json:"checked"`
	UserID   string `json:"userId,omitempty"`
	Email    string `json:"email,omitempty"`
}

func SignedIn(userID, email string) Session {
	return Session{LoggedIn: true, Checked: true, UserID: userID, Email: email}
}

func SignedOut() Session {
	return Session{LoggedIn: false, Checked: true}
}
