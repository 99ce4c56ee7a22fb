package entity

// AgentLoginData identifies a support agent using the console endpoints.
type AgentLoginData struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}
