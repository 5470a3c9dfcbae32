package domain

// Operator is a caller allowed to mutate and read the registry.
type Operator struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}
