package config

const (
	// DefaultPort is the default HTTP server port.
	DefaultPort = "8081"

	// DefaultDatabaseURL is empty; must be provided via flag or environment.
	DefaultDatabaseURL = ""

	// DefaultBoardURL is where the task-board backend is reached.
	DefaultBoardURL = "http://localhost:8080"
)
