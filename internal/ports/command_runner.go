package ports

// CommandRunner executes external commands and returns their combined output.
type CommandRunner interface {
	Run(name string, args ...string) ([]byte, error)
}
