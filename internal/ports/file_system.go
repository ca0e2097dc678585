package ports

type AccessMode int

const (
	ReadWrite AccessMode = iota
	ReadWriteExecute
	ReadAllWriteOwner
)

type FileSystem interface {
	ReadFile(path string) ([]byte, error)
	WriteFile(path string, content []byte, accessMode AccessMode) error
	FileExists(path string) (bool, error)
	MkdirAll(path string, accessMode AccessMode) error
	RemoveAll(path string) error
}
