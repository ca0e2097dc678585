package ports

// Keyring reads secret values from the operating system keyring.
type Keyring interface {
	GetKey(keyName string) (string, error)
	HasKey(keyName string) (bool, error)
}
