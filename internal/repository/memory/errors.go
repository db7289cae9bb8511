package memory

import "fmt"

func errDuplicate(collection, key string) error {
	return fmt.Errorf("%s: duplicate key %q", collection, key)
}
