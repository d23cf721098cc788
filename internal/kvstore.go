package internal

// KeyValueStore is the persistent string store chat state is kept in.
// Get reports found=false for absent keys; Remove of an absent key is not an error.
type KeyValueStore interface {
	Get(key string) (value string, found bool, err error)
	Set(key, value string) error
	Remove(key string) error
}

// BatchWriter is implemented by stores able to apply several writes as one unit
type BatchWriter interface {
	SetMany(pairs []KeyValuePair) error
}

// KeyValuePair represents a single store entry
type KeyValuePair struct {
	Key   string
	Value string
}

// setAll writes pairs in one batch when the store supports it, else in order
func setAll(store KeyValueStore, pairs []KeyValuePair) error {
	if bw, ok := store.(BatchWriter); ok {
		if err := bw.SetMany(pairs); err != nil {
			return &StorageError{Key: pairs[0].Key, Op: "set", Err: err}
		}
		return nil
	}
	for _, pair := range pairs {
		if err := store.Set(pair.Key, pair.Value); err != nil {
			return &StorageError{Key: pair.Key, Op: "set", Err: err}
		}
	}
	return nil
}

// KeyLister is implemented by stores able to enumerate keys by prefix
type KeyLister interface {
	Keys(prefix string) ([]string, error)
}
