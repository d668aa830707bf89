package iavlx

type Options struct {
	// ZeroCopy makes Get return the tree's own value slice instead of a copy.
	// Callers must not modify it.
	ZeroCopy bool `json:"zero_copy"`

	// VerifyHashes recomputes the whole tree from scratch after every hash pass
	// and panics if the lazily maintained root hash differs.
	VerifyHashes bool `json:"verify_hashes"`

	// Metrics is optional, nil disables instrumentation.
	Metrics *Metrics `json:"-"`
}
