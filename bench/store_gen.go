package bench

// storeShape describes the key and value size distribution of a store type and how
// much churn it sees over its lifetime, independent of how many keys it ends with.
type storeShape struct {
	storeKey    string
	keyMean     int
	keyStdDev   int
	valueMean   int
	valueStdDev int
	// updatesPerKey is the number of updates over the whole run per final key.
	updatesPerKey int
}

var (
	bankShape    = storeShape{storeKey: "bank", keyMean: 56, keyStdDev: 3, valueMean: 100, valueStdDev: 1200, updatesPerKey: 167}
	lockupShape  = storeShape{storeKey: "lockup", keyMean: 56, keyStdDev: 3, valueMean: 1936, valueStdDev: 29261, updatesPerKey: 28}
	stakingShape = storeShape{storeKey: "staking", keyMean: 24, keyStdDev: 2, valueMean: 12263, valueStdDev: 22967, updatesPerKey: 38}
)

// params sizes the shape for an in-memory tree ending with finalSize keys after
// versions versions. Version 1 loads 1/64 of the keys, the rest arrive evenly.
func (s storeShape) params(finalSize int, versions int64) StoreParams {
	changes := int64(finalSize) * int64(s.updatesPerKey)
	if versions > 1 {
		changes /= versions
	}
	return StoreParams{
		StoreKey:         s.storeKey,
		KeyMean:          s.keyMean,
		KeyStdDev:        s.keyStdDev,
		ValueMean:        s.valueMean,
		ValueStdDev:      s.valueStdDev,
		InitialSize:      max(finalSize/64, 1),
		FinalSize:        finalSize,
		Versions:         versions,
		ChangePerVersion: int(changes),
	}
}

// BankLike has many small balances updated on almost every block.
func BankLike(finalSize int, versions int64) StoreParams {
	return bankShape.params(finalSize, versions)
}

// LockupLike has fewer, larger and highly skewed values.
func LockupLike(finalSize int, versions int64) StoreParams {
	return lockupShape.params(finalSize, versions)
}

// StakingLike has short keys and large values.
func StakingLike(finalSize int, versions int64) StoreParams {
	return stakingShape.params(finalSize, versions)
}

// TinyGenerator is small enough for tests and demos.
func TinyGenerator(storeKey string, versions int64) StoreParams {
	return StoreParams{
		StoreKey:         storeKey,
		KeyMean:          8,
		KeyStdDev:        2,
		ValueMean:        16,
		ValueStdDev:      4,
		InitialSize:      100,
		FinalSize:        500,
		Versions:         versions,
		ChangePerVersion: 50,
	}
}
