package bench

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"

	storev1beta1 "cosmossdk.io/api/cosmos/store/v1beta1"
	"github.com/tidwall/btree"
)

// StoreParams shapes the synthetic workload of one store.
type StoreParams struct {
	StoreKey         string `json:"store_key"`
	KeyMean          int    `json:"key_mean"`
	KeyStdDev        int    `json:"key_std_dev"`
	ValueMean        int    `json:"value_mean"`
	ValueStdDev      int    `json:"value_std_dev"`
	InitialSize      int    `json:"initial_size"`
	FinalSize        int    `json:"final_size"`
	Versions         int64  `json:"versions"`
	ChangePerVersion int    `json:"change_per_version"`
}

type TreeParams struct {
	StoreParams []StoreParams
	Versions    int64
	RandSource  rand.Source
	Logger      *slog.Logger
}

// GenerateChangesets writes params.Versions versions of creates and updates to outDir.
func GenerateChangesets(params TreeParams, outDir string) error {
	logger := params.Logger
	if logger == nil {
		logger = slog.Default()
	}
	for _, p := range params.StoreParams {
		if p.FinalSize < p.InitialSize {
			return fmt.Errorf("store %s: final size must be greater than initial size", p.StoreKey)
		}
	}

	writer, err := NewChangesetWriter(outDir)
	if err != nil {
		return err
	}
	writer.storeParams = params.StoreParams
	for _, p := range params.StoreParams {
		writer.storeNames[p.StoreKey] = struct{}{}
	}

	multiStoreState := map[string]*storeState{}
	for _, p := range params.StoreParams {
		multiStoreState[p.StoreKey] = newStoreState(p)
	}
	rng := rand.New(params.RandSource)
	for version := int64(1); version <= params.Versions; version++ {
		// generate plans for each store
		plans := map[string]changesetPlan{}
		for storeKey, state := range multiStoreState {
			plans[storeKey] = state.genChangesetPlan(version)
		}

		todo := newChangesetTodo(plans)
		err = writer.StartVersion()
		if err != nil {
			return err
		}
		n, err := todo.apply(writer, rng, multiStoreState)
		if err != nil {
			return fmt.Errorf("error generating changeset for version %d: %w", version, err)
		}
		err = writer.EndVersion()
		if err != nil {
			return err
		}
		logger.Debug("wrote changeset", "version", version, "ops", n)
	}

	return writer.Close()
}

type storeState struct {
	params            StoreParams
	existingKeys      *btree.BTreeG[[]byte]
	createsPerVersion float64
	createAccumulator float64
}

func newStoreState(p StoreParams) *storeState {
	st := &storeState{
		params: p,
		existingKeys: btree.NewBTreeG(func(a, b []byte) bool {
			return bytes.Compare(a, b) < 0
		}),
	}
	if p.Versions > 1 {
		st.createsPerVersion = float64(p.FinalSize-p.InitialSize) / float64(p.Versions-1)
	}
	return st
}

type opType int

const (
	opCreate opType = iota
	opUpdate
)

var errNoKeys = errors.New("no keys")

func genOp(w *ChangesetWriter, st *storeState, op opType, rng *rand.Rand) error {
	switch op {
	case opCreate:
		return st.genCreate(w, rng)
	case opUpdate:
		err := st.genUpdate(w, rng)
		if errors.Is(err, errNoKeys) {
			// no keys to update, create instead
			return st.genCreate(w, rng)
		}
		return err
	default:
		return fmt.Errorf("unknown operation type: %d", op)
	}
}

type changesetTodo struct {
	// leftTodo is a map from store key to a map of operation type to count of operations remaining
	leftTodo *btree.Map[string, *btree.Map[opType, int]]
}

func newChangesetTodo(plans map[string]changesetPlan) *changesetTodo {
	leftTodo := &btree.Map[string, *btree.Map[opType, int]]{}
	for storeKey, plan := range plans {
		opMap := &btree.Map[opType, int]{}
		if plan.creates > 0 {
			opMap.Set(opCreate, plan.creates)
		}
		if plan.updates > 0 {
			opMap.Set(opUpdate, plan.updates)
		}
		if opMap.Len() > 0 {
			leftTodo.Set(storeKey, opMap)
		}
	}
	return &changesetTodo{
		leftTodo: leftTodo,
	}
}

func (todo *changesetTodo) apply(w *ChangesetWriter, rng *rand.Rand, storeStates map[string]*storeState) (int, error) {
	i := 0
	for todo.leftTodo.Len() > 0 {
		storeKey, op, err := todo.selectOperation(rng)
		if err != nil {
			return i, err
		}
		st, ok := storeStates[storeKey]
		if !ok {
			return i, fmt.Errorf("logic error: store state for %s not found", storeKey)
		}
		err = genOp(w, st, op, rng)
		if err != nil {
			return i, fmt.Errorf("error generating operation for store %s: %w", storeKey, err)
		}
		i++
	}
	return i, nil
}

func (todo *changesetTodo) selectOperation(rng *rand.Rand) (string, opType, error) {
	storeIdx := rng.IntN(todo.leftTodo.Len())
	selectedStore, opMap, ok := todo.leftTodo.GetAt(storeIdx)
	if !ok {
		return "", 0, fmt.Errorf("logic error: no store to select")
	}
	opIdx := rng.IntN(opMap.Len())
	op, count, ok := opMap.GetAt(opIdx)
	if !ok {
		return "", 0, fmt.Errorf("logic error: no operation to select")
	}
	if count <= 0 {
		return "", 0, fmt.Errorf("logic error: operation count is zero")
	}
	// decrement count
	if count == 1 {
		opMap.Delete(op)
		if opMap.Len() == 0 {
			todo.leftTodo.Delete(selectedStore)
		}
	} else {
		opMap.Set(op, count-1)
	}
	return selectedStore, op, nil
}

type changesetPlan struct {
	updates int
	creates int
}

func (c *storeState) genChangesetPlan(version int64) changesetPlan {
	if version == 1 {
		return changesetPlan{creates: c.params.InitialSize}
	}

	c.createAccumulator += c.createsPerVersion
	clamped := int(c.createAccumulator)
	c.createAccumulator -= float64(clamped)

	return changesetPlan{
		updates: c.params.ChangePerVersion,
		creates: clamped,
	}
}

func (c *storeState) genCreate(w *ChangesetWriter, rng *rand.Rand) error {
	key := c.genKey(rng)
	for c.has(key) {
		key = c.genKey(rng)
	}
	c.existingKeys.Set(key)
	return c.writeKVStorePair(w, key, c.genValue(rng))
}

func (c *storeState) genUpdate(w *ChangesetWriter, rng *rand.Rand) error {
	n := c.existingKeys.Len()
	if n == 0 {
		return errNoKeys
	}
	key, ok := c.existingKeys.GetAt(rng.IntN(n))
	if !ok {
		return fmt.Errorf("logic error: no key to update")
	}
	return c.writeKVStorePair(w, key, c.genValue(rng))
}

func (c *storeState) writeKVStorePair(w *ChangesetWriter, key, value []byte) error {
	return w.Write(&storev1beta1.StoreKVPair{
		StoreKey: c.params.StoreKey,
		Key:      key,
		Value:    value,
	})
}

func (c *storeState) genKey(rng *rand.Rand) []byte {
	return genBytes(rng, c.params.KeyMean, c.params.KeyStdDev)
}

func (c *storeState) genValue(rng *rand.Rand) []byte {
	return genBytes(rng, c.params.ValueMean, c.params.ValueStdDev)
}

func (c *storeState) has(key []byte) bool {
	_, ok := c.existingKeys.Get(key)
	return ok
}

func genBytes(rng *rand.Rand, mean, stdDev int) []byte {
	length := int(rng.NormFloat64()*float64(stdDev) + float64(mean))
	// length must be at least 1. mean - std dev can be negative for skewed data sets,
	// so generate again closer to the mean with a std dev of mean / 3 instead of clamping.
	if length < 1 {
		length = int(rng.NormFloat64()*float64(mean/3) + float64(mean))
		if length < 1 {
			length = 1
		}
	}
	b := make([]byte, length)
	for i := 0; i < length; i++ {
		b[i] = byte(rng.IntN(256))
	}
	return b
}
