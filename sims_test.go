package iavlx

import (
	"bytes"
	"slices"
	"sort"
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestIAVLXSims(t *testing.T) {
	rapid.Check(t, testIAVLXSims)
}

func FuzzIAVLX(f *testing.F) {
	f.Fuzz(rapid.MakeFuzz(testIAVLXSims))
}

func testIAVLXSims(t *rapid.T) {
	simMachine := &SimMachine{
		tree:         NewTreeWithOpts(Options{VerifyHashes: true}, nil),
		existingKeys: map[string][]byte{},
	}

	t.Repeat(map[string]func(*rapid.T){
		"":           simMachine.Check,
		"SetN":       simMachine.SetN,
		"GetN":       simMachine.GetN,
		"UpdateHash": simMachine.UpdateHash,
		"Commit":     simMachine.Commit,
	})
}

// SimMachine mirrors every set into a plain map and checks the tree against it.
type SimMachine struct {
	tree         *Tree
	existingKeys map[string][]byte
	lastHash     []byte
	// clean is true when nothing was set since the last hash pass.
	clean bool
}

func (s *SimMachine) Check(t *rapid.T) {
	// after every operation the structural invariants must hold
	keys, err := checkInvariants(s.tree.Root())
	require.NoError(t, err)
	require.Len(t, keys, len(s.existingKeys))
	require.Equal(t, int64(len(s.existingKeys)), s.tree.Size())

	expected := make([]string, 0, len(s.existingKeys))
	for key := range s.existingKeys {
		expected = append(expected, key)
	}
	sort.Strings(expected)
	for i, key := range keys {
		require.Equal(t, expected[i], string(key), "in-order traversal mismatch at %d", i)
	}
}

func (s *SimMachine) SetN(t *rapid.T) {
	n := rapid.IntRange(1, 200).Draw(t, "n")
	for i := 0; i < n; i++ {
		s.set(t)
	}
}

func (s *SimMachine) GetN(t *rapid.T) {
	n := rapid.IntRange(1, 200).Draw(t, "n")
	for i := 0; i < n; i++ {
		s.get(t)
	}
}

func (s *SimMachine) set(t *rapid.T) {
	// choose either a new or an existing key
	key := s.selectKey(t)
	value := rapid.SliceOfN(rapid.Byte(), 0, 10).Draw(t, "value")
	_, existed := s.existingKeys[string(key)]
	updated := s.tree.Set(key, value)
	require.Equal(t, existed, updated, "update status mismatch for key %X", key)
	s.existingKeys[string(key)] = value
	s.clean = false
}

func (s *SimMachine) get(t *rapid.T) {
	key := s.selectKey(t)
	value, found := s.tree.Get(key)
	expectedValue, exists := s.existingKeys[string(key)]
	require.Equal(t, exists, found, "presence mismatch for key %X", key)
	if exists {
		require.True(t, bytes.Equal(expectedValue, value), "value mismatch for key %X", key)
	} else {
		require.Nil(t, value)
	}
}

func (s *SimMachine) selectKey(t *rapid.T) []byte {
	if len(s.existingKeys) > 0 && rapid.Bool().Draw(t, "existingKey") {
		keys := make([]string, 0, len(s.existingKeys))
		for key := range s.existingKeys {
			keys = append(keys, key)
		}
		slices.Sort(keys)
		return []byte(rapid.SampledFrom(keys).Draw(t, "key"))
	}
	return rapid.SliceOfN(rapid.Byte(), 0, 10).Draw(t, "key")
}

func (s *SimMachine) UpdateHash(t *rapid.T) {
	wasClean := s.clean
	hash := s.tree.UpdateHash()
	require.Empty(t, dirtyNodes(s.tree.Root()))
	require.Equal(t, HashNode(s.tree.Root()), hash)
	if wasClean {
		require.Equal(t, s.lastHash, hash)
		require.Zero(t, s.tree.HashedNodes())
	}
	s.lastHash = hash
	s.clean = true
}

func (s *SimMachine) Commit(t *rapid.T) {
	version := s.tree.Version()
	hash, newVersion := s.tree.Commit()
	require.Equal(t, version+1, newVersion)
	require.Equal(t, HashNode(s.tree.Root()), hash)
	s.lastHash = hash
	s.clean = true
}
