package bench

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	storev1beta1 "cosmossdk.io/api/cosmos/store/v1beta1"
	"google.golang.org/protobuf/encoding/protodelim"
)

var ErrDeleteUnsupported = errors.New("deletes are not supported")

// ChangesetWriter writes one delimited protobuf file per version plus the info file.
// Versions are numbered from 1 in the order they are written.
type ChangesetWriter struct {
	dir         string
	version     int64
	file        *os.File
	writer      *bufio.Writer
	storeNames  map[string]struct{}
	storeParams []StoreParams
}

func NewChangesetWriter(dir string) (*ChangesetWriter, error) {
	err := os.MkdirAll(dir, 0o755)
	if err != nil {
		return nil, err
	}
	return &ChangesetWriter{
		dir:        dir,
		storeNames: map[string]struct{}{},
	}, nil
}

func (w *ChangesetWriter) StartVersion() error {
	if w.file != nil {
		return fmt.Errorf("version %d is still open", w.version)
	}
	w.version++
	filename := changesetDataFilename(w.dir, w.version)
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating changeset file for version %d: %w", w.version, err)
	}
	w.file = file
	w.writer = bufio.NewWriter(file)
	return nil
}

func (w *ChangesetWriter) Write(pair *storev1beta1.StoreKVPair) error {
	if w.file == nil {
		return fmt.Errorf("no version open")
	}
	if pair.Delete {
		return ErrDeleteUnsupported
	}
	w.storeNames[pair.StoreKey] = struct{}{}
	_, err := protodelim.MarshalTo(w.writer, pair)
	return err
}

func (w *ChangesetWriter) EndVersion() error {
	if w.file == nil {
		return fmt.Errorf("no version open")
	}
	err := w.writer.Flush()
	if err != nil {
		return fmt.Errorf("error flushing changeset file for version %d: %w", w.version, err)
	}
	err = w.file.Close()
	w.file = nil
	w.writer = nil
	if err != nil {
		return fmt.Errorf("error closing changeset file for version %d: %w", w.version, err)
	}
	return nil
}

// WriteVersion writes pairs as the next version.
func (w *ChangesetWriter) WriteVersion(pairs []*storev1beta1.StoreKVPair) error {
	err := w.StartVersion()
	if err != nil {
		return err
	}
	for _, pair := range pairs {
		if err := w.Write(pair); err != nil {
			_ = w.EndVersion()
			return err
		}
	}
	return w.EndVersion()
}

// Close ends any open version and writes the info file.
func (w *ChangesetWriter) Close() error {
	if w.file != nil {
		if err := w.EndVersion(); err != nil {
			return err
		}
	}
	storeNames := make([]string, 0, len(w.storeNames))
	for name := range w.storeNames {
		storeNames = append(storeNames, name)
	}
	slices.Sort(storeNames)
	return writeChangesetInfo(w.dir, ChangesetInfo{
		Versions:    w.version,
		StoreNames:  storeNames,
		StoreParams: w.storeParams,
	})
}

// ReadChangeset streams the pairs of one version to fn.
func ReadChangeset(dataDir string, version int64, fn func(pair *storev1beta1.StoreKVPair) error) error {
	filename := changesetDataFilename(dataDir, version)
	dataFile, err := os.Open(filename)
	if err != nil {
		return fmt.Errorf("error opening changeset file for version %d: %w", version, err)
	}
	defer dataFile.Close()
	reader := bufio.NewReader(dataFile)

	for i := 0; ; i++ {
		var pair storev1beta1.StoreKVPair
		err := protodelim.UnmarshalFrom(reader, &pair)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("error at entry %d reading changeset: %w", i, err)
		}
		if err := fn(&pair); err != nil {
			return fmt.Errorf("error at entry %d applying update: %w", i, err)
		}
	}
}
