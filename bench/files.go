package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const changesetInfoFile = "changeset_info.json"

func changesetDataFilename(dataDir string, version int64) string {
	return filepath.Join(dataDir, fmt.Sprintf("%09d.delimpb", version))
}

func changesetInfoFilename(dataDir string) string {
	return filepath.Join(dataDir, changesetInfoFile)
}

// ChangesetInfo describes a changeset directory.
type ChangesetInfo struct {
	Versions    int64         `json:"versions"`
	StoreNames  []string      `json:"store_names"`
	StoreParams []StoreParams `json:"store_params,omitempty"`
}

func writeChangesetInfo(dataDir string, info ChangesetInfo) error {
	filename := changesetInfoFilename(dataDir)
	bz, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return fmt.Errorf("error marshaling info file: %w", err)
	}
	return os.WriteFile(filename, bz, 0o644)
}

func ReadChangesetInfo(dataDir string) (ChangesetInfo, error) {
	filename := changesetInfoFilename(dataDir)
	bz, err := os.ReadFile(filename)
	if err != nil {
		return ChangesetInfo{}, fmt.Errorf("error reading info file: %w", err)
	}
	var info ChangesetInfo
	err = json.Unmarshal(bz, &info)
	if err != nil {
		return ChangesetInfo{}, fmt.Errorf("error unmarshaling info file: %w", err)
	}
	return info, nil
}
