// Package util holds the small pieces shared by the iavlx commands: the tree
// directory info file and logger construction.
package util

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Info is persisted as info.json in a tree directory after every run.
type Info struct {
	Version int64  `json:"version"`
	Hash    string `json:"hash,omitempty"`
}

func infoFilename(dbDir string) string {
	return filepath.Join(dbDir, "info.json")
}

// LoadInfo loads info.json from dbDir. A missing file yields the zero Info.
func LoadInfo(dbDir string) (Info, error) {
	bz, err := os.ReadFile(infoFilename(dbDir))
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, nil
		}
		return Info{}, err
	}
	var i Info
	if err := json.Unmarshal(bz, &i); err != nil {
		return Info{}, err
	}
	return i, nil
}

// SaveInfo writes info.json to dbDir.
func SaveInfo(dbDir string, i Info) error {
	bz, err := json.MarshalIndent(i, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(infoFilename(dbDir), bz, 0o644)
}

// LoadVersion loads the last recorded version from dbDir.
func LoadVersion(dbDir string) (int64, error) {
	i, err := LoadInfo(dbDir)
	return i.Version, err
}
