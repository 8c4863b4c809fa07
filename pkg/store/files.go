package store

import (
	"bytes"
	"encoding/json"
	"github.com/hightouchio/cftpipe/pkg/models"
	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"os"
	"path/filepath"
)

const (
	ConfigFileName  = "config.json"
	HistoryFileName = "history.json"

	dirMode     os.FileMode = 0700
	configMode  os.FileMode = 0600
	historyMode os.FileMode = 0644
)

// Files stores the tunnel configuration and session history as JSON documents in a single directory.
type Files struct {
	fs  afero.Fs
	dir string
}

func NewFiles(fs afero.Fs, dir string) *Files {
	return &Files{fs: fs, dir: dir}
}

// NewOsFiles stores state on the local filesystem.
func NewOsFiles(dir string) *Files {
	return NewFiles(afero.NewOsFs(), dir)
}

func (f *Files) Dir() string {
	return f.dir
}

func (f *Files) ConfigPath() string {
	return filepath.Join(f.dir, ConfigFileName)
}

func (f *Files) HistoryPath() string {
	return filepath.Join(f.dir, HistoryFileName)
}

func (f *Files) ReadConfig() (models.Configuration, error) {
	data, err := f.Status()
	if err != nil {
		return models.Configuration{}, err
	}

	var config models.Configuration
	if err := json.Unmarshal(data, &config); err != nil {
		return models.Configuration{}, errors.Wrapf(err, "broken config %s", f.ConfigPath())
	}
	return config, nil
}

// WriteConfig replaces the configuration document. The file is readable by its owner only.
func (f *Files) WriteConfig(config models.Configuration) error {
	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return f.writeAtomic(f.ConfigPath(), append(data, '\n'), configMode)
}

func (f *Files) Status() ([]byte, error) {
	data, err := afero.ReadFile(f.fs, f.ConfigPath())
	if os.IsNotExist(err) {
		return nil, ErrConfigNotFound
	} else if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	return data, nil
}

// AppendHistory adds entry to the end of the history, keeping the newest MaxHistory entries.
func (f *Files) AppendHistory(entry models.HistoryEntry) error {
	entries, err := f.readHistory()
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > MaxHistory {
		entries = entries[len(entries)-MaxHistory:]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode history")
	}
	return f.writeAtomic(f.HistoryPath(), append(data, '\n'), historyMode)
}

// ReadHistory returns the last limit entries, oldest first. A limit of zero or less returns everything.
func (f *Files) ReadHistory(limit int) ([]models.HistoryEntry, error) {
	entries, err := f.readHistory()
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	return entries, nil
}

// FindLastByDirectory returns the hostname of the most recent entry recorded for dir.
func (f *Files) FindLastByDirectory(dir string) (string, bool, error) {
	entries, err := f.readHistory()
	if err != nil {
		return "", false, err
	}
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].Directory == dir {
			return entries[i].Hostname, true, nil
		}
	}
	return "", false, nil
}

func (f *Files) readHistory() ([]models.HistoryEntry, error) {
	data, err := afero.ReadFile(f.fs, f.HistoryPath())
	if os.IsNotExist(err) {
		return []models.HistoryEntry{}, nil
	} else if err != nil {
		return nil, errors.Wrap(err, "read history")
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []models.HistoryEntry{}, nil
	}

	var entries []models.HistoryEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, errors.Wrapf(err, "broken history %s", f.HistoryPath())
	}
	return entries, nil
}

// writeAtomic writes data to a temp file next to path and renames it into place,
// so an interrupted write never leaves a truncated document behind.
func (f *Files) writeAtomic(path string, data []byte, mode os.FileMode) error {
	if err := f.fs.MkdirAll(f.dir, dirMode); err != nil {
		return errors.Wrap(err, "create config dir")
	}

	tmp, err := afero.TempFile(f.fs, f.dir, "."+filepath.Base(path)+".tmp")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = f.fs.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(err, "write temp file")
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		cleanup()
		return errors.Wrap(err, "sync temp file")
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return errors.Wrap(err, "close temp file")
	}

	if err := f.fs.Chmod(tmpName, mode); err != nil {
		cleanup()
		return errors.Wrap(err, "chmod temp file")
	}
	if err := f.fs.Rename(tmpName, path); err != nil {
		cleanup()
		return errors.Wrapf(err, "replace %s", path)
	}
	return nil
}
