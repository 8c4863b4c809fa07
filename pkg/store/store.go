package store

import (
	"errors"
	"github.com/hightouchio/cftpipe/pkg/models"
)

var ErrConfigNotFound = errors.New("config not found")

// MaxHistory is the number of history entries kept on disk.
const MaxHistory = 100

type Config interface {
	ReadConfig() (models.Configuration, error)
	WriteConfig(config models.Configuration) error
	// Status returns the raw configuration document.
	Status() ([]byte, error)
}

type History interface {
	AppendHistory(entry models.HistoryEntry) error
	ReadHistory(limit int) ([]models.HistoryEntry, error)
	FindLastByDirectory(dir string) (hostname string, ok bool, err error)
}
