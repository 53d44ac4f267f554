package datamanager

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"paper-trader/internal/engine"
	"paper-trader/internal/errors"
	"paper-trader/internal/models"
)

// schemaVersion identifies the persisted document layout. Documents
// without a version field are treated as version 1.
const schemaVersion = 1

// document is the persisted state file, one per account.
type document struct {
	Version       int                      `json:"version"`
	Portfolio     *models.Portfolio        `json:"portfolio"`
	StockPrices   map[string]*models.Stock `json:"stock_prices"`
	WatchedStocks []string                 `json:"watched_stocks"`
	LastSaved     time.Time                `json:"last_saved"`
}

// SaveData serializes the full engine state plus the watchlist to the
// data file. The snapshot is taken under the engine lock, and the file is
// replaced atomically (temp file + rename) so a crash mid-write never
// leaves a truncated document.
func (m *Manager) SaveData() error {
	if m.dataFile == "" {
		return nil
	}

	snap := m.engine.Snapshot()
	doc := document{
		Version:       schemaVersion,
		Portfolio:     snap.Portfolio,
		StockPrices:   snap.StockPrices,
		WatchedStocks: m.WatchedStocks(),
		LastSaved:     time.Now(),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding state")
	}

	dir := filepath.Dir(m.dataFile)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "creating data directory")
	}

	tmp, err := os.CreateTemp(dir, ".paper-trader-*.json")
	if err != nil {
		return errors.Wrap(err, "creating temp file")
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return errors.Wrap(err, "writing state")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "closing temp file")
	}

	if err := os.Rename(tmpName, m.dataFile); err != nil {
		os.Remove(tmpName)
		return errors.Wrap(err, "replacing data file")
	}

	m.logger.Debug().Str("file", m.dataFile).Msg("State saved")
	return nil
}

// LoadData restores engine state and the watchlist from the data file. A
// missing file is a fresh start, not an error.
func (m *Manager) LoadData() error {
	if m.dataFile == "" {
		return nil
	}

	data, err := os.ReadFile(m.dataFile)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return errors.Wrap(err, "reading data file")
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return errors.Wrap(err, "decoding data file")
	}

	m.engine.Restore(&engine.Snapshot{
		Portfolio:   doc.Portfolio,
		StockPrices: doc.StockPrices,
	})

	m.mu.Lock()
	m.watched = make(map[string]struct{}, len(doc.WatchedStocks))
	for _, symbol := range doc.WatchedStocks {
		m.watched[symbol] = struct{}{}
	}
	m.mu.Unlock()

	m.logger.Debug().Str("file", m.dataFile).Int("version", doc.Version).Msg("State loaded")
	return nil
}
