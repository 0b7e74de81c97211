// Package filekv keeps key-value records in a single JSON file. It
// loads the whole file on open and rewrites it on every mutation,
// which is fine for the handful of small records this app keeps.
package filekv

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

type FileKV struct {
	fileName string

	mu      sync.RWMutex
	records map[string]string
}

func initDBFile(fileName string) error {
	if dir := filepath.Dir(fileName); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	dbFile, err := os.OpenFile(fileName, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(dbFile, `{}`)
	if err != nil {
		return err
	}
	return dbFile.Close()
}

func writeToJSONFile(fileName string, records map[string]string) error {
	jsonData, err := json.MarshalIndent(records, "", "\t")
	if err != nil {
		return fmt.Errorf("error marshaling JSON: %s", err)
	}

	file, err2 := os.OpenFile(fileName, os.O_WRONLY|os.O_TRUNC|os.O_CREATE, 0644)
	if err2 != nil {
		return fmt.Errorf("error opening file: %s", err2)
	}
	defer file.Close()

	_, err = file.Write(jsonData)
	if err != nil {
		return fmt.Errorf("error writing to file: %s", err)
	}

	return nil
}

func parseJSONFile(fileName string, records *map[string]string) error {
	file, err := os.Open(fileName)
	if err != nil {
		return err
	}
	defer file.Close()

	decoder := json.NewDecoder(file)
	return decoder.Decode(records)
}

// New opens the JSON file at fileName, creating an empty one when it
// does not exist yet.
func New(fileName string) (*FileKV, error) {
	db := FileKV{
		fileName: fileName,
		records:  map[string]string{},
	}

	err := parseJSONFile(db.fileName, &db.records)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		err := initDBFile(fileName)
		if err != nil {
			return nil, err
		}
		err = parseJSONFile(db.fileName, &db.records)
		if err != nil {
			return nil, err
		}
	}
	if db.records == nil {
		db.records = map[string]string{}
	}

	return &db, nil
}

func (db *FileKV) Get(ctx context.Context, key string) (string, bool, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()
	value, found := db.records[key]
	return value, found, nil
}

func (db *FileKV) Set(ctx context.Context, key, value string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	db.records[key] = value
	return writeToJSONFile(db.fileName, db.records)
}

func (db *FileKV) Delete(ctx context.Context, key string) error {
	db.mu.Lock()
	defer db.mu.Unlock()
	delete(db.records, key)
	return writeToJSONFile(db.fileName, db.records)
}

func (db *FileKV) Close() error {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return writeToJSONFile(db.fileName, db.records)
}
