package store

import (
	"encoding/json"
	"fmt"
)

// LoadAppData reads rules and logs. An absent record yields empty data. If
// the stored rules contain duplicate IDs, the cleaned data is written back.
func (s *Store) LoadAppData() (AppData, error) {
	raw, ok, err := s.Get(KeyAppData)
	if err != nil {
		return emptyAppData(), err
	}
	if !ok {
		return emptyAppData(), nil
	}

	data, err := decodeAppData(raw)
	if err != nil {
		return emptyAppData(), err
	}
	if data.dedupeRules() {
		if err := s.SaveAppData(data); err != nil {
			return data, fmt.Errorf("rewrite deduplicated rules: %w", err)
		}
	}
	return data, nil
}

// SaveAppData replaces the stored rules and logs.
func (s *Store) SaveAppData(data AppData) error {
	raw, err := encodeAppData(data)
	if err != nil {
		return err
	}
	return s.Set(KeyAppData, raw)
}

// UpdateAppData applies fn to the stored data inside one read-modify-write.
// If fn returns an error nothing is written. The written data is returned.
// A stored record that cannot be decoded is replaced, starting from empty
// data, the same way LoadAppData falls back to it.
func (s *Store) UpdateAppData(fn func(*AppData) error) (AppData, error) {
	var out AppData
	err := s.Update(KeyAppData, func(old string, ok bool) (string, error) {
		data := emptyAppData()
		if ok {
			var err error
			data, err = decodeAppData(old)
			if err != nil {
				data = emptyAppData()
			}
			data.dedupeRules()
		}
		if err := fn(&data); err != nil {
			return "", err
		}
		out = data
		return encodeAppData(data)
	})
	if err != nil {
		return AppData{}, err
	}
	return out, nil
}

func emptyAppData() AppData {
	var d AppData
	d.normalize()
	return d
}

func decodeAppData(raw string) (AppData, error) {
	var data AppData
	if err := json.Unmarshal([]byte(raw), &data); err != nil {
		return emptyAppData(), fmt.Errorf("decode app data: %w", err)
	}
	data.normalize()
	return data, nil
}

func encodeAppData(data AppData) (string, error) {
	data.normalize()
	b, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("encode app data: %w", err)
	}
	return string(b), nil
}
