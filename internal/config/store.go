package config

import "github.com/1broseidon/snapwindow/internal/snap"

// FileStore applies binding edits directly to a config file. It is used when
// no daemon is running to take the edit.
type FileStore struct {
	Path string
}

// SetBinding binds position to chord and rewrites the file. An empty chord
// disables the position. A missing file starts from the defaults.
func (s FileStore) SetBinding(position, chord string) error {
	pos, err := snap.ParsePosition(position)
	if err != nil {
		return err
	}
	path := s.Path
	if path == "" {
		if path, err = DefaultConfigPath(); err != nil {
			return err
		}
	}
	res, err := LoadFromPath(path)
	if err != nil {
		return err
	}
	cfg := res.Config.Clone()
	cfg.Bindings[string(pos)] = chord
	return cfg.SaveTo(path)
}
