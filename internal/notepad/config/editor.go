package config

import "time"

// EditorConfig содержит настройки редактора и импорта.
type EditorConfig struct {
	AutoSaveDelay  time.Duration `yaml:"auto_save_delay" env:"NOTEPAD_EDITOR_AUTOSAVE_DELAY" env-default:"2s"`
	MaxImportBytes int64         `yaml:"max_import_bytes" env:"NOTEPAD_EDITOR_MAX_IMPORT_BYTES" env-default:"5242880"`
	SeedWelcome    bool          `yaml:"seed_welcome" env:"NOTEPAD_SEED_WELCOME" env-default:"true"`
}
