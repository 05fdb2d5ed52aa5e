package config

// SqliteConfig содержит путь к локальному файлу хранилища.
type SqliteConfig struct {
	Path string `yaml:"path" env:"NOTEPAD_SQLITE_PATH" env-default:"notepad.db"`
}
