package config

// ShareConfig содержит адрес, к которому добавляется ?share=<id>.
type ShareConfig struct {
	BaseURL string `yaml:"base_url" env:"NOTEPAD_SHARE_BASE_URL" env-default:"http://127.0.0.1:8080/"`
	// OpenID - идентификатор общей заметки, открываемой при запуске.
	OpenID string `yaml:"open_id" env:"NOTEPAD_SHARE_OPEN_ID" env-default:""`
}
