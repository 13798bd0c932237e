package config

type Config struct {
	BaseURL  string
	HttpPort int
	Db       struct {
		Dsn         string
		Automigrate bool
		Autoseed    bool
	}
	Jwt struct {
		SecretKey string
	}
	Notifications struct {
		Email string
	}
	Smtp struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	FileUploader struct {
		CloudName string
		ApiKey    string
		ApiSecret string
	}
	RateFeed struct {
		BaseURL  string
		CacheTTL int
	}
	RedisServer  string
	KafkaServers string
}
