package mail

type WelcomeEmailData struct {
	Name     string
	Username string
	LoginURL string
}

type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	LoginURL string
}
