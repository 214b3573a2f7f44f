package configs

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	BackendURL     string // base URL ของ backend ที่โฮสต์ auth/rest/storage/realtime
	BackendAnonKey string // anon api key สำหรับ request ที่ยังไม่ login
	Port           string
	LocalDB        string // sqlite เก็บ state ฝั่ง client (cart, session)
}

func LoadConfig() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file, using process environment")
	}

	return &Config{
		BackendURL:     MustGetEnv("BACKEND_URL"),
		BackendAnonKey: MustGetEnv("BACKEND_ANON_KEY"),
		Port:           getEnv("PORT", "8000"),
		LocalDB:        getEnv("LOCAL_DB", "local.db"),
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

// Helper เผื่อไฟล์อื่นต้องใช้
func MustGetEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok {
		log.Fatalf("missing env: %s", key)
	}
	return v
}
