package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// BoostRule paket bazlı oran yükseltme kuralı
// Kullanıcının direkt referans sayısı Threshold'a ulaşırsa BoostedRate uygulanır
type BoostRule struct {
	Threshold   int
	BoostedRate float64
}

// Config ortam yapılandırmalarını tutar
type Config struct {
	AppEnv    string
	Port      string
	DBHost    string
	DBPort    string
	DBUser    string
	DBPass    string
	DBName    string
	JWTSecret string

	// Binary payout politikası
	PayoutUnitVolume float64
	PayoutUnitReward float64

	// Compound edilmeyen günler (time.Weekday, 0=Pazar ... 6=Cumartesi)
	ProfitSkipDays []time.Weekday

	// Paket adı → oran yükseltme kuralı
	RateBoosts map[string]BoostRule

	// İlk yatırım lider bonusu
	BonusMinDeposit float64
	BonusAmount     float64

	// Para çekme kesintisi (yüzde)
	WithdrawalFeePercent float64
}

// yardımcı fonksiyon: ortam değişkeni yoksa default değeri döner
func getEnv(key, defaultVal string) string {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	return val
}

// getEnvFloat float ortam değişkenini okur, parse edilemezse default döner
func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}

// LoadConfig tüm yapılandırmayı yükler
func LoadConfig() *Config {
	return &Config{
		AppEnv:    getEnv("APP_ENV", "development"),
		Port:      getEnv("PORT", "8080"),
		DBHost:    getEnv("DB_HOST", "localhost"),
		DBPort:    getEnv("DB_PORT", "5432"),
		DBUser:    getEnv("DB_USER", "finalx"),
		DBPass:    getEnv("DB_PASS", "password"),
		DBName:    getEnv("DB_NAME", "investdb"),
		JWTSecret: getEnv("JWT_SECRET", "change-this-in-production"),

		PayoutUnitVolume: getEnvFloat("PAYOUT_UNIT_VOLUME", 200),
		PayoutUnitReward: getEnvFloat("PAYOUT_UNIT_REWARD", 35),

		ProfitSkipDays: parseSkipDays(getEnv("PROFIT_SKIP_DAYS", "0,6")),
		RateBoosts:     parseRateBoosts(getEnv("RATE_BOOSTS", "")),

		BonusMinDeposit: getEnvFloat("BONUS_MIN_DEPOSIT", 100),
		BonusAmount:     getEnvFloat("BONUS_AMOUNT", 8),

		WithdrawalFeePercent: getEnvFloat("WITHDRAWAL_FEE_PERCENT", 10),
	}
}

// GetDSN veritabanı bağlantı URL'sini döner
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPass, c.DBHost, c.DBPort, c.DBName,
	)
}

// IsProfitSkipDay verilen günün compound dışı olup olmadığını kontrol eder
func (c *Config) IsProfitSkipDay(day time.Weekday) bool {
	for _, d := range c.ProfitSkipDays {
		if d == day {
			return true
		}
	}
	return false
}

// parseSkipDays "0,6" formatındaki gün listesini parse eder
func parseSkipDays(raw string) []time.Weekday {
	var days []time.Weekday
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}

// parseRateBoosts "Starter:3:1.2,Growth:5:2.0" formatındaki kural listesini parse eder
// format: paketAdı:referansEşiği:yükseltilmişOran
func parseRateBoosts(raw string) map[string]BoostRule {
	boosts := make(map[string]BoostRule)
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		fields := strings.Split(part, ":")
		if len(fields) != 3 {
			continue
		}
		threshold, err := strconv.Atoi(strings.TrimSpace(fields[1]))
		if err != nil || threshold <= 0 {
			continue
		}
		rate, err := strconv.ParseFloat(strings.TrimSpace(fields[2]), 64)
		if err != nil || rate <= 0 {
			continue
		}
		boosts[strings.TrimSpace(fields[0])] = BoostRule{Threshold: threshold, BoostedRate: rate}
	}
	return boosts
}
