package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env
// y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	JWT       JWTConfig
	HTTP      HTTPConfig
	Ownership OwnershipConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// DBConfig configuración de PostgreSQL. Si DatabaseURL no está vacío se usa
// como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido,
// si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para
// caracteres especiales en la contraseña.
func (c DBConfig) DSN() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(c.User, c.Password),
		Host:     fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:     "/" + c.DBName,
		RawQuery: fmt.Sprintf("sslmode=%s", c.SSLMode),
	}
	return u.String()
}

// JWTConfig configuración de JWT.
type JWTConfig struct {
	Secret     string
	Expiration int // minutos
	Issuer     string
}

// HTTPConfig configuración del servidor HTTP.
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// OwnershipConfig reglas del validador de propiedad y parámetros del motor.
// El colaborador de configuración es la única fuente de estos valores; el
// motor los recibe como política inyectada, no los almacena.
type OwnershipConfig struct {
	// Umbrales de porcentaje de propiedad en [0,1], critical < high < low.
	LowThreshold      decimal.Decimal
	HighThreshold     decimal.Decimal
	CriticalThreshold decimal.Decimal

	// Interruptores de regla.
	BlockSaleBelowThreshold    bool
	RequirePaymentConfirmation bool
	ValidateTransfers          bool
	ValidateInventoryAdjusts   bool

	// MaxRetries reintentos ante conflicto de concurrencia.
	MaxRetries int
	// ConsolidationCron expresión cron de la consolidación periódica; vacío la desactiva.
	ConsolidationCron string
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde
// archivo .env/config.env). Las env vars tienen prioridad.
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.SetConfigName("config")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "joyeria-pos"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "joyeria_pos"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		JWT: JWTConfig{
			Secret:     getString(v, "JWT_SECRET", ""),
			Expiration: getInt(v, "JWT_EXPIRATION_MINUTES", 60),
			Issuer:     getString(v, "JWT_ISSUER", "joyeria-pos"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Ownership: OwnershipConfig{
			LowThreshold:               getDecimal(v, "OWNERSHIP_LOW_THRESHOLD", "0.5"),
			HighThreshold:              getDecimal(v, "OWNERSHIP_HIGH_THRESHOLD", "0.25"),
			CriticalThreshold:          getDecimal(v, "OWNERSHIP_CRITICAL_THRESHOLD", "0.1"),
			BlockSaleBelowThreshold:    getBool(v, "OWNERSHIP_BLOCK_SALE_BELOW_THRESHOLD", true),
			RequirePaymentConfirmation: getBool(v, "OWNERSHIP_REQUIRE_PAYMENT_CONFIRMATION", false),
			ValidateTransfers:          getBool(v, "OWNERSHIP_VALIDATE_TRANSFERS", true),
			ValidateInventoryAdjusts:   getBool(v, "OWNERSHIP_VALIDATE_ADJUSTMENTS", true),
			MaxRetries:                 getInt(v, "OWNERSHIP_MAX_RETRIES", 3),
			ConsolidationCron:          getString(v, "OWNERSHIP_CONSOLIDATION_CRON", "0 3 * * *"),
		},
	}
	return cfg, nil
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}

func getDecimal(v *viper.Viper, key, def string) decimal.Decimal {
	s := def
	if v.IsSet(key) {
		s = v.GetString(key)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		d, _ = decimal.NewFromString(def)
	}
	return d
}
