package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/spf13/viper"

	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App       AppConfig
	DB        DBConfig
	SMTP      SMTPConfig
	Odoo      OdooConfig
	Batch     BatchConfig
	Companies map[string]CompanyConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env    string // development, staging, production
	Name   string
	LogDir string // raíz de los events.log por programa/empresa
}

// DBConfig configuración de PostgreSQL.
// Si DatabaseURL no está vacío, se usa como connection string completo.
type DBConfig struct {
	DatabaseURL string
	Host        string
	Port        int
	User        string
	Password    string
	DBName      string
	SSLMode     string
}

// ConnectionString devuelve el DSN a usar: DATABASE_URL si está definido, si no el construido con DSN().
func (c DBConfig) ConnectionString() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return c.DSN()
}

// DSN devuelve el connection string para PostgreSQL con URL encoding para caracteres especiales.
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

// SMTPConfig credenciales del despacho de notificaciones.
type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	Subject  string
}

// OdooConfig acceso al libro contable externo (XML-RPC).
type OdooConfig struct {
	URL       string
	DB        string
	User      string
	Password  string
	CufeField string // campo studio que guarda el CUFE en account.move
}

// BatchConfig parámetros de los lotes de procesamiento.
type BatchConfig struct {
	Limit int // máximo de comprimidos por corrida del reenviador
}

// CompanyConfig configuración por empresa. Las claves de entorno llevan el
// nombre de la empresa como prefijo: IENEL_NIT, IENEL_DOWNLOAD_FOLDER, etc.
type CompanyConfig struct {
	NIT             string
	DownloadFolder  string
	InboxFolder     string
	ZipSource       string
	ZipDest         string
	ZipRejected     string
	LedgerCompanyID int
	NotifyRecipient string
}

// Context construye el objeto de valor que viaja por toda la corrida.
func (c CompanyConfig) Context(name string) entity.CompanyContext {
	return entity.CompanyContext{
		Name:            name,
		NIT:             c.NIT,
		DownloadFolder:  c.DownloadFolder,
		InboxFolder:     c.InboxFolder,
		ZipSource:       c.ZipSource,
		ZipDest:         c.ZipDest,
		ZipRejected:     c.ZipRejected,
		LedgerCompanyID: c.LedgerCompanyID,
		NotifyRecipient: c.NotifyRecipient,
	}
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo).
// Las env vars tienen prioridad. COMPANIES lista los nombres separados por coma.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo de configuración (.env o config.env)
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
			Env:    getString(v, "APP_ENV", "development"),
			Name:   getString(v, "APP_NAME", "gestor-facturas"),
			LogDir: getString(v, "LOG_DIR", "logs"),
		},
		DB: DBConfig{
			DatabaseURL: getString(v, "DATABASE_URL", ""),
			Host:        getString(v, "DB_HOST", "localhost"),
			Port:        getInt(v, "DB_PORT", 5432),
			User:        getString(v, "DB_USER", "postgres"),
			Password:    getString(v, "DB_PASSWORD", ""),
			DBName:      getString(v, "DB_NAME", "gestor_facturas"),
			SSLMode:     getString(v, "DB_SSLMODE", "disable"),
		},
		SMTP: SMTPConfig{
			Host:     getString(v, "EMAIL_HOST", ""),
			Port:     getInt(v, "EMAIL_PORT", 587),
			User:     getString(v, "EMAIL_USER", ""),
			Password: getString(v, "EMAIL_PASS", ""),
			From:     getString(v, "EMAIL_FROM", ""),
			Subject:  getString(v, "EMAIL_SUBJECT", "Factura electrónica"),
		},
		Odoo: OdooConfig{
			URL:       getString(v, "ODOO_URL", ""),
			DB:        getString(v, "ODOO_DB", ""),
			User:      getString(v, "ODOO_USER", ""),
			Password:  getString(v, "ODOO_PASS", ""),
			CufeField: getString(v, "ODOO_CUFE_FIELD", "x_studio_cufecude"),
		},
		Batch: BatchConfig{
			Limit: getInt(v, "BATCH_LIMIT", 25),
		},
		Companies: map[string]CompanyConfig{},
	}

	for _, name := range strings.Split(getString(v, "COMPANIES", "IENEL,TRJA,ENP"), ",") {
		name = strings.TrimSpace(strings.ToUpper(name))
		if name == "" {
			continue
		}
		cfg.Companies[name] = CompanyConfig{
			NIT:             getString(v, name+"_NIT", ""),
			DownloadFolder:  getString(v, name+"_DOWNLOAD_FOLDER", ""),
			InboxFolder:     getString(v, name+"_INBOX_FOLDER", ""),
			ZipSource:       getString(v, name+"_ZIP_SOURCE", ""),
			ZipDest:         getString(v, name+"_ZIP_DEST", ""),
			ZipRejected:     getString(v, name+"_ZIP_REJECTED", ""),
			LedgerCompanyID: getInt(v, name+"_LEDGER_COMPANY_ID", 0),
			NotifyRecipient: getString(v, name+"_RECIPIENT_EMAIL", getString(v, "RECIPIENT_EMAIL", "")),
		}
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
		case int:
			return v.GetInt(key)
		case string:
			n, _ := strconv.Atoi(v.GetString(key))
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}
