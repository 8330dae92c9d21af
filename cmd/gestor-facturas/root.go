package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/gestor-facturas/internal/domain/entity"
	"github.com/jhoicas/gestor-facturas/pkg/config"
	"github.com/jhoicas/gestor-facturas/pkg/logger"
)

var version = "1.0.0"

var empresaFlag string

var rootCmd = &cobra.Command{
	Use:   "gestor-facturas",
	Short: "Pipeline de facturas electrónicas: clasificación, lectura y conciliación",
	Long: `gestor-facturas procesa los comprimidos de facturación electrónica de cada
empresa en tres programas independientes:

  gestor      clasifica los ZIP descargados y enruta XML/PDF por mes y tipo
  lector      lee los XML enrutados y recarga la base de datos plana
  reenviador  concilia los ZIP contra el libro contable y despacha coincidencias`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&empresaFlag, "empresa", "e", "", "empresa a procesar (IENEL, TRJA, ENP, ...)")
}

// setupRun carga configuración, resuelve la empresa y abre el log de la
// corrida. El closer cierra el events.log y debe diferirse.
func setupRun(programa string) (*config.Config, entity.CompanyContext, *logger.Logger, io.Closer, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, entity.CompanyContext{}, nil, nil, fmt.Errorf("cargar configuración: %w", err)
	}

	name := strings.TrimSpace(strings.ToUpper(empresaFlag))
	if name == "" {
		return nil, entity.CompanyContext{}, nil, nil, fmt.Errorf("falta la bandera --empresa")
	}
	companyCfg, ok := cfg.Companies[name]
	if !ok {
		return nil, entity.CompanyContext{}, nil, nil, fmt.Errorf("empresa %q no configurada (COMPANIES=%s)",
			name, strings.Join(companyNames(cfg), ","))
	}

	log, closer, err := logger.NewRunLog(logger.Config{Env: cfg.App.Env, Level: "info"}, cfg.App.LogDir, programa, name)
	if err != nil {
		return nil, entity.CompanyContext{}, nil, nil, err
	}
	log.Info().Str("version", version).Msg("iniciando corrida")
	return cfg, companyCfg.Context(name), log, closer, nil
}

func companyNames(cfg *config.Config) []string {
	names := make([]string, 0, len(cfg.Companies))
	for name := range cfg.Companies {
		names = append(names, name)
	}
	return names
}
