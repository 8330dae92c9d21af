package main

import (
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jhoicas/gestor-facturas/internal/application/lector"
	"github.com/jhoicas/gestor-facturas/internal/infrastructure/postgres"
)

var lectorCmd = &cobra.Command{
	Use:   "lector",
	Short: "Lee los XML enrutados de la empresa y recarga la base de datos plana",
	Long: `Recorre el árbol de destino de la empresa, extrae cada XML de factura o
nota crédito y lo persiste en PostgreSQL. La corrida es una recarga completa:
las tablas se vacían antes de procesar.`,
	RunE: runLector,
}

func init() {
	rootCmd.AddCommand(lectorCmd)
}

func runLector(cmd *cobra.Command, args []string) error {
	cfg, company, log, closer, err := setupRun("lector")
	if err != nil {
		return err
	}
	defer closer.Close()

	ctx := cmd.Context()
	pool, err := postgres.NewPool(ctx, cfg.DB)
	if err != nil {
		log.Error().Err(err).Msg("conexión a PostgreSQL")
		return err
	}
	defer pool.Close()

	xmlPaths, err := collectXMLPaths(company.DownloadFolder)
	if err != nil {
		log.Error().Err(err).Str("dir", company.DownloadFolder).Msg("no se pudo recorrer el árbol de destino")
		return err
	}
	log.Info().Int("total", len(xmlPaths)).Msg("XML encontrados en el árbol de destino")

	repo := postgres.NewInvoiceRecordRepository(pool)
	stats, err := lector.NewUseCase(repo, log).Run(ctx, xmlPaths)
	if err != nil {
		log.Error().Err(err).Msg("la corrida del lector falló")
		return err
	}
	log.Info().
		Int("guardados", stats.Saved).
		Int("omitidos", stats.Skipped).
		Int("errores", stats.Failed).
		Msg("corrida del lector finalizada")
	return nil
}

// collectXMLPaths recorre el árbol mensual y devuelve los XML en orden de
// recorrido, estable entre corridas.
func collectXMLPaths(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(strings.ToLower(d.Name()), ".xml") {
			out = append(out, path)
		}
		return nil
	})
	return out, err
}
