package main

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/gestor-facturas/internal/application/gestor"
)

var gestorCmd = &cobra.Command{
	Use:   "gestor",
	Short: "Clasifica los comprimidos descargados y enruta XML/PDF al árbol mensual",
	Example: `  # Clasificar el buzón de IENEL
  gestor-facturas gestor --empresa IENEL`,
	RunE: runGestor,
}

func init() {
	rootCmd.AddCommand(gestorCmd)
}

func runGestor(cmd *cobra.Command, args []string) error {
	_, company, log, closer, err := setupRun("gestor")
	if err != nil {
		return err
	}
	defer closer.Close()

	result, err := gestor.NewUseCase(log).Run(cmd.Context(), company)
	if err != nil {
		log.Error().Err(err).Msg("la corrida del gestor falló")
		return err
	}
	log.Info().
		Int("xml_enrutados", len(result.XMLFiles)).
		Int("pdf_enrutados", len(result.PDFFiles)).
		Int("fallidos", len(result.Failed)).
		Msg("corrida del gestor finalizada")
	return nil
}
