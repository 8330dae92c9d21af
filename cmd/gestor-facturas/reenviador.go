package main

import (
	"github.com/spf13/cobra"

	"github.com/jhoicas/gestor-facturas/internal/application/reenviador"
	"github.com/jhoicas/gestor-facturas/internal/infrastructure/mail"
	"github.com/jhoicas/gestor-facturas/internal/infrastructure/odoo"
)

var reenviadorCmd = &cobra.Command{
	Use:   "reenviador",
	Short: "Concilia los comprimidos pendientes contra el libro contable y despacha coincidencias",
	Long: `Evalúa un lote de comprimidos del origen de la empresa contra los asientos
contabilizados del libro externo. Los que coinciden por CUFE se notifican por
correo y se mueven; los que no cumplen condiciones se rechazan; el resto queda
en su lugar para la próxima corrida.`,
	Example: `  # Conciliar el lote de TRJA
  gestor-facturas reenviador --empresa TRJA`,
	RunE: runReenviador,
}

func init() {
	rootCmd.AddCommand(reenviadorCmd)
}

func runReenviador(cmd *cobra.Command, args []string) error {
	cfg, company, log, closer, err := setupRun("reenviador")
	if err != nil {
		return err
	}
	defer closer.Close()

	uc := reenviador.NewUseCase(odoo.NewClient(cfg.Odoo), mail.NewSender(cfg.SMTP), log)
	if cfg.Batch.Limit > 0 {
		uc.Limit = cfg.Batch.Limit
	}

	result, err := uc.Run(cmd.Context(), company)
	if err != nil {
		log.Error().Err(err).Msg("la corrida del reenviador falló")
		return err
	}
	log.Info().
		Int("despachados", len(result.Dispatched)).
		Int("pendientes", len(result.Pending)).
		Int("rechazados", len(result.Rejected)).
		Msg("corrida del reenviador finalizada")
	return nil
}
