package entity

// ArchiveState estado de la máquina de procesamiento por comprimido.
type ArchiveState int

const (
	StateOpened ArchiveState = iota
	StateExtracted
	StateValidated
	StateRouted
	StateFinalized
	StateFailed
)

// String nombre legible del estado para logs.
func (s ArchiveState) String() string {
	switch s {
	case StateOpened:
		return "opened"
	case StateExtracted:
		return "extracted"
	case StateValidated:
		return "validated"
	case StateRouted:
		return "routed"
	case StateFinalized:
		return "finalized"
	default:
		return "failed"
	}
}

// Outcome resultado terminal del procesamiento de un comprimido.
type Outcome string

const (
	OutcomeDispatched Outcome = "dispatched" // notificado y movido a la carpeta de coincidencias
	OutcomeRejected   Outcome = "rejected"   // descartado o movido a rechazados
	OutcomePending    Outcome = "pending"    // queda en origen para una corrida futura
	OutcomeMoved      Outcome = "moved"      // XML/PDF renombrados en su carpeta destino
)

// ArchiveTask contexto efímero de procesamiento de un comprimido. Se crea al
// seleccionar el ZIP del directorio origen y se descarta al completar el
// movimiento terminal; el workspace temporal nunca sobrevive a la tarea.
type ArchiveTask struct {
	SourcePath        string
	TempWorkspace     string // existe solo durante el procesamiento
	Record            *InvoiceRecord
	DestinationFolder string // vacío hasta conocer tipo de documento y de pago
	State             ArchiveState
	Outcome           Outcome

	// Rutas finales tras el renombre (vacías si no aplica).
	XMLPath string
	PDFPath string
}
