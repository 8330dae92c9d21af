package entity

// CompanyContext contexto de una empresa, construido una sola vez por corrida
// a partir de la configuración y pasado explícitamente hacia abajo. Ninguna
// función hoja vuelve a consultar variables de entorno.
type CompanyContext struct {
	Name            string // IENEL, TRJA, ENP, ...
	NIT             string // debe estar contenido en el NIT del cliente del XML
	DownloadFolder  string // raíz del árbol de destino del gestor
	InboxFolder     string // comprimidos descargados pendientes de clasificar
	ZipSource       string // origen de comprimidos del reenviador
	ZipDest         string // destino de comprimidos con CUFE coincidente
	ZipRejected     string // cuarentena de comprimidos descartados
	LedgerCompanyID int    // company_id en el libro contable externo
	NotifyRecipient string // destinatario de la notificación de despacho
}
