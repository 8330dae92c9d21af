package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"

	"github.com/jhoicas/gestor-facturas/internal/domain"
)

// ReadXMLMember devuelve el contenido del miembro XML del ZIP sin extraer
// nada a disco. Inspección de solo lectura para la ruta de conciliación.
func ReadXMLMember(zipPath string) ([]byte, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrUnreadableArchive, zipPath, err)
	}
	defer reader.Close()

	for _, member := range reader.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if !strings.HasSuffix(strings.ToLower(member.Name), ".xml") {
			continue
		}
		rc, err := member.Open()
		if err != nil {
			return nil, fmt.Errorf("abrir miembro %s: %w", member.Name, err)
		}
		defer rc.Close()
		return io.ReadAll(rc)
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrNoXMLMember, zipPath)
}
