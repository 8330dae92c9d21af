package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jhoicas/gestor-facturas/internal/domain"
)

// Parámetros de apertura: el origen puede estar aún bloqueado por el cliente
// de correo que lo descargó, por eso se reintenta con espera fija.
const (
	DefaultOpenRetries = 3
	DefaultRetryDelay  = 2 * time.Second
)

// Workspace carpeta temporal aislada con los miembros copiados de un ZIP.
// El ZIP de origen jamás se muta: siempre se trabaja sobre la copia.
type Workspace struct {
	Dir string
}

// ExtractToWorkspace abre el ZIP en solo lectura (con reintentos) y copia sus
// miembros de archivo a una subcarpeta propia bajo root. Los miembros que no
// son archivos regulares se ignoran.
func ExtractToWorkspace(zipPath, root string, retries int, delay time.Duration) (*Workspace, error) {
	if retries <= 0 {
		retries = DefaultOpenRetries
	}
	reader, err := openWithRetry(zipPath, retries, delay)
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	base := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))
	dir := filepath.Join(root, base)
	if _, err := os.Stat(dir); err == nil {
		// Nombre tomado por una corrida anterior que aún no limpió: aislar.
		dir = dir + "-" + uuid.NewString()[:8]
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("crear workspace %s: %w", dir, err)
	}

	ws := &Workspace{Dir: dir}
	for _, member := range reader.File {
		if member.FileInfo().IsDir() {
			continue
		}
		if err := copyMember(member, dir); err != nil {
			// Copia parcial: el workspace no queda huérfano.
			ws.Remove(0)
			return nil, fmt.Errorf("copiar miembro %s: %w", member.Name, err)
		}
	}
	return ws, nil
}

// Files lista los archivos del workspace en orden lexicográfico.
func (w *Workspace) Files() ([]string, error) {
	entries, err := os.ReadDir(w.Dir)
	if err != nil {
		return nil, err
	}
	var out []string
	for _, e := range entries {
		if !e.IsDir() {
			out = append(out, filepath.Join(w.Dir, e.Name()))
		}
	}
	return out, nil
}

// Remove elimina la carpeta temporal. La espera previa evita borrar un
// archivo que la plataforma aún tiene abierto (EBUSY en Windows).
func (w *Workspace) Remove(settle time.Duration) error {
	if settle > 0 {
		time.Sleep(settle)
	}
	return os.RemoveAll(w.Dir)
}

func openWithRetry(zipPath string, retries int, delay time.Duration) (*zip.ReadCloser, error) {
	var lastErr error
	for attempt := 1; attempt <= retries; attempt++ {
		reader, err := zip.OpenReader(zipPath)
		if err == nil {
			return reader, nil
		}
		lastErr = err
		if attempt < retries {
			time.Sleep(delay)
		}
	}
	return nil, fmt.Errorf("%w: %s tras %d intentos: %v", domain.ErrUnreadableArchive, zipPath, retries, lastErr)
}

func copyMember(member *zip.File, dir string) error {
	dest := filepath.Join(dir, filepath.FromSlash(member.Name))
	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return err
	}
	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer rc.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	_, err = io.Copy(out, rc)
	return err
}

// UniqueName devuelve una ruta que no colisione en el directorio destino,
// agregando " (n)" con n incremental antes de la extensión. Es el único
// mecanismo de consistencia entre corridas sobre el árbol compartido.
func UniqueName(path string) string {
	ext := filepath.Ext(path)
	base := strings.TrimSuffix(filepath.Base(path), ext)
	dir := filepath.Dir(path)
	for counter := 1; ; counter++ {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path
		}
		path = filepath.Join(dir, fmt.Sprintf("%s (%d)%s", base, counter, ext))
	}
}
