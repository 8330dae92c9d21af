package ubl

import (
	"fmt"
	"strings"

	"github.com/beevik/etree"
)

// Namespaces UBL 2.1 (los mismos del anexo técnico DIAN).
const (
	// Common Basic Components
	NsCbc = "urn:oasis:names:specification:ubl:schema:xsd:CommonBasicComponents-2"
	// Common Aggregate Components
	NsCac = "urn:oasis:names:specification:ubl:schema:xsd:CommonAggregateComponents-2"
)

// Document envuelve un árbol XML parseado junto con la tabla fija de
// namespaces cbc/cac. Todas las consultas de extracción pasan por aquí.
type Document struct {
	tree *etree.Document
	ns   map[string]string
}

// Parse construye un Document desde los bytes del XML.
func Parse(raw []byte) (*Document, error) {
	tree := etree.NewDocument()
	if err := tree.ReadFromBytes(raw); err != nil {
		return nil, fmt.Errorf("ubl: parsear documento: %w", err)
	}
	if tree.Root() == nil {
		return nil, fmt.Errorf("ubl: documento sin elemento raíz")
	}
	return &Document{
		tree: tree,
		ns:   map[string]string{"cbc": NsCbc, "cac": NsCac},
	}, nil
}

// Root elemento raíz del documento.
func (d *Document) Root() *etree.Element {
	return d.tree.Root()
}

// step un segmento de ruta: prefijo:Local con predicado opcional [@attr='valor'].
type step struct {
	prefix  string
	local   string
	attrKey string
	attrVal string
}

// parsePath divide una ruta en segmentos. "//" al inicio busca en cualquier
// profundidad bajo el scope; "./" (o nada) busca hijos directos.
func parsePath(path string) (descend bool, steps []step) {
	path = strings.TrimSpace(path)
	if strings.HasPrefix(path, "//") {
		descend = true
		path = path[2:]
	} else {
		path = strings.TrimPrefix(path, "./")
	}
	for _, seg := range strings.Split(path, "/") {
		if seg == "" {
			continue
		}
		var st step
		if i := strings.Index(seg, "[@"); i != -1 {
			pred := strings.TrimSuffix(seg[i+2:], "]")
			if j := strings.Index(pred, "="); j != -1 {
				st.attrKey = pred[:j]
				st.attrVal = strings.Trim(pred[j+1:], "'\"")
			}
			seg = seg[:i]
		}
		if j := strings.Index(seg, ":"); j != -1 {
			st.prefix = seg[:j]
			st.local = seg[j+1:]
		} else {
			st.local = seg
		}
		steps = append(steps, st)
	}
	return descend, steps
}

// matches decide si un elemento corresponde a un segmento: nombre local igual
// y namespace resuelto igual al de la tabla (si el prefijo es conocido).
func (d *Document) matches(el *etree.Element, st step) bool {
	if el.Tag != st.local {
		return false
	}
	if uri, known := d.ns[st.prefix]; known {
		if el.NamespaceURI() != uri {
			return false
		}
	} else if el.Space != st.prefix {
		return false
	}
	if st.attrKey != "" && el.SelectAttrValue(st.attrKey, "") != st.attrVal {
		return false
	}
	return true
}

func (d *Document) childMatches(parent *etree.Element, st step) []*etree.Element {
	var out []*etree.Element
	for _, ch := range parent.ChildElements() {
		if d.matches(ch, st) {
			out = append(out, ch)
		}
	}
	return out
}

func (d *Document) descendantMatches(scope *etree.Element, st step) []*etree.Element {
	var out []*etree.Element
	for _, ch := range scope.ChildElements() {
		if d.matches(ch, st) {
			out = append(out, ch)
		}
		out = append(out, d.descendantMatches(ch, st)...)
	}
	return out
}

// SelectNodes devuelve los elementos que satisfacen la ruta, en orden de
// documento. scope nil consulta el documento completo. Nunca retorna error:
// una ruta sin coincidencias es una lista vacía.
func (d *Document) SelectNodes(path string, scope *etree.Element) []*etree.Element {
	if scope == nil {
		scope = d.tree.Root()
	}
	descend, steps := parsePath(path)
	if len(steps) == 0 {
		return nil
	}
	var current []*etree.Element
	if descend {
		current = d.descendantMatches(scope, steps[0])
	} else {
		current = d.childMatches(scope, steps[0])
	}
	for _, st := range steps[1:] {
		var next []*etree.Element
		for _, el := range current {
			next = append(next, d.childMatches(el, st)...)
		}
		current = next
	}
	return current
}

// SelectAll devuelve los textos de los elementos coincidentes, omitiendo los
// vacíos (mismo efecto que text() en XPath: un elemento vacío no aporta nodo).
func (d *Document) SelectAll(path string, scope *etree.Element) []string {
	var out []string
	for _, el := range d.SelectNodes(path, scope) {
		if text := strings.TrimSpace(el.Text()); text != "" {
			out = append(out, text)
		}
	}
	return out
}

// SelectFirst primer valor de la ruta; ok=false indica ausencia.
func (d *Document) SelectFirst(path string, scope *etree.Element) (string, bool) {
	if values := d.SelectAll(path, scope); len(values) > 0 {
		return values[0], true
	}
	return "", false
}
