package ubl

import "strings"

// Unwrap detecta el patrón documento-dentro-de-documento: un AttachedDocument
// cuyo cbc:Description (en cac:Attachment/cac:ExternalReference) trae el XML
// comercial real como texto, a veces envuelto en CDATA literal.
//
// Devuelve el documento embebido parseado, o nil cuando no existe o no
// parsea. Un fallo aquí nunca es un fallo de extracción: el llamador sigue
// con el sobre exterior.
func Unwrap(outer *Document) *Document {
	if outer == nil || outer.Root().Tag != "AttachedDocument" {
		return nil
	}
	desc, ok := outer.SelectFirst("//cac:Attachment/cac:ExternalReference/cbc:Description", nil)
	if !ok {
		return nil
	}
	clean := strings.TrimSpace(stripCDATA(desc))
	if clean == "" {
		return nil
	}
	inner, err := Parse([]byte(clean))
	if err != nil {
		return nil
	}
	return inner
}

// stripCDATA quita un envoltorio CDATA que haya sobrevivido como texto
// (documentos doblemente escapados).
func stripCDATA(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "<![CDATA[")
	s = strings.TrimSuffix(s, "]]>")
	return s
}
