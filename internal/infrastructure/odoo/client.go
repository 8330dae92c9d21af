package odoo

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/beevik/etree"

	"github.com/jhoicas/gestor-facturas/internal/application/reenviador"
	"github.com/jhoicas/gestor-facturas/pkg/config"
)

var _ reenviador.LedgerQuery = (*Client)(nil)

// Client cliente XML-RPC mínimo contra el libro contable (Odoo). Solo cubre
// las dos llamadas que necesita la conciliación: authenticate y
// execute_kw(account.move, search_read).
type Client struct {
	cfg  config.OdooConfig
	http *http.Client
	uid  int
}

// NewClient construye el cliente.
func NewClient(cfg config.OdooConfig) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 30 * time.Second},
	}
}

// PostedRecords devuelve {id, código fiscal} de los asientos contabilizados
// de la compañía, excluyendo códigos nulos o vacíos.
func (c *Client) PostedRecords(ctx context.Context, companyID int) ([]reenviador.PostedRecord, error) {
	if c.uid == 0 {
		uid, err := c.authenticate(ctx)
		if err != nil {
			return nil, err
		}
		c.uid = uid
	}

	domain := []any{
		[]any{"state", "=", "posted"},
		[]any{"company_id", "=", companyID},
		[]any{c.cfg.CufeField, "!=", false},
		[]any{c.cfg.CufeField, "!=", ""},
	}
	result, err := c.call(ctx, "/xmlrpc/2/object", "execute_kw", []any{
		c.cfg.DB, c.uid, c.cfg.Password,
		"account.move", "search_read",
		[]any{domain},
		map[string]any{"fields": []any{"id", c.cfg.CufeField}},
	})
	if err != nil {
		return nil, fmt.Errorf("odoo search_read: %w", err)
	}

	rows, _ := result.([]any)
	records := make([]reenviador.PostedRecord, 0, len(rows))
	for _, row := range rows {
		fields, ok := row.(map[string]any)
		if !ok {
			continue
		}
		rec := reenviador.PostedRecord{}
		if id, ok := fields["id"].(int64); ok {
			rec.ID = id
		}
		if code, ok := fields[c.cfg.CufeField].(string); ok {
			rec.FiscalCode = code
		}
		if rec.FiscalCode != "" {
			records = append(records, rec)
		}
	}
	return records, nil
}

func (c *Client) authenticate(ctx context.Context) (int, error) {
	result, err := c.call(ctx, "/xmlrpc/2/common", "authenticate", []any{
		c.cfg.DB, c.cfg.User, c.cfg.Password, map[string]any{},
	})
	if err != nil {
		return 0, fmt.Errorf("odoo authenticate: %w", err)
	}
	uid, ok := result.(int64)
	if !ok || uid <= 0 {
		return 0, fmt.Errorf("odoo authenticate: credenciales rechazadas")
	}
	return int(uid), nil
}

// call arma el methodCall, lo envía y decodifica el methodResponse.
func (c *Client) call(ctx context.Context, endpoint, method string, params []any) (any, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0"`)
	callEl := doc.CreateElement("methodCall")
	callEl.CreateElement("methodName").SetText(method)
	paramsEl := callEl.CreateElement("params")
	for _, p := range params {
		encodeValue(paramsEl.CreateElement("param").CreateElement("value"), p)
	}
	body, err := doc.WriteToBytes()
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL+endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "text/xml")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("estado HTTP %d", resp.StatusCode)
	}

	respDoc := etree.NewDocument()
	if _, err := respDoc.ReadFrom(resp.Body); err != nil {
		return nil, fmt.Errorf("respuesta XML-RPC ilegible: %w", err)
	}
	if fault := respDoc.FindElement("//fault/value"); fault != nil {
		return nil, fmt.Errorf("fault XML-RPC: %v", decodeValue(fault))
	}
	value := respDoc.FindElement("//params/param/value")
	if value == nil {
		return nil, fmt.Errorf("respuesta XML-RPC sin valor")
	}
	return decodeValue(value), nil
}

// encodeValue serializa strings, enteros, booleanos, slices y mapas al
// vocabulario de <value> de XML-RPC.
func encodeValue(el *etree.Element, v any) {
	switch t := v.(type) {
	case string:
		el.CreateElement("string").SetText(t)
	case bool:
		b := "0"
		if t {
			b = "1"
		}
		el.CreateElement("boolean").SetText(b)
	case int:
		el.CreateElement("int").SetText(strconv.Itoa(t))
	case int64:
		el.CreateElement("int").SetText(strconv.FormatInt(t, 10))
	case float64:
		el.CreateElement("double").SetText(strconv.FormatFloat(t, 'f', -1, 64))
	case []any:
		data := el.CreateElement("array").CreateElement("data")
		for _, item := range t {
			encodeValue(data.CreateElement("value"), item)
		}
	case map[string]any:
		st := el.CreateElement("struct")
		for name, item := range t {
			member := st.CreateElement("member")
			member.CreateElement("name").SetText(name)
			encodeValue(member.CreateElement("value"), item)
		}
	default:
		el.CreateElement("string").SetText(fmt.Sprint(t))
	}
}

// decodeValue interpreta un <value> de respuesta. Los tipos que el libro
// devuelve para search_read: int, string, boolean, double, array y struct.
func decodeValue(value *etree.Element) any {
	children := value.ChildElements()
	if len(children) == 0 {
		// Valor sin tipo explícito: string plano.
		return value.Text()
	}
	typed := children[0]
	switch typed.Tag {
	case "string":
		return typed.Text()
	case "int", "i4":
		n, _ := strconv.ParseInt(typed.Text(), 10, 64)
		return n
	case "boolean":
		return typed.Text() == "1"
	case "double":
		f, _ := strconv.ParseFloat(typed.Text(), 64)
		return f
	case "array":
		var out []any
		if data := typed.FindElement("data"); data != nil {
			for _, v := range data.ChildElements() {
				if v.Tag == "value" {
					out = append(out, decodeValue(v))
				}
			}
		}
		return out
	case "struct":
		out := map[string]any{}
		for _, member := range typed.ChildElements() {
			if member.Tag != "member" {
				continue
			}
			name := member.FindElement("name")
			val := member.FindElement("value")
			if name != nil && val != nil {
				out[name.Text()] = decodeValue(val)
			}
		}
		return out
	default:
		return typed.Text()
	}
}
