package parser

import "strings"

// Field canonical semantic column of a POS export
type Field string

const (
	FieldTable    Field = "table"
	FieldItems    Field = "items"
	FieldService  Field = "service"
	FieldReceived Field = "received"
	FieldPayment  Field = "payment"
	FieldDate     Field = "date"
)

// ColumnAlias accepted header spellings of one canonical field
type ColumnAlias struct {
	Field    Field
	Accepted []string
	Default  string
}

// ColumnAliases ordered resolution table
type ColumnAliases []ColumnAlias

// DefaultColumnAliases spellings seen across the POS exports in use
func DefaultColumnAliases() ColumnAliases {
	return ColumnAliases{
		{Field: FieldTable, Accepted: []string{"tipovenda", "tipo venda", "mesa", "tipo_venda"}, Default: "tipovenda"},
		{Field: FieldItems, Accepted: []string{"valor", "itens", "total"}, Default: "valor"},
		{Field: FieldService, Accepted: []string{"acrescimo", "acréscimo", "taxa", "taxa de serviço"}, Default: "acrescimo"},
		{Field: FieldReceived, Accepted: []string{"FR Valor", "fr valor", "valor recebido"}, Default: "FR Valor"},
		{Field: FieldPayment, Accepted: []string{"forma pagamento", "Forma Recebimento", "FR Descricao"}, Default: "FR Descricao"},
		{Field: FieldDate, Accepted: []string{"data", "Data", "DATA"}, Default: "data"},
	}
}

// WithOverrides replaces the accepted spellings of the given fields, keeping table order.
// An override list also moves the default to its first spelling.
func (a ColumnAliases) WithOverrides(overrides map[Field][]string) ColumnAliases {
	out := make(ColumnAliases, len(a))
	for i, alias := range a {
		out[i] = alias
		if spellings, ok := overrides[alias.Field]; ok && len(spellings) > 0 {
			out[i].Accepted = append([]string(nil), spellings...)
			out[i].Default = spellings[0]
		}
	}
	return out
}

// FieldMapping header resolved for one canonical field
type FieldMapping struct {
	Field       Field  `json:"field"`
	ColumnIndex int    `json:"columnIndex"` // -1 when the default guess is used
	ColumnName  string `json:"columnName"`
	Fallback    bool   `json:"fallback"`
}

// ColumnMapping canonical field → header, resolved once per upload
type ColumnMapping map[Field]FieldMapping

// Header returns the header to read for a field
func (m ColumnMapping) Header(f Field) string {
	return m[f].ColumnName
}

// Fallbacks lists the fields resolved by default guess, in table order
func (m ColumnMapping) Fallbacks(aliases ColumnAliases) []FieldMapping {
	var out []FieldMapping
	for _, alias := range aliases {
		if mapping, ok := m[alias.Field]; ok && mapping.Fallback {
			out = append(out, mapping)
		}
	}
	return out
}

// FieldMapper resolves loosely named headers to canonical fields
type FieldMapper struct {
	aliases ColumnAliases
}

// NewFieldMapper creates a mapper; nil aliases use the defaults
func NewFieldMapper(aliases ColumnAliases) *FieldMapper {
	if len(aliases) == 0 {
		aliases = DefaultColumnAliases()
	}
	return &FieldMapper{aliases: aliases}
}

// Aliases returns the resolution table in use
func (m *FieldMapper) Aliases() ColumnAliases {
	return m.aliases
}

// Resolve maps every canonical field to a header equal (ignoring case) to one of its spellings.
// A field with no match falls back to its default header and never fails.
func (m *FieldMapper) Resolve(headers []string) ColumnMapping {
	normalized := make([]string, len(headers))
	for i, h := range headers {
		normalized[i] = NormalizeColumnName(h)
	}

	mapping := make(ColumnMapping, len(m.aliases))
	for _, alias := range m.aliases {
		mapping[alias.Field] = m.resolveField(alias, headers, normalized)
	}
	return mapping
}

func (m *FieldMapper) resolveField(alias ColumnAlias, headers, normalized []string) FieldMapping {
	// spellings are tried in priority order, each against every header
	for _, spelling := range alias.Accepted {
		want := NormalizeColumnName(spelling)
		if want == "" {
			continue
		}
		for idx, col := range normalized {
			if col == want {
				return FieldMapping{
					Field:       alias.Field,
					ColumnIndex: idx,
					ColumnName:  strings.TrimSpace(headers[idx]),
				}
			}
		}
	}

	return FieldMapping{
		Field:       alias.Field,
		ColumnIndex: -1,
		ColumnName:  alias.Default,
		Fallback:    true,
	}
}
