package calculator

import (
	"github.com/luc4spas/erp-joy-maker/internal/model"
	"github.com/luc4spas/erp-joy-maker/internal/parser"
)

// Result closing batch plus the diagnostics of how it was derived
type Result struct {
	Batch     model.Batch           `json:"batch"`
	Mapping   parser.ColumnMapping  `json:"mapping"`
	Fallbacks []parser.FieldMapping `json:"fallbacks,omitempty"`
	Stats     NormalizeStats        `json:"stats"`
}

// Calculator runs resolution, normalization and aggregation over a parsed sheet
type Calculator struct {
	mapper         *parser.FieldMapper
	commissionRate float64
}

// NewCalculator creates a calculator; a zero rate uses DefaultCommissionRate
func NewCalculator(mapper *parser.FieldMapper, commissionRate float64) *Calculator {
	if mapper == nil {
		mapper = parser.NewFieldMapper(nil)
	}
	if commissionRate <= 0 {
		commissionRate = DefaultCommissionRate
	}
	return &Calculator{
		mapper:         mapper,
		commissionRate: commissionRate,
	}
}

// Process derives the closing batch of one sheet
func (c *Calculator) Process(sheet *parser.Sheet) Result {
	mapping := c.mapper.Resolve(sheet.Headers)
	rows, stats := Normalize(sheet.Rows, mapping)
	trattoria, japa := Aggregate(rows, c.commissionRate)

	return Result{
		Batch: model.Batch{
			ReportDate: ExtractReportDate(sheet.Rows, mapping),
			Trattoria:  trattoria,
			Japa:       japa,
			RowCount:   len(rows),
		},
		Mapping:   mapping,
		Fallbacks: mapping.Fallbacks(c.mapper.Aliases()),
		Stats:     stats,
	}
}
