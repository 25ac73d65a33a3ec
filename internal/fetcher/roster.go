package fetcher

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
	"go.uber.org/zap"

	"github.com/nwcapparel/catalog-sync/internal/audit"
	"github.com/nwcapparel/catalog-sync/internal/model"
)

// LoadRosters reads a roster workbook: one sheet per rep, sheet name is the
// rep, first column holds customer ids. Sheet order is the roster rank. A
// sheet named after the catch-all bucket is split out and returned second.
func LoadRosters(path string) ([]audit.Roster, []int, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, nil, eris.Wrapf(err, "fetcher: open roster workbook %s", path)
	}
	if len(f.Sheets) == 0 {
		return nil, nil, eris.Errorf("fetcher: roster workbook %s has no sheets", path)
	}

	var rosters []audit.Roster
	var catchAll []int
	for _, sheet := range f.Sheets {
		ids := sheetCustomerIDs(sheet)
		if strings.EqualFold(strings.TrimSpace(sheet.Name), audit.CatchAllOwner) {
			catchAll = append(catchAll, ids...)
			continue
		}
		rosters = append(rosters, audit.Roster{
			Owner:       strings.TrimSpace(sheet.Name),
			CustomerIDs: ids,
		})
	}

	zap.L().Info("fetcher: rosters loaded",
		zap.String("path", path),
		zap.Int("reps", len(rosters)),
		zap.Int("catch_all", len(catchAll)),
	)
	return rosters, catchAll, nil
}

// sheetCustomerIDs extracts column A as customer ids. Header rows and stray
// labels parse to zero and are dropped.
func sheetCustomerIDs(sheet *xlsx.Sheet) []int {
	var ids []int
	for _, row := range sheet.Rows {
		if len(row.Cells) == 0 {
			continue
		}
		if id := model.SafeInt(row.Cells[0].String()); id != 0 {
			ids = append(ids, id)
		}
	}
	return ids
}
