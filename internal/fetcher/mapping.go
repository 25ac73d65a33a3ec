package fetcher

import (
	"context"
	"encoding/csv"
	"io"
	"os"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"

	"github.com/nwcapparel/catalog-sync/internal/model"
	"github.com/nwcapparel/catalog-sync/internal/resolve"
)

// Header autodetection over the column-name variants the mapping exports have
// shipped with over the years.
var (
	companyHeaderRe = regexp.MustCompile(`(?i)^(company([ _]?name)?|name)$`)
	idHeaderRe      = regexp.MustCompile(`(?i)^(id[ _]?customer|customer[ _]?id|id)$`)
)

// FetchMapping loads the authoritative customer mapping file from a local
// path or an ftp:// URL and returns identity entries for the lookup map.
func FetchMapping(ctx context.Context, location string) ([]resolve.Entry, error) {
	var rc io.ReadCloser
	var err error
	if strings.HasPrefix(location, "ftp://") {
		rc, err = openFTP(ctx, location)
	} else {
		rc, err = os.Open(location)
		err = eris.Wrap(err, "fetcher: open mapping file")
	}
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	entries, err := ParseMapping(rc)
	if err != nil {
		return nil, eris.Wrapf(err, "fetcher: mapping %s", location)
	}
	zap.L().Info("fetcher: mapping loaded",
		zap.String("location", location),
		zap.Int("entries", len(entries)),
	)
	return entries, nil
}

// ParseMapping reads the comma-separated mapping export. Quoting follows CSV
// rules, so embedded commas and doubled quotes survive. The header row is
// located by regex over common column-name variants; files predating the
// header convention fall back to columns 0 and 1. Legacy exports are
// Windows-1252; bytes that are not valid UTF-8 are decoded as such.
func ParseMapping(r io.Reader) ([]resolve.Entry, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: read mapping")
	}
	if !utf8.Valid(data) {
		data, err = charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return nil, eris.Wrap(err, "fetcher: decode mapping as windows-1252")
		}
	}

	reader := csv.NewReader(strings.NewReader(string(data)))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, eris.Wrap(err, "fetcher: parse mapping csv")
	}
	if len(rows) == 0 {
		return nil, eris.New("fetcher: mapping file is empty")
	}

	companyCol, idCol, hasHeader := detectHeader(rows[0])
	if hasHeader {
		rows = rows[1:]
	}

	entries := make([]resolve.Entry, 0, len(rows))
	for _, row := range rows {
		if companyCol >= len(row) || idCol >= len(row) {
			continue
		}
		name := strings.TrimSpace(row[companyCol])
		id := model.SafeInt(row[idCol])
		if name == "" || id == 0 {
			continue
		}
		entries = append(entries, resolve.Entry{CompanyName: name, CustomerID: id})
	}
	return entries, nil
}

// detectHeader scans the first row for recognized column names. Both columns
// must be found for the row to count as a header.
func detectHeader(row []string) (companyCol, idCol int, hasHeader bool) {
	companyCol, idCol = 0, 1
	foundCompany, foundID := false, false
	for i, cell := range row {
		h := strings.TrimSpace(cell)
		if !foundCompany && companyHeaderRe.MatchString(h) {
			companyCol, foundCompany = i, true
			continue
		}
		if !foundID && idHeaderRe.MatchString(h) {
			idCol, foundID = i, true
		}
	}
	return companyCol, idCol, foundCompany && foundID
}
