package ingest

import (
	"strings"

	"github.com/gocarina/gocsv"

	"portfolio-sentinel/internal/errors"
	"portfolio-sentinel/internal/models"
)

// Symbols of Schwab summary rows that are not holdings.
const (
	cashRowSymbol  = "Cash & Cash Investments"
	totalRowSymbol = "Account Total"
)

// schwabRow mirrors the columns of a Schwab positions export.
type schwabRow struct {
	Symbol       string `csv:"Symbol"`
	Quantity     string `csv:"Qty (Quantity)"`
	Price        string `csv:"Price"`
	MarketValue  string `csv:"Mkt Val (Market Value)"`
	GainPercent  string `csv:"Gain % (Gain/Loss %)"`
	SecurityType string `csv:"Security Type"`
	Delta        string `csv:"Delta"`
}

// ParsePortfolio parses raw Schwab CSV text into positions. Malformed rows
// are reported individually and skipped; parsing never aborts on one bad
// row. The returned error is non-nil only when the export as a whole is
// unreadable (no recognizable header).
func ParsePortfolio(csvText string) ([]models.Position, []*errors.RowError, error) {
	body, err := trimToHeader(csvText)
	if err != nil {
		return nil, nil, err
	}

	var rows []*schwabRow
	if err := gocsv.UnmarshalCSV(gocsv.LazyCSVReader(strings.NewReader(body)), &rows); err != nil {
		return nil, nil, errors.Wrap(err, "reading positions csv")
	}

	var positions []models.Position
	var rowErrs []*errors.RowError

	for i, row := range rows {
		rowNum := i + 1 // 1-based, relative to the header
		symbol := strings.TrimSpace(stripExcelEscape(row.Symbol))

		if symbol == "" || symbol == totalRowSymbol {
			continue
		}

		pos, rerr := parseRow(rowNum, symbol, row)
		if rerr != nil {
			rowErrs = append(rowErrs, rerr)
			continue
		}
		positions = append(positions, pos)
	}

	return positions, rowErrs, nil
}

// trimToHeader drops the export's title line(s), returning the CSV starting
// at the header row.
func trimToHeader(csvText string) (string, error) {
	lines := strings.Split(strings.ReplaceAll(csvText, "\r\n", "\n"), "\n")
	for i, line := range lines {
		if strings.HasPrefix(line, `"Symbol"`) || strings.HasPrefix(line, "Symbol,") {
			return strings.Join(lines[i:], "\n"), nil
		}
	}
	return "", errors.Wrap(errors.ErrMalformedRow, "no Symbol header found in csv")
}

func parseRow(rowNum int, symbol string, row *schwabRow) (models.Position, *errors.RowError) {
	secType := strings.TrimSpace(stripExcelEscape(row.SecurityType))

	// The cash sweep row has no quantity or price; only its market value
	// matters for coverage checks.
	if symbol == cashRowSymbol || secType == "Cash and Money Market" {
		return models.Position{
			Symbol:      symbol,
			Type:        models.SecurityCash,
			MarketValue: CleanCurrency(row.MarketValue),
		}, nil
	}

	qty, err := CleanNumber(row.Quantity)
	if err != nil {
		return models.Position{}, errors.NewRowError(rowNum, symbol, "Qty", "missing or invalid quantity")
	}

	pos := models.Position{
		Symbol:      symbol,
		Quantity:    qty,
		Price:       CleanCurrency(row.Price),
		MarketValue: CleanCurrency(row.MarketValue),
		GainPercent: CleanPercent(row.GainPercent),
	}

	switch secType {
	case "Equity", "ETFs & Closed End Funds":
		pos.Type = models.SecurityEquity
		return pos, nil
	case "Option":
		opt, err := ParseOptionSymbol(symbol)
		if err != nil {
			return models.Position{}, errors.NewRowError(rowNum, symbol, "Symbol", err.Error())
		}
		delta, ok := CleanDelta(row.Delta)
		if !ok {
			return models.Position{}, errors.NewRowError(rowNum, symbol, "Delta", "missing delta for option row")
		}
		pos.Type = models.SecurityOption
		pos.Underlying = opt.Underlying
		pos.OptionType = opt.Type
		pos.Strike = opt.Strike
		pos.Expiration = opt.Expiration
		pos.Delta = delta
		return pos, nil
	default:
		return models.Position{}, errors.NewRowError(rowNum, symbol, "Security Type", "unrecognized security type "+secType)
	}
}
