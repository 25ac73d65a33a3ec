package model

// Source names as used in field-priority chains and enrichment stats.
const (
	SourceDesignList  = "design_list"
	SourceArtRequests = "art_requests"
	SourceQuoteItems  = "quote_items"
	SourceLegacy      = "legacy_designs"
)

// SourceRow is a validated row from one of the catalog source tables.
// Field returns the named source column as a string, "" for columns the
// source does not carry; merge priority chains are evaluated through it.
type SourceRow interface {
	NaturalKey() int
	CustomerID() int
	Field(name string) string
}

// DesignRow is one variant row from the backbone design list table.
type DesignRow struct {
	PKID         int
	DesignNumber int
	CompanyName  string
	IDCustomer   int
	Title        string
	StyleNumber  string
	GarmentColor string
	StitchCount  string
	ImageURL     string
	Notes        string
}

// DesignRowFromRecord validates a raw backbone row.
func DesignRowFromRecord(r Record) DesignRow {
	return DesignRow{
		PKID:         r.Int("PK_ID"),
		DesignNumber: r.Int("DesignNumber"),
		CompanyName:  r.Str("CompanyName"),
		IDCustomer:   r.Int("ID_Customer"),
		Title:        r.Str("Title"),
		StyleNumber:  r.Str("StyleNumber"),
		GarmentColor: r.Str("GarmentColor"),
		StitchCount:  r.Str("StitchCount"),
		ImageURL:     r.Str("ImageURL"),
		Notes:        r.Str("Notes"),
	}
}

func (d DesignRow) NaturalKey() int { return d.DesignNumber }
func (d DesignRow) CustomerID() int { return d.IDCustomer }

func (d DesignRow) Field(name string) string {
	switch name {
	case "CompanyName":
		return d.CompanyName
	case "Title":
		return d.Title
	case "StyleNumber":
		return d.StyleNumber
	case "GarmentColor":
		return d.GarmentColor
	case "StitchCount":
		return d.StitchCount
	case "ImageURL":
		return d.ImageURL
	case "Notes":
		return d.Notes
	default:
		return ""
	}
}

// ArtRequestRow is one row from the art requests table.
type ArtRequestRow struct {
	PKID         int
	DesignNumber int
	CompanyName  string
	IDCustomer   int
	GarmentStyle string
	GarmentColor string
	StitchCount  string
	Mockup       string
	Notes        string
}

// ArtRequestRowFromRecord validates a raw art request row.
func ArtRequestRowFromRecord(r Record) ArtRequestRow {
	return ArtRequestRow{
		PKID:         r.Int("PK_ID"),
		DesignNumber: r.Int("ID_Design"),
		CompanyName:  r.Str("CompanyName"),
		IDCustomer:   r.Int("ID_Customer"),
		GarmentStyle: r.Str("GarmentStyle"),
		GarmentColor: r.Str("GarmentColor"),
		StitchCount:  r.Str("StitchCount"),
		Mockup:       r.Str("Mockup"),
		Notes:        r.Str("NOTES"),
	}
}

func (a ArtRequestRow) NaturalKey() int { return a.DesignNumber }
func (a ArtRequestRow) CustomerID() int { return a.IDCustomer }

func (a ArtRequestRow) Field(name string) string {
	switch name {
	case "CompanyName":
		return a.CompanyName
	case "GarmentStyle":
		return a.GarmentStyle
	case "GarmentColor":
		return a.GarmentColor
	case "StitchCount":
		return a.StitchCount
	case "Mockup":
		return a.Mockup
	case "NOTES":
		return a.Notes
	default:
		return ""
	}
}

// QuoteItemRow is one row from the quote items table.
type QuoteItemRow struct {
	QuoteID      int
	DesignNumber int
	CustomerName string
	IDCustomer   int
	StyleNumber  string
	Description  string
}

// QuoteItemRowFromRecord validates a raw quote item row.
func QuoteItemRowFromRecord(r Record) QuoteItemRow {
	return QuoteItemRow{
		QuoteID:      r.Int("QuoteID"),
		DesignNumber: r.Int("DesignNumber"),
		CustomerName: r.Str("CustomerName"),
		IDCustomer:   r.Int("ID_Customer"),
		StyleNumber:  r.Str("StyleNumber"),
		Description:  r.Str("Description"),
	}
}

func (q QuoteItemRow) NaturalKey() int { return q.DesignNumber }
func (q QuoteItemRow) CustomerID() int { return q.IDCustomer }

func (q QuoteItemRow) Field(name string) string {
	switch name {
	case "CustomerName":
		return q.CustomerName
	case "StyleNumber":
		return q.StyleNumber
	case "Description":
		return q.Description
	default:
		return ""
	}
}

// LegacyDesignRow is one row from the retired design catalog.
type LegacyDesignRow struct {
	DesignNumber int
	Company      string
	IDCustomer   int
	Description  string
	Style        string
	ImagePath    string
}

// LegacyDesignRowFromRecord validates a raw legacy catalog row.
func LegacyDesignRowFromRecord(r Record) LegacyDesignRow {
	return LegacyDesignRow{
		DesignNumber: r.Int("DesignNumber"),
		Company:      r.Str("Company"),
		IDCustomer:   r.Int("CustomerID"),
		Description:  r.Str("Description"),
		Style:        r.Str("Style"),
		ImagePath:    r.Str("ImagePath"),
	}
}

func (l LegacyDesignRow) NaturalKey() int { return l.DesignNumber }
func (l LegacyDesignRow) CustomerID() int { return l.IDCustomer }

func (l LegacyDesignRow) Field(name string) string {
	switch name {
	case "Company":
		return l.Company
	case "Description":
		return l.Description
	case "Style":
		return l.Style
	case "ImagePath":
		return l.ImagePath
	default:
		return ""
	}
}

// CustomerRow is one row from the customer master table.
type CustomerRow struct {
	IDCustomer   int
	CompanyName  string
	CustomerType string
}

// CustomerRowFromRecord validates a raw customer master row.
func CustomerRowFromRecord(r Record) CustomerRow {
	return CustomerRow{
		IDCustomer:   r.Int("ID_Customer"),
		CompanyName:  r.Str("CompanyName"),
		CustomerType: r.Str("CustomerType"),
	}
}
