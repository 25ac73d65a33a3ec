package model

// UnifiedRecord is one output row of the unified design catalog. Every
// backbone row yields exactly one record; secondary sources contribute a
// record only for design numbers the backbone never emitted.
type UnifiedRecord struct {
	DesignNumber int    `json:"DesignNumber"`
	VariantIndex int    `json:"VariantIndex"`
	CompanyName  string `json:"CompanyName"`
	IDCustomer   int    `json:"ID_Customer,omitempty"`
	CustomerType string `json:"CustomerType,omitempty"`
	Title        string `json:"Title,omitempty"`
	StyleNumber  string `json:"StyleNumber,omitempty"`
	GarmentColor string `json:"GarmentColor,omitempty"`
	StitchCount  int    `json:"StitchCount,omitempty"`
	ImageURL     string `json:"ImageURL,omitempty"`
	Notes        string `json:"Notes,omitempty"`
	SourcedFrom  string `json:"SourcedFrom"`
}

// ToRecord converts the unified record to record-store insert fields.
func (u UnifiedRecord) ToRecord() Record {
	return Record{
		"DesignNumber": u.DesignNumber,
		"VariantIndex": u.VariantIndex,
		"CompanyName":  u.CompanyName,
		"ID_Customer":  u.IDCustomer,
		"CustomerType": u.CustomerType,
		"Title":        u.Title,
		"StyleNumber":  u.StyleNumber,
		"GarmentColor": u.GarmentColor,
		"StitchCount":  u.StitchCount,
		"ImageURL":     u.ImageURL,
		"Notes":        u.Notes,
		"SourcedFrom":  u.SourcedFrom,
	}
}
