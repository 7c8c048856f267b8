package model

// Format identifies the tabular source format of an upload.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Capabilities records which optional source columns were present. It is
// computed once at ingestion and consulted by every downstream component.
type Capabilities struct {
	HasStatus        bool `json:"has_status"`
	HasOpenedAt      bool `json:"has_opened_at"`
	HasUnsubscribe   bool `json:"has_unsubscribe"`
	HasReply         bool `json:"has_reply"`
	HasPositiveReply bool `json:"has_positive_reply"`
	HasWebsite       bool `json:"has_website"`
	HasCity          bool `json:"has_city"`
	HasState         bool `json:"has_state"`
	HasESP           bool `json:"has_esp"`
	HasTraffic       bool `json:"has_traffic"`
	HasGeo           bool `json:"has_geo"` // latitude and longitude
}

// Source describes where a table came from.
type Source struct {
	ID          string   `json:"id"` // hex SHA-256 of the uploaded bytes
	Name        string   `json:"name"`
	Format      Format   `json:"format"`
	SizeBytes   int64    `json:"size_bytes"`
	Columns     []string `json:"columns"`
	BlankRows   int      `json:"blank_rows"`   // dropped: every cell empty
	BouncedRows int      `json:"bounced_rows"` // dropped: status bounced or failed
}

// Table is an ordered set of normalized records. Tables are treated as
// immutable once built; filters derive new tables sharing the capabilities.
type Table struct {
	Rows         []Record
	Capabilities Capabilities
	Source       Source
}

// Len returns the number of rows.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Empty reports whether the table has no rows.
func (t *Table) Empty() bool { return t.Len() == 0 }

// WithRows returns a table sharing t's capabilities and source but holding rows.
func (t *Table) WithRows(rows []Record) *Table {
	return &Table{Rows: rows, Capabilities: t.Capabilities, Source: t.Source}
}
