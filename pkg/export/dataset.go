package export

// Dataset defines tabular export content.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	// Summary lines are rendered after the table by formats that support it.
	Summary []SummaryLine
}

// SummaryLine is one labelled total below the table.
type SummaryLine struct {
	Label string
	Value string
}

// Renderer turns a dataset into a downloadable document.
type Renderer interface {
	Render(data Dataset, title string) ([]byte, error)
	ContentType() string
	Extension() string
}

// ForFormat returns the renderer for csv, xlsx or pdf.
func ForFormat(format string) (Renderer, bool) {
	switch format {
	case "csv":
		return NewCSVExporter(), true
	case "xlsx":
		return NewXLSXExporter(), true
	case "pdf":
		return NewPDFExporter(), true
	}
	return nil, false
}
