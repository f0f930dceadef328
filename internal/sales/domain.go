package sales

// TimestampLayout is the layout of the timestamp column in ledger rows.
const TimestampLayout = "2006-01-02 15:04:05"

// LedgerHeader is written as row 1 of every newly created ledger sheet.
var LedgerHeader = []any{"item id", "customer id", "timestamp", "gender", "age group", "features", "payment method"}

// Submission is a raw multi-item sale as received from a vendor terminal.
// ItemCodes and Quantities are comma-joined lists of equal length.
type Submission struct {
	ItemCodes     string
	Quantities    string
	Gender        string
	AgeGroup      string
	Features      string
	PaymentMethod string
	Selection     Selection
}

// CustomerRecord is one ledger row, written once per physical unit sold.
type CustomerRecord struct {
	ItemCode      string
	CustomerID    int
	Timestamp     string
	Gender        string
	AgeGroup      string
	Features      string
	PaymentMethod string
}

// Row returns the record in ledger column order.
func (r CustomerRecord) Row() []any {
	return []any{r.ItemCode, r.CustomerID, r.Timestamp, r.Gender, r.AgeGroup, r.Features, r.PaymentMethod}
}

// Receipt is the outcome of a recorded sale.
type Receipt struct {
	CustomerID int   `json:"customer_id"`
	Total      int64 `json:"total"`
	Rows       int   `json:"rows"`
}

// Overview is what a terminal shows before taking the next sale.
type Overview struct {
	PricingEvents      []string `json:"pricing_events"`
	LedgerEvent        string   `json:"ledger_event"`
	PricingEvent       string   `json:"pricing_event"`
	NextCustomerNumber int      `json:"next_customer_number"`
}

// line is a validated (item, quantity) pair.
type line struct {
	itemCode string
	quantity int
}
