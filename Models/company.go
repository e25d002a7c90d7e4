package Models

// CompanyInfo is the fixed letterhead used on invoices and quotes.
type CompanyInfo struct {
	Name    string `json:"name"`
	Address string `json:"address"`
	Phone   string `json:"phone"`
	Email   string `json:"email"`
	VAT     string `json:"vat"`
	Bank    struct {
		Name string `json:"name"`
		Sort string `json:"sort"`
		Acc  string `json:"acc"`
	} `json:"bank"`
}

var Company = func() CompanyInfo {
	c := CompanyInfo{
		Name:    "Motorhouse Beds LTD",
		Address: "87 High Street, Clapham, Bedford MK41 6AQ",
		Phone:   "01234 225570",
		Email:   "sales@motorhouse-beds.co.uk",
		VAT:     "444016621",
	}
	c.Bank.Name = "MOTORHOUSEBEDSLTD"
	c.Bank.Sort = "20-18-15"
	c.Bank.Acc = "73419029"
	return c
}()

// TermsText appears on every invoice. Edit here to change everywhere.
const TermsText = "Payment due within 14 days from invoice date. Please quote the invoice number on all payments."
