package model

// Customer is the customer aggregate - the customer record itself
// together with its owned child collections. Children never outlive
// the customer and are persisted with it as one unit.
type Customer struct {
	ID          string    `json:"id" bson:"_id,omitempty"`
	Name        string    `json:"customer_name" bson:"customerName"`
	Salutation  *string   `json:"salutation" bson:"salutation"`
	SalesPerson *string   `json:"sales_person" bson:"salesPerson"`
	Emails      []Email   `json:"emails" bson:"emails"`
	Phones      []Phone   `json:"phone_numbers" bson:"phoneNumbers"`
	Addresses   []Address `json:"addresses" bson:"addresses"`
}

// Email is a customer email record. Address is its identity within
// the customer, Primary is the only mutable attribute. Several emails
// of one customer may be flagged primary - not constrained.
type Email struct {
	ID      string `json:"id" bson:"id"`
	Address string `json:"email_address" bson:"address"`
	Primary bool   `json:"is_primary" bson:"primary"`
}

// Phone is a customer phone record, identity is the number itself.
type Phone struct {
	ID      string `json:"id" bson:"id"`
	Number  string `json:"phone_number" bson:"number"`
	Primary bool   `json:"is_primary" bson:"primary"`
}

// Address is a customer address record. Line, City and Pincode form
// the identity, State and Country are mutable.
type Address struct {
	ID      string `json:"id" bson:"id"`
	Line    string `json:"address_line" bson:"line"`
	City    string `json:"city" bson:"city"`
	State   string `json:"state" bson:"state"`
	Country string `json:"country" bson:"country"`
	Pincode string `json:"pincode" bson:"pincode"`
}

// AddressKey is the composite identity of an address record.
type AddressKey struct {
	Line    string
	City    string
	Pincode string
}

// Key returns email identity.
func (e Email) Key() string {
	return e.Address
}

// Key returns phone identity.
func (p Phone) Key() string {
	return p.Number
}

// Key returns address identity.
func (a Address) Key() AddressKey {
	return AddressKey{Line: a.Line, City: a.City, Pincode: a.Pincode}
}
