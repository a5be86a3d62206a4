package entities

type Company struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	ContactEmail string `json:"contact_email"`
	ContactPhone string `json:"contact_phone"`
	Website      string `json:"website"`
	Address      string `json:"address"`
	City         string `json:"city"`
}

// CompanyContact is the public subset of a company shown on redemption.
type CompanyContact struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`
}

func (c *Company) Contact() CompanyContact {
	if c == nil {
		return CompanyContact{}
	}
	return CompanyContact{
		Name:    c.Name,
		Email:   c.ContactEmail,
		Phone:   c.ContactPhone,
		Website: c.Website,
		Address: c.Address,
	}
}
