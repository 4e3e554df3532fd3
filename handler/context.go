package handler

// ContextInfo carries the path parameters shared by the domain routes.
type ContextInfo struct {
	Domain *string `schema:"domain" json:"-"`
}

func (c *ContextInfo) SetDomain(domain string) {
	c.Domain = &domain
}

func (c *ContextInfo) GetDomain() string {
	if c != nil && c.Domain != nil {
		return *c.Domain
	}
	return ""
}
