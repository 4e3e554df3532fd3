package entity

const MetricTotal = "total"

// Counts maps a sub-metric name (e.g. "outgoing", "smtp", "bounce") to its count.
type Counts map[string]int64

func (c Counts) Get(metric string) int64 {
	if c == nil {
		return 0
	}
	return c[metric]
}

func (c Counts) Total() int64 {
	return c.Get(MetricTotal)
}

func (c Counts) Has(metric string) bool {
	_, ok := c[metric]
	return ok
}

// Add increments metric and the total by n.
func (c Counts) Add(metric string, n int64) {
	if metric != "" && metric != MetricTotal {
		c[metric] += n
	}
	c[MetricTotal] += n
}

type FailedCounts struct {
	Permanent Counts `json:"permanent,omitempty"`
	Temporary Counts `json:"temporary,omitempty"`
}

func (f *FailedCounts) GetPermanent() Counts {
	if f != nil && f.Permanent != nil {
		return f.Permanent
	}
	return nil
}

func (f *FailedCounts) GetTemporary() Counts {
	if f != nil && f.Temporary != nil {
		return f.Temporary
	}
	return nil
}

// Summary flattens the failed breakdown into one level: the totals of each
// severity plus their sum.
func (f *FailedCounts) Summary() Counts {
	if f == nil {
		return nil
	}

	var (
		permanent = f.GetPermanent().Total()
		temporary = f.GetTemporary().Total()
	)
	return Counts{
		string(SeverityPermanent): permanent,
		string(SeverityTemporary): temporary,
		MetricTotal:               permanent + temporary,
	}
}
