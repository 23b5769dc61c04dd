package context

type Key string

const (
	Claims  Key = "claims"
	Company Key = "company"
	Params  Key = "params"
)
